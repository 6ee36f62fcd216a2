package handlers

import (
	"net/http"

	"wikid/pkg/access"
	"wikid/pkg/auth"
	"wikid/pkg/models"
	"wikid/pkg/store"
	"wikid/pkg/utils"
	"wikid/pkg/wikierr"
)

// userOf returns the authenticated user or nil for anonymous callers.
func userOf(r *http.Request) *models.User {
	return auth.UserFromContext(r.Context())
}

// requireUser pulls the authenticated user from the request context and
// writes a 401 when there is none.
func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		utils.WriteError(w, wikierr.ErrAuth)
		return nil, false
	}
	return u, true
}

// namespaceOr404 loads a namespace and writes a 404 if it does not exist.
func namespaceOr404(w http.ResponseWriter, name string) (*models.Namespace, bool) {
	ns, ok, err := store.GetNamespace(name)
	if err != nil {
		utils.WriteError(w, err)
		return nil, false
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "namespace not found")
		return nil, false
	}
	return ns, true
}

// pageOr404 loads a page and writes a 404 if it does not exist.
func pageOr404(w http.ResponseWriter, namespace, slug string) (*models.Page, bool) {
	p, ok, err := store.GetPage(namespace, slug)
	if err != nil {
		utils.WriteError(w, err)
		return nil, false
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "page not found")
		return nil, false
	}
	return p, true
}

// readableNamespaces collects the names of every namespace the user may
// read. The anonymous (nil) user sees only world-readable namespaces.
func readableNamespaces(u *models.User) (map[string]struct{}, error) {
	all, err := store.ListNamespaces()
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(all))
	for i := range all {
		if access.Evaluate(&all[i], u, access.Read) {
			out[all[i].Name] = struct{}{}
		}
	}
	return out, nil
}

func forbid(w http.ResponseWriter) {
	utils.WriteError(w, wikierr.ErrAccess)
}
