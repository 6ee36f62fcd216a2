package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"wikid/pkg/logger"
	"wikid/pkg/models"
	"wikid/pkg/search"
	"wikid/pkg/store"
	"wikid/pkg/utils"
)

// RegisterAdmin registers routes reserved for the meta user.
func RegisterAdmin(r *mux.Router, idx *search.Index) {
	r.HandleFunc("/users", listUsers).Methods(http.MethodGet)
	r.HandleFunc("/admin/search/rebuild", func(w http.ResponseWriter, req *http.Request) {
		rebuildIndex(w, req, idx)
	}).Methods(http.MethodPost)
}

func requireMeta(w http.ResponseWriter, r *http.Request) bool {
	u, ok := requireUser(w, r)
	if !ok {
		return false
	}
	if u.Name != models.Meta {
		forbid(w)
		return false
	}
	return true
}

// listUsers returns account names and namespace memberships. Hashes never
// leave the store.
func listUsers(w http.ResponseWriter, r *http.Request) {
	if !requireMeta(w, r) {
		return
	}
	users, err := store.ListUsers()
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	type userView struct {
		Name       string   `json:"name"`
		Namespaces []string `json:"namespaces"`
	}
	out := make([]userView, 0, len(users))
	for i := range users {
		v := userView{Name: users[i].Name}
		for ns := range users[i].Namespaces {
			v.Namespaces = append(v.Namespaces, ns)
		}
		out = append(out, v)
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{"users": out})
}

// rebuildIndex re-scans the page keyspace into a fresh search index.
func rebuildIndex(w http.ResponseWriter, r *http.Request, idx *search.Index) {
	if !requireMeta(w, r) {
		return
	}
	if err := idx.Rebuild(); err != nil {
		utils.WriteError(w, err)
		return
	}
	logger.Info("search_rebuild_triggered")
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "rebuilt"})
}
