package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"wikid/pkg/access"
	"wikid/pkg/logger"
	"wikid/pkg/models"
	"wikid/pkg/store"
	"wikid/pkg/utils"
)

// RegisterNamespaces registers the namespace collection and management
// routes.
func RegisterNamespaces(r *mux.Router) {
	r.HandleFunc("/namespaces", listNamespaces).Methods(http.MethodGet)
	r.HandleFunc("/namespaces", createNamespace).Methods(http.MethodPost)
	r.HandleFunc("/namespaces/{ns}", getNamespace).Methods(http.MethodGet)
	r.HandleFunc("/namespaces/{ns}/members", addMember).Methods(http.MethodPost)
	r.HandleFunc("/namespaces/{ns}/mode", setNamespaceMode).Methods(http.MethodPut)
}

// namespaceView is the outward shape of a namespace; modes travel as
// octal strings and the password-free member list is included only for
// callers with manage access.
type namespaceView struct {
	Name    string   `json:"name"`
	Owner   string   `json:"owner"`
	Mode    string   `json:"mode"`
	Members []string `json:"members,omitempty"`
}

func viewNamespace(ns *models.Namespace, withMembers bool) namespaceView {
	v := namespaceView{
		Name:  ns.Name,
		Owner: ns.Owner,
		Mode:  utils.FormatMode(ns.Mode),
	}
	if withMembers {
		for m := range ns.Members {
			v.Members = append(v.Members, m)
		}
	}
	return v
}

// listNamespaces returns every namespace the caller can read.
func listNamespaces(w http.ResponseWriter, r *http.Request) {
	u := userOf(r)
	all, err := store.ListNamespaces()
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	out := make([]namespaceView, 0, len(all))
	for i := range all {
		ns := &all[i]
		if !access.Evaluate(ns, u, access.Read) {
			continue
		}
		out = append(out, viewNamespace(ns, access.Evaluate(ns, u, access.Manage)))
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{"namespaces": out})
}

// createNamespace creates a namespace owned by the caller. The default
// mode applies unless an octal "mode" is supplied.
func createNamespace(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Name  string `json:"name"`
		Mode  string `json:"mode"`
		Umask string `json:"umask"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		utils.JSONError(w, http.StatusBadRequest, "namespace name is required")
		return
	}
	mode := models.NamespaceDefaultMode
	if body.Mode != "" {
		m, err := access.ParseMode(body.Mode)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		mode = m
	}
	umask := models.NamespaceDefaultUmask
	if body.Umask != "" {
		m, err := access.ParseMode(body.Umask)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		umask = m
	}
	ns, err := store.CreateNamespace(body.Name, u.Name, mode, umask)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	// the owner joins their own namespace on creation
	_, ns, err = store.JoinNamespace(u.Name, ns.Name)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	logger.Info("namespace_created", "namespace", ns.Name, "owner", u.Name)
	_ = utils.JSONWrite(w, http.StatusCreated, viewNamespace(ns, true))
}

func getNamespace(w http.ResponseWriter, r *http.Request) {
	u := userOf(r)
	ns, ok := namespaceOr404(w, mux.Vars(r)["ns"])
	if !ok {
		return
	}
	if !access.Evaluate(ns, u, access.Read) {
		forbid(w)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, viewNamespace(ns, access.Evaluate(ns, u, access.Manage)))
}

// addMember joins the named user to the namespace. Requires manage access;
// both records are updated in one transaction.
func addMember(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	ns, ok := namespaceOr404(w, mux.Vars(r)["ns"])
	if !ok {
		return
	}
	if !access.Evaluate(ns, u, access.Manage) {
		forbid(w)
		return
	}
	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if _, ok, err := store.GetUser(body.Username); err != nil {
		utils.WriteError(w, err)
		return
	} else if !ok {
		utils.JSONError(w, http.StatusNotFound, "user not found")
		return
	}
	// the join re-reads both records, so this request's view of the
	// namespace cannot erase members added since it was loaded
	_, ns, err := store.JoinNamespace(body.Username, ns.Name)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	logger.Info("namespace_member_added", "namespace", ns.Name, "user", body.Username, "by", u.Name)
	_ = utils.JSONWrite(w, http.StatusOK, viewNamespace(ns, true))
}

// setNamespaceMode changes the namespace mode bits from an octal string.
func setNamespaceMode(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	ns, ok := namespaceOr404(w, mux.Vars(r)["ns"])
	if !ok {
		return
	}
	if !access.Evaluate(ns, u, access.Manage) {
		forbid(w)
		return
	}
	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	mode, err := access.ParseMode(body.Mode)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	ns.Mode = mode
	if err := store.PutNamespace(ns); err != nil {
		utils.WriteError(w, err)
		return
	}
	logger.Info("namespace_mode_changed", "namespace", ns.Name, "mode", body.Mode, "by", u.Name)
	_ = utils.JSONWrite(w, http.StatusOK, viewNamespace(ns, true))
}
