package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"wikid/pkg/access"
	"wikid/pkg/logger"
	"wikid/pkg/metrics"
	"wikid/pkg/models"
	"wikid/pkg/search"
	"wikid/pkg/store"
	"wikid/pkg/utils"
)

// RegisterPages registers the page routes. The search index is updated
// synchronously on every successful write so results never lag the store.
func RegisterPages(r *mux.Router, idx *search.Index) {
	h := &pageHandlers{idx: idx}
	r.HandleFunc("/namespaces/{ns}/pages", h.list).Methods(http.MethodGet)
	r.HandleFunc("/namespaces/{ns}/pages", h.create).Methods(http.MethodPost)
	r.HandleFunc("/namespaces/{ns}/pages/{slug}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/namespaces/{ns}/pages/{slug}", h.edit).Methods(http.MethodPut)
	r.HandleFunc("/namespaces/{ns}/pages/{slug}/history", h.history).Methods(http.MethodGet)
}

type pageHandlers struct {
	idx *search.Index
}

type pageView struct {
	Namespace string `json:"namespace"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Mode      string `json:"mode"`
	Owner     string `json:"owner,omitempty"`
	Content   string `json:"content,omitempty"`
}

func viewPage(namespace string, p *models.Page, withContent bool) pageView {
	v := pageView{
		Namespace: namespace,
		Slug:      p.Slug,
		Title:     p.Title,
		Mode:      utils.FormatMode(p.Mode),
		Owner:     p.Owner,
	}
	if withContent {
		v.Content = p.Content
	}
	return v
}

// list returns the pages of a namespace the caller can see. Reading the
// listing needs read on the namespace; individual page modes gate content.
func (h *pageHandlers) list(w http.ResponseWriter, r *http.Request) {
	u := userOf(r)
	ns, ok := namespaceOr404(w, mux.Vars(r)["ns"])
	if !ok {
		return
	}
	if !access.Evaluate(ns, u, access.Read) {
		forbid(w)
		return
	}
	pages, err := store.ListPages(ns.Name)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	out := make([]pageView, 0, len(pages))
	for i := range pages {
		p := &pages[i]
		if !access.Evaluate(p.In(ns.Name), u, access.Read) {
			continue
		}
		out = append(out, viewPage(ns.Name, p, false))
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"namespace": ns.Name,
		"pages":     out,
	})
}

// create adds a page to a namespace. Requires write on the namespace; the
// page mode derives from the namespace umask. The initial content is not a
// history entry, the first edit diffs against it.
func (h *pageHandlers) create(w http.ResponseWriter, r *http.Request) {
	u := userOf(r)
	ns, ok := namespaceOr404(w, mux.Vars(r)["ns"])
	if !ok {
		return
	}
	if !access.Evaluate(ns, u, access.Write) {
		forbid(w)
		return
	}
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	owner := ""
	if u != nil {
		owner = u.Name
	}
	p, err := store.CreatePage(ns, body.Title, owner, body.Content)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.idx.Update(ns.Name, p); err != nil {
		logger.Error("search_update_failed", "namespace", ns.Name, "slug", p.Slug, "error", err)
	}
	metrics.PagesCreated.Inc()
	logger.Info("page_created", "namespace", ns.Name, "slug", p.Slug, "owner", owner)
	_ = utils.JSONWrite(w, http.StatusCreated, viewPage(ns.Name, p, true))
}

func (h *pageHandlers) get(w http.ResponseWriter, r *http.Request) {
	u := userOf(r)
	vars := mux.Vars(r)
	ns, ok := namespaceOr404(w, vars["ns"])
	if !ok {
		return
	}
	// reaching a page requires read on the namespace, like traversing a
	// directory; the page's own bits are checked on top
	if !access.Evaluate(ns, u, access.Read) {
		forbid(w)
		return
	}
	p, ok := pageOr404(w, ns.Name, vars["slug"])
	if !ok {
		return
	}
	if !access.Evaluate(p.In(ns.Name), u, access.Read) {
		forbid(w)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, viewPage(ns.Name, p, true))
}

// edit replaces the page content, recording the delta in the history
// keyspace. Anonymous editors are allowed where the mode permits and are
// recorded as such.
func (h *pageHandlers) edit(w http.ResponseWriter, r *http.Request) {
	u := userOf(r)
	vars := mux.Vars(r)
	ns, ok := namespaceOr404(w, vars["ns"])
	if !ok {
		return
	}
	if !access.Evaluate(ns, u, access.Read) {
		forbid(w)
		return
	}
	p, ok := pageOr404(w, ns.Name, vars["slug"])
	if !ok {
		return
	}
	if !access.Evaluate(p.In(ns.Name), u, access.Write) {
		forbid(w)
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	author := ""
	if u != nil {
		author = u.Name
	}
	version, err := store.CommitEdit(ns.Name, p, author, body.Content)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.idx.Update(ns.Name, p); err != nil {
		logger.Error("search_update_failed", "namespace", ns.Name, "slug", p.Slug, "error", err)
	}
	metrics.Edits.Inc()
	logger.Info("page_edited", "namespace", ns.Name, "slug", p.Slug, "version", version)
	v := viewPage(ns.Name, p, true)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"page":    v,
		"version": version,
	})
}

type historyView struct {
	Version uint64 `json:"version"`
	Author  string `json:"author"`
	Delta   string `json:"delta"`
}

// history returns the recorded deltas newest first.
func (h *pageHandlers) history(w http.ResponseWriter, r *http.Request) {
	u := userOf(r)
	vars := mux.Vars(r)
	ns, ok := namespaceOr404(w, vars["ns"])
	if !ok {
		return
	}
	if !access.Evaluate(ns, u, access.Read) {
		forbid(w)
		return
	}
	p, ok := pageOr404(w, ns.Name, vars["slug"])
	if !ok {
		return
	}
	if !access.Evaluate(p.In(ns.Name), u, access.Read) {
		forbid(w)
		return
	}
	entries, err := store.ListHistory(ns.Name, p.Slug)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	out := make([]historyView, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyView{
			Version: e.Version,
			Author:  e.Record.Author,
			Delta:   e.Record.Delta,
		})
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"namespace": ns.Name,
		"slug":      p.Slug,
		"history":   out,
	})
}
