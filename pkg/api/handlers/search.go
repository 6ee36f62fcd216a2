package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"wikid/pkg/search"
	"wikid/pkg/utils"
)

// RegisterSearch registers the full-text search route.
func RegisterSearch(r *mux.Router, idx *search.Index) {
	r.HandleFunc("/search", func(w http.ResponseWriter, req *http.Request) {
		searchPages(w, req, idx)
	}).Methods(http.MethodGet)
}

// searchPages runs the query over titles and content and returns hits
// restricted to namespaces the caller can read.
func searchPages(w http.ResponseWriter, r *http.Request, idx *search.Index) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		utils.JSONError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	allowed, err := readableNamespaces(userOf(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	hits, err := idx.Query(q, allowed)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"query":   q,
		"results": hits,
	})
}
