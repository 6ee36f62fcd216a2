package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wikid/pkg/api/handlers"
	"wikid/pkg/auth"
	"wikid/pkg/search"
)

// New builds the full HTTP handler: the versioned JSON API wrapped in the
// identity middleware and the security gateway, plus the health and
// metrics endpoints which bypass authentication.
func New(idx *search.Index, sec auth.SecConfig) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	handlers.RegisterSessions(v1)
	handlers.RegisterNamespaces(v1)
	handlers.RegisterPages(v1, idx)
	handlers.RegisterSearch(v1, idx)
	handlers.RegisterAdmin(v1, idx)

	return auth.Gateway(sec)(auth.WithUser(r))
}
