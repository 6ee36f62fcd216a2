// Package metrics exposes prometheus counters for the core wiki
// operations. The /metrics endpoint is wired in main via promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PagesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikid_pages_created_total",
		Help: "Pages created.",
	})
	Edits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikid_edits_total",
		Help: "Page edits committed, including anonymous ones.",
	})
	Searches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikid_searches_total",
		Help: "Search queries served.",
	})
	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikid_auth_failures_total",
		Help: "Requests carrying a credential that failed verification.",
	})
	IndexRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikid_index_rebuilds_total",
		Help: "Full search index rebuilds from the page store.",
	})
)
