// Package metrics provides application-level Prometheus collectors. They
// register with the default registry and are exported on /metrics by the API
// server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "castgraph"

// Engine counters.
var (
	// SearchTotal counts committed searches by role.
	SearchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_total",
		Help:      "Committed searches by role.",
	}, []string{"role"})

	// SearchOutcomeTotal counts applied search outcomes by status.
	SearchOutcomeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_outcome_total",
		Help:      "Applied search outcomes by status (found, not_found, failed).",
	}, []string{"status"})

	// StaleDropped counts responses discarded because a newer request was issued.
	StaleDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_dropped_total",
		Help:      "Responses dropped by the latest-wins gate, by stream.",
	}, []string{"stream"})

	// SuggestTotal counts suggestion requests actually issued.
	SuggestTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suggest_total",
		Help:      "Suggestion requests issued after debounce and dedup.",
	})

	// GraphTruncated counts graph views that hit the related node cap.
	GraphTruncated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "graph_truncated_total",
		Help:      "Graph views truncated at the related node cap.",
	})
)

// Catalog counters.
var (
	// APIRequests counts API requests by route and status code.
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "API requests by route and status code.",
	}, []string{"route", "code"})

	// EnrichTotal counts enrichment source calls by outcome.
	EnrichTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrich_requests_total",
		Help:      "Enrichment source calls by outcome.",
	}, []string{"outcome"})

	// SeededTotal counts subjects registered by seed runs.
	SeededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seeded_subjects_total",
		Help:      "Subjects registered by seed runs.",
	})
)

// Inc increments a labelled counter by 1.
func Inc(vec *prometheus.CounterVec, labels ...string) {
	vec.WithLabelValues(labels...).Inc()
}
