package diskvec

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operational metrics, labeled by index name. promauto registers them with
// the default registry on package init; hosts scraping prometheus get them
// for free, everyone else pays one counter increment per operation.
var (
	insertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diskvec_inserts_total",
			Help: "Total number of vectors inserted",
		},
		[]string{"index"},
	)

	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diskvec_searches_total",
			Help: "Total number of k-NN searches executed",
		},
		[]string{"index"},
	)

	partialBacklinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diskvec_partial_backlinks_total",
			Help: "Inserts that persisted with incomplete reverse edges",
		},
		[]string{"index"},
	)

	vectorsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskvec_vectors_total",
			Help: "Number of vectors currently indexed",
		},
		[]string{"index"},
	)
)
