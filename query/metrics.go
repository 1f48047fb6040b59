package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "query",
			Name:      "cache_hits_total",
			Help:      "Reads served from the entity store without a fetch.",
		},
	)

	missesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "query",
			Name:      "cache_misses_total",
			Help:      "Reads that required a network fetch.",
		},
	)

	dedupedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "query",
			Name:      "fetches_deduped_total",
			Help:      "Fetches that piggybacked on an identical in-flight request.",
		},
	)

	errorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "query",
			Name:      "fetch_errors_total",
			Help:      "Fetches that resolved with an error.",
		},
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "query",
			Name:      "mutations_total",
			Help:      "Successful mutations, by kind.",
		},
		[]string{"kind"},
	)

	resetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "query",
			Name:      "resets_total",
			Help:      "Cache resets (logout / account switch).",
		},
	)
)
