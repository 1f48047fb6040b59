package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "store",
			Name:      "imports_total",
			Help:      "Entities upserted into the store, by type.",
		},
		[]string{"type"},
	)

	tombstonesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "store",
			Name:      "tombstones_total",
			Help:      "Statuses marked deleted in place.",
		},
	)

	resetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "store",
			Name:      "resets_total",
			Help:      "Whole-store resets (logout / account switch).",
		},
	)

	rollbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "store",
			Name:      "optimistic_rollbacks_total",
			Help:      "Optimistic mutations rolled back after a failed request.",
		},
	)
)
