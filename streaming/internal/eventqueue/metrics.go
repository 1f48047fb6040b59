package eventqueue

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// queueDepth is only updated in the worker goroutine, guaranteeing a single
// writer and eliminating race/skew concerns.
var (
	appliedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "eventqueue",
			Name:      "applied_total",
			Help:      "Stream events accepted for in-order application.",
		},
		[]string{"shard"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "eventqueue",
			Name:      "queue_full_total",
			Help:      "Enqueue attempts that timed out (per-shard queue full).",
		},
		[]string{"shard"},
	)

	applyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fedicache",
			Subsystem: "eventqueue",
			Name:      "apply_duration_seconds",
			Help:      "Event application latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"shard"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fedicache",
			Subsystem: "eventqueue",
			Name:      "queue_depth",
			Help:      "Current depth of each shard queue.",
		},
		[]string{"shard"},
	)
)

func labelFor(i int) string { return strconv.Itoa(i) }
