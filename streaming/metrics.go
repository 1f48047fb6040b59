package streaming

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "streaming",
			Name:      "events_applied_total",
			Help:      "Stream events merged into the caches, by op.",
		},
		[]string{"op"},
	)

	eventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "streaming",
			Name:      "events_dropped_total",
			Help:      "Stream events discarded (malformed or unknown).",
		},
	)

	feedInsertions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "streaming",
			Name:      "feed_insertions_total",
			Help:      "Create events prepended into a bound feed list.",
		},
	)

	channelsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fedicache",
			Subsystem: "streaming",
			Name:      "channels_open",
			Help:      "Currently open streaming channels.",
		},
	)

	reconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fedicache",
			Subsystem: "streaming",
			Name:      "reconnects_total",
			Help:      "Resubscribe attempts after a channel error.",
		},
	)
)
