package room

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "room_publishes_total",
		Help: "Total number of full-document overwrites accepted by the hub.",
	})

	subscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "room_subscribers",
		Help: "Number of live room subscribers.",
	})

	droppedUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "room_dropped_updates_total",
		Help: "Fan-out frames skipped because a subscriber was too slow. Harmless: each frame is a full overwrite.",
	})
)
