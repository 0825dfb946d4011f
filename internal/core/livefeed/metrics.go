package livefeed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chirp_livefeed_subscribers",
		Help: "Number of connected live feed subscribers",
	})

	deliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chirp_livefeed_delivered_total",
		Help: "Posts delivered to live feed subscribers",
	})

	// droppedTotal counts posts skipped because a subscriber's queue was full
	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chirp_livefeed_dropped_total",
		Help: "Posts dropped for slow live feed subscribers",
	})
)
