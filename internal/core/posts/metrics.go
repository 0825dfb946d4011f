package posts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pageFetchDuration tracks repository latency of paginated feed fetches
	pageFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chirp_feed_page_fetch_duration_seconds",
		Help:    "Feed page fetch duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	// pageFetchErrors counts feed page fetches that failed in the store
	pageFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chirp_feed_page_fetch_errors_total",
		Help: "Total feed page fetches that failed in the store",
	})
)
