package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// decisionsTotal counts limiter outcomes by result
// (admitted, denied, fail_closed, fail_open)
var decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chirp_ratelimit_decisions_total",
	Help: "Total write rate limit decisions by result",
}, []string{"result"})
