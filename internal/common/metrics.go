package common

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// counters
	CounterAPIRequests     *prometheus.CounterVec
	CounterAPIRetries      *prometheus.CounterVec
	CounterSkippedUsers    prometheus.Counter
	CounterRequests        *prometheus.CounterVec
	CounterHandlerPanics   prometheus.Counter
	CounterRateLimited     prometheus.Counter
	GaugeActiveRequests    prometheus.Gauge
	HistAPIRequestDuration *prometheus.HistogramVec
}

func NewTestMetrics() *Metrics {
	return NewMetrics("journal", "test", prometheus.NewRegistry())
}

func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CounterAPIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "api_requests",
			Help:      "The total number of resource API calls by method and outcome",
		}, []string{"method", "outcome"}),
		CounterAPIRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "api_retries",
			Help:      "The total number of retried resource API operations",
		}, []string{"operation"}),
		CounterSkippedUsers: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "aggregation_skipped_users",
			Help:      "Users whose posts were left out of an aggregated feed",
		}),
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterHandlerPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handle_request_panic",
			Help:      "The total number of serve request panics",
		}),
		CounterRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited",
			Help:      "Requests rejected by the rate limiter",
		}),
		GaugeActiveRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		HistAPIRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "api_request_duration_seconds",
			Help:      "Resource API call latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}
