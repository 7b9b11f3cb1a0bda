package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	MessagesReceived   *prometheus.CounterVec
	RepliesSent        prometheus.Counter
	SearchesExecuted   prometheus.Counter
	SearchCacheReplays prometheus.Counter
	SearchDuration     prometheus.Histogram
	RateLimited        prometheus.Counter
	ErrorsCount        *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		MessagesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "The total number of inbound messages by handling intent",
		}, []string{"intent"}),
		RepliesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_sent_total",
			Help:      "The total number of replies sent to WhatsApp",
		}),
		SearchesExecuted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_executed_total",
			Help:      "The total number of flight searches sent to the provider",
		}),
		SearchCacheReplays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_replays_total",
			Help:      "The total number of searches answered from cached results",
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time taken by the flight offers provider",
			Buckets:   prometheus.DefBuckets,
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "The total number of messages over the per-user rate",
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
