package renewal

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "linkly"

// Metrics holds Prometheus metrics for session renewal.
type Metrics struct {
	RenewalsTotal        *prometheus.CounterVec
	RenewalDuration      prometheus.Histogram
	QueuedRequestsTotal  prometheus.Counter
	PendingRequests      prometheus.Gauge
	ReplaysTotal         *prometheus.CounterVec
	SessionInvalidations prometheus.Counter
}

// NewMetrics creates renewal metrics and registers them on reg. A nil reg
// leaves them unregistered. Clients sharing reg share the collectors already
// registered there.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RenewalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "renewals_total",
			Help:      "Total number of session renewal exchanges by result.",
		}, []string{"result"}),
		RenewalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "renewal_duration_seconds",
			Help:      "Duration of session renewal exchanges in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		QueuedRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "queued_requests_total",
			Help:      "Total number of requests that waited on a renewal.",
		}),
		PendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "pending_requests",
			Help:      "Number of requests currently waiting on a renewal.",
		}),
		ReplaysTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "replays_total",
			Help:      "Total number of requests replayed after renewal by result.",
		}, []string{"result"}),
		SessionInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "invalidations_total",
			Help:      "Total number of unrecoverable session failures.",
		}),
	}

	if reg != nil {
		m.RenewalsTotal = register(reg, m.RenewalsTotal)
		m.RenewalDuration = register(reg, m.RenewalDuration)
		m.QueuedRequestsTotal = register(reg, m.QueuedRequestsTotal)
		m.PendingRequests = register(reg, m.PendingRequests)
		m.ReplaysTotal = register(reg, m.ReplaysTotal)
		m.SessionInvalidations = register(reg, m.SessionInvalidations)
	}
	return m
}

// register registers c on reg, returning the collector already registered
// under the same descriptor if there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func resultLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
