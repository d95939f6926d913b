package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "solrkit"

// Request outcomes recorded by Metrics.
const (
	OutcomeSuccess        = "success"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
	OutcomeInvalid        = "invalid"
)

// Metrics holds the Prometheus collectors of the adapters. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	transportErrors *prometheus.CounterVec
}

// NewMetrics registers the adapter collectors on reg. A nil reg uses the
// default registerer. Calling it again with the same registerer returns
// metrics backed by the collectors already registered there.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		requests: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "adapter",
			Name:      "requests_total",
			Help:      "Total requests executed by the adapter",
		}, []string{"method", "outcome"})),
		duration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "adapter",
			Name:      "request_duration_seconds",
			Help:      "Duration of adapter requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"})),
		transportErrors: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "adapter",
			Name:      "transport_errors_total",
			Help:      "Transport failures by transport error code",
		}, []string{"code"})),
	}
}

// register adds c to reg, or returns the equivalent collector registered
// earlier. Any other registration error panics, as with promauto.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveTransportError counts a transport failure by its code name.
func (m *Metrics) ObserveTransportError(code string) {
	if m == nil {
		return
	}
	m.transportErrors.WithLabelValues(code).Inc()
}
