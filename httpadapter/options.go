package httpadapter

import (
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/solrkit/logger"
	"github.com/kbukum/solrkit/observability"
)

// Doer sends an *http.Request. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l.WithComponent("httpadapter")
		}
	}
}

// WithMetrics records request counters and durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithTracer overrides the global solrkit tracer.
func WithTracer(t trace.Tracer) Option {
	return func(a *Adapter) {
		if t != nil {
			a.tracer = t
		}
	}
}

// WithHTTPClient replaces the built client. Connection timeout, proxy, TLS and
// redirect settings are then the caller's responsibility; Timeout still applies.
func WithHTTPClient(d Doer) Option {
	return func(a *Adapter) {
		if d != nil {
			a.client = d
			a.transport = nil
		}
	}
}
