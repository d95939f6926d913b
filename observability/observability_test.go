package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("solrctl")

	if cfg.ServiceName != "solrctl" {
		t.Errorf("expected ServiceName solrctl, got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint localhost:4318, got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.Enabled {
		t.Error("expected tracing to be disabled by default")
	}
}

func TestTracerConfig_ApplyDefaults(t *testing.T) {
	cfg := TracerConfig{Enabled: true}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected default endpoint, got %q", cfg.Endpoint)
	}

	off := TracerConfig{}
	off.ApplyDefaults()
	if off.Endpoint != "" {
		t.Errorf("expected disabled config to stay empty, got %q", off.Endpoint)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("rate %v: expected %s, got %s", tt.rate, tt.want, got)
		}
	}
}

func TestStartSpan_EndSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, span := StartSpan(context.Background(), SpanExecute)
	EndSpan(span, errors.New("boom"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != SpanExecute {
		t.Errorf("expected span %s, got %s", SpanExecute, spans[0].Name())
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status().Code)
	}
	if len(spans[0].Events()) != 1 {
		t.Errorf("expected the error to be recorded as an event")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRequest("GET", OutcomeSuccess, 20*time.Millisecond)
	m.ObserveRequest("GET", OutcomeSuccess, 30*time.Millisecond)
	m.ObserveRequest("POST", OutcomeTransportError, time.Second)
	m.ObserveTransportError("could_not_connect")

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", OutcomeSuccess)); got != 2 {
		t.Errorf("expected 2 successful GETs, got %v", got)
	}
	if got := testutil.ToFloat64(m.transportErrors.WithLabelValues("could_not_connect")); got != 1 {
		t.Errorf("expected 1 transport error, got %v", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 2 {
		t.Errorf("expected 2 duration series, got %d", n)
	}
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", OutcomeSuccess, time.Millisecond)
	m.ObserveTransportError("unknown")
}

func TestMetrics_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewMetrics(reg)
	second := NewMetrics(reg)

	first.ObserveRequest("GET", OutcomeSuccess, time.Millisecond)
	second.ObserveRequest("GET", OutcomeSuccess, time.Millisecond)

	if got := testutil.ToFloat64(first.requests.WithLabelValues("GET", OutcomeSuccess)); got != 2 {
		t.Errorf("expected both metrics to share collectors, got %v", got)
	}
}
