// Package observability wires OpenTelemetry tracing and Prometheus metrics
// into the solrkit adapters.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("solrctl"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
//	a, err := httpadapter.New(cfg, httpadapter.WithMetrics(metrics))
package observability
