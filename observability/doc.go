// Package observability provides OpenTelemetry tracing and metrics for the
// resolution engine.
//
// The engine opens spans through the global tracer (SpanResolve,
// SpanConstruct, SpanInvoke), so nothing is exported until a provider is
// installed:
//
//	metrics, shutdown, err := observability.Setup(ctx, cfg)
//	defer shutdown(ctx)
//
//	session := di.NewSession(di.WithMetrics(metrics))
//
// Tracing only:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "my.operation")
//	defer observability.EndSpan(span, err)
package observability
