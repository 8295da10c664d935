package observability

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// BuildResource exposes buildResource to external tests.
var BuildResource = buildResource

// SampledRoot reports whether the sampler built from cfg keeps a root span.
func SampledRoot(cfg Config) bool {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(newSampler(cfg)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("probe").Start(context.Background(), "root")
	defer span.End()

	return span.SpanContext().IsSampled()
}
