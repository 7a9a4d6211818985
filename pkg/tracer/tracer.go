package tracer

import (
	"context"
	"sync"

	"github.com/astro-web3/booking-api/pkg/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	defaultTracer trace.Tracer
	initOnce      sync.Once
	errInit       error
)

func InitTracer(cfg otel.Config) error {
	initOnce.Do(func() {
		t, err := otel.InitTracer(cfg)
		if err != nil {
			errInit = err
			return
		}

		defaultTracer = t
	})

	return errInit
}

func Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	t := defaultTracer
	if t == nil {
		t = noop.NewTracerProvider().Tracer("noop")
	}
	return t.Start(ctx, spanName, opts...)
}

// Fail records err on span and marks it failed.
func Fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
