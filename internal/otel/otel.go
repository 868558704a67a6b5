// Package otel wires the cache's eventbus events into OpenTelemetry spans,
// adapted from the teacher's HTTP/gRPC span hooks to the cache domain: a
// span per write transaction, a span per subscriber notification, and a
// span per subscriber registration.
package otel

import (
	"context"
	"sync"

	eventbus "github.com/helfer/atlas/internal/eventbus"
	events "github.com/helfer/atlas/internal/events"
	reqid "github.com/helfer/atlas/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers for the
// cache's write/notify/subscribe events. If endpoint is empty, no telemetry
// is configured and the returned shutdown func is a no-op.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("atlas")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer     trace.Tracer
	writeSpans sync.Map // rid -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.WriteStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "cache.write")
		span.SetAttributes(
			attribute.String("cache.root_key", e.RootKey),
			attribute.Bool("cache.optimistic", e.Optimistic),
		)
		s.writeSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.WriteCommitted) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.writeSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(
			attribute.Int64("cache.tx_id", int64(e.TxID)),
			attribute.Int("cache.touched_subscribers", e.Touched),
			attribute.Int64("cache.duration_ns", e.Duration.Nanoseconds()),
		)
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.SubscriberRegistered) {
		_, span := s.tracer.Start(ctx, "cache.subscribe")
		span.SetAttributes(
			attribute.String("cache.root_key", e.RootKey),
			attribute.Bool("cache.optimistic", e.Optimistic),
		)
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.SubscriberNotified) {
		_, span := s.tracer.Start(ctx, "cache.notify")
		span.SetAttributes(
			attribute.String("cache.root_key", e.RootKey),
			attribute.Int64("cache.tx_id", int64(e.TxID)),
			attribute.Bool("cache.had_error", e.HadError),
		)
		span.End()
	})
}
