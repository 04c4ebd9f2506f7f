package trace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "iedriver"

// Span attribute keys.
const (
	AttrSessionID  = attribute.Key("iedriver.session.id")
	AttrCommand    = attribute.Key("iedriver.command")
	AttrStatus     = attribute.Key("iedriver.status")
	AttrDocumentID = attribute.Key("iedriver.document.id")
)

// Tracer starts driver spans carrying a fixed set of metadata attributes.
type Tracer struct {
	trace.Tracer

	metadata []attribute.KeyValue
}

// NewTracer returns a tracer from tp. Every span it starts carries metadata.
func NewTracer(tp trace.TracerProvider, metadata map[string]string, options ...trace.TracerOption) *Tracer {
	meta := make([]attribute.KeyValue, 0, len(metadata))
	for k, v := range metadata {
		meta = append(meta, attribute.String(k, v))
	}
	return &Tracer{
		Tracer:   tp.Tracer(tracerName, options...),
		metadata: meta,
	}
}

// NewNoopTracer returns a tracer that records nothing.
func NewNoopTracer() *Tracer {
	return NewTracer(noop.NewTracerProvider(), nil)
}

// Start overrides the embedded tracer to add the metadata attributes.
func (t *Tracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append(opts, trace.WithAttributes(t.metadata...))
	return t.Tracer.Start(ctx, spanName, opts...)
}

// TraceCommand starts the span of one wire command in session sid.
func (t *Tracer) TraceCommand(ctx context.Context, sid, command string) (context.Context, trace.Span) {
	return t.Start(ctx, "command."+command, trace.WithAttributes(
		AttrSessionID.String(sid),
		AttrCommand.String(command),
	))
}

// StartChild starts a span under the span in ctx, using the provider that
// created it. Without a span in ctx the returned span records nothing.
func StartChild(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	return parent.TracerProvider().Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// EndWithError records err on span, if any, and ends it.
func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
