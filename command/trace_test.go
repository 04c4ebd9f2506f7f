package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/session"
	"github.com/liuxd6825/iedriver/trace"
)

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestCommandSpans(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	h := newHostedWithOptions(t, session.Options{
		Tracer: trace.NewTracer(tp, map[string]string{"driver": "hosted"}),
	})

	h.find(t, "id", "user")
	resp := h.script(t, `throw new Error("boom");`)
	require.Equal(t, common.JavascriptError, resp.Status)

	spans := recorder.Ended()
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name()
	}
	require.Equal(t, []string{"atom.CRITERIA", "atom.FIND_ELEMENT", "command.test", "script", "command.test"}, names)

	find, failed := spans[2], spans[4]
	for _, child := range spans[:2] {
		assert.Equal(t, find.SpanContext().SpanID(), child.Parent().SpanID())
		assert.Equal(t, find.SpanContext().TraceID(), child.SpanContext().TraceID())
		assert.Equal(t, h.browser.Document().ID(), attrs(child)[trace.AttrDocumentID].AsString())
	}
	a := attrs(find)
	assert.Equal(t, h.sess.ID(), a[trace.AttrSessionID].AsString())
	assert.Equal(t, "test", a[trace.AttrCommand].AsString())
	assert.Equal(t, "hosted", a["driver"].AsString())
	assert.Equal(t, int64(common.Success), a[trace.AttrStatus].AsInt64())
	assert.Equal(t, codes.Unset, find.Status().Code)

	script := spans[3]
	assert.Equal(t, failed.SpanContext().SpanID(), script.Parent().SpanID())
	assert.Equal(t, codes.Error, script.Status().Code)
	assert.Contains(t, script.Status().Description, "boom")
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Equal(t, int64(common.JavascriptError), attrs(failed)[trace.AttrStatus].AsInt64())
}
