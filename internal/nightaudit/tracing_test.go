package nightaudit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// The package tracer delegates to the first global provider only, so every
// span assertion in this package lives in this one test.
func TestRun_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	f := setupAudit(t, nil)
	seedStays(t, f)

	report, err := f.audit.Run(context.Background(), businessDay)
	require.NoError(t, err)

	spans := map[string]sdktrace.ReadOnlySpan{}
	for _, span := range recorder.Ended() {
		spans[span.Name()] = span
	}
	require.Contains(t, spans, "nightaudit.Run")
	require.Contains(t, spans, "nightaudit.postRoomCharges")
	require.Contains(t, spans, "nightaudit.generateInvoices")

	root := spans["nightaudit.Run"]
	assert.Equal(t, root.SpanContext().TraceID(), spans["nightaudit.postRoomCharges"].SpanContext().TraceID())
	assert.Equal(t, root.SpanContext().SpanID(), spans["nightaudit.generateInvoices"].Parent().SpanID())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range root.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, report.RunID, attrs["run_id"].AsString())
	assert.Equal(t, "2026-03-10", attrs["business_date"].AsString())
	assert.Equal(t, int64(report.RoomChargesPosted), attrs["room_charges_posted"].AsInt64())
	assert.Equal(t, int64(0), attrs["failure_count"].AsInt64())
}
