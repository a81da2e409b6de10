package services

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/votehq/turnout-backend/internal/domain"
)

// recordSpans swaps in an in-memory tracer provider for the duration of the
// test and returns the recorder capturing every ended span.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	prev := otel.GetTracerProvider()
	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func spanNames(rec *tracetest.SpanRecorder) map[string]bool {
	names := map[string]bool{}
	for _, s := range rec.Ended() {
		names[s.Name()] = true
	}
	return names
}

func TestServices_EmitSpans(t *testing.T) {
	rec := recordSpans(t)
	db := newTestDB(t)
	ctx := context.Background()

	events := NewEventService(db)
	action, err := events.StartAction(ctx)
	if err != nil {
		t.Fatalf("StartAction: %v", err)
	}
	if _, err := events.Track(ctx, action.ID, domain.EventDownload); err != nil {
		t.Fatalf("Track: %v", err)
	}

	status := NewStatusService(db)
	if _, err := status.Status(ctx, action.ID); err != nil {
		t.Fatalf("Status: %v", err)
	}

	got := spanNames(rec)
	for _, want := range []string{"StartAction", "Track", "Status"} {
		if !got[want] {
			t.Errorf("missing span %q, recorded %v", want, got)
		}
	}
}

func TestTrackSpan_CarriesActionAttributes(t *testing.T) {
	rec := recordSpans(t)
	db := newTestDB(t)
	actionID := seedAction(t, db, domain.EventStart).ID

	if _, err := NewEventService(db).Track(context.Background(), actionID, domain.EventFinishSelfPrint); err != nil {
		t.Fatalf("Track: %v", err)
	}

	var found bool
	for _, s := range rec.Ended() {
		if s.Name() != "Track" {
			continue
		}
		found = true
		attrs := map[string]string{}
		for _, kv := range s.Attributes() {
			attrs[string(kv.Key)] = kv.Value.AsString()
		}
		if attrs["action.id"] != actionID {
			t.Errorf("action.id = %q, want %q", attrs["action.id"], actionID)
		}
		if attrs["event.type"] != string(domain.EventFinishSelfPrint) {
			t.Errorf("event.type = %q", attrs["event.type"])
		}
	}
	if !found {
		t.Fatal("no Track span recorded")
	}
}
