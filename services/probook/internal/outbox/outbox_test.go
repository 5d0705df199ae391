package outbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/ramo2594/probook/libs/kafkax"
	otelx "github.com/ramo2594/probook/libs/otel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent("booking", "12", "probook.booking.created.v1", map[string]any{"booking_id": 12})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if evt.EventID == "" || evt.AggregateID != "12" {
		t.Fatalf("unexpected event %+v", evt)
	}
	var payload map[string]any
	if err := json.Unmarshal(evt.Payload, &payload); err != nil || payload["booking_id"] != float64(12) {
		t.Fatalf("unexpected payload %s (err=%v)", evt.Payload, err)
	}

	if _, err := NewEvent("booking", "1", "x", func() {}); err == nil {
		t.Fatal("expected marshal error for func payload")
	}
}

func TestPublisherMessage(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewPublisher(nil, NewRepository(), logger, PublisherConfig{
		Topics: map[string]string{"probook.booking.created.v1": "bookings"},
	})
	if p.Enabled() {
		t.Fatal("publisher without brokers must be disabled")
	}

	msg := p.message(context.Background(), Record{
		EventID:     "e-1",
		AggregateID: "42",
		EventType:   "probook.booking.created.v1",
		Payload:     []byte(`{}`),
	})
	if msg.Topic != "bookings" || string(msg.Key) != "42" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if kafkax.HeaderValue(msg.Headers, kafkax.HeaderEventID) != "e-1" ||
		kafkax.HeaderValue(msg.Headers, kafkax.HeaderEventType) != "probook.booking.created.v1" {
		t.Fatalf("unexpected headers %+v", msg.Headers)
	}

	traced := p.message(context.Background(), Record{
		EventType: "probook.booking.created.v1",
		Trace:     otelx.TraceContext{Traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"},
	})
	if got := kafkax.HeaderValue(traced.Headers, "traceparent"); got != "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01" {
		t.Fatalf("expected stored trace context on the message, got %q", got)
	}

	other := p.message(context.Background(), Record{EventType: "probook.other.v1"})
	if other.Topic != "probook.other.v1" {
		t.Fatalf("expected topic to default to event type, got %q", other.Topic)
	}
}

func TestRunReturnsWhenDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewPublisher(nil, NewRepository(), logger, PublisherConfig{})
	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()
	<-done
}
