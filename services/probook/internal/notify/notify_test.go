package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ramo2594/probook/libs/kafkax"
	"github.com/ramo2594/probook/services/probook/internal/model"
	"github.com/ramo2594/probook/services/probook/internal/storage"
	"github.com/segmentio/kafka-go"
)

type sentMail struct{ to, subject, body string }

type fakeSender struct {
	sent   []sentMail
	failTo string
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if to == f.failTo {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

type memoryRecorder struct{ rows []storage.Notification }

func (m *memoryRecorder) Insert(_ context.Context, n storage.Notification) error {
	m.rows = append(m.rows, n)
	return nil
}

func fixture(t *testing.T) (model.Professional, model.Booking) {
	t.Helper()
	d, _ := model.ParseDate("2026-07-01")
	tod, _ := model.ParseTimeOfDay("10:30")
	return model.Professional{ID: 2, BusinessName: "Salon Uno", OwnerEmail: "owner@salon.test"},
		model.Booking{ID: 9, ProfessionalID: 2, ClientName: "Jane", ClientEmail: "jane@x.test", Service: "Haircut", Date: d, Time: tod}
}

func logger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestMessages(t *testing.T) {
	p, b := fixture(t)
	d := DetailsOf(p, b)

	pro := ProfessionalMessage(d)
	if pro.To != "owner@salon.test" || pro.Subject != "New booking for Salon Uno" {
		t.Fatalf("unexpected professional message %+v", pro)
	}
	for _, want := range []string{"Jane (jane@x.test)", "Haircut", "2026-07-01 at 10:30"} {
		if !strings.Contains(pro.Body, want) {
			t.Fatalf("professional body missing %q:\n%s", want, pro.Body)
		}
	}

	client := ClientMessage(d)
	if client.To != "jane@x.test" || client.Subject != "Booking confirmation from Salon Uno" {
		t.Fatalf("unexpected client message %+v", client)
	}
	if !strings.HasPrefix(client.Body, "Hi Jane,") || !strings.Contains(client.Body, "Professional: Salon Uno") {
		t.Fatalf("unexpected client body:\n%s", client.Body)
	}
}

func TestBookingCreatedSendsBoth(t *testing.T) {
	p, b := fixture(t)
	sender := &fakeSender{}
	rec := &memoryRecorder{}
	NewMailNotifier(sender, logger(), rec).BookingCreated(context.Background(), p, b)

	if len(sender.sent) != 2 || sender.sent[0].to != "owner@salon.test" || sender.sent[1].to != "jane@x.test" {
		t.Fatalf("unexpected sends %+v", sender.sent)
	}
	if len(rec.rows) != 2 || rec.rows[0].Status != storage.NotificationSent {
		t.Fatalf("unexpected records %+v", rec.rows)
	}
}

func TestFailuresAreSwallowed(t *testing.T) {
	p, b := fixture(t)
	p.OwnerEmail = ""
	sender := &fakeSender{failTo: "jane@x.test"}
	rec := &memoryRecorder{}
	NewMailNotifier(sender, logger(), rec).BookingCreated(context.Background(), p, b)

	if len(sender.sent) != 0 {
		t.Fatalf("expected nothing delivered, got %+v", sender.sent)
	}
	if len(rec.rows) != 2 || rec.rows[0].Status != storage.NotificationSkipped || rec.rows[1].Status != storage.NotificationFailed {
		t.Fatalf("unexpected records %+v", rec.rows)
	}
}

func TestHandleMessage(t *testing.T) {
	p, b := fixture(t)
	evt, err := BookingCreatedEvent(p, b)
	if err != nil {
		t.Fatalf("BookingCreatedEvent failed: %v", err)
	}
	if evt.AggregateID != "9" || evt.EventType != EventBookingCreated {
		t.Fatalf("unexpected event %+v", evt)
	}
	var payload Details
	if err := json.Unmarshal(evt.Payload, &payload); err != nil || payload.Time != "10:30" {
		t.Fatalf("unexpected payload %s (err=%v)", evt.Payload, err)
	}

	sender := &fakeSender{}
	rec := &memoryRecorder{}
	n := NewMailNotifier(sender, logger(), rec)
	msg := kafka.Message{
		Topic:   EventBookingCreated,
		Value:   evt.Payload,
		Headers: kafkax.EventMeta{EventID: evt.EventID, EventType: evt.EventType}.Headers(),
	}
	if err := n.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if len(sender.sent) != 2 || rec.rows[0].EventID != evt.EventID {
		t.Fatalf("unexpected delivery sends=%+v records=%+v", sender.sent, rec.rows)
	}

	bad := kafka.Message{Topic: EventBookingCreated, Value: []byte("{not json")}
	if err := n.HandleMessage(context.Background(), bad); err != nil {
		t.Fatalf("malformed payload must be dropped, got %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatal("malformed payload must not send mail")
	}
}
