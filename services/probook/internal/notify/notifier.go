package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ramo2594/probook/libs/email"
	"github.com/ramo2594/probook/libs/kafkax"
	"github.com/ramo2594/probook/services/probook/internal/model"
	"github.com/ramo2594/probook/services/probook/internal/storage"
	"github.com/segmentio/kafka-go"
)

// Recorder keeps a log of delivery attempts.
type Recorder interface {
	Insert(ctx context.Context, n storage.Notification) error
}

// MailNotifier sends the booking e-mails. Delivery is best effort: failures are
// logged and never returned to the caller.
type MailNotifier struct {
	sender   email.Sender
	logger   *slog.Logger
	recorder Recorder
}

// NewMailNotifier returns a notifier; recorder may be nil.
func NewMailNotifier(sender email.Sender, logger *slog.Logger, recorder Recorder) *MailNotifier {
	return &MailNotifier{sender: sender, logger: logger, recorder: recorder}
}

func (n *MailNotifier) BookingCreated(ctx context.Context, p model.Professional, b model.Booking) {
	n.Deliver(ctx, DetailsOf(p, b), "")
}

// Deliver sends the professional notification and the client confirmation.
func (n *MailNotifier) Deliver(ctx context.Context, d Details, eventID string) {
	for _, msg := range []Message{ProfessionalMessage(d), ClientMessage(d)} {
		n.send(ctx, d.BookingID, eventID, msg)
	}
}

func (n *MailNotifier) send(ctx context.Context, bookingID int64, eventID string, msg Message) {
	rec := storage.Notification{
		BookingID: bookingID,
		EventID:   eventID,
		Kind:      msg.Kind,
		Recipient: msg.To,
		Subject:   msg.Subject,
	}
	switch {
	case msg.To == "":
		rec.Status = storage.NotificationSkipped
		rec.Error = "no recipient address"
		n.logger.Info("booking email skipped", "booking_id", bookingID, "kind", msg.Kind, "reason", rec.Error)
	default:
		if err := n.sender.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
			rec.Status = storage.NotificationFailed
			rec.Error = err.Error()
			n.logger.Warn("booking email failed", "booking_id", bookingID, "kind", msg.Kind, "recipient", msg.To, "err", err)
		} else {
			rec.Status = storage.NotificationSent
		}
	}
	if n.recorder == nil {
		return
	}
	if err := n.recorder.Insert(ctx, rec); err != nil {
		n.logger.Error("record notification failed", "booking_id", bookingID, "err", err)
	}
}

// HandleMessage is the consumer handler for booking-created events. Malformed
// payloads are logged and dropped.
func (n *MailNotifier) HandleMessage(ctx context.Context, msg kafka.Message) error {
	meta := kafkax.ExtractEventMeta(msg)
	if meta.EventType != EventBookingCreated {
		n.logger.Info("ignoring event", "event_type", meta.EventType, "event_id", meta.EventID)
		return nil
	}
	var d Details
	if err := json.Unmarshal(msg.Value, &d); err != nil {
		n.logger.Error("invalid booking payload", "err", err, "event_id", meta.EventID)
		return nil
	}
	if d.BookingID == 0 || d.BusinessName == "" {
		n.logger.Error("incomplete booking payload", "event_id", meta.EventID, "payload", fmt.Sprintf("%+v", d))
		return nil
	}
	n.Deliver(ctx, d, meta.EventID)
	return nil
}
