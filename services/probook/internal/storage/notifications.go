package storage

import (
	"context"

	"github.com/ramo2594/probook/libs/db"
)

const (
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)

// Notification is one delivery attempt recorded by the notifier.
type Notification struct {
	BookingID int64
	EventID   string
	Kind      string
	Channel   string
	Recipient string
	Subject   string
	Status    string
	Error     string
}

type NotificationRepository struct {
	pool *db.Pool
}

func NewNotificationRepository(pool *db.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Insert(ctx context.Context, n Notification) error {
	if n.Channel == "" {
		n.Channel = "email"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (booking_id, event_id, kind, channel, recipient, subject, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.BookingID, n.EventID, n.Kind, n.Channel, n.Recipient, n.Subject, n.Status, n.Error)
	return err
}
