package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ramo2594/probook/libs/db"
	"github.com/ramo2594/probook/services/probook/internal/model"
	"github.com/ramo2594/probook/services/probook/internal/outbox"
)

// EventFunc builds the outbox event for a freshly inserted booking. A nil event means none.
type EventFunc func(model.Booking) (*outbox.Event, error)

type BookingRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewBookingRepository(pool *db.Pool, outboxRepo *outbox.Repository) *BookingRepository {
	return &BookingRepository{pool: pool, outbox: outboxRepo}
}

// Create inserts b and, when emit returns an event, the matching outbox row in the same transaction.
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking, emit EventFunc) error {
	return r.pool.InTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO bookings
				(professional_id, client_name, client_email, service, booking_date, booking_time, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`, b.ProfessionalID, b.ClientName, b.ClientEmail, b.Service,
			pgtype.Date{Time: b.Date, Valid: true}, timeParam(b.Time), b.Notes).Scan(&b.ID, &b.CreatedAt)
		if err != nil {
			return mapError(err)
		}
		if emit == nil {
			return nil
		}
		evt, err := emit(*b)
		if err != nil {
			return fmt.Errorf("build booking event: %w", err)
		}
		if evt == nil {
			return nil
		}
		if r.outbox == nil {
			return fmt.Errorf("booking event %s: outbox not configured", evt.EventType)
		}
		return r.outbox.Insert(ctx, tx, *evt)
	})
}

const bookingColumns = `id, professional_id, client_name, client_email, service, booking_date, booking_time, notes, created_at`

func (r *BookingRepository) Get(ctx context.Context, id int64) (model.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id))
}

// ListChronological returns every booking of the professional, earliest first.
func (r *BookingRepository) ListChronological(ctx context.Context, professionalID int64) ([]model.Booking, error) {
	return r.list(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE professional_id = $1
		ORDER BY booking_date ASC, booking_time ASC, id ASC
	`, professionalID)
}

// ListNewestFirst returns every booking of the professional, latest first.
func (r *BookingRepository) ListNewestFirst(ctx context.Context, professionalID int64) ([]model.Booking, error) {
	return r.list(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE professional_id = $1
		ORDER BY booking_date DESC, booking_time DESC, id DESC
	`, professionalID)
}

func (r *BookingRepository) list(ctx context.Context, sql string, professionalID int64) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, sql, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bookings, nil
}

func scanBooking(row pgx.Row) (model.Booking, error) {
	var (
		b    model.Booking
		date pgtype.Date
		tod  pgtype.Time
	)
	err := row.Scan(&b.ID, &b.ProfessionalID, &b.ClientName, &b.ClientEmail, &b.Service, &date, &tod, &b.Notes, &b.CreatedAt)
	if err != nil {
		return model.Booking{}, mapError(err)
	}
	b.Date = model.DateOf(date.Time)
	b.Time = model.TimeOfDay(time.Duration(tod.Microseconds) * time.Microsecond)
	return b, nil
}

func timeParam(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}
