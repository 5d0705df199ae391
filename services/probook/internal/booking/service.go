package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ramo2594/probook/services/probook/internal/model"
	"github.com/ramo2594/probook/services/probook/internal/outbox"
	"github.com/ramo2594/probook/services/probook/internal/storage"
)

type ProfessionalStore interface {
	Get(ctx context.Context, id int64) (model.Professional, error)
	GetByUser(ctx context.Context, userID int64) (model.Professional, error)
	First(ctx context.Context) (model.Professional, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *model.Booking, emit storage.EventFunc) error
	Get(ctx context.Context, id int64) (model.Booking, error)
	ListChronological(ctx context.Context, professionalID int64) ([]model.Booking, error)
	ListNewestFirst(ctx context.Context, professionalID int64) ([]model.Booking, error)
}

// Notifier delivers the booking e-mails synchronously after a booking is stored.
type Notifier interface {
	BookingCreated(ctx context.Context, p model.Professional, b model.Booking)
}

// EventBuilder turns a stored booking into the outbox event consumed by the notifier process.
type EventBuilder func(p model.Professional, b model.Booking) (*outbox.Event, error)

type Config struct {
	Location *time.Location
	Now      func() time.Time
	// Exactly one of Notifier or Events is normally set: inline delivery or outbox delivery.
	Notifier Notifier
	Events   EventBuilder
}

type Service struct {
	professionals ProfessionalStore
	bookings      BookingStore
	logger        *slog.Logger
	loc           *time.Location
	now           func() time.Time
	notifier      Notifier
	events        EventBuilder
}

func NewService(professionals ProfessionalStore, bookings BookingStore, logger *slog.Logger, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		professionals: professionals,
		bookings:      bookings,
		logger:        logger,
		loc:           cfg.Location,
		now:           cfg.Now,
		notifier:      cfg.Notifier,
		events:        cfg.Events,
	}
}

// Now returns the current time in the business time zone.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// CreateBooking stores b for the professional and dispatches the booking e-mails.
// Delivery problems never fail the call.
func (s *Service) CreateBooking(ctx context.Context, professionalID int64, b model.Booking) (model.Booking, error) {
	p, err := s.professionals.Get(ctx, professionalID)
	if err != nil {
		return model.Booking{}, err
	}
	b.ID = 0
	b.ProfessionalID = p.ID

	var emit storage.EventFunc
	if s.events != nil {
		emit = func(stored model.Booking) (*outbox.Event, error) {
			return s.events(p, stored)
		}
	}
	if err := s.bookings.Create(ctx, &b, emit); err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	s.logger.Info("booking created",
		"booking_id", b.ID,
		"professional_id", p.ID,
		"date", model.FormatDate(b.Date),
		"time", b.Time.String(),
	)

	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, p, b)
	}
	return b, nil
}

type Dashboard struct {
	Professional model.Professional
	Summary
}

func (s *Service) Dashboard(ctx context.Context, professionalID int64) (Dashboard, error) {
	p, err := s.professionals.Get(ctx, professionalID)
	if err != nil {
		return Dashboard{}, err
	}
	bookings, err := s.bookings.ListChronological(ctx, p.ID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list bookings: %w", err)
	}
	return Dashboard{Professional: p, Summary: Summarize(bookings, s.Now())}, nil
}

// History returns every booking of the professional, newest first.
func (s *Service) History(ctx context.Context, professionalID int64) ([]model.Booking, error) {
	bookings, err := s.bookings.ListNewestFirst(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// Booking returns a booking together with the professional it belongs to.
func (s *Service) Booking(ctx context.Context, id int64) (model.Booking, model.Professional, error) {
	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		return model.Booking{}, model.Professional{}, err
	}
	p, err := s.professionals.Get(ctx, b.ProfessionalID)
	if err != nil {
		return model.Booking{}, model.Professional{}, err
	}
	return b, p, nil
}

func (s *Service) Professional(ctx context.Context, id int64) (model.Professional, error) {
	return s.professionals.Get(ctx, id)
}

func (s *Service) ProfessionalForUser(ctx context.Context, userID int64) (model.Professional, error) {
	return s.professionals.GetByUser(ctx, userID)
}

// FirstProfessional returns the professional featured on the home page, or
// ok=false when none exists.
func (s *Service) FirstProfessional(ctx context.Context) (model.Professional, bool, error) {
	p, err := s.professionals.First(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return model.Professional{}, false, nil
	}
	if err != nil {
		return model.Professional{}, false, err
	}
	return p, true, nil
}
