// Package memory is an in-process implementation of the probook stores, used by
// tests and local experiments that run without PostgreSQL.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/ramo2594/probook/services/probook/internal/model"
	"github.com/ramo2594/probook/services/probook/internal/outbox"
	"github.com/ramo2594/probook/services/probook/internal/storage"
)

type Store struct {
	mu            sync.Mutex
	users         []model.User
	professionals []model.Professional
	bookings      []model.Booking
	events        []outbox.Event
	nextID        int64
	// FailCreate makes the next booking insert fail with this error.
	FailCreate error
}

func New() *Store {
	return &Store{}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddProfessional seeds a professional user and profile and returns both.
func (s *Store) AddProfessional(username, email, business string) (model.User, model.Professional) {
	u := model.User{Username: username, Email: email, IsProfessional: true}
	p := model.Professional{BusinessName: business}
	_ = s.CreateProfessional(context.Background(), &u, &p)
	return u, p
}

// AddUser seeds a user without a professional profile.
func (s *Store) AddUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	s.users = append(s.users, u)
	return u
}

// AddBooking seeds a booking without emitting events.
func (s *Store) AddBooking(b model.Booking) model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	s.bookings = append(s.bookings, b)
	return b
}

func (s *Store) Events() []outbox.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

func (s *Store) Bookings() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.bookings)
}

// Users

func (s *Store) GetByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *Store) GetByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *Store) CreateProfessional(_ context.Context, u *model.User, p *model.Professional) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return storage.ErrDuplicate
		}
	}
	u.ID = s.id()
	u.IsProfessional = true
	u.CreatedAt = time.Now()
	s.users = append(s.users, *u)
	p.ID = s.id()
	p.UserID = u.ID
	p.OwnerEmail = u.Email
	s.professionals = append(s.professionals, *p)
	return nil
}

// Professionals

func (s *Store) Professionals() *Professionals { return &Professionals{s} }

type Professionals struct{ s *Store }

func (p *Professionals) Get(_ context.Context, id int64) (model.Professional, error) {
	return p.find(func(x model.Professional) bool { return x.ID == id })
}

func (p *Professionals) GetByUser(_ context.Context, userID int64) (model.Professional, error) {
	return p.find(func(x model.Professional) bool { return x.UserID == userID })
}

func (p *Professionals) First(_ context.Context) (model.Professional, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if len(p.s.professionals) == 0 {
		return model.Professional{}, model.ErrNotFound
	}
	first := p.s.professionals[0]
	for _, x := range p.s.professionals[1:] {
		if x.ID < first.ID {
			first = x
		}
	}
	return first, nil
}

func (p *Professionals) find(match func(model.Professional) bool) (model.Professional, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for _, x := range p.s.professionals {
		if match(x) {
			return x, nil
		}
	}
	return model.Professional{}, model.ErrNotFound
}

// Bookings

func (s *Store) BookingStore() *Bookings { return &Bookings{s} }

type Bookings struct{ s *Store }

func (b *Bookings) Create(_ context.Context, booking *model.Booking, emit storage.EventFunc) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if err := b.s.FailCreate; err != nil {
		b.s.FailCreate = nil
		return err
	}
	stored := *booking
	stored.ID = b.s.nextID + 1
	stored.CreatedAt = time.Now()
	if emit != nil {
		evt, err := emit(stored)
		if err != nil {
			return err
		}
		if evt != nil {
			b.s.events = append(b.s.events, *evt)
		}
	}
	b.s.nextID = stored.ID
	b.s.bookings = append(b.s.bookings, stored)
	*booking = stored
	return nil
}

func (b *Bookings) Get(_ context.Context, id int64) (model.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for _, x := range b.s.bookings {
		if x.ID == id {
			return x, nil
		}
	}
	return model.Booking{}, model.ErrNotFound
}

func (b *Bookings) ListChronological(_ context.Context, professionalID int64) ([]model.Booking, error) {
	out := b.forProfessional(professionalID)
	slices.SortStableFunc(out, compare)
	return out, nil
}

func (b *Bookings) ListNewestFirst(_ context.Context, professionalID int64) ([]model.Booking, error) {
	out := b.forProfessional(professionalID)
	slices.SortStableFunc(out, func(x, y model.Booking) int { return -compare(x, y) })
	return out, nil
}

func (b *Bookings) forProfessional(id int64) []model.Booking {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	var out []model.Booking
	for _, x := range b.s.bookings {
		if x.ProfessionalID == id {
			out = append(out, x)
		}
	}
	return out
}

func compare(x, y model.Booking) int {
	switch {
	case x.Before(y):
		return -1
	case y.Before(x):
		return 1
	case x.ID < y.ID:
		return -1
	case x.ID > y.ID:
		return 1
	}
	return 0
}

var ErrUnavailable = errors.New("store unavailable")
