package model

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	IsProfessional bool
	Phone          string
	CreatedAt      time.Time
}

// Professional is the business profile owned by exactly one User.
// OwnerEmail is the owning user's e-mail, filled on reads.
type Professional struct {
	ID           int64
	UserID       int64
	BusinessName string
	Services     string
	OwnerEmail   string
}

type Booking struct {
	ID             int64
	ProfessionalID int64
	ClientName     string
	ClientEmail    string
	Service        string
	Date           time.Time // calendar day, midnight UTC
	Time           TimeOfDay
	Notes          string
	CreatedAt      time.Time
}

// Before reports whether b is scheduled strictly before o.
func (b Booking) Before(o Booking) bool {
	if !b.Date.Equal(o.Date) {
		return b.Date.Before(o.Date)
	}
	return b.Time < o.Time
}
