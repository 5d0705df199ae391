package notify

import (
	"strconv"

	"github.com/ramo2594/probook/services/probook/internal/model"
	"github.com/ramo2594/probook/services/probook/internal/outbox"
)

const EventBookingCreated = "probook.booking.created.v1"

// BookingCreatedEvent builds the outbox event the notifier consumes.
func BookingCreatedEvent(p model.Professional, b model.Booking) (*outbox.Event, error) {
	evt, err := outbox.NewEvent("booking", strconv.FormatInt(b.ID, 10), EventBookingCreated, DetailsOf(p, b))
	if err != nil {
		return nil, err
	}
	return &evt, nil
}
