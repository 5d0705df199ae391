package notify

import (
	"fmt"
	"strings"

	"github.com/ramo2594/probook/services/probook/internal/model"
)

const (
	KindProfessional = "professional"
	KindClient       = "client"
)

// Details is everything needed to compose the booking e-mails. It is also the
// payload of the booking-created event.
type Details struct {
	BookingID      int64  `json:"booking_id"`
	ProfessionalID int64  `json:"professional_id"`
	BusinessName   string `json:"business_name"`
	OwnerEmail     string `json:"owner_email"`
	ClientName     string `json:"client_name"`
	ClientEmail    string `json:"client_email"`
	Service        string `json:"service"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Notes          string `json:"notes,omitempty"`
}

func DetailsOf(p model.Professional, b model.Booking) Details {
	return Details{
		BookingID:      b.ID,
		ProfessionalID: p.ID,
		BusinessName:   p.BusinessName,
		OwnerEmail:     p.OwnerEmail,
		ClientName:     b.ClientName,
		ClientEmail:    b.ClientEmail,
		Service:        b.Service,
		Date:           model.FormatDate(b.Date),
		Time:           b.Time.String(),
		Notes:          b.Notes,
	}
}

type Message struct {
	Kind    string
	To      string
	Subject string
	Body    string
}

// ProfessionalMessage tells the business owner about a new booking.
func ProfessionalMessage(d Details) Message {
	var body strings.Builder
	body.WriteString("You have a new booking.\n\n")
	fmt.Fprintf(&body, "Client: %s (%s)\n", d.ClientName, d.ClientEmail)
	fmt.Fprintf(&body, "Service: %s\n", d.Service)
	fmt.Fprintf(&body, "Date: %s at %s\n", d.Date, d.Time)
	if d.Notes != "" {
		fmt.Fprintf(&body, "Notes: %s\n", d.Notes)
	}
	return Message{
		Kind:    KindProfessional,
		To:      strings.TrimSpace(d.OwnerEmail),
		Subject: "New booking for " + d.BusinessName,
		Body:    body.String(),
	}
}

// ClientMessage confirms the booking to the client.
func ClientMessage(d Details) Message {
	body := fmt.Sprintf(
		"Hi %s,\n\nyour booking is confirmed for %s at %s.\nService: %s\nProfessional: %s\n",
		d.ClientName, d.Date, d.Time, d.Service, d.BusinessName,
	)
	return Message{
		Kind:    KindClient,
		To:      strings.TrimSpace(d.ClientEmail),
		Subject: "Booking confirmation from " + d.BusinessName,
		Body:    body,
	}
}
