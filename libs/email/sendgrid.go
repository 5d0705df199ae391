package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGridSender(apiKey, from, fromName string) *SendGridSender {
	from = strings.TrimSpace(from)
	if from == "" {
		from = DefaultFrom
	}
	return &SendGridSender{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (s *SendGridSender) Send(ctx context.Context, to string, subject string, body string) error {
	msg := newSendGridMessage(s.from, s.fromName, to, subject, body)
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", to, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send to %s: status %d: %s", to, resp.StatusCode, resp.Body)
	}
	return nil
}

func newSendGridMessage(from, fromName, to, subject, body string) *mail.SGMailV3 {
	return mail.NewSingleEmailPlainText(
		mail.NewEmail(fromName, from),
		subject,
		mail.NewEmail("", to),
		body,
	)
}
