package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"
	"time"
)

const DefaultFrom = "no-reply@probook.local"

var ErrInvalidRecipient = errors.New("email: invalid recipient address")

type Sender interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// SMTPSender sends plain-text mail over SMTP. Auth is used only when a username is set.
type SMTPSender struct {
	addr string
	host string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host, port, from, username, password string) *SMTPSender {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	from = strings.TrimSpace(from)
	if from == "" {
		from = DefaultFrom
	}
	s := &SMTPSender{
		addr: fmt.Sprintf("%s:%s", host, port),
		host: host,
		from: from,
		send: smtp.SendMail,
	}
	if username = strings.TrimSpace(username); username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

func (s *SMTPSender) Send(ctx context.Context, to string, subject string, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// The address goes verbatim into the To header.
	if _, err := mail.ParseAddress(to); err != nil || strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}
	msg := buildMessage(s.from, to, subject, body, time.Now())
	if err := s.send(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string, date time.Time) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		mime.QEncoding.Encode("utf-8", subject),
		date.Format(time.RFC1123Z),
		strings.ReplaceAll(body, "\n", "\r\n"),
	)
}

// NoopSender logs instead of sending. Used in development and when no provider is configured.
type NoopSender struct {
	Logger *slog.Logger
}

func (n NoopSender) Send(_ context.Context, to string, subject string, _ string) error {
	if n.Logger != nil {
		n.Logger.Info("email suppressed", "to", to, "subject", subject)
	}
	return nil
}
