package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestBuildMessage(t *testing.T) {
	date := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	msg := buildMessage("from@x.test", "to@x.test", "New booking for Studio", "line1\nline2", date)

	for _, want := range []string{
		"From: from@x.test\r\n",
		"To: to@x.test\r\n",
		"Subject: New booking for Studio\r\n",
		"Content-Type: text/plain; charset=utf-8\r\n",
		"\r\n\r\nline1\r\nline2\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestBuildMessageEncodesNonASCIISubject(t *testing.T) {
	msg := buildMessage("a@x.test", "b@x.test", "Réservation", "", time.Now())
	if !strings.Contains(msg, "Subject: =?utf-8?q?") {
		t.Fatalf("expected encoded subject:\n%s", msg)
	}
}

func TestSMTPSenderSend(t *testing.T) {
	s := NewSMTPSender("mail", "1025", "", "", "")
	var gotAddr string
	var gotTo []string
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		if a != nil {
			t.Fatal("expected no auth without username")
		}
		if from != DefaultFrom {
			t.Fatalf("unexpected from %q", from)
		}
		return nil
	}
	if err := s.Send(context.Background(), "c@x.test", "hi", "body"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotAddr != "mail:1025" || len(gotTo) != 1 || gotTo[0] != "c@x.test" {
		t.Fatalf("unexpected call addr=%q to=%v", gotAddr, gotTo)
	}

	s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	if err := s.Send(context.Background(), "c@x.test", "hi", "body"); err == nil {
		t.Fatal("expected error from failing transport")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, "c@x.test", "hi", "body"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestSMTPSenderAuth(t *testing.T) {
	s := NewSMTPSender("mail", "587", "from@x.test", "user", "pw")
	if s.auth == nil {
		t.Fatal("expected plain auth when username set")
	}
}

func TestSendGridMessage(t *testing.T) {
	m := newSendGridMessage("from@x.test", "ProBook", "to@x.test", "Subject", "Body")
	if m.From.Address != "from@x.test" || m.From.Name != "ProBook" || m.Subject != "Subject" {
		t.Fatalf("unexpected message %+v", m)
	}
	if len(m.Personalizations) != 1 || m.Personalizations[0].To[0].Address != "to@x.test" {
		t.Fatalf("unexpected recipients %+v", m.Personalizations)
	}
	if len(m.Content) == 0 || m.Content[0].Value != "Body" {
		t.Fatalf("unexpected content %+v", m.Content)
	}
}

func TestNewProvider(t *testing.T) {
	if s, err := New(Config{Provider: "smtp", SMTPHost: "mail", SMTPPort: "25"}, nil); err != nil {
		t.Fatalf("smtp provider failed: %v", err)
	} else if _, ok := s.(*SMTPSender); !ok {
		t.Fatalf("expected *SMTPSender, got %T", s)
	}
	if _, err := New(Config{Provider: "smtp"}, nil); err == nil {
		t.Fatal("expected error without SMTP host")
	}
	if _, err := New(Config{Provider: "SendGrid"}, nil); err == nil {
		t.Fatal("expected error without API key")
	}
	if s, err := New(Config{Provider: "sendgrid", SendGridAPIKey: "SG.x"}, nil); err != nil {
		t.Fatalf("sendgrid provider failed: %v", err)
	} else if _, ok := s.(*SendGridSender); !ok {
		t.Fatalf("expected *SendGridSender, got %T", s)
	}
	if s, _ := New(Config{Provider: "noop"}, nil); s == nil {
		t.Fatal("expected noop sender")
	} else if err := s.Send(context.Background(), "a@b.test", "s", "b"); err != nil {
		t.Fatalf("noop send failed: %v", err)
	}
	if _, err := New(Config{Provider: "pigeon"}, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestSMTPSenderRejectsInjectedRecipient(t *testing.T) {
	s := NewSMTPSender("mail", "1025", "", "", "")
	called := false
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}
	for _, to := range []string{"a@b.test\r\nBcc: x@y.test", "not an address", ""} {
		if err := s.Send(context.Background(), to, "hi", "body"); !errors.Is(err, ErrInvalidRecipient) {
			t.Fatalf("%q: expected ErrInvalidRecipient, got %v", to, err)
		}
	}
	if called {
		t.Fatal("transport must not be called for invalid recipients")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "sendgrid")
	t.Setenv("SENDGRID_API_KEY", "SG.test")
	t.Setenv("SMTP_FROM", "")
	t.Setenv("SMTP_HOST", "")
	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderSendGrid || cfg.SendGridAPIKey != "SG.test" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.From != DefaultFrom || cfg.SMTPHost != "localhost" || cfg.SMTPPort != "1025" || cfg.FromName != "ProBook" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}
