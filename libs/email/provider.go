package email

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ramo2594/probook/libs/config"
)

const (
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
	ProviderNoop     = "noop"
)

type Config struct {
	Provider       string
	From           string
	FromName       string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SendGridAPIKey string
}

// ConfigFromEnv reads EMAIL_PROVIDER, SMTP_*, EMAIL_FROM_NAME and SENDGRID_API_KEY.
func ConfigFromEnv() Config {
	return Config{
		Provider:       config.String("EMAIL_PROVIDER", ProviderSMTP),
		From:           config.String("SMTP_FROM", DefaultFrom),
		FromName:       config.String("EMAIL_FROM_NAME", "ProBook"),
		SMTPHost:       config.String("SMTP_HOST", "localhost"),
		SMTPPort:       config.String("SMTP_PORT", "1025"),
		SMTPUsername:   config.String("SMTP_USERNAME", ""),
		SMTPPassword:   config.String("SMTP_PASSWORD", ""),
		SendGridAPIKey: config.String("SENDGRID_API_KEY", ""),
	}
}

// New returns the Sender selected by cfg.Provider.
func New(cfg Config, logger *slog.Logger) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderSMTP, "":
		if strings.TrimSpace(cfg.SMTPHost) == "" {
			return nil, errors.New("SMTP_HOST is required for the smtp provider")
		}
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.From, cfg.SMTPUsername, cfg.SMTPPassword), nil
	case ProviderSendGrid:
		if strings.TrimSpace(cfg.SendGridAPIKey) == "" {
			return nil, errors.New("SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.From, cfg.FromName), nil
	case ProviderNoop:
		return NoopSender{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
