// Package notify implements outbound notifications for price drops.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"

	"price_backend/internal/feature/products/usecase"
)

// Config holds SMTP settings for the email notifier.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// LoadConfig loads SMTP configuration from environment variables.
// Port defaults to 587 (STARTTLS), From falls back to the SMTP username.
func LoadConfig() Config {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port <= 0 {
		port = 587
	}
	from := os.Getenv("FROM_EMAIL")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}
	return Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     from,
	}
}

// EmailNotifier sends drop alerts over SMTP.
type EmailNotifier struct {
	cfg Config
}

var _ usecase.Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates a new EmailNotifier with the given SMTP configuration.
func NewEmailNotifier(cfg Config) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

// Notify sends one plain-text email to the recipient.
// When SMTP is not configured the message is skipped with a warning instead of
// failing, so a sweep can run in environments without mail credentials.
// gomail does not take a context and only bounds the TCP dial, not the SMTP
// conversation after connect. Delivery runs in its own goroutine and the call
// returns when ctx expires, so a stalled server cannot pin a sweep worker.
func (n *EmailNotifier) Notify(ctx context.Context, subject, body, recipient string) error {
	if n.cfg.Host == "" || n.cfg.From == "" {
		slog.Warn("smtp config missing, skipping notification", "recipient", recipient)
		return nil
	}
	if strings.TrimSpace(recipient) == "" {
		slog.Warn("empty notification recipient, skipping")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Username, n.cfg.Password)

	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("send email: %w", ctx.Err())
	}

	slog.Info("drop alert sent", "recipient", recipient, "subject", subject)
	return nil
}
