// internal/mailer/mailer.go
// Package mailer delivers plain-text notification emails through SMTP, the
// Resend HTTP API, or (for development) the application log.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNoRecipients is returned when a message has no To address.
	ErrNoRecipients = errors.New("mailer: no recipients specified")

	// ErrNoSender is returned when neither the message nor the sender config
	// provides a From address.
	ErrNoSender = errors.New("mailer: no from address")

	// ErrEmptyBody is returned for a message without a body.
	ErrEmptyBody = errors.New("mailer: message body is empty")

	// ErrUnknownDriver is returned by New for an unsupported driver name.
	ErrUnknownDriver = errors.New("mailer: unknown driver")
)

// Message is one outbound email.
type Message struct {
	To       string
	From     string
	FromName string
	Subject  string
	Body     string
	ReplyTo  string
}

// Validate reports the first structural problem with m.
func (m Message) Validate() error {
	switch {
	case strings.TrimSpace(m.To) == "":
		return ErrNoRecipients
	case strings.TrimSpace(m.From) == "":
		return ErrNoSender
	case strings.TrimSpace(m.Body) == "":
		return ErrEmptyBody
	}
	return nil
}

// Sender delivers a single message. Implementations make exactly one
// attempt and must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Driver names accepted by New.
const (
	DriverSMTP   = "smtp"
	DriverResend = "resend"
	DriverLog    = "log"
)

// Config selects and configures a driver.
type Config struct {
	Driver string
	SMTP   SMTPConfig
	Resend ResendConfig
}

// New builds the Sender named by cfg.Driver.
func New(cfg Config, logger *zap.Logger) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverSMTP, "":
		return NewSMTPSender(cfg.SMTP)
	case DriverResend:
		return NewResendSender(cfg.Resend)
	case DriverLog:
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func defaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}
