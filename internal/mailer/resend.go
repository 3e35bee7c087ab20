// internal/mailer/resend.go
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v3"
)

// ResendConfig holds Resend API configuration.
type ResendConfig struct {
	APIKey string

	// BaseURL overrides the API endpoint (tests, regional endpoints).
	BaseURL string

	Timeout time.Duration
}

// ResendSender sends messages through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender creates a sender with its own timeout-bounded HTTP client.
func NewResendSender(cfg ResendConfig) (*ResendSender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("mailer: resend api key is required")
	}
	httpClient := &http.Client{Timeout: defaultTimeout(cfg.Timeout)}
	client := resend.NewCustomClient(httpClient, cfg.APIKey)
	if cfg.BaseURL != "" {
		u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("mailer: invalid resend base url: %w", err)
		}
		client.BaseURL = u
	}
	return &ResendSender{client: client}, nil
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Body,
		ReplyTo: msg.ReplyTo,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("mailer: resend send: %w", err)
	}
	return nil
}
