package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/alerodas/shoply-backend/pkg/config"
	"github.com/alerodas/shoply-backend/pkg/logger"
)

// Message is one outbound email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client sends mail through SendGrid.
type Client struct {
	api       *sendgrid.Client
	fromName  string
	fromEmail string
	logg      *logger.Logger
}

// New builds a SendGrid-backed sender from config.
func New(cfg config.SendgridConfig, logg *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	fromEmail := strings.TrimSpace(cfg.DefaultFrom)
	if fromEmail == "" {
		return nil, errors.New("sendgrid from email is required")
	}
	return &Client{
		api:       sendgrid.NewSendClient(apiKey),
		fromName:  cfg.FromName,
		fromEmail: fromEmail,
		logg:      logg,
	}, nil
}

// Send delivers the message; non-2xx SendGrid responses surface as errors.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.ToEmail == "" {
		return errors.New("recipient email is required")
	}

	from := mail.NewEmail(c.fromName, c.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	html := msg.HTML
	if html == "" {
		html = msg.Text
	}
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, html)

	resp, err := c.api.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	if c.logg != nil {
		c.logg.Info(ctx, fmt.Sprintf("email sent to %s", msg.ToEmail))
	}
	return nil
}

// Noop discards all messages; used when no SendGrid key is configured.
type Noop struct{}

func (Noop) Send(context.Context, Message) error { return nil }
