package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/noah-isme/svshs-enrollment-api/pkg/config"
)

// SendgridMailer delivers messages through the SendGrid v3 API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
	logger *zap.Logger
}

// NewSendgridMailer validates the API key and builds the client.
func NewSendgridMailer(cfg config.MailConfig, logger *zap.Logger) (*SendgridMailer, error) {
	if cfg.SendgridAPIKey == "" {
		return nil, fmt.Errorf("sendgrid api key must be provided")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendgridMailer{
		client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
		logger: logger,
	}, nil
}

// Send delivers one message; non-2xx API responses are reported as errors.
func (m *SendgridMailer) Send(ctx context.Context, msg Message) error {
	to := sgmail.NewEmail(msg.ToName, msg.To)
	text := msg.TextBody
	if text == "" {
		text = msg.Subject
	}
	message := sgmail.NewSingleEmail(m.from, msg.Subject, to, text, msg.HTMLBody)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	m.logger.Info("confirmation email sent", zap.String("to", msg.To))
	return nil
}
