package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/svshs-enrollment-api/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer sends confirmation emails. Implementations must be safe for
// concurrent use; callers wrap Send in a bounded timeout.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New selects a mailer implementation from configuration.
func New(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.Driver {
	case "sendgrid":
		return NewSendgridMailer(cfg, logger)
	case "console", "":
		return NewConsoleMailer(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}
