package mail

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleMailer logs messages instead of sending them. Used in development
// and as the default when no mail driver is configured.
type ConsoleMailer struct {
	logger *zap.Logger
}

// NewConsoleMailer builds the console mailer.
func NewConsoleMailer(logger *zap.Logger) *ConsoleMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleMailer{logger: logger}
}

// Send logs the message and returns nil.
func (m *ConsoleMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info("email (console driver)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTMLBody)),
	)
	return nil
}
