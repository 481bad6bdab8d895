package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Message is a plain-text email ready for delivery.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer delivers email messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// logMailer records deliveries without sending, for environments with no
// SMTP credentials.
type logMailer struct {
	logger *zap.Logger
}

// NewLogMailer returns a Mailer that only logs.
func NewLogMailer(logger *zap.Logger) Mailer {
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email delivery skipped (no SMTP configured)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
