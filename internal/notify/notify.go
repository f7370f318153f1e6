// Package notify delivers one-time codes to users by email or SMS.
package notify

import (
	"context"
	"errors"

	"careconnect-backend/internal/config"
	"careconnect-backend/internal/observability"
)

var ErrDeliveryFailed = errors.New("delivery failed")

// Message is one outbound notification
type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer picks the SMTP sender when a host is configured and the log
// sender otherwise
func NewMailer(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		return LogSender{Channel: "email"}
	}
	return NewSMTPSender(cfg)
}

// LogSender writes the message to the log instead of delivering it
type LogSender struct {
	Channel string
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	observability.LoggerFromContext(ctx).Info().
		Str("channel", s.Channel).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg(msg.Body)
	return nil
}
