package mail

import (
	"context"

	"github.com/sableforge/authd/pkg/slogx"
)

// LogMailer writes messages to the log instead of delivering them. Used in
// development when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	slogx.FromContext(ctx).Info("mail (not delivered)",
		"to", msg.To.Email,
		"subject", msg.Subject,
		"body", msg.TextBody,
	)
	return nil
}
