// Package mail sends transactional email. Delivery failures are split into
// transient errors, which the queue retries, and fatal errors, which it does
// not.
package mail

import (
	"context"
	"errors"
)

// ErrTransient marks a delivery failure worth retrying (connection refused,
// timeout, 4xx SMTP reply). Everything else is treated as fatal.
var ErrTransient = errors.New("mail: transient delivery error")

// Recipient is a display name plus address.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Message is a rendered email ready to send.
type Message struct {
	To       Recipient
	Subject  string
	TextBody string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
