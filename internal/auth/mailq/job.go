// Package mailq is a Redis-backed queue for transactional email. The API
// handlers enqueue and return immediately; a background worker delivers,
// retrying transient failures with exponential backoff.
package mailq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sableforge/authd/internal/auth/mail"
)

// Kind selects which email template the worker renders.
type Kind string

const (
	KindActivation    Kind = "activation"
	KindWelcome       Kind = "welcome"
	KindPasswordReset Kind = "password_reset"
)

// Job is one queued email. Link is empty for kinds without one.
type Job struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	To        mail.Recipient `json:"to"`
	Link      string         `json:"link,omitempty"`
	Attempt   int            `json:"attempt"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewJob builds a job with a fresh ID and zero attempts.
func NewJob(kind Kind, to mail.Recipient, link string) Job {
	return Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		To:        to,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	}
}

// Message renders the job into a sendable message.
func (j Job) Message() (mail.Message, error) {
	switch j.Kind {
	case KindActivation:
		return mail.ActivationMessage(j.To, j.Link)
	case KindWelcome:
		return mail.WelcomeMessage(j.To)
	case KindPasswordReset:
		return mail.PasswordResetMessage(j.To, j.Link)
	default:
		return mail.Message{}, fmt.Errorf("unknown mail kind %q", j.Kind)
	}
}

func (j Job) encode() ([]byte, error) {
	return json.Marshal(j)
}

func decodeJob(data string) (Job, error) {
	var j Job
	if err := json.Unmarshal([]byte(data), &j); err != nil {
		return Job{}, fmt.Errorf("decode mail job: %w", err)
	}
	return j, nil
}
