package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sableforge/authd/internal/auth/domain"
	"github.com/sableforge/authd/internal/auth/mail"
	"github.com/sableforge/authd/internal/auth/mailq"
)

// Notifier dispatches transactional email. Calls are fire-and-forget: the
// auth flows never fail because a notification could not be queued.
type Notifier interface {
	ActivationRequested(ctx context.Context, user domain.PublicUser, token string)
	AccountActivated(ctx context.Context, user domain.PublicUser)
	PasswordResetRequested(ctx context.Context, user domain.PublicUser, token string)
}

// NotificationService enqueues email jobs onto the mail queue. Enqueue
// failures are logged and swallowed.
type NotificationService struct {
	Queue       *mailq.Queue
	FrontendURL string
	Logger      *slog.Logger
}

func (s *NotificationService) ActivationRequested(ctx context.Context, user domain.PublicUser, token string) {
	link := s.link("/activate-account", token)
	s.enqueue(ctx, mailq.NewJob(mailq.KindActivation, recipient(user), link))
}

func (s *NotificationService) AccountActivated(ctx context.Context, user domain.PublicUser) {
	s.enqueue(ctx, mailq.NewJob(mailq.KindWelcome, recipient(user), ""))
}

func (s *NotificationService) PasswordResetRequested(ctx context.Context, user domain.PublicUser, token string) {
	link := s.link("/reset-password", token)
	s.enqueue(ctx, mailq.NewJob(mailq.KindPasswordReset, recipient(user), link))
}

func (s *NotificationService) enqueue(ctx context.Context, job mailq.Job) {
	if err := s.Queue.Enqueue(ctx, job); err != nil {
		s.Logger.Error("failed to enqueue mail job",
			"kind", job.Kind, "to", job.To.Email, "error", err)
		return
	}
	s.Logger.Debug("mail job enqueued", "kind", job.Kind, "to", job.To.Email)
}

func (s *NotificationService) link(path, token string) string {
	return buildLink(s.FrontendURL, path, token)
}

// DirectNotifier renders and sends mail inline, without a queue. It covers
// deployments with no Redis transport configured. Delivery runs on its own
// goroutine with a fresh context so a slow relay never stalls a request.
type DirectNotifier struct {
	Mailer      mail.Mailer
	FrontendURL string
	Logger      *slog.Logger
}

func (s *DirectNotifier) ActivationRequested(_ context.Context, user domain.PublicUser, token string) {
	link := buildLink(s.FrontendURL, "/activate-account", token)
	s.send(mailq.NewJob(mailq.KindActivation, recipient(user), link))
}

func (s *DirectNotifier) AccountActivated(_ context.Context, user domain.PublicUser) {
	s.send(mailq.NewJob(mailq.KindWelcome, recipient(user), ""))
}

func (s *DirectNotifier) PasswordResetRequested(_ context.Context, user domain.PublicUser, token string) {
	link := buildLink(s.FrontendURL, "/reset-password", token)
	s.send(mailq.NewJob(mailq.KindPasswordReset, recipient(user), link))
}

func (s *DirectNotifier) send(job mailq.Job) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		msg, err := job.Message()
		if err != nil {
			s.Logger.Error("failed to render mail", "kind", job.Kind, "error", err)
			return
		}
		if err := s.Mailer.Send(ctx, msg); err != nil {
			s.Logger.Error("failed to send mail",
				"kind", job.Kind, "to", job.To.Email, "error", err)
			return
		}
		s.Logger.Debug("mail sent", "kind", job.Kind, "to", job.To.Email)
	}()
}

func buildLink(frontendURL, path, token string) string {
	base := strings.TrimSuffix(frontendURL, "/")
	return base + path + "?token=" + url.QueryEscape(token)
}

func recipient(user domain.PublicUser) mail.Recipient {
	return mail.Recipient{Name: user.Username, Email: user.Email}
}
