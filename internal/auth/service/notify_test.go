package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sableforge/authd/internal/auth/domain"
	"github.com/sableforge/authd/internal/auth/mailq"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) (*NotificationService, *mailq.Queue) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	queue := mailq.NewQueue(rdb)
	return &NotificationService{
		Queue:       queue,
		FrontendURL: "https://app.example.com/",
		Logger:      slog.New(slog.DiscardHandler),
	}, queue
}

func TestNotificationService(t *testing.T) {
	user := domain.PublicUser{Username: "alice", Email: "alice@example.com"}

	t.Run("activation job carries the link", func(t *testing.T) {
		notifier, queue := newTestNotifier(t)
		ctx := context.Background()

		notifier.ActivationRequested(ctx, user, "tok+en")

		job, err := queue.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.Equal(t, mailq.KindActivation, job.Kind)
		require.Equal(t, "alice@example.com", job.To.Email)
		require.Equal(t, "https://app.example.com/activate-account?token=tok%2Ben", job.Link)
	})

	t.Run("welcome job has no link", func(t *testing.T) {
		notifier, queue := newTestNotifier(t)
		ctx := context.Background()

		notifier.AccountActivated(ctx, user)

		job, err := queue.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.Equal(t, mailq.KindWelcome, job.Kind)
		require.Empty(t, job.Link)
	})

	t.Run("reset job carries the link", func(t *testing.T) {
		notifier, queue := newTestNotifier(t)
		ctx := context.Background()

		notifier.PasswordResetRequested(ctx, user, "reset-token")

		job, err := queue.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.Equal(t, mailq.KindPasswordReset, job.Kind)
		require.Equal(t, "https://app.example.com/reset-password?token=reset-token", job.Link)
	})
}
