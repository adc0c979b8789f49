package mailq

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sableforge/authd/internal/auth/mail"
	"github.com/stretchr/testify/require"
)

// fakeMailer fails the first failures sends with the given error, then
// succeeds.
type fakeMailer struct {
	mu       sync.Mutex
	failures int
	failWith error
	sent     []mail.Message
}

func (m *fakeMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return m.failWith
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newTestWorker(t *testing.T, q *Queue, m mail.Mailer) *Worker {
	t.Helper()
	return NewWorker(q, m, slog.New(slog.DiscardHandler), 0)
}

func TestWorkerDeliversAndAcks(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	mailer := &fakeMailer{}
	w := newTestWorker(t, q, mailer)

	require.NoError(t, q.Enqueue(ctx, testJob(KindWelcome)))
	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	w.deliver(ctx, job)

	require.Len(t, mailer.sent, 1)
	require.Equal(t, "Welcome!", mailer.sent[0].Subject)

	pending, processing, delayed, dead, err := q.Depths(ctx)
	require.NoError(t, err)
	require.Zero(t, pending+processing+delayed+dead)
}

func TestWorkerRetriesTransientFailure(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	mailer := &fakeMailer{failures: 1, failWith: mail.ErrTransient}
	w := newTestWorker(t, q, mailer)

	require.NoError(t, q.Enqueue(ctx, testJob(KindActivation)))
	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	w.deliver(ctx, job)

	// Delayed for retry, not dead-lettered.
	_, _, delayed, dead, err := q.Depths(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, delayed)
	require.Zero(t, dead)

	// Promote and deliver again; this time it succeeds.
	n, err := q.PromoteDue(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	retried, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, retried.Attempt)

	w.deliver(ctx, retried)
	require.Len(t, mailer.sent, 1)
}

func TestWorkerDeadLettersAfterMaxRetries(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	mailer := &fakeMailer{failures: MaxRetries + 1, failWith: mail.ErrTransient}
	w := newTestWorker(t, q, mailer)

	require.NoError(t, q.Enqueue(ctx, testJob(KindActivation)))

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			n, err := q.PromoteDue(ctx, time.Now().Add(time.Hour))
			require.NoError(t, err)
			require.Equal(t, 1, n)
		}
		job, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.Equal(t, attempt, job.Attempt)
		w.deliver(ctx, job)
	}

	_, _, delayed, dead, err := q.Depths(ctx)
	require.NoError(t, err)
	require.Zero(t, delayed)
	require.EqualValues(t, 1, dead)
	require.Empty(t, mailer.sent)
}

func TestWorkerDeadLettersFatalFailure(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	mailer := &fakeMailer{failures: 1, failWith: errors.New("550 no such user")}
	w := newTestWorker(t, q, mailer)

	require.NoError(t, q.Enqueue(ctx, testJob(KindPasswordReset)))
	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	w.deliver(ctx, job)

	_, _, delayed, dead, err := q.Depths(ctx)
	require.NoError(t, err)
	require.Zero(t, delayed)
	require.EqualValues(t, 1, dead)
}

func TestWorkerLifecycle(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	mailer := &fakeMailer{}
	w := newTestWorker(t, q, mailer)

	require.NoError(t, q.Enqueue(ctx, testJob(KindWelcome)))

	w.Start()
	require.Eventually(t, func() bool {
		mailer.mu.Lock()
		defer mailer.mu.Unlock()
		return len(mailer.sent) == 1
	}, 5*time.Second, 20*time.Millisecond)
	w.Stop()
}

func TestRetryDelayGrows(t *testing.T) {
	t.Parallel()

	for attempt := 0; attempt < MaxRetries; attempt++ {
		d := RetryDelay(attempt)
		base := baseRetryDelay << attempt
		require.GreaterOrEqual(t, d, base)
		require.Less(t, d, base+time.Second)
	}
}
