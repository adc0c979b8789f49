package mailq

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sableforge/authd/internal/auth/mail"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewQueue(rdb)
}

func testJob(kind Kind) Job {
	return NewJob(kind, mail.Recipient{Name: "Alice", Email: "alice@example.com"}, "https://app.example.com/activate?token=abc")
}

func TestQueueEnqueueDequeueAck(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	job := testJob(KindActivation)
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, job.ID, got.ID)
	require.Equal(t, KindActivation, got.Kind)
	require.Equal(t, "alice@example.com", got.To.Email)

	// Dequeue moved it to processing, not dropped it.
	_, processing, _, _, err := q.Depths(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, processing)

	require.NoError(t, q.Ack(ctx, got))

	pending, processing, delayed, dead, err := q.Depths(ctx)
	require.NoError(t, err)
	require.Zero(t, pending)
	require.Zero(t, processing)
	require.Zero(t, delayed)
	require.Zero(t, dead)
}

func TestQueueDequeueEmpty(t *testing.T) {
	q := newTestQueue(t)

	_, err := q.Dequeue(context.Background(), 10*time.Millisecond)
	require.True(t, IsEmpty(err))
}

func TestQueueDelayAndPromote(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	job := testJob(KindPasswordReset)
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	retryAt := time.Now().Add(time.Minute)
	require.NoError(t, q.Delay(ctx, got, retryAt))

	// Not due yet.
	n, err := q.PromoteDue(ctx, time.Now())
	require.NoError(t, err)
	require.Zero(t, n)

	// Due after the retry time passes.
	n, err = q.PromoteDue(ctx, retryAt.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	promoted, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, job.ID, promoted.ID)
	require.Equal(t, 1, promoted.Attempt)
}

func TestQueueKillAndTrim(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	for range 3 {
		job := testJob(KindWelcome)
		require.NoError(t, q.Enqueue(ctx, job))
		got, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.NoError(t, q.Kill(ctx, got))
	}

	_, _, _, dead, err := q.Depths(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, dead)

	require.NoError(t, q.TrimDead(ctx, 2))

	_, _, _, dead, err = q.Depths(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, dead)
}

func TestJobMessageRendering(t *testing.T) {
	t.Parallel()

	msg, err := testJob(KindActivation).Message()
	require.NoError(t, err)
	require.Contains(t, msg.TextBody, "https://app.example.com/activate?token=abc")

	_, err = testJob(Kind("bogus")).Message()
	require.Error(t, err)
}
