package mailq

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sableforge/authd/internal/auth/mail"
	"golang.org/x/time/rate"
)

const (
	// MaxRetries matches the delivery pipeline contract: a transient failure
	// is retried up to five times before the job is dead-lettered.
	MaxRetries = 5

	baseRetryDelay = 1 * time.Second
	dequeueTimeout = 2 * time.Second
	promoteEvery   = 1 * time.Second
)

// Worker drains the queue and delivers mail. Sends are paced by a rate
// limiter so a burst of sign-ups cannot overwhelm the SMTP relay.
type Worker struct {
	Queue   *Queue
	Mailer  mail.Mailer
	Logger  *slog.Logger
	Limiter *rate.Limiter

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWorker creates a worker. sendRate is deliveries per second; if 0 or
// negative, sends are unpaced.
func NewWorker(queue *Queue, mailer mail.Mailer, logger *slog.Logger, sendRate float64) *Worker {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if sendRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(sendRate), 1)
	}

	return &Worker{
		Queue:   queue,
		Mailer:  mailer,
		Logger:  logger,
		Limiter: limiter,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins the background delivery loop. Non-blocking; call Stop to
// shut down gracefully.
func (w *Worker) Start() {
	go w.run()
	w.Logger.Info("mail worker started")
}

// Stop shuts down the worker. Blocks until any in-flight delivery finishes.
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.Logger.Info("mail worker stopped")
}

func (w *Worker) run() {
	defer close(w.doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-w.stopCh
		cancel()
	}()

	promote := time.NewTicker(promoteEvery)
	defer promote.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-promote.C:
			if _, err := w.Queue.PromoteDue(ctx, time.Now()); err != nil && ctx.Err() == nil {
				w.Logger.Error("failed to promote delayed mail jobs", "error", err)
			}
		default:
		}

		job, err := w.Queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if IsEmpty(err) || ctx.Err() != nil {
				continue
			}
			w.Logger.Error("failed to dequeue mail job", "error", err)
			continue
		}

		w.deliver(ctx, job)
	}
}

// deliver sends one job, delaying it for retry on transient failure and
// dead-lettering it on fatal failure or exhausted retries.
func (w *Worker) deliver(ctx context.Context, job Job) {
	if err := w.Limiter.Wait(ctx); err != nil {
		// Shutting down mid-job: delay it so a later worker picks it up.
		if err := w.Queue.Delay(context.Background(), job, time.Now()); err != nil {
			w.Logger.Error("failed to requeue mail job on shutdown", "job_id", job.ID, "error", err)
		}
		return
	}

	msg, err := job.Message()
	if err == nil {
		err = w.Mailer.Send(ctx, msg)
	}

	switch {
	case err == nil:
		if err := w.Queue.Ack(ctx, job); err != nil {
			w.Logger.Error("failed to ack mail job", "job_id", job.ID, "error", err)
		}
		w.Logger.Info("mail delivered", "job_id", job.ID, "kind", job.Kind, "to", job.To.Email)

	case errors.Is(err, mail.ErrTransient) && job.Attempt < MaxRetries:
		retryAt := time.Now().Add(RetryDelay(job.Attempt))
		w.Logger.Warn("transient mail failure, will retry",
			"job_id", job.ID, "to", job.To.Email, "attempt", job.Attempt+1, "retry_at", retryAt, "error", err)
		if err := w.Queue.Delay(ctx, job, retryAt); err != nil {
			w.Logger.Error("failed to delay mail job", "job_id", job.ID, "error", err)
		}

	default:
		w.Logger.Error("fatal mail failure, dead-lettering",
			"job_id", job.ID, "to", job.To.Email, "attempt", job.Attempt, "error", err)
		if err := w.Queue.Kill(ctx, job); err != nil {
			w.Logger.Error("failed to dead-letter mail job", "job_id", job.ID, "error", err)
		}
	}
}

// RetryDelay is the backoff before retry attempt+1: exponential from a one
// second base, with up to one second of jitter.
func RetryDelay(attempt int) time.Duration {
	delay := baseRetryDelay << attempt
	jitter := time.Duration(rand.Int63n(int64(time.Second)))
	return delay + jitter
}
