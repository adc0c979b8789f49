package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sableforge/authd/internal/auth/mailq"
)

// HousekeepingService periodically caps the mail dead-letter list and logs
// queue depth. It never touches user records; accounts are not deleted by
// this service.
type HousekeepingService struct {
	Queue          *mailq.Queue
	Logger         *slog.Logger
	Interval       time.Duration
	DeadLetterKeep int64

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. If interval is 0 or
// negative, defaults to 1 hour; if keep is 0 or negative, defaults to 1000.
func NewHousekeepingService(queue *mailq.Queue, logger *slog.Logger, interval time.Duration, keep int64) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if keep <= 0 {
		keep = 1000
	}

	return &HousekeepingService{
		Queue:          queue,
		Logger:         logger,
		Interval:       interval,
		DeadLetterKeep: keep,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the background worker. Blocks until any in-progress
// cleanup finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	if err := s.Queue.TrimDead(ctx, s.DeadLetterKeep); err != nil {
		s.Logger.Error("failed to trim mail dead-letter list", "error", err)
		return
	}

	pending, processing, delayed, dead, err := s.Queue.Depths(ctx)
	if err != nil {
		s.Logger.Error("failed to read mail queue depth", "error", err)
		return
	}

	s.Logger.Info("housekeeping cleanup completed",
		"mail_pending", pending,
		"mail_processing", processing,
		"mail_delayed", delayed,
		"mail_dead", dead,
	)
}
