package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	repository "agrimsg/internal/pkg/notification/persistence/repository/port"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// RetentionSweeper periodically deletes read notifications older than MaxAge,
// on a cron schedule.
type RetentionSweeper struct {
	repo     repository.NotificationRepository
	schedule cron.Schedule
	maxAge   time.Duration
}

// NewRetentionSweeper validates the cron expression up front.
func NewRetentionSweeper(repo repository.NotificationRepository, schedule string, maxAge time.Duration) (*RetentionSweeper, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("notification: parse retention schedule %q: %w", schedule, err)
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("notification: retention max age must be positive")
	}
	return &RetentionSweeper{repo: repo, schedule: sched, maxAge: maxAge}, nil
}

// Run blocks, sweeping at each scheduled fire time until the context is
// canceled. Sweep failures are logged and the loop continues.
func (s *RetentionSweeper) Run(ctx context.Context) {
	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := s.SweepOnce(ctx); err != nil {
			log.Printf("notification: retention sweep failed: %v", err)
		}
	}
}

// SweepOnce deletes read notifications older than the retention window.
func (s *RetentionSweeper) SweepOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-s.maxAge)
	deleted, err := s.repo.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("notification: retention sweep removed %d read notifications older than %s", deleted, cutoff.Format(time.RFC3339))
	}
	return nil
}
