package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ResetJob flushes the cache once a day at a fixed UTC wall-clock time.
type ResetJob struct {
	cache  *Cache
	hour   int
	minute int
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewResetJob creates a job that flushes cache daily at "HH:MM" UTC.
func NewResetJob(cache *Cache, at string, logger *slog.Logger) (*ResetJob, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("parse reset time %q: %w", at, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResetJob{
		cache:  cache,
		hour:   t.Hour(),
		minute: t.Minute(),
		logger: logger,
	}, nil
}

// Start begins the daily flush loop.
func (j *ResetJob) Start(ctx context.Context) error {
	j.ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go j.run()

	j.logger.Info("cache reset job started",
		"at", fmt.Sprintf("%02d:%02d UTC", j.hour, j.minute),
	)
	return nil
}

// Stop gracefully shuts down the job.
func (j *ResetJob) Stop(ctx context.Context) error {
	if j.cancel != nil {
		j.cancel()
	}

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.logger.Info("cache reset job stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *ResetJob) run() {
	defer j.wg.Done()

	for {
		wait := time.Until(j.nextReset(time.Now().UTC()))

		select {
		case <-j.ctx.Done():
			return
		case <-time.After(wait):
			if err := j.cache.Flush(j.ctx); err != nil {
				j.logger.Error("scheduled cache flush failed", "err", err)
			}
		}
	}
}

// nextReset returns the next flush instant strictly after now.
func (j *ResetJob) nextReset(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), j.hour, j.minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
