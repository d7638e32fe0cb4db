package scheduler

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Runner performs one complete analysis pass.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// Scheduler owns the watch loop: it runs a pass immediately, then again each
// interval. Passes never overlap; the next wait starts when a pass returns.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that re-runs runner at the given interval.
func NewScheduler(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It returns nil when ctx is cancelled (graceful shutdown).
// A failed pass is logged and the loop keeps going.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	pass := 0
	for {
		pass++
		start := time.Now()
		if err := s.runner.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				s.logger.Info("shutting down scheduler")
				return nil
			}
			s.logger.Error("analysis pass failed", "pass", pass, "error", err)
		} else {
			s.logger.Info("analysis pass finished", "pass", pass, "took", time.Since(start).Round(time.Millisecond))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
		}
	}
}
