package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// --- Mock implementations ---

type CountingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *CountingRunner) RunOnce(_ context.Context) error {
	r.calls.Add(1)
	return r.err
}

// OverlapRunner records whether two passes ever ran at the same time.
type OverlapRunner struct {
	active   atomic.Int32
	overlaps atomic.Int32
	calls    atomic.Int32
}

func (r *OverlapRunner) RunOnce(_ context.Context) error {
	if r.active.Add(1) > 1 {
		r.overlaps.Add(1)
	}
	r.calls.Add(1)
	time.Sleep(30 * time.Millisecond)
	r.active.Add(-1)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runFor(t *testing.T, s *Scheduler, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(d)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
}

// --- Tests ---

func TestRun_CancelReturnsPromptly(t *testing.T) {
	runner := &CountingRunner{}
	runFor(t, NewScheduler(runner, time.Hour, discardLogger()), 100*time.Millisecond)

	if got := runner.calls.Load(); got != 1 {
		t.Errorf("runner calls = %d, want 1 immediate pass", got)
	}
}

func TestRun_RepeatsOnInterval(t *testing.T) {
	runner := &CountingRunner{}
	runFor(t, NewScheduler(runner, 100*time.Millisecond, discardLogger()), 250*time.Millisecond)

	if got := runner.calls.Load(); got < 2 {
		t.Errorf("runner calls = %d, want >= 2", got)
	}
}

func TestRun_FailedPassDoesNotStopLoop(t *testing.T) {
	runner := &CountingRunner{err: errors.New("endpoint down")}
	runFor(t, NewScheduler(runner, 50*time.Millisecond, discardLogger()), 180*time.Millisecond)

	if got := runner.calls.Load(); got < 2 {
		t.Errorf("runner calls = %d, want >= 2 (failures should not stop the loop)", got)
	}
}

func TestRun_PassesNeverOverlap(t *testing.T) {
	runner := &OverlapRunner{}
	runFor(t, NewScheduler(runner, time.Millisecond, discardLogger()), 200*time.Millisecond)

	if got := runner.calls.Load(); got < 2 {
		t.Errorf("runner calls = %d, want >= 2", got)
	}
	if got := runner.overlaps.Load(); got != 0 {
		t.Errorf("observed %d overlapping passes, want 0", got)
	}
}
