package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/ai"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// BatchAnalyzer scores a sub-batch in one call, failing as a whole.
type BatchAnalyzer interface {
	Analyze(ctx context.Context, profile model.BuyerProfile, companies []model.Company) (ai.BatchResult, error)
}

// SingleAnalyzer scores one company and always returns a result.
type SingleAnalyzer interface {
	Analyze(ctx context.Context, profile model.BuyerProfile, company model.Company) model.AnalysisResult
}

// Options sizes the work of a run.
type Options struct {
	SmallBatchLimit     int // inputs up to this size go out as one batch
	BatchSize           int // sub-batch size above SmallBatchLimit
	FallbackConcurrency int // in-flight single calls per degraded group
}

// DefaultOptions returns the standard sizing: one batch up to 8 companies,
// sub-batches of 5 beyond that and fallback groups of 3.
func DefaultOptions() Options {
	return Options{SmallBatchLimit: 8, BatchSize: 5, FallbackConcurrency: 3}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SmallBatchLimit < 1 {
		o.SmallBatchLimit = d.SmallBatchLimit
	}
	if o.BatchSize < 1 {
		o.BatchSize = d.BatchSize
	}
	if o.FallbackConcurrency < 1 {
		o.FallbackConcurrency = d.FallbackConcurrency
	}
	return o
}

// Coordinator drives analysis runs: liveness check, sub-batch partitioning,
// batch attempts with per-company fallback, and progress reporting.
// Only one run may be in flight at a time.
type Coordinator struct {
	client model.InferenceClient
	batch  BatchAnalyzer
	single SingleAnalyzer
	opts   Options
	logger *slog.Logger

	running atomic.Bool
	state   atomic.Int32
}

// New creates a coordinator wired with its analyzers.
func New(client model.InferenceClient, batch BatchAnalyzer, single SingleAnalyzer, opts Options, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{
		client: client,
		batch:  batch,
		single: single,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// State returns the current phase. Complete and Failed persist until the
// next run starts; a canceled run returns to Idle.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

func (c *Coordinator) setState(s State) {
	c.state.Store(int32(s))
}

// run holds the accumulator of one Run. Only the coordinating goroutine
// touches it.
type run struct {
	report     *Report
	total      int
	current    int
	onProgress func(model.Progress)
}

func (r *run) advance(n int) {
	r.current += n
	r.emit(model.Progress{Current: r.current, Total: r.total})
}

func (r *run) emit(p model.Progress) {
	if r.onProgress != nil {
		r.onProgress(p)
	}
}

// Run analyzes companies against profile. onProgress, if non-nil, is called
// synchronously with a (current, total) pair that never decreases within the
// run; it starts at (0, N) and a final (0, 0) marks the reset at run end.
//
// The returned error is non-nil only when the run Failed (connectivity) or
// was Canceled through ctx. Batch and per-company failures are absorbed into
// degraded results and recorded in the report.
func (c *Coordinator) Run(ctx context.Context, profile model.BuyerProfile, companies []model.Company, onProgress func(model.Progress)) (*Report, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, model.ErrRunInProgress
	}
	defer c.running.Store(false)

	start := time.Now()
	r := &run{
		report: &Report{
			RunID:   uuid.NewString(),
			Results: make(model.ResultMap, len(companies)),
		},
		total:      len(companies),
		onProgress: onProgress,
	}
	logger := c.logger.With("run_id", r.report.RunID)

	defer func() {
		r.report.Duration = time.Since(start)
		r.emit(model.Progress{})
	}()

	c.setState(StateConnecting)
	r.emit(model.Progress{Current: 0, Total: r.total})
	logger.Info("analysis run started", "companies", r.total)

	if err := c.client.Ping(ctx); err != nil {
		var connErr *model.ConnectivityError
		if !errors.As(err, &connErr) {
			err = &model.ConnectivityError{Endpoint: "inference endpoint", Err: err}
		}
		c.setState(StateFailed)
		r.report.Status = StatusFailed
		logger.Error("liveness check failed", "error", err)
		return r.report, err
	}

	for i, sub := range Partition(companies, c.opts.SmallBatchLimit, c.opts.BatchSize) {
		if err := ctx.Err(); err != nil {
			return c.cancel(r, logger, err)
		}
		if err := c.runSubBatch(ctx, r, logger, i, profile, sub); err != nil {
			return c.cancel(r, logger, err)
		}
	}

	c.setState(StateComplete)
	r.report.Status = StatusComplete
	logger.Info("analysis run complete",
		"analyzed", len(r.report.Results),
		"sub_batches", len(r.report.SubBatches),
		"fallback", len(r.report.Fallback),
		"degraded", len(r.report.Degraded),
		"unmatched", len(r.report.Unmatched),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return r.report, nil
}

func (c *Coordinator) cancel(r *run, logger *slog.Logger, err error) (*Report, error) {
	c.setState(StateIdle)
	r.report.Status = StatusCanceled
	logger.Warn("analysis run canceled", "analyzed", len(r.report.Results), "error", err)
	return r.report, fmt.Errorf("analysis run canceled: %w", err)
}

// runSubBatch tries one batch call and degrades to single calls on failure.
// It returns an error only when ctx is done.
func (c *Coordinator) runSubBatch(ctx context.Context, r *run, logger *slog.Logger, index int, profile model.BuyerProfile, sub []model.Company) error {
	c.setState(StateBatchAttempt)
	record := SubBatch{Index: index, Size: len(sub)}

	res, err := c.batch.Analyze(ctx, profile, sub)
	if err == nil {
		c.setState(StateMerging)
		r.report.Results.Merge(res.Results)
		r.report.Unmatched = append(r.report.Unmatched, res.Unmatched...)
		r.report.SubBatches = append(r.report.SubBatches, record)
		r.advance(len(sub))
		logger.Debug("sub-batch analyzed", "batch", index, "size", len(sub), "matched", len(res.Results))
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	logger.Warn("batch analysis failed, falling back to individual analysis", "batch", index, "size", len(sub), "error", err)
	record.Fallback = true
	record.Err = err
	r.report.SubBatches = append(r.report.SubBatches, record)
	return c.degrade(ctx, r, logger, profile, sub)
}

// degrade analyzes sub one company at a time in groups of
// FallbackConcurrency; each group completes before the next starts.
// Results land in per-index slots and are merged afterwards.
func (c *Coordinator) degrade(ctx context.Context, r *run, logger *slog.Logger, profile model.BuyerProfile, sub []model.Company) error {
	width := c.opts.FallbackConcurrency
	for start := 0; start < len(sub); start += width {
		if err := ctx.Err(); err != nil {
			return err
		}
		group := sub[start:min(start+width, len(sub))]

		c.setState(StateDegrading)
		slots := make([]model.AnalysisResult, len(group))
		var g errgroup.Group
		g.SetLimit(width)
		for i, company := range group {
			g.Go(func() error {
				slots[i] = c.single.Analyze(ctx, profile, company)
				return nil
			})
		}
		_ = g.Wait() // single analysis never fails

		if err := ctx.Err(); err != nil {
			return err
		}

		c.setState(StateMerging)
		for i, company := range group {
			r.report.Results[company.ID] = slots[i]
			r.report.Fallback = append(r.report.Fallback, company.ID)
			if slots[i].Degraded {
				r.report.Degraded = append(r.report.Degraded, company.ID)
			}
			r.advance(1)
		}
		logger.Debug("fallback group analyzed", "size", len(group), "progress", r.current)
	}
	return nil
}
