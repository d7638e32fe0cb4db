// Package pipeline wires one end-to-end analysis pass over the catalog.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/coordinator"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/filter"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/rank"
)

// Analyzer runs one analysis over a set of companies.
type Analyzer interface {
	Run(ctx context.Context, profile model.BuyerProfile, companies []model.Company, onProgress func(model.Progress)) (*coordinator.Report, error)
}

// Result is the outcome of one pass.
type Result struct {
	Report *coordinator.Report
	Ranked []model.RankedCompany
}

// Pipeline owns the full analysis pass for one buyer:
// list → filter → analyze → rank → notify.
type Pipeline struct {
	profile  model.BuyerProfile
	store    model.CompanyStore
	filter   model.CompanyFilter
	analyzer Analyzer
	notifier model.Notifier
	logger   *slog.Logger
}

// New creates a pipeline wired with all its dependencies. filter and
// notifier may be nil to include every company and skip notification.
func New(
	profile model.BuyerProfile,
	store model.CompanyStore,
	companyFilter model.CompanyFilter,
	analyzer Analyzer,
	notifier model.Notifier,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		profile:  profile,
		store:    store,
		filter:   companyFilter,
		analyzer: analyzer,
		notifier: notifier,
		logger:   logger,
	}
}

// Run executes one pass. When the analysis itself fails the partial Result
// is returned together with the error. A notification failure is returned
// after ranking completes.
func (p *Pipeline) Run(ctx context.Context, onProgress func(model.Progress)) (*Result, error) {
	companies, err := p.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}

	candidates := companies
	if p.filter != nil {
		candidates = filter.Apply(p.filter, companies)
	}

	report, err := p.analyzer.Run(ctx, p.profile, candidates, onProgress)
	if err != nil {
		return &Result{Report: report}, fmt.Errorf("analyzing %d companies: %w", len(candidates), err)
	}

	res := &Result{
		Report: report,
		Ranked: rank.Rank(candidates, report.Results),
	}

	summary := rank.Summarize(res.Ranked)
	args := []any{
		"run_id", report.RunID,
		"catalog", len(companies),
		"candidates", len(candidates),
		"analyzed", summary.Analyzed,
		"degraded", summary.Degraded,
		"avg_score", fmt.Sprintf("%.1f", summary.AverageScore),
	}
	if summary.Top != nil {
		args = append(args, "top", summary.Top.Name, "top_score", summary.Top.Score())
	}
	p.logger.Info("analysis pass complete", args...)

	if p.notifier != nil && len(res.Ranked) > 0 {
		if err := p.notifier.Notify(res.Ranked); err != nil {
			return res, fmt.Errorf("notifying: %w", err)
		}
	}

	return res, nil
}

// RunOnce runs a pass without progress reporting, for the scheduler.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	_, err := p.Run(ctx, nil)
	return err
}
