package notifier

import (
	"io"
	"log/slog"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/rank"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes ranked leads to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
	topN   int
}

// NewLogNotifier returns a notifier that logs the first topN leads via slog.
// topN <= 0 logs all of them.
func NewLogNotifier(logger *slog.Logger, topN int) *LogNotifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogNotifier{logger: logger, topN: topN}
}

// Notify logs each lead with rank, company, score, label and complexity.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(leads []model.RankedCompany) error {
	for _, l := range rank.Top(leads, n.topN) {
		args := []any{"rank", l.Rank, "company", l.Name, "industry", l.Industry, "location", l.Location}
		if l.Analysis == nil {
			n.logger.Info("lead not analyzed", args...)
			continue
		}
		args = append(args,
			"score", l.Analysis.Score,
			"label", rank.Label(l.Analysis.Score),
			"complexity", l.Analysis.IntegrationComplexity,
			"time_to_value", l.Analysis.TimeToValue,
		)
		if l.Analysis.Degraded {
			args = append(args, "degraded", true)
		}
		n.logger.Info("lead", args...)
	}
	return nil
}
