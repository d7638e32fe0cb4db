package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// BatchResult is the outcome of one successful batch call.
type BatchResult struct {
	Results   model.ResultMap
	Unmatched []*model.MatchError
}

// BatchAnalyzer scores several companies with a single inference call.
type BatchAnalyzer struct {
	client  model.InferenceClient
	prompts *PromptBuilder
	opts    model.GenerateOptions
	logger  *slog.Logger
}

// NewBatchAnalyzer creates a batch analyzer that sends prompts with opts.
func NewBatchAnalyzer(client model.InferenceClient, prompts *PromptBuilder, opts model.GenerateOptions, logger *slog.Logger) *BatchAnalyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BatchAnalyzer{
		client:  client,
		prompts: prompts,
		opts:    opts,
		logger:  logger,
	}
}

// Analyze runs one batch call for companies. Any transport, parse or
// structure failure fails the whole batch; no partial results are returned.
// Companies without a matching entry in the response are simply absent.
func (a *BatchAnalyzer) Analyze(ctx context.Context, profile model.BuyerProfile, companies []model.Company) (BatchResult, error) {
	prompt, err := a.prompts.Batch(profile, companies)
	if err != nil {
		return BatchResult{}, fmt.Errorf("build batch prompt: %w", err)
	}

	raw, err := a.client.Generate(ctx, prompt, a.opts)
	if err != nil {
		return BatchResult{}, fmt.Errorf("batch generate: %w", err)
	}

	entries, err := ParseBatch(raw)
	if err != nil {
		a.logger.Debug("unparseable batch response", "response", truncate(raw, 400))
		return BatchResult{}, err
	}

	out := BatchResult{Results: make(model.ResultMap, len(entries))}
	for _, entry := range entries {
		company, ok := matchCompany(entry, companies)
		if !ok {
			out.Unmatched = append(out.Unmatched, &model.MatchError{Name: entry.CompanyName, CompanyID: entry.CompanyID})
			continue
		}
		if _, dup := out.Results[company.ID]; dup {
			a.logger.Debug("duplicate analysis ignored", "company", company.Name, "returned_name", entry.CompanyName)
			continue
		}
		out.Results[company.ID] = entry.Result
	}

	for _, m := range out.Unmatched {
		a.logger.Warn("dropping unmatched analysis", "error", m)
	}
	a.logger.Debug("batch analyzed",
		"companies", len(companies),
		"returned", len(entries),
		"matched", len(out.Results),
		"unmatched", len(out.Unmatched),
	)
	return out, nil
}

// matchCompany resolves a returned entry to an input company: an exact ID
// echo wins, otherwise the first company whose name contains, or is
// contained in, the returned name (case-insensitive).
func matchCompany(entry NamedResult, companies []model.Company) (model.Company, bool) {
	if id := strings.TrimSpace(entry.CompanyID); id != "" {
		for _, c := range companies {
			if c.ID == id {
				return c, true
			}
		}
	}

	name := strings.ToLower(strings.TrimSpace(entry.CompanyName))
	if name == "" {
		return model.Company{}, false
	}
	for _, c := range companies {
		candidate := strings.ToLower(strings.TrimSpace(c.Name))
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, name) || strings.Contains(name, candidate) {
			return c, true
		}
	}
	return model.Company{}, false
}
