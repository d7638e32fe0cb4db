package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// IndividualAnalyzer scores one company per inference call. It is the
// terminal fallback and always returns a result.
type IndividualAnalyzer struct {
	client  model.InferenceClient
	prompts *PromptBuilder
	opts    model.GenerateOptions
	logger  *slog.Logger
}

// NewIndividualAnalyzer creates a per-company analyzer that sends prompts with opts.
func NewIndividualAnalyzer(client model.InferenceClient, prompts *PromptBuilder, opts model.GenerateOptions, logger *slog.Logger) *IndividualAnalyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &IndividualAnalyzer{
		client:  client,
		prompts: prompts,
		opts:    opts,
		logger:  logger,
	}
}

// Analyze scores company. On any failure it returns DegradedResult instead
// of an error.
func (a *IndividualAnalyzer) Analyze(ctx context.Context, profile model.BuyerProfile, company model.Company) model.AnalysisResult {
	result, err := a.analyze(ctx, profile, company)
	if err != nil {
		a.logger.Warn("single analysis failed", "company", company.Name, "error", err)
		return DegradedResult(err)
	}
	return result
}

func (a *IndividualAnalyzer) analyze(ctx context.Context, profile model.BuyerProfile, company model.Company) (model.AnalysisResult, error) {
	prompt, err := a.prompts.Single(profile, company)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("build single prompt: %w", err)
	}

	raw, err := a.client.Generate(ctx, prompt, a.opts)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	return ParseSingle(raw)
}

// DegradedResult is the placeholder recorded when a company could not be analyzed.
func DegradedResult(cause error) model.AnalysisResult {
	return model.AnalysisResult{
		Score:                 defaultScore,
		Reasoning:             fmt.Sprintf("Analysis failed: %v", cause),
		Synergies:             []string{"Analysis unavailable"},
		Risks:                 []string{"Unable to assess risks"},
		IntegrationComplexity: model.ComplexityUnknown,
		TimeToValue:           "Unknown",
		StrategicValue:        "Analysis failed",
		Degraded:              true,
	}
}
