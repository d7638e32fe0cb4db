package model

import (
	"context"
	"errors"
)

// BuyerProfile describes the acquiring organization. It is read-only for the
// duration of an analysis run.
type BuyerProfile struct {
	CompanyName    string `yaml:"company_name" json:"companyName" validate:"required"`
	Description    string `yaml:"description" json:"description" validate:"required"`
	Strengths      string `yaml:"strengths" json:"strengths"`
	Gaps           string `yaml:"gaps" json:"gaps"`
	StrategicGoals string `yaml:"strategic_goals" json:"strategicGoals"`
	BudgetRange    string `yaml:"budget_range" json:"budgetRange" validate:"budget_range"`
	Timeframe      string `yaml:"timeframe" json:"timeframe" validate:"timeframe"`
}

// KeyMetrics are optional free-text indicators for a candidate company.
type KeyMetrics struct {
	GrowthRate        string `yaml:"growth_rate" json:"growthRate,omitempty"`
	Margins           string `yaml:"margins" json:"margins,omitempty"`
	CustomerRetention string `yaml:"customer_retention" json:"customerRetention,omitempty"`
	MarketPosition    string `yaml:"market_position" json:"marketPosition,omitempty"`
}

// Company is a candidate acquisition target.
type Company struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name" validate:"required"`
	Industry    string      `yaml:"industry" json:"industry" validate:"required"`
	Location    string      `yaml:"location" json:"location" validate:"required"`
	Revenue     string      `yaml:"revenue" json:"revenue"`
	Employees   int         `yaml:"employees" json:"employees" validate:"gte=0"`
	Description string      `yaml:"description" json:"description"`
	KeyMetrics  *KeyMetrics `yaml:"key_metrics" json:"keyMetrics,omitempty"`
	Strengths   []string    `yaml:"strengths" json:"strengths"`
	Challenges  []string    `yaml:"challenges" json:"challenges"`
}

// Complexity is the integration complexity estimate for a target.
type Complexity string

const (
	ComplexityLow     Complexity = "Low"
	ComplexityMedium  Complexity = "Medium"
	ComplexityHigh    Complexity = "High"
	ComplexityUnknown Complexity = "Unknown"
)

// AnalysisResult is the normalized strategic-fit assessment of one company.
// Score is always within [0, 100].
type AnalysisResult struct {
	Score                 int        `json:"score"`
	Reasoning             string     `json:"reasoning"`
	Synergies             []string   `json:"synergies"`
	Risks                 []string   `json:"risks"`
	IntegrationComplexity Complexity `json:"integrationComplexity"`
	TimeToValue           string     `json:"timeToValue"`
	StrategicValue        string     `json:"strategicValue"`
	Degraded              bool       `json:"degraded,omitempty"` // placeholder produced after a failed call
}

// ResultMap maps Company.ID to its analysis. A company with no entry has not
// been analyzed.
type ResultMap map[string]AnalysisResult

// Merge copies every entry of other into m, overwriting existing keys.
func (m ResultMap) Merge(other ResultMap) {
	for id, r := range other {
		m[id] = r
	}
}

// Progress reports how many companies of a run have been processed.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// RankedCompany joins a company with its analysis, if any.
type RankedCompany struct {
	Company
	Rank     int             `json:"rank"`
	Analysis *AnalysisResult `json:"analysis,omitempty"`
}

// Score returns the analysis score, or 0 when the company was not analyzed.
func (r RankedCompany) Score() int {
	if r.Analysis == nil {
		return 0
	}
	return r.Analysis.Score
}

// GenerateOptions is the sampling configuration sent with a generation call.
type GenerateOptions struct {
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"top_p"`
	MaxTokens     int      `json:"max_tokens"`
	NumPredict    int      `json:"num_predict"`
	RepeatPenalty float64  `json:"repeat_penalty"`
	Stop          []string `json:"stop,omitempty"`
}

// InferenceClient talks to the model-serving endpoint.
type InferenceClient interface {
	// Ping checks that the endpoint is reachable.
	Ping(ctx context.Context) error
	// Generate runs one blocking completion and returns the raw model text.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// ErrCompanyNotFound is returned by a CompanyStore when no company has the requested ID.
var ErrCompanyNotFound = errors.New("company not found")

// CompanyStore holds the candidate catalog.
type CompanyStore interface {
	List(ctx context.Context) ([]Company, error)
	Get(ctx context.Context, id string) (Company, error)
	Add(ctx context.Context, c Company) (Company, error)
	Delete(ctx context.Context, id string) error
}

// CompanyFilter decides whether a company is included in a run.
type CompanyFilter interface {
	Match(c Company) bool
}

// Notifier publishes ranked leads after a run.
type Notifier interface {
	Notify(leads []RankedCompany) error
}
