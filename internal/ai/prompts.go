package ai

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

//go:embed prompts/*.md
var promptFS embed.FS

// Parsed once at package init; reused on every prompt build.
var (
	batchTemplate  = template.Must(template.ParseFS(promptFS, "prompts/batch_analysis.md"))
	singleTemplate = template.Must(template.ParseFS(promptFS, "prompts/single_analysis.md"))
)

// notAvailable marks an empty optional field in a prompt.
const notAvailable = "N/A"

// PromptBuilder renders a buyer profile and target companies into model prompts.
type PromptBuilder struct {
	batch  *template.Template
	single *template.Template
}

// NewPromptBuilder returns a builder using the embedded prompt templates.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{batch: batchTemplate, single: singleTemplate}
}

type buyerView struct {
	CompanyName    string
	Description    string
	Strengths      string
	Gaps           string
	StrategicGoals string
	BudgetRange    string
	Timeframe      string
}

type targetView struct {
	Index             int
	ID                string
	Name              string
	Industry          string
	Location          string
	Revenue           string
	Employees         string
	Description       string
	GrowthRate        string
	Margins           string
	CustomerRetention string
	MarketPosition    string
	Strengths         string
	Challenges        string
}

type promptData struct {
	Buyer   buyerView
	Targets []targetView
}

// Batch renders the multi-company prompt asking for an "analyses" array.
func (b *PromptBuilder) Batch(profile model.BuyerProfile, companies []model.Company) (string, error) {
	if len(companies) == 0 {
		return "", errors.New("batch prompt needs at least one company")
	}
	return render(b.batch, profile, companies)
}

// Single renders the compact one-company prompt asking for a flat result object.
func (b *PromptBuilder) Single(profile model.BuyerProfile, company model.Company) (string, error) {
	return render(b.single, profile, []model.Company{company})
}

func render(tmpl *template.Template, profile model.BuyerProfile, companies []model.Company) (string, error) {
	data := promptData{
		Buyer: buyerView{
			CompanyName:    orNA(profile.CompanyName),
			Description:    orNA(profile.Description),
			Strengths:      orNA(profile.Strengths),
			Gaps:           orNA(profile.Gaps),
			StrategicGoals: orNA(profile.StrategicGoals),
			BudgetRange:    orNA(profile.BudgetRange),
			Timeframe:      orNA(profile.Timeframe),
		},
		Targets: make([]targetView, len(companies)),
	}
	for i, c := range companies {
		var km model.KeyMetrics
		if c.KeyMetrics != nil {
			km = *c.KeyMetrics
		}
		data.Targets[i] = targetView{
			Index:             i + 1,
			ID:                c.ID,
			Name:              c.Name,
			Industry:          orNA(c.Industry),
			Location:          orNA(c.Location),
			Revenue:           orNA(c.Revenue),
			Employees:         strconv.Itoa(c.Employees),
			Description:       orNA(c.Description),
			GrowthRate:        orNA(km.GrowthRate),
			Margins:           orNA(km.Margins),
			CustomerRetention: orNA(km.CustomerRetention),
			MarketPosition:    orNA(km.MarketPosition),
			Strengths:         joinOrNA(c.Strengths),
			Challenges:        joinOrNA(c.Challenges),
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func joinOrNA(items []string) string {
	if len(items) == 0 {
		return notAvailable
	}
	return strings.Join(items, ", ")
}
