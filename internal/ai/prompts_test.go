package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

func testProfile() model.BuyerProfile {
	return model.BuyerProfile{
		CompanyName:    "Acme Holdings",
		Description:    "Industrial software group",
		Strengths:      "Distribution network",
		Gaps:           "No cloud analytics",
		StrategicGoals: "Expand into Europe",
		BudgetRange:    "$10M - $50M",
		Timeframe:      "6-12 months",
	}
}

func TestPromptBuilder_Batch(t *testing.T) {
	companies := []model.Company{
		{
			ID:          "c-1",
			Name:        "Foo Corp",
			Industry:    "SaaS",
			Location:    "Berlin",
			Revenue:     "$12M",
			Employees:   80,
			Description: "Cloud analytics",
			KeyMetrics:  &model.KeyMetrics{GrowthRate: "40%", MarketPosition: "Challenger"},
			Strengths:   []string{"Product", "Team"},
		},
		{ID: "c-2", Name: "Bar Inc", Industry: "Logistics", Location: "Lyon"},
	}

	prompt, err := NewPromptBuilder().Batch(testProfile(), companies)
	require.NoError(t, err)

	for _, want := range []string{
		"Acme Holdings",
		"No cloud analytics",
		"Budget Range: $10M - $50M",
		"1. Foo Corp [id: c-1]",
		"2. Bar Inc [id: c-2]",
		"Growth: 40%",
		"Strengths: Product, Team",
		"Employees: 80",
		`"analyses"`,
		`"companyId"`,
		"Budget fit",
		"Respond only with the JSON object",
	} {
		assert.Contains(t, prompt, want)
	}

	// Bar Inc has no optional fields.
	barSection := prompt[strings.Index(prompt, "2. Bar Inc"):]
	assert.Contains(t, barSection, "Revenue: N/A")
	assert.Contains(t, barSection, "Margins: N/A")
	assert.Contains(t, barSection, "Challenges: N/A")
}

func TestPromptBuilder_BatchEmpty(t *testing.T) {
	_, err := NewPromptBuilder().Batch(testProfile(), nil)
	assert.Error(t, err)
}

func TestPromptBuilder_Single(t *testing.T) {
	company := model.Company{ID: "c-9", Name: "Baz Ltd", Industry: "Fintech", Location: "Leeds", Revenue: "$3M"}

	prompt, err := NewPromptBuilder().Single(testProfile(), company)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Target: Baz Ltd - Fintech - $3M - N/A")
	assert.Contains(t, prompt, "Gaps: No cloud analytics")
	assert.Contains(t, prompt, `"score"`)
	assert.NotContains(t, prompt, `"analyses"`)
}
