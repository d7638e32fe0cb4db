package model

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() BuyerProfile {
	return BuyerProfile{
		CompanyName: "Northwind Holdings",
		Description: "Mid-market logistics software group",
		BudgetRange: "$10M - $50M",
		Timeframe:   "6-12 months",
	}
}

func TestBuyerProfile_WithDefaults(t *testing.T) {
	p := BuyerProfile{CompanyName: "A", Description: "B"}.WithDefaults()
	assert.Equal(t, DefaultBudgetRange, p.BudgetRange)
	assert.Equal(t, DefaultTimeframe, p.Timeframe)

	kept := BuyerProfile{BudgetRange: "$100M+", Timeframe: "18+ months"}.WithDefaults()
	assert.Equal(t, "$100M+", kept.BudgetRange)
	assert.Equal(t, "18+ months", kept.Timeframe)
}

func TestBuyerProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BuyerProfile)
		wantErr bool
	}{
		{"valid", func(*BuyerProfile) {}, false},
		{"missing company name", func(p *BuyerProfile) { p.CompanyName = "" }, true},
		{"missing description", func(p *BuyerProfile) { p.Description = "" }, true},
		{"unknown budget", func(p *BuyerProfile) { p.BudgetRange = "$5M" }, true},
		{"empty budget", func(p *BuyerProfile) { p.BudgetRange = "" }, true},
		{"unknown timeframe", func(p *BuyerProfile) { p.Timeframe = "tomorrow" }, true},
		{"optional fields empty", func(p *BuyerProfile) { p.Strengths, p.Gaps, p.StrategicGoals = "", "", "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				require.Error(t, err)
				var verrs validator.ValidationErrors
				assert.True(t, errors.As(err, &verrs))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBuyerProfile_AllBudgetsAndTimeframes(t *testing.T) {
	for _, b := range BudgetRanges {
		for _, tf := range Timeframes {
			p := validProfile()
			p.BudgetRange, p.Timeframe = b, tf
			assert.NoError(t, p.Validate(), "%s / %s", b, tf)
		}
	}
}

func TestCompany_Validate(t *testing.T) {
	ok := Company{Name: "Acme", Industry: "SaaS", Location: "Austin"}
	assert.NoError(t, ok.Validate())

	tests := []struct {
		name string
		c    Company
	}{
		{"no name", Company{Industry: "SaaS", Location: "Austin"}},
		{"no industry", Company{Name: "Acme", Location: "Austin"}},
		{"no location", Company{Name: "Acme", Industry: "SaaS"}},
		{"negative employees", Company{Name: "Acme", Industry: "SaaS", Location: "Austin", Employees: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.c.Validate())
		})
	}
}

func TestResultMap_Merge(t *testing.T) {
	m := ResultMap{"a": {Score: 10}}
	m.Merge(ResultMap{"a": {Score: 20}, "b": {Score: 30}})
	assert.Equal(t, 20, m["a"].Score)
	assert.Equal(t, 30, m["b"].Score)
}

func TestRankedCompany_Score(t *testing.T) {
	assert.Equal(t, 0, RankedCompany{}.Score())
	assert.Equal(t, 42, RankedCompany{Analysis: &AnalysisResult{Score: 42}}.Score())
}
