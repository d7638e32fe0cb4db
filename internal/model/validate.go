package model

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Accepted budget ranges and timeframes for a buyer profile.
var (
	BudgetRanges = []string{"$1M - $10M", "$10M - $50M", "$50M - $100M", "$100M+"}
	Timeframes   = []string{"3-6 months", "6-12 months", "12-18 months", "18+ months"}
)

const (
	DefaultBudgetRange = "$10M - $50M"
	DefaultTimeframe   = "6-12 months"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("budget_range", func(fl validator.FieldLevel) bool {
		return slices.Contains(BudgetRanges, fl.Field().String())
	}))
	must(v.RegisterValidation("timeframe", func(fl validator.FieldLevel) bool {
		return slices.Contains(Timeframes, fl.Field().String())
	}))
	return v
}

// WithDefaults fills an empty budget range and timeframe.
func (p BuyerProfile) WithDefaults() BuyerProfile {
	if p.BudgetRange == "" {
		p.BudgetRange = DefaultBudgetRange
	}
	if p.Timeframe == "" {
		p.Timeframe = DefaultTimeframe
	}
	return p
}

// Validate checks that the profile is complete enough to analyze against.
func (p BuyerProfile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid buyer profile: %w", err)
	}
	return nil
}

// Validate checks the required company fields.
func (c Company) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid company %q: %w", c.Name, err)
	}
	return nil
}
