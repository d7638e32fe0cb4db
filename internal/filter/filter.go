package filter

import (
	"strings"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Ensure IndustryLocationFilter implements model.CompanyFilter.
var _ model.CompanyFilter = (*IndustryLocationFilter)(nil)

// IndustryLocationFilter narrows the candidate catalog before a run.
// Matching is case-insensitive substring. Empty include lists are treated
// as "match all".
type IndustryLocationFilter struct {
	industries        []string
	locations         []string
	excludeIndustries []string
}

// NewIndustryLocationFilter returns a filter that requires an industry match,
// a location match, and no excluded-industry match.
func NewIndustryLocationFilter(industries, locations, excludeIndustries []string) *IndustryLocationFilter {
	return &IndustryLocationFilter{
		industries:        lowerAll(industries),
		locations:         lowerAll(locations),
		excludeIndustries: lowerAll(excludeIndustries),
	}
}

// Match returns true if c passes every configured list.
func (f *IndustryLocationFilter) Match(c model.Company) bool {
	industry := strings.ToLower(c.Industry)
	location := strings.ToLower(c.Location)

	if len(f.industries) > 0 && !containsAny(industry, f.industries) {
		return false
	}
	if len(f.locations) > 0 && !containsAny(location, f.locations) {
		return false
	}
	if containsAny(industry, f.excludeIndustries) {
		return false
	}
	return true
}

// Apply returns the companies in list that pass f, preserving order.
func Apply(f model.CompanyFilter, list []model.Company) []model.Company {
	var out []model.Company
	for _, c := range list {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}
