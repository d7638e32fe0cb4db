// Package rank orders analyzed companies by strategic fit.
package rank

import (
	"sort"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Rank joins each company with its entry in results and sorts by score,
// highest first. Companies without an entry count as score 0. Ties keep
// input order. Neither argument is modified.
func Rank(companies []model.Company, results model.ResultMap) []model.RankedCompany {
	ranked := make([]model.RankedCompany, len(companies))
	for i, c := range companies {
		ranked[i] = model.RankedCompany{Company: c}
		if r, ok := results[c.ID]; ok {
			ranked[i].Analysis = &r
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Top returns at most n leads from the front of ranked.
func Top(ranked []model.RankedCompany, n int) []model.RankedCompany {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
