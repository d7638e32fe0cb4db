package rank

import "github.com/navyaanair/M-A-lead-generation-tool/internal/model"

// Tier buckets a score for display.
type Tier int

const (
	TierLimited Tier = iota
	TierModerate
	TierGood
	TierExcellent
)

// TierOf returns the display tier of score.
func TierOf(score int) Tier {
	switch {
	case score >= 80:
		return TierExcellent
	case score >= 60:
		return TierGood
	case score >= 40:
		return TierModerate
	default:
		return TierLimited
	}
}

// Label is the human-readable name of a tier.
func (t Tier) Label() string {
	switch t {
	case TierExcellent:
		return "Excellent Strategic Fit"
	case TierGood:
		return "Good Strategic Fit"
	case TierModerate:
		return "Moderate Fit"
	default:
		return "Limited Strategic Value"
	}
}

// Label describes score in words.
func Label(score int) string {
	return TierOf(score).Label()
}

// Summary aggregates one ranked run.
type Summary struct {
	Total        int
	Analyzed     int
	Degraded     int
	AverageScore float64
	Top          *model.RankedCompany
}

// Summarize computes totals over ranked. The average covers analyzed,
// non-degraded companies only.
func Summarize(ranked []model.RankedCompany) Summary {
	s := Summary{Total: len(ranked)}
	sum := 0
	scored := 0
	for i := range ranked {
		a := ranked[i].Analysis
		if a == nil {
			continue
		}
		s.Analyzed++
		if a.Degraded {
			s.Degraded++
			continue
		}
		sum += a.Score
		scored++
		if s.Top == nil {
			s.Top = &ranked[i]
		}
	}
	if scored > 0 {
		s.AverageScore = float64(sum) / float64(scored)
	}
	return s
}
