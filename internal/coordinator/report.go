package coordinator

import (
	"time"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Status is the terminal outcome of a run.
type Status string

const (
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// SubBatch records how one partition of a run was analyzed.
type SubBatch struct {
	Index    int   `json:"index"`
	Size     int   `json:"size"`
	Fallback bool  `json:"fallback"`
	Err      error `json:"-"` // batch failure that triggered the fallback
}

// Report is the result object of a run.
type Report struct {
	RunID      string              `json:"runId"`
	Status     Status              `json:"status"`
	Results    model.ResultMap     `json:"results"`
	SubBatches []SubBatch          `json:"subBatches"`
	Fallback   []string            `json:"fallback,omitempty"`
	Degraded   []string            `json:"degraded,omitempty"`
	Unmatched  []*model.MatchError `json:"-"`
	Duration   time.Duration       `json:"duration"`
}
