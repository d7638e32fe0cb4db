package coordinator

import (
	"slices"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Partition splits companies into the sub-batches of one run. Up to
// smallLimit companies go out as a single batch; larger inputs are cut
// into consecutive chunks of batchSize, the last one possibly shorter.
// Both limits must be at least 1.
func Partition(companies []model.Company, smallLimit, batchSize int) [][]model.Company {
	if len(companies) == 0 {
		return nil
	}
	if len(companies) <= smallLimit {
		return [][]model.Company{companies}
	}
	return slices.Collect(slices.Chunk(companies, batchSize))
}
