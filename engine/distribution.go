package engine

import (
	"sort"

	"bounty-marketplace-system/models"
)

// ValidateDistribution checks that a reward split is well-formed: positions
// are exactly 1..N with no gaps or duplicates, every percentage is at least
// 1, and the percentages sum to exactly 100. Integer arithmetic only — a
// split that "almost" sums to 100 is rejected.
//
// Returns a normalized copy sorted by position, or ErrDistributionMustSumTo100.
func ValidateDistribution(dist []models.DistributionShare) (models.DistributionList, error) {
	if len(dist) == 0 || len(dist) > 100 {
		return nil, ErrDistributionMustSumTo100
	}

	normalized := make(models.DistributionList, len(dist))
	copy(normalized, dist)
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Position < normalized[j].Position
	})

	var sum uint64
	for i, share := range normalized {
		if share.Position != uint32(i+1) {
			// gap, duplicate, or not starting at 1
			return nil, ErrDistributionMustSumTo100
		}
		if share.Percentage < 1 || share.Percentage > 100 {
			return nil, ErrDistributionMustSumTo100
		}
		sum += uint64(share.Percentage)
	}
	if sum != 100 {
		return nil, ErrDistributionMustSumTo100
	}
	return normalized, nil
}
