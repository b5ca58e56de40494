package topology

import (
	"math"

	"github.com/gwmap/gwmap/pkg/resource"
)

// Percentages computes the relative traffic share of each backend target
// within a single rule, as integer percentages rounded to nearest.
//
// Weights are proportions local to the rule - they are not required to sum
// to 100. A sum of zero is defined as 0% for every target (weight 0 means
// "do not serve traffic" but the edge is still rendered). The returned
// slice is index-aligned with targets.
func Percentages(targets []resource.WeightedBackendRef) []int {
	if len(targets) == 0 {
		return nil
	}
	sum := 0
	for _, t := range targets {
		sum += t.Weight
	}
	percents := make([]int, len(targets))
	if sum == 0 {
		return percents
	}
	for i, t := range targets {
		percents[i] = int(math.Round(float64(t.Weight) * 100 / float64(sum)))
	}
	return percents
}
