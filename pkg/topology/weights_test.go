package topology

import (
	"slices"
	"testing"

	"github.com/gwmap/gwmap/pkg/resource"
)

func refs(weights ...int) []resource.WeightedBackendRef {
	out := make([]resource.WeightedBackendRef, len(weights))
	for i, w := range weights {
		out[i] = resource.WeightedBackendRef{Weight: w}
	}
	return out
}

func TestPercentages(t *testing.T) {
	tests := []struct {
		name    string
		targets []resource.WeightedBackendRef
		want    []int
	}{
		{name: "Empty", targets: nil, want: nil},
		{name: "SingleUnweighted", targets: refs(1), want: []int{100}},
		{name: "EightyTwenty", targets: refs(80, 20), want: []int{80, 20}},
		{name: "Proportions", targets: refs(1, 3), want: []int{25, 75}},
		{name: "AllZero", targets: refs(0, 0), want: []int{0, 0}},
		{name: "ZeroAmongLive", targets: refs(0, 1), want: []int{0, 100}},
		{name: "Thirds", targets: refs(1, 1, 1), want: []int{33, 33, 33}},
		{name: "NotSummingToHundred", targets: refs(2, 6), want: []int{25, 75}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentages(tt.targets)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Percentages = %v, want %v", got, tt.want)
			}
		})
	}
}
