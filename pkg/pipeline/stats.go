package pipeline

import (
	"math"
	"sort"
)

// quantile returns the p-quantile of values using linear interpolation
// between order statistics (R type 7, the numpy default the training
// statistics were defined against). gonum's stat.Quantile implements
// the type-4 convention, which disagrees on even-length columns, so
// this is computed directly. The input slice is not modified.
func quantile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}
