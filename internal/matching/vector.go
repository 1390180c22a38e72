package matching

import (
	"math"

	"careermate/internal/domain"
)

// ProfileVector flattens the scored dimensions into a fixed-order vector over every
// trait, skill and value label in the question bank. Unanswered labels are 0.
func (e *Engine) ProfileVector(v domain.AggregatedVectors) []float32 {
	out := make([]float32, len(e.catalog.labelSpace))
	for i, key := range e.catalog.labelSpace {
		if score, ok := v.For(key.dimension)[key.label]; ok {
			out[i] = float32(score)
		}
	}
	return out
}

// ProfileDimensions is the length of ProfileVector.
func (e *Engine) ProfileDimensions() int {
	return len(e.catalog.labelSpace)
}

// Distance is the Euclidean distance between two profile vectors. Vectors of different
// length are compared over their common prefix.
func Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
