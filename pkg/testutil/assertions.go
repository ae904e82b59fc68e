package testutil

import (
	"math"
	"testing"
)

// epsilon tolerates float drift from the millisecond-to-minute conversions.
const epsilon = 1e-9

// AssertClose verifies two floats agree within epsilon.
func AssertClose(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

// SumFloats sums a slice, for conservation checks.
func SumFloats(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}
