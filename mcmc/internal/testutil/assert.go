// Package testutil holds the statistical assertions shared by the sampler
// test suite. Sampled quantities (chain means, variances, acceptance
// rates) are never compared exactly; every check here is a tolerance
// check, with the tolerance read relative to the magnitude of the expected
// value and floored at an absolute scale of 1, so expectations near zero
// do not demand impossible precision from a finite chain.
package testutil

import (
	"fmt"
	"math"
	"testing"
)

// WithinTol fails the test unless |got - want| <= tol * max(1, |want|).
func WithinTol(t *testing.T, quantity string, want, got, tol float64) {
	t.Helper()
	scale := math.Max(1, math.Abs(want))
	if diff := math.Abs(got - want); diff > tol*scale {
		t.Errorf("%s: got %v, want %v within %v (off by %v)", quantity, got, want, tol*scale, diff)
	}
}

// VectorWithinTol applies WithinTol coordinate-wise, labelling each
// coordinate so a multivariate failure names the offending dimension.
func VectorWithinTol(t *testing.T, quantity string, want, got []float64, tol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: dimension mismatch, want %d coordinates, got %d", quantity, len(want), len(got))
	}
	for i := range want {
		WithinTol(t, fmt.Sprintf("%s[%d]", quantity, i), want[i], got[i], tol)
	}
}
