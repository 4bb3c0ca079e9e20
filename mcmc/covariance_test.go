package mcmc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestIsotropicCovariance_RejectsNonPositiveVariance(t *testing.T) {
	_, err := NewIsotropicCovariance(3, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllConditioned))
}

func TestIsotropicCovariance_CholAndNorm2AreConsistent(t *testing.T) {
	cov, err := NewIsotropicCovariance(2, 4.0)
	require.NoError(t, err)

	x := []float64{1, 1}
	// chol(x) should have norm2 under the covariance equal to ||x||^2
	// scaled consistently: Norm2(Chol(e)) = variance * Norm2(e) for an
	// isotropic operator.
	y := cov.Chol(x)
	assert.Equal(t, []float64{2, 2}, y)
	assert.InDelta(t, 0.5, cov.Norm2(x), 1e-12)
}

func TestDiagonalCovariance_RejectsNonPositiveVariance(t *testing.T) {
	_, err := NewDiagonalCovariance([]float64{1.0, -0.1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllConditioned))
}

func TestDiagonalCovariance_InvDividesByVariance(t *testing.T) {
	cov, err := NewDiagonalCovariance([]float64{4.0, 9.0})
	require.NoError(t, err)

	x := []float64{2, 3}
	inv := cov.Inv(x)
	assert.InDelta(t, 0.5, inv[0], 1e-12)
	assert.InDelta(t, 1.0/3.0, inv[1], 1e-12)
}

func TestDenseCovariance_RejectsNonPositiveDefiniteMatrix(t *testing.T) {
	bad := mat.NewSymDense(2, []float64{1, 2, 2, 1})
	_, err := NewDenseCovariance(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllConditioned))
}

func TestDenseCovariance_CholOnDiagonalMatrixIsSqrtScaling(t *testing.T) {
	// For a diagonal SymDense, the lower Cholesky factor is itself
	// diagonal with entries sqrt(variance_i), so Chol(e_i) is trivial to
	// check by hand.
	sym := mat.NewSymDense(2, []float64{4, 0, 0, 9})
	cov, err := NewDenseCovariance(sym)
	require.NoError(t, err)

	y := cov.Chol([]float64{1, 1})
	assert.InDelta(t, 2.0, y[0], 1e-9)
	assert.InDelta(t, 3.0, y[1], 1e-9)
}

func TestDenseCovariance_NormAndInvAreConsistent(t *testing.T) {
	sym := mat.NewSymDense(2, []float64{2, 0, 0, 0.5})
	cov, err := NewDenseCovariance(sym)
	require.NoError(t, err)

	x := []float64{2, 2}
	// C^-1 = diag(0.5, 2); norm2 = 0.5*4 + 2*4 = 10
	assert.InDelta(t, 10.0, cov.Norm2(x), 1e-9)
}
