package mcmc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type identitySolver struct{}

func (identitySolver) Evaluate(theta Parameter) ([]float64, error) {
	return theta.Coefficient(), nil
}

type offsetSolver struct {
	offset []float64
}

type scalingSolver struct {
	factor float64
}

func (s scalingSolver) Evaluate(theta Parameter) ([]float64, error) {
	coeff := theta.Coefficient()
	out := make([]float64, len(coeff))
	for i := range coeff {
		out[i] = s.factor * coeff[i]
	}
	return out, nil
}

func (s offsetSolver) Evaluate(theta Parameter) ([]float64, error) {
	coeff := theta.Coefficient()
	out := make([]float64, len(coeff))
	for i := range coeff {
		out[i] = coeff[i] + s.offset[i]
	}
	return out, nil
}

func TestAdditiveGaussianLikelihood_ZeroResidualMaximisesLogLikelihood(t *testing.T) {
	data, err := NewData([][]float64{{1, 2}})
	require.NoError(t, err)
	noise := NewNoise(mustIsotropic(t, 2, 1.0))
	lik, err := NewAdditiveGaussianLikelihood(data, NewForwardModel(identitySolver{}), noise)
	require.NoError(t, err)

	atMatch, err := lik.LogLikelihood(NewParameter([]float64{1, 2}))
	require.NoError(t, err)
	elsewhere, err := lik.LogLikelihood(NewParameter([]float64{5, 5}))
	require.NoError(t, err)

	assert.Equal(t, 0.0, atMatch)
	assert.Less(t, elsewhere, atMatch)
}

func TestAdditiveGaussianLikelihood_BroadcastsAcrossDataRows(t *testing.T) {
	data, err := NewData([][]float64{{1, 1}, {1, 1}})
	require.NoError(t, err)
	noise := NewNoise(mustIsotropic(t, 2, 1.0))
	lik, err := NewAdditiveGaussianLikelihood(data, NewForwardModel(identitySolver{}), noise)
	require.NoError(t, err)

	// each row's residual is [1, 0] with norm2 1; two rows give 2, so
	// log L = -0.5 * 2 = -1
	value, err := lik.LogLikelihood(NewParameter([]float64{0, 1}))
	require.NoError(t, err)
	assert.InDelta(t, -1.0, value, 1e-12)
}

func TestAEMLikelihood_DegeneratesToSurrogateBeforeMinSamples(t *testing.T) {
	data, err := NewData([][]float64{{0, 0}})
	require.NoError(t, err)
	noise := NewNoise(mustIsotropic(t, 2, 1.0))

	surrogate := NewForwardModel(identitySolver{})
	target := NewForwardModel(offsetSolver{offset: []float64{1, 1}})

	aem, err := NewAEMLikelihood(data, surrogate, target, noise, 5)
	require.NoError(t, err)

	plain, err := NewAdditiveGaussianLikelihood(data, NewForwardModel(identitySolver{}), noise)
	require.NoError(t, err)

	theta := NewParameter([]float64{0.2, -0.1})
	aemVal, err := aem.LogLikelihood(theta)
	require.NoError(t, err)
	plainVal, err := plain.LogLikelihood(theta)
	require.NoError(t, err)

	assert.InDelta(t, plainVal, aemVal, 1e-12)
}

func TestAEMLikelihood_ActivatesCorrectionAtMinSamples(t *testing.T) {
	data, err := NewData([][]float64{{0, 0}})
	require.NoError(t, err)
	noise := NewNoise(mustIsotropic(t, 2, 1.0))

	surrogate := NewForwardModel(identitySolver{})
	target := NewForwardModel(offsetSolver{offset: []float64{1, 1}})

	aem, err := NewAEMLikelihood(data, surrogate, target, noise, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(0), aem.N())

	require.NoError(t, aem.Update(NewParameter([]float64{0, 0})))
	require.NoError(t, aem.Update(NewParameter([]float64{0.1, -0.1})))

	assert.Equal(t, int64(2), aem.N())
	assert.InDelta(t, 1.0, aem.Bias()[0], 1e-9)
	assert.InDelta(t, 1.0, aem.Bias()[1], 1e-9)
}

func TestAEMLikelihood_OnTransitionIgnoresRejections(t *testing.T) {
	data, err := NewData([][]float64{{0, 0}})
	require.NoError(t, err)
	noise := NewNoise(mustIsotropic(t, 2, 1.0))

	surrogate := NewForwardModel(identitySolver{})
	target := NewForwardModel(offsetSolver{offset: []float64{1, 1}})

	aem, err := NewAEMLikelihood(data, surrogate, target, noise, 1)
	require.NoError(t, err)

	aem.OnTransition(Transition{State: NewParameter([]float64{0, 0}), Outcome: Rejected})
	assert.Equal(t, int64(0), aem.N())

	aem.OnTransition(Transition{State: NewParameter([]float64{0, 0}), Outcome: Accepted})
	assert.Equal(t, int64(1), aem.N())
}

func TestAEMLikelihood_LearnsFullErrorCovariance(t *testing.T) {
	data, err := NewData([][]float64{{0, 0}})
	require.NoError(t, err)
	noise := NewNoise(mustIsotropic(t, 2, 1.0))

	surrogate := NewForwardModel(identitySolver{})
	target := NewForwardModel(scalingSolver{factor: 2.0})

	aem, err := NewAEMLikelihood(data, surrogate, target, noise, 2)
	require.NoError(t, err)
	assert.Nil(t, aem.ErrorCovariance())

	// d = y_tgt - y_sur = theta, so the accumulated discrepancies are the
	// pushed states themselves: perfectly correlated coordinates whose
	// covariance is [[1, 2], [2, 4]].
	require.NoError(t, aem.Update(NewParameter([]float64{-1, -2})))
	require.NoError(t, aem.Update(NewParameter([]float64{0, 0})))
	require.NoError(t, aem.Update(NewParameter([]float64{1, 2})))

	cov := aem.ErrorCovariance()
	require.NotNil(t, cov)
	assert.InDelta(t, 1.0, cov.At(0, 0), 1e-12)
	assert.InDelta(t, 2.0, cov.At(0, 1), 1e-12)
	assert.InDelta(t, 4.0, cov.At(1, 1), 1e-12)
}

func mustIsotropic(t *testing.T, dim int, variance float64) Covariance {
	t.Helper()
	cov, err := NewIsotropicCovariance(dim, variance)
	require.NoError(t, err)
	return cov
}
