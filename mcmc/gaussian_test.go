package mcmc

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkutri/yagremcmc-go/mcmc/internal/testutil"
)

func TestNewGaussian_RejectsDimensionMismatch(t *testing.T) {
	mean := NewParameter([]float64{0, 0, 0})
	cov, err := NewIsotropicCovariance(2, 1.0)
	require.NoError(t, err)

	_, err = NewGaussian(mean, cov)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestGaussian_LogDensityPeaksAtMean(t *testing.T) {
	mean := NewParameter([]float64{1, 2})
	cov, err := NewIsotropicCovariance(2, 1.0)
	require.NoError(t, err)
	g, err := NewGaussian(mean, cov)
	require.NoError(t, err)

	atMean := g.LogDensity(mean)
	elsewhere := g.LogDensity(NewParameter([]float64{5, 5}))
	assert.Greater(t, atMean, elsewhere)
	assert.Equal(t, 0.0, atMean)
}

func TestGaussian_SampleIsReproducibleGivenSameSeed(t *testing.T) {
	mean := NewParameter([]float64{0, 0})
	cov, err := NewIsotropicCovariance(2, 1.0)
	require.NoError(t, err)
	g, err := NewGaussian(mean, cov)
	require.NoError(t, err)

	a := g.Sample(rand.New(rand.NewSource(7)))
	b := g.Sample(rand.New(rand.NewSource(7)))
	assert.True(t, a.Equal(b))
}

func TestGaussian_SampleIsCenteredOnAverageOverManyDraws(t *testing.T) {
	mean := NewParameter([]float64{3, -2})
	cov, err := NewIsotropicCovariance(2, 0.01)
	require.NoError(t, err)
	g, err := NewGaussian(mean, cov)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	sum := []float64{0, 0}
	const n = 2000
	for i := 0; i < n; i++ {
		s := g.Sample(rng)
		sum[0] += s.At(0)
		sum[1] += s.At(1)
	}
	empirical := []float64{sum[0] / n, sum[1] / n}
	testutil.VectorWithinTol(t, "sample mean", []float64{3.0, -2.0}, empirical, 0.02)
}
