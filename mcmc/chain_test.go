package mcmc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestWelfordAccumulator_MatchesGonumStatMeanVariance(t *testing.T) {
	samples := []float64{4.2, -1.3, 0.7, 2.8, 5.1, -0.4, 3.3}

	w := NewWelfordAccumulator()
	for _, s := range samples {
		w.Push(NewParameter([]float64{s}))
	}

	wantMean, wantVar := stat.MeanVariance(samples, nil)
	assert.InDelta(t, wantMean, w.Mean()[0], 1e-9)
	assert.InDelta(t, wantVar, w.Variance()[0], 1e-9)
}

func TestWelfordAccumulator_MeanAndVariance(t *testing.T) {
	w := NewWelfordAccumulator()
	w.Push(NewParameter([]float64{1}))
	w.Push(NewParameter([]float64{2}))
	w.Push(NewParameter([]float64{3}))

	assert.Equal(t, int64(3), w.N())
	assert.InDelta(t, 2.0, w.Mean()[0], 1e-12)
	assert.InDelta(t, 1.0, w.Variance()[0], 1e-12) // sample variance of {1,2,3}
}

func TestWelfordAccumulator_VarianceUndefinedBelowTwoSamples(t *testing.T) {
	w := NewWelfordAccumulator()
	assert.Empty(t, w.Variance())
	w.Push(NewParameter([]float64{5}))
	assert.Equal(t, []float64{0}, w.Variance())
}

func TestAcceptanceDiagnostics_GlobalRate(t *testing.T) {
	d := NewAcceptanceDiagnostics(10)
	d.Process(Accepted)
	d.Process(Accepted)
	d.Process(Rejected)
	assert.InDelta(t, 2.0/3.0, d.GlobalAcceptanceRate(), 1e-12)
}

func TestAcceptanceDiagnostics_RollingRateWindowsLastLag(t *testing.T) {
	d := NewAcceptanceDiagnostics(2)
	d.Process(Accepted)
	d.Process(Rejected)
	d.Process(Rejected)
	// window of last 2: Rejected, Rejected -> rate 0
	assert.Equal(t, 0.0, d.RollingAcceptanceRate())
}

func TestAcceptanceDiagnostics_RollingRateClampsToAvailableHistory(t *testing.T) {
	d := NewAcceptanceDiagnostics(100)
	d.Process(Accepted)
	assert.Equal(t, 1.0, d.RollingAcceptanceRate())
}

func TestChain_InitDoesNotInflateAcceptanceDenominator(t *testing.T) {
	c := NewChain(10)
	c.Init(NewParameter([]float64{0}))

	c.OnTransition(Transition{State: NewParameter([]float64{1}), Outcome: Rejected})

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 0.0, c.Diagnostics().GlobalAcceptanceRate())
}

func TestChain_OnTransitionPanicsBeforeInit(t *testing.T) {
	c := NewChain(10)
	assert.Panics(t, func() {
		c.OnTransition(Transition{State: NewParameter([]float64{1}), Outcome: Accepted})
	})
}

func TestChain_MomentsOnlySeeAcceptedStates(t *testing.T) {
	c := NewChain(10)
	c.Init(NewParameter([]float64{0}))
	c.OnTransition(Transition{State: NewParameter([]float64{10}), Outcome: Rejected})
	c.OnTransition(Transition{State: NewParameter([]float64{2}), Outcome: Accepted})

	assert.Equal(t, int64(1), c.Moments().N())
	assert.InDelta(t, 2.0, c.Moments().Mean()[0], 1e-12)
}

func TestChain_ClearResetsEverything(t *testing.T) {
	c := NewChain(10)
	c.Init(NewParameter([]float64{0}))
	c.OnTransition(Transition{State: NewParameter([]float64{1}), Outcome: Accepted})

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0.0, c.Diagnostics().GlobalAcceptanceRate())
	assert.Equal(t, int64(0), c.Moments().N())
}

func TestCovarianceAccumulator_MatchesGonumStatCovarianceMatrix(t *testing.T) {
	samples := [][]float64{
		{1.0, 2.0}, {2.0, 1.5}, {0.5, 3.0}, {1.8, 0.9}, {2.5, 2.2},
	}

	c := NewCovarianceAccumulator()
	flat := make([]float64, 0, len(samples)*2)
	for _, s := range samples {
		c.Push(s)
		flat = append(flat, s...)
	}

	var want mat.SymDense
	stat.CovarianceMatrix(&want, mat.NewDense(len(samples), 2, flat), nil)

	got := c.Covariance()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, want.At(i, j), got.At(i, j), 1e-9)
		}
	}
}

func TestCovarianceAccumulator_CapturesCrossCovariance(t *testing.T) {
	c := NewCovarianceAccumulator()
	c.Push([]float64{-1, -2})
	c.Push([]float64{0, 0})
	c.Push([]float64{1, 2})

	// perfectly correlated coordinates: cov = [[1, 2], [2, 4]]
	cov := c.Covariance()
	assert.InDelta(t, 1.0, cov.At(0, 0), 1e-12)
	assert.InDelta(t, 2.0, cov.At(0, 1), 1e-12)
	assert.InDelta(t, 4.0, cov.At(1, 1), 1e-12)
}

func TestCovarianceAccumulator_DegenerateBelowTwoSamples(t *testing.T) {
	c := NewCovarianceAccumulator()
	assert.Nil(t, c.Covariance())

	c.Push([]float64{3, 1})
	cov := c.Covariance()
	assert.Equal(t, 0.0, cov.At(0, 0))
	assert.Equal(t, 0.0, cov.At(0, 1))
}

func TestCovarianceAccumulator_ClearResets(t *testing.T) {
	c := NewCovarianceAccumulator()
	c.Push([]float64{1, 2})
	c.Push([]float64{3, 4})

	c.Clear()
	assert.Equal(t, int64(0), c.N())
	assert.Nil(t, c.Covariance())
}
