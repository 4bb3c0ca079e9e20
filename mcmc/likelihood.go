package mcmc

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Likelihood evaluates the log-likelihood of the data under a parameter.
// A non-nil error (always ErrSolverFailure in practice) signals that the
// underlying forward model did not converge at theta; callers must treat
// that as log-likelihood -Inf, not propagate it as a hard failure
// (Section 4.4, Section 7).
type Likelihood interface {
	LogLikelihood(theta Parameter) (float64, error)
}

// AdditiveGaussianLikelihood is log L(theta) = -1/2 ||data - y(theta)||^2
// summed over data rows, with a single forward-model prediction broadcast
// across every row (Section 3, Section 4.5).
type AdditiveGaussianLikelihood struct {
	data    Data
	forward *ForwardModel
	noise   *Noise
}

// NewAdditiveGaussianLikelihood pairs data, a forward model and a noise
// model. Returns ErrDimensionMismatch if the data and noise dimensions
// disagree.
func NewAdditiveGaussianLikelihood(data Data, forward *ForwardModel, noise *Noise) (*AdditiveGaussianLikelihood, error) {
	if data.Size() > 0 && data.Dim() != noise.Dim() {
		return nil, errDim("data/noise", data.Dim(), noise.Dim())
	}
	return &AdditiveGaussianLikelihood{data: data, forward: forward, noise: noise}, nil
}

// LogLikelihood evaluates the forward model once at theta and sums the
// Gaussian noise log-likelihood of the residual against every data row.
func (l *AdditiveGaussianLikelihood) LogLikelihood(theta Parameter) (float64, error) {
	prediction, err := l.forward.Evaluate(theta)
	if err != nil {
		return 0, err
	}
	return l.noise.LogLikelihood(residualsAgainst(l.data, prediction)), nil
}

func residualsAgainst(data Data, prediction []float64) [][]float64 {
	residuals := make([][]float64, data.Size())
	for i := 0; i < data.Size(); i++ {
		r := make([]float64, len(prediction))
		floats.SubTo(r, data.Row(i), prediction)
		residuals[i] = r
	}
	return residuals
}

// AEMLikelihood augments an AdditiveGaussianLikelihood with an Adaptive
// Error Model bias/covariance correction learned online from accepted
// states (Section 3, Section 4.5).
//
// Per the Section 9 open question about which forward model AEM uses where,
// the caller must pass the surrogate model used for likelihood evaluation
// and the target model used only to compute the bias statistics explicitly
// and separately; this implementation never assumes one stands in for the
// other.
type AEMLikelihood struct {
	data       Data
	surrogate  *ForwardModel
	target     *ForwardModel
	baseNoise  *Noise
	minSamples int

	errorStats *CovarianceAccumulator

	bias            []float64
	effectiveNoise  *Noise
	correctionReady bool
}

// NewAEMLikelihood builds an AEM-corrected likelihood. minSamples is N_min
// from Section 4.5: below this accepted-state count, LogLikelihood
// degenerates exactly to the uncorrected surrogate likelihood.
func NewAEMLikelihood(data Data, surrogate, target *ForwardModel, baseNoise *Noise, minSamples int) (*AEMLikelihood, error) {
	if data.Size() > 0 && data.Dim() != baseNoise.Dim() {
		return nil, errDim("data/noise", data.Dim(), baseNoise.Dim())
	}
	return &AEMLikelihood{
		data:       data,
		surrogate:  surrogate,
		target:     target,
		baseNoise:  baseNoise,
		minSamples: minSamples,
		errorStats: NewCovarianceAccumulator(),
		bias:       make([]float64, data.Dim()),
	}, nil
}

// LogLikelihood evaluates the surrogate model at theta and applies the
// bias/covariance correction frozen as of the most recently accepted state
// (Section 4.5's posterior-evaluation contract).
func (l *AEMLikelihood) LogLikelihood(theta Parameter) (float64, error) {
	prediction, err := l.surrogate.Evaluate(theta)
	if err != nil {
		return 0, err
	}

	corrected := make([]float64, len(prediction))
	copy(corrected, prediction)
	if l.correctionReady {
		floats.Add(corrected, l.bias)
	}

	noise := l.baseNoise
	if l.correctionReady {
		noise = l.effectiveNoise
	}
	return noise.LogLikelihood(residualsAgainst(l.data, corrected)), nil
}

// OnTransition implements TransitionObserver, running the AEM update
// protocol exactly once per accepted state: evaluate target and surrogate
// at the accepted parameter (reusing their caches), push the difference
// into the error accumulator, and — once N >= minSamples — recompute the
// frozen bias and effective noise covariance. Rejected transitions are
// ignored.
func (l *AEMLikelihood) OnTransition(t Transition) {
	if t.Outcome != Accepted {
		return
	}
	if err := l.Update(t.State); err != nil {
		// A solver failure at an already-accepted state cannot happen
		// under the forward-model contract (the state was accepted
		// because its posterior was finite), but guard against a solver
		// that is non-deterministic across calls by leaving the AEM
		// statistics unchanged rather than corrupting them.
		return
	}
}

// Update pushes the target/surrogate discrepancy at theta into the error
// accumulator and refreshes the frozen (bias, effective noise) pair once
// enough samples have accumulated.
func (l *AEMLikelihood) Update(theta Parameter) error {
	tgt, err := l.target.Evaluate(theta)
	if err != nil {
		return err
	}
	sur, err := l.surrogate.Evaluate(theta)
	if err != nil {
		return err
	}

	d := make([]float64, len(tgt))
	floats.SubTo(d, tgt, sur)
	l.errorStats.Push(d)

	if l.errorStats.N() < int64(l.minSamples) {
		return nil
	}

	l.bias = l.errorStats.Mean()

	// The full unbiased covariance of the accumulated discrepancies,
	// cross-terms included. It may be degenerate (even exactly zero for a
	// deterministic discrepancy); only the sum Sigma_n + B needs to be
	// positive definite, which WithAdditiveCorrection enforces.
	effective, err := l.baseNoise.WithAdditiveCorrection(l.errorStats.Covariance())
	if err != nil {
		return err
	}

	l.effectiveNoise = effective
	l.correctionReady = true
	return nil
}

// N returns the number of accepted-state samples accumulated so far.
func (l *AEMLikelihood) N() int64 { return l.errorStats.N() }

// Bias returns a copy of the current frozen bias b. The zero vector before
// activation.
func (l *AEMLikelihood) Bias() []float64 {
	b := make([]float64, len(l.bias))
	copy(b, l.bias)
	return b
}

// ErrorCovariance returns a copy of the frozen error covariance B applied
// by the current correction, or nil before the correction has activated.
func (l *AEMLikelihood) ErrorCovariance() *mat.SymDense {
	if !l.correctionReady {
		return nil
	}
	out := mat.NewSymDense(l.data.Dim(), nil)
	out.CopySym(l.errorStats.Covariance())
	return out
}
