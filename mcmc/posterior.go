package mcmc

import (
	"fmt"
	"math"
)

// Posterior is the unnormalised log-posterior log pi(theta) = log
// prior(theta) + beta * log L(theta), with tempering exponent beta in
// (0, 1] (Section 3, Section 4.6). Evaluation never panics and never
// returns NaN: any non-finite contribution (a failed forward solve, an
// overflowing likelihood) collapses the whole evaluation to -Inf, which
// the Metropolis-Hastings kernel treats as an automatic rejection
// (Section 4.8's numerical policy).
type Posterior struct {
	prior      *Gaussian
	likelihood Likelihood
	beta       float64
}

// NewPosterior pairs a prior and a likelihood under tempering exponent
// beta. Returns ErrInvalidHierarchy if beta is outside (0, 1].
func NewPosterior(prior *Gaussian, likelihood Likelihood, beta float64) (*Posterior, error) {
	if beta <= 0 || beta > 1 {
		return nil, fmt.Errorf("%w: tempering exponent must lie in (0, 1], got %f", ErrInvalidHierarchy, beta)
	}
	return &Posterior{prior: prior, likelihood: likelihood, beta: beta}, nil
}

// Beta returns the tempering exponent.
func (p *Posterior) Beta() float64 { return p.beta }

// Dim returns the parameter dimension d this posterior is defined over.
func (p *Posterior) Dim() int { return p.prior.Mean().Dim() }

// LogDensity evaluates log prior(theta) + beta * log L(theta).
func (p *Posterior) LogDensity(theta Parameter) float64 {
	logPrior := p.prior.LogDensity(theta)
	if !isFinite(logPrior) {
		return math.Inf(-1)
	}

	logLik, err := p.likelihood.LogLikelihood(theta)
	if err != nil || !isFinite(logLik) {
		return math.Inf(-1)
	}

	value := logPrior + p.beta*logLik
	if !isFinite(value) {
		return math.Inf(-1)
	}
	return value
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PosteriorHierarchy stores, per level l in {0, ..., L-1}, the posterior
// (prior_l, L_l, beta_l) used at that level (Section 3, Section 4.6). The
// top level L-1 always carries beta=1 and represents the true posterior;
// this is validated at construction, not at use.
type PosteriorHierarchy struct {
	levels Hierarchy[*Posterior]
}

// NewPosteriorHierarchy assembles a hierarchy from per-level priors,
// likelihoods and a tempering sequence. Returns ErrInvalidHierarchy if the
// sequence is not non-decreasing or does not end at 1, and
// ErrDimensionMismatch if the three inputs disagree on hierarchy size.
func NewPosteriorHierarchy(priors Hierarchy[*Gaussian], likelihoods Hierarchy[Likelihood], temperingSequence []float64) (*PosteriorHierarchy, error) {
	size := priors.Size()
	if likelihoods.Size() != size || len(temperingSequence) != size {
		return nil, errDim("hierarchy level count", size, len(temperingSequence))
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: hierarchy must have at least one level", ErrInvalidHierarchy)
	}

	for l := 1; l < size; l++ {
		if temperingSequence[l] < temperingSequence[l-1] {
			return nil, fmt.Errorf("%w: tempering sequence must be non-decreasing", ErrInvalidHierarchy)
		}
	}
	if temperingSequence[size-1] != 1 {
		return nil, fmt.Errorf("%w: finest level must carry tempering exponent 1, got %f", ErrInvalidHierarchy, temperingSequence[size-1])
	}

	levels := make([]*Posterior, size)
	for l := 0; l < size; l++ {
		post, err := NewPosterior(priors.Level(l), likelihoods.Level(l), temperingSequence[l])
		if err != nil {
			return nil, err
		}
		levels[l] = post
	}

	return &PosteriorHierarchy{levels: PerLevel(levels)}, nil
}

// Size returns L.
func (h *PosteriorHierarchy) Size() int { return h.levels.Size() }

// Level returns the posterior used at level l, 0 (coarsest) to L-1
// (finest, the true posterior).
func (h *PosteriorHierarchy) Level(l int) *Posterior { return h.levels.Level(l) }

// Finest returns the top-level posterior, the true (beta=1) posterior.
func (h *PosteriorHierarchy) Finest() *Posterior { return h.levels.Level(h.levels.Size() - 1) }
