package mcmc

import (
	"fmt"
	"math/rand"
)

const defaultAcceptanceLag = 100

// MRWBuilder assembles an MHSampler driven by a Metropolised Random Walk
// proposal (Section 6). Required: a prior, a likelihood, a proposal
// covariance and an RNG. Everything else defaults.
type MRWBuilder struct {
	prior      *Gaussian
	likelihood Likelihood
	propCov    Covariance
	beta       float64
	lag        int
	rng        *rand.Rand
}

// NewMRWBuilder returns a builder with defaults: tempering exponent 1,
// acceptance lag 100.
func NewMRWBuilder() *MRWBuilder {
	return &MRWBuilder{beta: 1, lag: defaultAcceptanceLag}
}

func (b *MRWBuilder) WithPrior(prior *Gaussian) *MRWBuilder { b.prior = prior; return b }

func (b *MRWBuilder) WithLikelihood(l Likelihood) *MRWBuilder { b.likelihood = l; return b }

func (b *MRWBuilder) WithProposalCovariance(cov Covariance) *MRWBuilder {
	b.propCov = cov
	return b
}

func (b *MRWBuilder) WithTemperingExponent(beta float64) *MRWBuilder { b.beta = beta; return b }

func (b *MRWBuilder) WithAcceptanceLag(lag int) *MRWBuilder { b.lag = lag; return b }

func (b *MRWBuilder) WithRNG(rng *rand.Rand) *MRWBuilder { b.rng = rng; return b }

// Build validates the accumulated options and returns a ready MHSampler.
func (b *MRWBuilder) Build() (*MHSampler, error) {
	if b.prior == nil || b.likelihood == nil || b.propCov == nil || b.rng == nil {
		return nil, fmt.Errorf("%w: MRW sampler requires a prior, a likelihood, a proposal covariance and an RNG", ErrInvalidBuilder)
	}
	posterior, err := NewPosterior(b.prior, b.likelihood, b.beta)
	if err != nil {
		return nil, err
	}
	proposal := NewMRWProposal(b.propCov)
	return NewMHSampler(posterior, proposal, b.rng, b.lag), nil
}

// PCNBuilder assembles an MHSampler driven by a preconditioned
// Crank-Nicolson proposal, which requires the proposal covariance to equal
// the prior covariance (Section 4.7); this builder enforces that coupling
// by construction.
type PCNBuilder struct {
	prior      *Gaussian
	likelihood Likelihood
	stepSize   float64
	beta       float64
	lag        int
	rng        *rand.Rand
}

// NewPCNBuilder returns a builder with defaults: tempering exponent 1,
// acceptance lag 100.
func NewPCNBuilder() *PCNBuilder {
	return &PCNBuilder{beta: 1, lag: defaultAcceptanceLag}
}

func (b *PCNBuilder) WithPrior(prior *Gaussian) *PCNBuilder { b.prior = prior; return b }

func (b *PCNBuilder) WithLikelihood(l Likelihood) *PCNBuilder { b.likelihood = l; return b }

func (b *PCNBuilder) WithStepSize(s float64) *PCNBuilder { b.stepSize = s; return b }

func (b *PCNBuilder) WithTemperingExponent(beta float64) *PCNBuilder { b.beta = beta; return b }

func (b *PCNBuilder) WithAcceptanceLag(lag int) *PCNBuilder { b.lag = lag; return b }

func (b *PCNBuilder) WithRNG(rng *rand.Rand) *PCNBuilder { b.rng = rng; return b }

// Build validates the accumulated options and returns a ready MHSampler.
func (b *PCNBuilder) Build() (*MHSampler, error) {
	if b.prior == nil || b.likelihood == nil || b.rng == nil {
		return nil, fmt.Errorf("%w: pCN sampler requires a prior, a likelihood and an RNG", ErrInvalidBuilder)
	}
	posterior, err := NewPosterior(b.prior, b.likelihood, b.beta)
	if err != nil {
		return nil, err
	}
	proposal, err := NewPCNProposal(b.prior, b.stepSize)
	if err != nil {
		return nil, err
	}
	return NewMHSampler(posterior, proposal, b.rng, b.lag), nil
}

// MLDABuilder assembles an MLDASampler (Section 6, Section 4.9). It accepts
// exactly one of two mutually exclusive input modes:
//
//   - explicit mode: a full hierarchy supplied via WithHierarchy, for
//     callers that have already built per-level priors and likelihoods
//     (e.g. with independent AEM corrections at each coarse level);
//   - shared-prior mode: a single prior shared by every level, a
//     per-level forward model hierarchy supplied via WithForwardModels,
//     and common data/noise, from which per-level
//     AdditiveGaussianLikelihoods are constructed automatically.
//
// Supplying both, or neither, is ErrInvalidBuilder: the two modes
// construct the posterior hierarchy in incompatible ways and cannot be
// combined.
type MLDABuilder struct {
	hierarchy *PosteriorHierarchy

	sharedPrior   *Gaussian
	forwardHier   *Hierarchy[*ForwardModel]
	data          Data
	noise         *Noise
	hasSharedData bool

	baseProposal    Proposal
	baseProposalCov Covariance
	subChain        []int
	lag             int
	rng             *rand.Rand
}

// NewMLDABuilder returns a builder with acceptance lag defaulted to 100.
func NewMLDABuilder() *MLDABuilder {
	return &MLDABuilder{lag: defaultAcceptanceLag}
}

// WithHierarchy selects explicit mode: hierarchy is used as-is.
func (b *MLDABuilder) WithHierarchy(h *PosteriorHierarchy) *MLDABuilder {
	b.hierarchy = h
	return b
}

// WithSharedPrior selects shared-prior mode's prior, used unmodified
// (tempering 1) at every level.
func (b *MLDABuilder) WithSharedPrior(prior *Gaussian) *MLDABuilder {
	b.sharedPrior = prior
	return b
}

// WithForwardModels selects shared-prior mode's per-level forward models.
func (b *MLDABuilder) WithForwardModels(models Hierarchy[*ForwardModel]) *MLDABuilder {
	b.forwardHier = &models
	return b
}

// WithData supplies the observations shared across shared-prior mode's
// per-level likelihoods.
func (b *MLDABuilder) WithData(data Data) *MLDABuilder {
	b.data = data
	b.hasSharedData = true
	return b
}

// WithNoise supplies the base noise model shared across shared-prior
// mode's per-level likelihoods.
func (b *MLDABuilder) WithNoise(noise *Noise) *MLDABuilder {
	b.noise = noise
	return b
}

// WithBaseProposal sets the level-0 proposal directly.
func (b *MLDABuilder) WithBaseProposal(p Proposal) *MLDABuilder {
	b.baseProposal = p
	return b
}

// WithBaseProposalCovariance builds an MRWProposal for level 0 from cov.
// Ignored if WithBaseProposal is also set.
func (b *MLDABuilder) WithBaseProposalCovariance(cov Covariance) *MLDABuilder {
	b.baseProposalCov = cov
	return b
}

// WithSubChainLengths sets j_0, ..., j_{L-2}.
func (b *MLDABuilder) WithSubChainLengths(lengths []int) *MLDABuilder {
	b.subChain = lengths
	return b
}

func (b *MLDABuilder) WithAcceptanceLag(lag int) *MLDABuilder { b.lag = lag; return b }

func (b *MLDABuilder) WithRNG(rng *rand.Rand) *MLDABuilder { b.rng = rng; return b }

// Build validates the accumulated options, resolves whichever mode was
// selected into a *PosteriorHierarchy, and returns a ready MLDASampler.
func (b *MLDABuilder) Build() (*MLDASampler, error) {
	explicit := b.hierarchy != nil
	shared := b.sharedPrior != nil || b.forwardHier != nil || b.hasSharedData || b.noise != nil

	if explicit == shared {
		return nil, fmt.Errorf("%w: MLDA requires exactly one of an explicit hierarchy or a shared-prior forward-model hierarchy, not both or neither", ErrInvalidBuilder)
	}

	hierarchy := b.hierarchy
	if shared {
		h, err := b.buildSharedHierarchy()
		if err != nil {
			return nil, err
		}
		hierarchy = h
	}

	if b.rng == nil || b.subChain == nil {
		return nil, fmt.Errorf("%w: MLDA requires an RNG and sub-chain lengths", ErrInvalidBuilder)
	}

	proposal := b.baseProposal
	if proposal == nil {
		if b.baseProposalCov == nil {
			return nil, fmt.Errorf("%w: MLDA requires a base proposal or a base proposal covariance", ErrInvalidBuilder)
		}
		proposal = NewMRWProposal(b.baseProposalCov)
	}

	return NewMLDASampler(hierarchy, proposal, b.subChain, b.rng, b.lag)
}

func (b *MLDABuilder) buildSharedHierarchy() (*PosteriorHierarchy, error) {
	if b.sharedPrior == nil || b.forwardHier == nil || !b.hasSharedData || b.noise == nil {
		return nil, fmt.Errorf("%w: shared-prior MLDA mode requires a prior, a forward-model hierarchy, data and a noise model", ErrInvalidBuilder)
	}

	size := b.forwardHier.Size()
	priors := Shared(b.sharedPrior, size)
	tempering := make([]float64, size)
	likelihoods := make([]Likelihood, size)
	for l := 0; l < size; l++ {
		tempering[l] = 1
		lik, err := NewAdditiveGaussianLikelihood(b.data, b.forwardHier.Level(l), b.noise)
		if err != nil {
			return nil, err
		}
		likelihoods[l] = lik
	}

	return NewPosteriorHierarchy(priors, PerLevel(likelihoods), tempering)
}
