package mcmc

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Proposal generates candidate states for the Metropolis-Hastings kernel
// (Section 4.7). SetState must be called before Generate. LogDensityRatio
// returns log q(from|to) - log q(to|from), the Hastings correction added to
// the log-posterior difference by the kernel.
type Proposal interface {
	SetState(x Parameter)
	Generate(rng *rand.Rand) Parameter
	LogDensityRatio(from, to Parameter) float64
}

// MRWProposal is the Metropolised Random Walk: x' = x + chol(C_prop) z,
// z ~ N(0, I). Symmetric, so its Hastings correction is always zero.
type MRWProposal struct {
	cov   Covariance
	state Parameter
	set   bool
}

// NewMRWProposal builds an MRW proposal with the given proposal covariance.
func NewMRWProposal(cov Covariance) *MRWProposal {
	return &MRWProposal{cov: cov}
}

// SetState records the current chain state the next Generate call will
// step from.
func (p *MRWProposal) SetState(x Parameter) {
	p.state = x
	p.set = true
}

// Generate draws x + chol(C_prop) z.
func (p *MRWProposal) Generate(rng *rand.Rand) Parameter {
	if !p.set {
		panic("mcmc: MRWProposal.Generate called before SetState")
	}
	z := standardNormalVector(rng, p.cov.Dim())
	return p.state.Add(p.cov.Chol(z))
}

// LogDensityRatio is always 0: MRW is symmetric.
func (p *MRWProposal) LogDensityRatio(from, to Parameter) float64 { return 0 }

// PCNProposal is preconditioned Crank-Nicolson: x' = sqrt(1-s^2)(x - mu_0)
// + s * chol(C_0) z + mu_0, which leaves the prior invariant (Section
// 4.7). Its Hastings correction is the prior log-density difference
// between the current and proposed state; added to the log-posterior
// difference inside the kernel, this cancels the prior terms exactly,
// reducing acceptance to the likelihood ratio alone.
type PCNProposal struct {
	prior    *Gaussian
	stepSize float64
	state    Parameter
	set      bool
}

// NewPCNProposal builds a pCN proposal against the given centred Gaussian
// prior with step size s in (0, 1). Returns ErrInvalidBuilder if s is out
// of range.
func NewPCNProposal(prior *Gaussian, stepSize float64) (*PCNProposal, error) {
	if stepSize <= 0 || stepSize >= 1 {
		return nil, fmt.Errorf("%w: pCN step size must lie in (0, 1), got %f", ErrInvalidBuilder, stepSize)
	}
	return &PCNProposal{prior: prior, stepSize: stepSize}, nil
}

// SetState records the current chain state.
func (p *PCNProposal) SetState(x Parameter) {
	p.state = x
	p.set = true
}

// Generate draws the pCN proposal.
func (p *PCNProposal) Generate(rng *rand.Rand) Parameter {
	if !p.set {
		panic("mcmc: PCNProposal.Generate called before SetState")
	}

	mean := p.prior.Mean()
	s := p.stepSize
	coeff := math.Sqrt(1 - s*s)

	centred := p.state.Sub(mean)
	floats.Scale(coeff, centred)

	z := standardNormalVector(rng, mean.Dim())
	step := p.prior.Covariance().Chol(z)
	floats.Scale(s, step)

	proposed := make([]float64, mean.Dim())
	floats.Add(proposed, centred)
	floats.Add(proposed, step)
	floats.Add(proposed, mean.Coefficient())

	return NewParameter(proposed)
}

// LogDensityRatio returns log prior(from) - log prior(to), the correction
// that cancels the prior terms in the kernel's acceptance ratio.
func (p *PCNProposal) LogDensityRatio(from, to Parameter) float64 {
	return p.prior.LogDensity(from) - p.prior.LogDensity(to)
}
