package mcmc

import (
	"fmt"
	"math"
	"math/rand"
)

// KernelState models the two states of a Metropolis-Hastings sampler
// (Section 4.8): a sampler is IDLE until Run is called, and RUNNING for the
// duration of that call. Re-entering Run on a RUNNING sampler is a
// programmer error under the single-thread contract of Section 5.
type KernelState int

const (
	StateIdle KernelState = iota
	StateRunning
)

// Sampler is the common surface both MHSampler and MLDASampler expose to
// callers and to builders.
type Sampler interface {
	Run(n int, x0 Parameter) error
	Chain() *Chain
	Subscribe(o TransitionObserver)
}

// MHSampler is the Metropolis-Hastings kernel: given a target posterior and
// a proposal method, it drives a chain via the accept/reject state machine
// of Section 4.8.
type MHSampler struct {
	target   *Posterior
	proposal Proposal
	rng      *rand.Rand

	chain     *Chain
	observers []TransitionObserver
	state     KernelState
	current   Parameter
}

// NewMHSampler builds a kernel for target driven by proposal, drawing from
// rng, with rolling-acceptance window acceptanceLag.
func NewMHSampler(target *Posterior, proposal Proposal, rng *rand.Rand, acceptanceLag int) *MHSampler {
	return &MHSampler{
		target:   target,
		proposal: proposal,
		rng:      rng,
		chain:    NewChain(acceptanceLag),
	}
}

// Subscribe registers an observer notified of every transition after x0.
func (s *MHSampler) Subscribe(o TransitionObserver) {
	s.observers = append(s.observers, o)
}

// Chain returns the sampler's trajectory and diagnostics store.
func (s *MHSampler) Chain() *Chain { return s.chain }

// Run drives n transitions from x0. The resulting chain has length n+1
// (Section 4.8, invariant 4). Run is not reentrant: calling it while the
// sampler is already RUNNING is a programmer error.
func (s *MHSampler) Run(n int, x0 Parameter) error {
	if s.state == StateRunning {
		panic("mcmc: MHSampler.Run called while already running")
	}
	if x0.Dim() != s.target.Dim() {
		return fmt.Errorf("mcmc: %w: initial state dimension %d, target dimension %d", ErrDimensionMismatch, x0.Dim(), s.target.Dim())
	}

	s.state = StateRunning
	defer func() { s.state = StateIdle }()

	s.chain.Clear()
	s.chain.Init(x0)
	s.current = x0

	for k := 0; k < n; k++ {
		t := s.step()
		s.current = t.State
		s.chain.OnTransition(t)
		for _, o := range s.observers {
			o.OnTransition(t)
		}
	}
	return nil
}

// step performs one proposal/accept-reject cycle from the current state.
func (s *MHSampler) step() Transition {
	s.proposal.SetState(s.current)
	proposed := s.proposal.Generate(s.rng)

	logAlpha := s.target.LogDensity(proposed) - s.target.LogDensity(s.current) +
		s.proposal.LogDensityRatio(s.current, proposed)

	u := s.rng.Float64()
	accept := math.Log(u) < math.Min(0, logAlpha)

	if accept {
		return Transition{State: proposed, Outcome: Accepted}
	}
	return Transition{State: s.current, Outcome: Rejected}
}
