package mcmc

import (
	"fmt"
	"math"
	"math/rand"
)

// MLDASampler is the Multi-Level Delayed Acceptance sampler (Section 4.9):
// a recursive composition of j_{l-1} steps of the level l-1 sampler as the
// proposal generator for level l, accepted under the generalised ratio
//
//	alpha = min{1, exp(log pi_l(x') - log pi_l(x) - log pi_{l-1}(x') + log pi_{l-1}(x))}
//
// which preserves pi_l because the sub-chain proposal itself is
// pi_{l-1}-reversible. The base level (0) uses a caller-supplied proposal,
// typically MRW.
//
// Per the Section 9 design note, the recursive structure is realised as an
// explicit stack of per-level frames rather than true Go call recursion,
// bounding stack usage for hierarchies with many levels. Sub-chains are
// transient: their intermediate states never reach the output trajectory,
// only their terminal state does.
type MLDASampler struct {
	hierarchy *PosteriorHierarchy
	baseProp  Proposal
	subChain  []int // length L-1: j_0, ..., j_{L-2}
	rng       *rand.Rand

	levelDiagnostics []*AcceptanceDiagnostics
	chain            *Chain
	observers        []TransitionObserver
	state            KernelState
	current          Parameter
}

// NewMLDASampler builds an MLDA sampler over hierarchy, using baseProposal
// at level 0 and subChainLengths[l] = j_l steps of level l to produce the
// proposal offered to level l+1. Returns ErrDimensionMismatch if
// len(subChainLengths) != hierarchy.Size()-1, and ErrInvalidBuilder if the
// hierarchy has fewer than 2 levels.
func NewMLDASampler(hierarchy *PosteriorHierarchy, baseProposal Proposal, subChainLengths []int, rng *rand.Rand, acceptanceLag int) (*MLDASampler, error) {
	L := hierarchy.Size()
	if L < 2 {
		return nil, fmt.Errorf("%w: MLDA requires at least 2 hierarchy levels, got %d", ErrInvalidBuilder, L)
	}
	if len(subChainLengths) != L-1 {
		return nil, errDim("sub-chain length vector", len(subChainLengths), L-1)
	}
	for l, j := range subChainLengths {
		if j < 1 {
			return nil, fmt.Errorf("%w: sub-chain length at level %d must be >= 1, got %d", ErrInvalidBuilder, l, j)
		}
	}

	diag := make([]*AcceptanceDiagnostics, L)
	for l := range diag {
		diag[l] = NewAcceptanceDiagnostics(acceptanceLag)
	}

	subChain := make([]int, len(subChainLengths))
	copy(subChain, subChainLengths)

	return &MLDASampler{
		hierarchy:        hierarchy,
		baseProp:         baseProposal,
		subChain:         subChain,
		rng:              rng,
		levelDiagnostics: diag,
		chain:            NewChain(acceptanceLag),
	}, nil
}

// Subscribe registers an observer notified once per finest-level
// transition, exactly as MHSampler does. An AEM likelihood installed at
// any level subscribes this way so its update runs exactly once per
// accepted finest-level step (Section 4.9's implementation obligation).
func (s *MLDASampler) Subscribe(o TransitionObserver) {
	s.observers = append(s.observers, o)
}

// Chain returns the finest level's trajectory and diagnostics; only the
// finest level is surfaced by default (Section 4.10).
func (s *MLDASampler) Chain() *Chain { return s.chain }

// LevelDiagnostics returns the acceptance diagnostics tracked at level l,
// for callers that need coarse-level behaviour beyond the default finest
// view.
func (s *MLDASampler) LevelDiagnostics(l int) *AcceptanceDiagnostics {
	return s.levelDiagnostics[l]
}

// Run drives n finest-level transitions from x0. Inner levels are driven
// implicitly, as proposal generators; their intermediate states never
// appear in Chain's trajectory.
func (s *MLDASampler) Run(n int, x0 Parameter) error {
	if s.state == StateRunning {
		panic("mcmc: MLDASampler.Run called while already running")
	}
	finest := s.hierarchy.Size() - 1
	if x0.Dim() != s.hierarchy.Level(finest).Dim() {
		return fmt.Errorf("mcmc: %w: initial state dimension %d, target dimension %d", ErrDimensionMismatch, x0.Dim(), s.hierarchy.Level(finest).Dim())
	}

	s.state = StateRunning
	defer func() { s.state = StateIdle }()

	for _, d := range s.levelDiagnostics {
		d.Clear()
	}
	s.chain.Clear()
	s.chain.Init(x0)
	s.current = x0

	for k := 0; k < n; k++ {
		next, outcome := s.finestStep(finest, s.current)
		s.current = next

		t := Transition{State: next, Outcome: outcome}
		s.chain.OnTransition(t)
		for _, o := range s.observers {
			o.OnTransition(t)
		}
	}
	return nil
}

// mldaFrame is one level of the explicit proposal-generation stack: the
// in-progress reconstruction of "run j_{level-1} steps of level-1 starting
// from entering, and return the terminal state".
type mldaFrame struct {
	level     int
	entering  Parameter
	running   Parameter
	started   bool
	remaining int
}

// finestStep drives exactly one finest-level MLDA transition and reports
// its outcome (needed only at the finest level, for the chain/observer
// notification); coarser levels' outcomes only feed their own diagnostics.
// The stack descends from the finest level down to level 0 before any
// accept/reject test runs, so the deepest level's proposal and acceptance
// draws advance the shared stream first, as Section 5 mandates.
func (s *MLDASampler) finestStep(finest int, entering Parameter) (Parameter, Outcome) {
	stack := []*mldaFrame{{level: finest, entering: entering}}

	var result Parameter
	var outcome Outcome

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		var next Parameter

		if top.level == 0 {
			next, outcome = s.baseStep(top.entering)
		} else {
			if !top.started {
				top.running = top.entering
				top.remaining = s.subChain[top.level-1]
				top.started = true
			}

			if top.remaining > 0 {
				top.remaining--
				stack = append(stack, &mldaFrame{level: top.level - 1, entering: top.running})
				continue
			}

			// sub-chain exhausted: top.running is the terminal state,
			// offered as the proposal for this level's delayed-acceptance
			// test.
			next, outcome = s.delayedAcceptStep(top.level, top.entering, top.running)
		}

		stack = stack[:len(stack)-1]

		if len(stack) == 0 {
			result = next
		} else {
			stack[len(stack)-1].running = next
		}
	}

	return result, outcome
}

// baseStep performs one Metropolis-Hastings step at level 0 using the
// caller-supplied base proposal.
func (s *MLDASampler) baseStep(entering Parameter) (Parameter, Outcome) {
	target := s.hierarchy.Level(0)

	s.baseProp.SetState(entering)
	proposed := s.baseProp.Generate(s.rng)

	logAlpha := target.LogDensity(proposed) - target.LogDensity(entering) +
		s.baseProp.LogDensityRatio(entering, proposed)

	next, outcome := s.acceptReject(entering, proposed, logAlpha)
	s.levelDiagnostics[0].Process(outcome)
	return next, outcome
}

// delayedAcceptStep performs the level-l delayed-acceptance test, given the
// sub-chain's terminal state as the proposal.
func (s *MLDASampler) delayedAcceptStep(level int, entering, proposed Parameter) (Parameter, Outcome) {
	fine := s.hierarchy.Level(level)
	coarse := s.hierarchy.Level(level - 1)

	logAlpha := fine.LogDensity(proposed) - fine.LogDensity(entering) -
		coarse.LogDensity(proposed) + coarse.LogDensity(entering)

	next, outcome := s.acceptReject(entering, proposed, logAlpha)
	s.levelDiagnostics[level].Process(outcome)
	return next, outcome
}

// acceptReject draws the shared uniform and applies the numerical policy
// of Section 4.8: a non-finite logAlpha (a failed solver anywhere in the
// hierarchy) computes acceptance probability 0 without raising.
func (s *MLDASampler) acceptReject(entering, proposed Parameter, logAlpha float64) (Parameter, Outcome) {
	u := s.rng.Float64()
	if math.Log(u) < math.Min(0, logAlpha) {
		return proposed, Accepted
	}
	return entering, Rejected
}
