package mcmc

import "gonum.org/v1/gonum/mat"

// Outcome is the result of a single Metropolis-Hastings transition attempt.
type Outcome int

const (
	// Accepted marks a transition whose proposal was accepted.
	Accepted Outcome = iota
	// Rejected marks a transition that repeats the previous state.
	Rejected
)

// Transition pairs the resulting state with its outcome (Section 3).
type Transition struct {
	State   Parameter
	Outcome Outcome
}

// TransitionObserver is notified of every transition emitted by a sampler.
// The AEM likelihood subscribes through this interface instead of the
// sampler reaching into it through a hidden global registry (Section 9).
type TransitionObserver interface {
	OnTransition(t Transition)
}

// WelfordAccumulator is a numerically stable online accumulator of n,
// running elementwise mean and M2, from which the unbiased elementwise
// variance follows as M2/(n-1) (Section 4.10).
type WelfordAccumulator struct {
	n    int64
	mean []float64
	m2   []float64
}

// NewWelfordAccumulator returns an empty accumulator.
func NewWelfordAccumulator() *WelfordAccumulator {
	return &WelfordAccumulator{}
}

// Push ingests one accepted state.
func (w *WelfordAccumulator) Push(x Parameter) {
	coeff := x.Coefficient()
	if w.mean == nil {
		w.mean = make([]float64, len(coeff))
		w.m2 = make([]float64, len(coeff))
	}

	w.n++
	for i, v := range coeff {
		delta := v - w.mean[i]
		w.mean[i] += delta / float64(w.n)
		w.m2[i] += delta * (v - w.mean[i])
	}
}

// N returns the number of states ingested.
func (w *WelfordAccumulator) N() int64 { return w.n }

// Mean returns a copy of the running elementwise mean.
func (w *WelfordAccumulator) Mean() []float64 {
	m := make([]float64, len(w.mean))
	copy(m, w.mean)
	return m
}

// Variance returns the unbiased elementwise variance, M2/(n-1), valid for
// n >= 2. Returns a zero vector for n < 2.
func (w *WelfordAccumulator) Variance() []float64 {
	v := make([]float64, len(w.m2))
	if w.n < 2 {
		return v
	}
	for i, m2 := range w.m2 {
		v[i] = m2 / float64(w.n-1)
	}
	return v
}

// Clear resets the accumulator to its empty state.
func (w *WelfordAccumulator) Clear() {
	w.n = 0
	w.mean = nil
	w.m2 = nil
}

// CovarianceAccumulator extends the Welford recurrence to full second
// moments: alongside n and the running mean it maintains the co-moment
// matrix M2[i][j] = sum_k (x_k[i] - mean[i])(x_k[j] - mean[j]), from which
// the unbiased sample covariance follows as M2/(n-1). The adaptive error
// model uses it to learn the full cross-covariance of the target/surrogate
// discrepancy, off-diagonal terms included, where WelfordAccumulator only
// tracks the marginals.
type CovarianceAccumulator struct {
	n    int64
	mean []float64
	m2   *mat.SymDense
}

// NewCovarianceAccumulator returns an empty accumulator.
func NewCovarianceAccumulator() *CovarianceAccumulator {
	return &CovarianceAccumulator{}
}

// Push ingests one sample vector.
func (c *CovarianceAccumulator) Push(x []float64) {
	if c.mean == nil {
		c.mean = make([]float64, len(x))
		c.m2 = mat.NewSymDense(len(x), nil)
	}

	c.n++
	deltaOld := make([]float64, len(x))
	for i, v := range x {
		deltaOld[i] = v - c.mean[i]
		c.mean[i] += deltaOld[i] / float64(c.n)
	}
	// deltaNew = x - mean_new is a scalar multiple of deltaOld, so the
	// rank-one update deltaOld * deltaNew^T is symmetric.
	for i := range x {
		for j := i; j < len(x); j++ {
			c.m2.SetSym(i, j, c.m2.At(i, j)+deltaOld[i]*(x[j]-c.mean[j]))
		}
	}
}

// N returns the number of samples ingested.
func (c *CovarianceAccumulator) N() int64 { return c.n }

// Mean returns a copy of the running elementwise mean.
func (c *CovarianceAccumulator) Mean() []float64 {
	m := make([]float64, len(c.mean))
	copy(m, c.mean)
	return m
}

// Covariance returns the unbiased sample covariance M2/(n-1), valid for
// n >= 2. Returns the zero matrix for n == 1 (a valid additive correction:
// it leaves the base noise covariance unchanged) and nil before any sample
// has been pushed.
func (c *CovarianceAccumulator) Covariance() *mat.SymDense {
	if c.mean == nil {
		return nil
	}
	dim := len(c.mean)
	out := mat.NewSymDense(dim, nil)
	if c.n < 2 {
		return out
	}
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			out.SetSym(i, j, c.m2.At(i, j)/float64(c.n-1))
		}
	}
	return out
}

// Clear resets the accumulator to its empty state.
func (c *CovarianceAccumulator) Clear() {
	c.n = 0
	c.mean = nil
	c.m2 = nil
}

// AcceptanceDiagnostics tracks a global acceptance count and a rolling
// acceptance rate over the last Lag transitions (Section 4.10).
type AcceptanceDiagnostics struct {
	lag       int
	decisions []bool

	globalAccepted int64
	globalTotal    int64
}

// NewAcceptanceDiagnostics returns a diagnostics tracker with rolling
// window length lag.
func NewAcceptanceDiagnostics(lag int) *AcceptanceDiagnostics {
	return &AcceptanceDiagnostics{lag: lag}
}

// Process records one transition outcome.
func (d *AcceptanceDiagnostics) Process(outcome Outcome) {
	accepted := outcome == Accepted

	d.decisions = append(d.decisions, accepted)
	d.globalTotal++
	if accepted {
		d.globalAccepted++
	}
}

// GlobalAcceptanceRate returns the fraction of all processed transitions
// that were accepted. Returns 0 if none have been processed.
func (d *AcceptanceDiagnostics) GlobalAcceptanceRate() float64 {
	if d.globalTotal == 0 {
		return 0
	}
	return float64(d.globalAccepted) / float64(d.globalTotal)
}

// RollingAcceptanceRate returns the acceptance rate over the last Lag
// transitions (or fewer, if fewer have been processed).
func (d *AcceptanceDiagnostics) RollingAcceptanceRate() float64 {
	n := len(d.decisions)
	if n == 0 {
		return 0
	}
	lag := d.lag
	if lag > n {
		lag = n
	}
	window := d.decisions[n-lag:]
	var accepted int
	for _, a := range window {
		if a {
			accepted++
		}
	}
	return float64(accepted) / float64(lag)
}

// Clear resets the diagnostics to their empty state.
func (d *AcceptanceDiagnostics) Clear() {
	d.decisions = nil
	d.globalAccepted = 0
	d.globalTotal = 0
}

// Chain stores the ordered trajectory of a sampler together with its
// acceptance diagnostics and Welford moment accumulator (Section 3,
// Section 4.10). It is a TransitionObserver so a sampler drives it the same
// way it drives any other subscriber (e.g. an AEM likelihood).
//
// x0 is recorded in the trajectory by Init, but no transition is processed
// for it, so it is excluded from the acceptance-rate denominator and from
// the moments (the Section 9 open question is resolved this way: x0 was
// never "proposed", so counting it would inflate the rate by one
// transition out of n+1).
type Chain struct {
	trajectory  []Parameter
	diagnostics *AcceptanceDiagnostics
	moments     *WelfordAccumulator
	started     bool
}

// NewChain returns an empty chain with the given rolling-acceptance lag.
func NewChain(lag int) *Chain {
	return &Chain{
		diagnostics: NewAcceptanceDiagnostics(lag),
		moments:     NewWelfordAccumulator(),
	}
}

// Init records x0 as the chain's starting state without affecting the
// acceptance-rate denominator.
func (c *Chain) Init(x0 Parameter) {
	c.trajectory = []Parameter{x0}
	c.started = true
}

// OnTransition implements TransitionObserver: appends the new state to the
// trajectory, updates acceptance diagnostics, and feeds accepted states to
// the Welford accumulator.
func (c *Chain) OnTransition(t Transition) {
	if !c.started {
		panic("mcmc: chain received a transition before Init")
	}
	c.trajectory = append(c.trajectory, t.State)
	c.diagnostics.Process(t.Outcome)
	if t.Outcome == Accepted {
		c.moments.Push(t.State)
	}
}

// Trajectory returns the chain's states x0, x1, ..., in order.
func (c *Chain) Trajectory() []Parameter {
	traj := make([]Parameter, len(c.trajectory))
	copy(traj, c.trajectory)
	return traj
}

// Len returns the number of states in the trajectory (number of
// transitions + 1).
func (c *Chain) Len() int { return len(c.trajectory) }

// Diagnostics returns the chain's acceptance-rate tracker.
func (c *Chain) Diagnostics() *AcceptanceDiagnostics { return c.diagnostics }

// Moments returns the chain's Welford accumulator over accepted states.
func (c *Chain) Moments() *WelfordAccumulator { return c.moments }

// Clear resets the chain to empty, discarding the trajectory and
// diagnostics so the sampler can be restarted.
func (c *Chain) Clear() {
	c.trajectory = nil
	c.started = false
	c.diagnostics.Clear()
	c.moments.Clear()
}
