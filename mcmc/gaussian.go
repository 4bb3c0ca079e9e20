package mcmc

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Gaussian is a centred-or-shifted Gaussian law with mean mu and covariance
// C. Used both as the prior (Component C) and internally by proposal
// methods that need a Gaussian realisation.
type Gaussian struct {
	mean       Parameter
	covariance Covariance
}

// NewGaussian pairs a mean with a covariance operator. Returns
// ErrDimensionMismatch if their dimensions disagree.
func NewGaussian(mean Parameter, covariance Covariance) (*Gaussian, error) {
	if mean.Dim() != covariance.Dim() {
		return nil, errDim("gaussian mean/covariance", mean.Dim(), covariance.Dim())
	}
	return &Gaussian{mean: mean, covariance: covariance}, nil
}

// Mean returns mu.
func (g *Gaussian) Mean() Parameter { return g.mean }

// Covariance returns C.
func (g *Gaussian) Covariance() Covariance { return g.covariance }

// LogDensity returns -1/2 * norm2(x - mu), dropping the normalising
// constant (Section 4.2).
func (g *Gaussian) LogDensity(x Parameter) float64 {
	residual := x.Sub(g.mean)
	return -0.5 * g.covariance.Norm2(residual)
}

// Sample draws z ~ N(0, I) from rng and returns mu + chol(z).
func (g *Gaussian) Sample(rng *rand.Rand) Parameter {
	z := standardNormalVector(rng, g.mean.Dim())
	return g.mean.Add(g.covariance.Chol(z))
}

// standardNormalVector draws an i.i.d. N(0,1) vector of the given length
// from rng, using gonum's distuv.Normal rather than a hand-rolled Box-Muller
// loop.
func standardNormalVector(rng *rand.Rand, dim int) []float64 {
	unit := distuv.Normal{Mu: 0, Sigma: 1, Src: expRandSource{rng}}
	z := make([]float64, dim)
	for i := range z {
		z[i] = unit.Rand()
	}
	return z
}

// expRandSource adapts a *rand.Rand to golang.org/x/exp/rand.Source, which
// gonum's distuv package requires.
type expRandSource struct {
	rng *rand.Rand
}

func (s expRandSource) Uint64() uint64 { return s.rng.Uint64() }
func (s expRandSource) Seed(seed uint64) { s.rng.Seed(int64(seed)) }

func errDim(what string, a, b int) error {
	return &dimensionError{what: what, a: a, b: b}
}

type dimensionError struct {
	what string
	a, b int
}

func (e *dimensionError) Error() string {
	return fmt.Sprintf("%s: %s (%d vs %d)", ErrDimensionMismatch.Error(), e.what, e.a, e.b)
}

func (e *dimensionError) Unwrap() error { return ErrDimensionMismatch }
