package mcmc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Covariance is a positive-definite linear operator on R^d. Every
// implementation must give numerically consistent Chol, Inv and Norm2
// (Section 4.1).
type Covariance interface {
	// Dim returns d.
	Dim() int

	// Chol applies the lower Cholesky factor L (LL^T = C) to x.
	Chol(x []float64) []float64

	// Inv applies C^-1 to x.
	Inv(x []float64) []float64

	// Norm2 returns x^T C^-1 x.
	Norm2(x []float64) float64

	// Dense returns the operator's dense representation, used by
	// components (e.g. the AEM noise correction) that need the raw matrix rather than its
	// action on a vector.
	Dense() *mat.SymDense
}

// IsotropicCovariance is sigma^2 * I.
type IsotropicCovariance struct {
	dim      int
	variance float64
	stddev   float64
}

// NewIsotropicCovariance builds sigma^2 * I for the given dimension.
// Returns ErrIllConditioned if variance is not strictly positive.
func NewIsotropicCovariance(dim int, variance float64) (*IsotropicCovariance, error) {
	if variance <= 0 {
		return nil, fmt.Errorf("%w: isotropic variance must be positive, got %f", ErrIllConditioned, variance)
	}
	return &IsotropicCovariance{dim: dim, variance: variance, stddev: math.Sqrt(variance)}, nil
}

func (c *IsotropicCovariance) Dim() int { return c.dim }

func (c *IsotropicCovariance) Chol(x []float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = c.stddev * v
	}
	return y
}

func (c *IsotropicCovariance) Inv(x []float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = v / c.variance
	}
	return y
}

func (c *IsotropicCovariance) Norm2(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return s / c.variance
}

func (c *IsotropicCovariance) Dense() *mat.SymDense {
	d := mat.NewSymDense(c.dim, nil)
	for i := 0; i < c.dim; i++ {
		d.SetSym(i, i, c.variance)
	}
	return d
}

// DiagonalCovariance stores one variance per coordinate.
type DiagonalCovariance struct {
	variance []float64
	stddev   []float64
}

// NewDiagonalCovariance builds a diagonal covariance from per-coordinate
// marginal variances. Returns ErrIllConditioned if any variance is not
// strictly positive.
func NewDiagonalCovariance(variance []float64) (*DiagonalCovariance, error) {
	stddev := make([]float64, len(variance))
	for i, v := range variance {
		if v <= 0 {
			return nil, fmt.Errorf("%w: marginal variance at index %d must be positive, got %f", ErrIllConditioned, i, v)
		}
		stddev[i] = math.Sqrt(v)
	}
	vc := make([]float64, len(variance))
	copy(vc, variance)
	return &DiagonalCovariance{variance: vc, stddev: stddev}, nil
}

func (c *DiagonalCovariance) Dim() int { return len(c.variance) }

func (c *DiagonalCovariance) Chol(x []float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = c.stddev[i] * v
	}
	return y
}

func (c *DiagonalCovariance) Inv(x []float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = v / c.variance[i]
	}
	return y
}

func (c *DiagonalCovariance) Norm2(x []float64) float64 {
	var s float64
	for i, v := range x {
		s += v * v / c.variance[i]
	}
	return s
}

func (c *DiagonalCovariance) Dense() *mat.SymDense {
	d := mat.NewSymDense(len(c.variance), nil)
	for i, v := range c.variance {
		d.SetSym(i, i, v)
	}
	return d
}

// DenseCovariance precomputes a lower Cholesky factor once at construction;
// Inv is implemented as two triangular solves against that factor.
type DenseCovariance struct {
	dim  int
	dens *mat.SymDense
	chol mat.Cholesky
}

// NewDenseCovariance factorizes sym once. Returns ErrIllConditioned if sym
// is not positive definite.
func NewDenseCovariance(sym *mat.SymDense) (*DenseCovariance, error) {
	n, _ := sym.Dims()

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, fmt.Errorf("%w: dense covariance Cholesky factorization failed", ErrIllConditioned)
	}

	dc := &DenseCovariance{dim: n, dens: sym, chol: chol}
	return dc, nil
}

func (c *DenseCovariance) Dim() int { return c.dim }

func (c *DenseCovariance) Chol(x []float64) []float64 {
	var l mat.TriDense
	c.chol.LTo(&l)

	xv := mat.NewVecDense(c.dim, x)
	var yv mat.VecDense
	yv.MulVec(&l, xv)

	y := make([]float64, c.dim)
	for i := 0; i < c.dim; i++ {
		y[i] = yv.AtVec(i)
	}
	return y
}

func (c *DenseCovariance) Inv(x []float64) []float64 {
	xv := mat.NewVecDense(c.dim, x)
	var yv mat.VecDense
	// The operator was already validated positive definite at construction,
	// so an error from SolveVecTo here is treated as a programmer error.
	if err := c.chol.SolveVecTo(&yv, xv); err != nil {
		panic(fmt.Sprintf("mcmc: dense covariance solve failed after successful factorization: %v", err))
	}

	y := make([]float64, c.dim)
	for i := 0; i < c.dim; i++ {
		y[i] = yv.AtVec(i)
	}
	return y
}

func (c *DenseCovariance) Norm2(x []float64) float64 {
	px := c.Inv(x)
	var s float64
	for i, v := range x {
		s += v * px[i]
	}
	return s
}

func (c *DenseCovariance) Dense() *mat.SymDense { return c.dens }

// newSymCovariance builds a DenseCovariance from a flattened row-major
// symmetric matrix, used where two covariance operators must be combined
// additively (the AEM noise correction).
func newSymCovariance(dim int, rowMajor []float64) (*DenseCovariance, error) {
	return NewDenseCovariance(mat.NewSymDense(dim, rowMajor))
}
