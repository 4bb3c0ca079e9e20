package mcmc

import "gonum.org/v1/gonum/floats"

// Parameter is an immutable, fixed-dimension real vector. Equality is
// elementwise exact (Section 3).
type Parameter struct {
	coefficient []float64
}

// NewParameter copies coefficient into a new Parameter.
func NewParameter(coefficient []float64) Parameter {
	c := make([]float64, len(coefficient))
	copy(c, coefficient)
	return Parameter{coefficient: c}
}

// Dim returns the dimension d of the parameter.
func (p Parameter) Dim() int {
	return len(p.coefficient)
}

// At returns the i-th coefficient.
func (p Parameter) At(i int) float64 {
	return p.coefficient[i]
}

// Coefficient returns a copy of the underlying coefficients so callers
// cannot mutate a Parameter through an alias.
func (p Parameter) Coefficient() []float64 {
	c := make([]float64, len(p.coefficient))
	copy(c, p.coefficient)
	return c
}

// Equal reports elementwise exact equality.
func (p Parameter) Equal(other Parameter) bool {
	return floats.Equal(p.coefficient, other.coefficient)
}

// Add returns x + delta as a new Parameter. Panics on dimension mismatch,
// matching gonum/floats' own contract for its in-place vector ops.
func (p Parameter) Add(delta []float64) Parameter {
	sum := make([]float64, len(p.coefficient))
	copy(sum, p.coefficient)
	floats.Add(sum, delta)
	return Parameter{coefficient: sum}
}

// Sub returns x - other as a plain residual vector.
func (p Parameter) Sub(other Parameter) []float64 {
	r := make([]float64, len(p.coefficient))
	floats.SubTo(r, p.coefficient, other.coefficient)
	return r
}
