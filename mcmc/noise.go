package mcmc

import "gonum.org/v1/gonum/mat"

// Noise is a centred Gaussian noise model: log_likelihood(residuals) =
// -1/2 * sum_i norm2(r_i) (Section 4.3).
type Noise struct {
	covariance Covariance
}

// NewNoise wraps a covariance operator as a centred Gaussian noise model.
func NewNoise(covariance Covariance) *Noise {
	return &Noise{covariance: covariance}
}

// Dim returns the observation dimension m.
func (n *Noise) Dim() int { return n.covariance.Dim() }

// Covariance returns the base noise covariance Sigma_n.
func (n *Noise) Covariance() Covariance { return n.covariance }

// LogLikelihood returns -1/2 * sum_i norm2(r_i) over the ordered residual
// rows.
func (n *Noise) LogLikelihood(residuals [][]float64) float64 {
	var sum float64
	for _, r := range residuals {
		sum += n.covariance.Norm2(r)
	}
	return -0.5 * sum
}

// WithAdditiveCorrection returns a new Noise whose covariance is Sigma_n + B,
// the AEM-augmented effective noise covariance described in Section 4.3 and
// 4.5. The correction B is taken as a raw symmetric matrix rather than a
// Covariance operator: a learned error covariance may be merely positive
// semidefinite (degenerate early in the accumulation window, or exactly
// zero for a deterministic discrepancy), and only the sum Sigma_n + B has
// to be positive definite. Sigma_n is required to be dense-representable so
// the sum can be formed; every Covariance satisfies this via Dense().
func (n *Noise) WithAdditiveCorrection(correction *mat.SymDense) (*Noise, error) {
	corrDim, _ := correction.Dims()
	if n.Dim() != corrDim {
		return nil, errDim("noise/AEM correction covariance", n.Dim(), corrDim)
	}

	base := n.covariance.Dense()
	add := correction

	dim := n.Dim()
	sum := make([]float64, dim*dim)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			v := base.At(i, j) + add.At(i, j)
			sum[i*dim+j] = v
			sum[j*dim+i] = v
		}
	}

	combined, err := newSymCovariance(dim, sum)
	if err != nil {
		return nil, err
	}
	return &Noise{covariance: combined}, nil
}
