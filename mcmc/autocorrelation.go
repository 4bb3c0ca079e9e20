package mcmc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ReductionMode chooses how a multivariate integrated autocorrelation time
// estimate is reduced from its per-coordinate values to a single scalar
// (Section 4.11).
type ReductionMode int

const (
	// ReductionMean uses the average IAT across coordinates.
	ReductionMean ReductionMode = iota
	// ReductionMax uses the worst-case (largest) IAT across coordinates,
	// the conservative choice for setting a thinning interval.
	ReductionMax
)

// windowConstant is Sokal's recommended constant c in the adaptive-window
// search M >= c * tauHat(M).
const windowConstant = 5.0

// IAT estimates the integrated autocorrelation time of a chain's accepted
// trajectory using Sokal's adaptive-window estimator on an FFT-accelerated
// autocovariance (Section 4.11). trajectory must hold at least 2 states.
// Returns ErrDegenerateChain if the adaptive window never converges (the
// chain is too short or too noisy for a meaningful estimate); in that case
// the caller should fall back to a thinning interval of
// max(1, ceil(len(trajectory)/50)), as DegenerateFallbackThinning computes.
func IAT(trajectory []Parameter, reduction ReductionMode) (float64, error) {
	if len(trajectory) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 states to estimate autocorrelation, got %d", ErrDegenerateChain, len(trajectory))
	}

	dim := trajectory[0].Dim()
	series := make([][]float64, dim)
	for d := 0; d < dim; d++ {
		series[d] = make([]float64, len(trajectory))
	}
	for i, x := range trajectory {
		coeff := x.Coefficient()
		for d := 0; d < dim; d++ {
			series[d][i] = coeff[d]
		}
	}

	taus := make([]float64, dim)
	for d := 0; d < dim; d++ {
		tau, err := iatScalar(series[d])
		if err != nil {
			return 0, err
		}
		taus[d] = tau
	}

	switch reduction {
	case ReductionMax:
		max := taus[0]
		for _, t := range taus[1:] {
			if t > max {
				max = t
			}
		}
		return max, nil
	default:
		sum := 0.0
		for _, t := range taus {
			sum += t
		}
		return sum / float64(len(taus)), nil
	}
}

// ThinningInterval converts an IAT estimate into the thinning interval
// Section 9's open question resolves to: ceil(tauHat), floored at 1.
func ThinningInterval(tauHat float64) int {
	k := int(math.Ceil(tauHat))
	if k < 1 {
		return 1
	}
	return k
}

// DegenerateFallbackThinning is the thinning interval used when IAT returns
// ErrDegenerateChain: chain length divided by 50, rounded up (never down,
// matching ThinningInterval's rounding policy) and floored at 1.
func DegenerateFallbackThinning(chainLength int) int {
	k := int(math.Ceil(float64(chainLength) / 50))
	if k < 1 {
		return 1
	}
	return k
}

// iatScalar estimates the IAT of a single scalar series via Sokal's
// adaptive-window method over an FFT-accelerated autocovariance.
func iatScalar(x []float64) (float64, error) {
	n := len(x)
	acov := autocovariance(x)
	if acov[0] <= 0 {
		return 0, fmt.Errorf("%w: series has zero variance, autocorrelation is undefined", ErrDegenerateChain)
	}

	rho := make([]float64, n)
	for lag := 0; lag < n; lag++ {
		rho[lag] = acov[lag] / acov[0]
	}

	tau := 1.0
	for m := 1; m < n; m++ {
		tau += 2 * rho[m]
		if float64(m) >= windowConstant*tau {
			return tau, nil
		}
	}

	return 0, fmt.Errorf("%w: adaptive window did not converge within %d lags", ErrDegenerateChain, n)
}

// autocovariance computes the biased sample autocovariance of x at lags
// 0..len(x)-1 via the Wiener-Khinchin theorem: the autocovariance is the
// inverse transform of the power spectrum of the (mean-removed, zero-padded)
// series. Zero-padding to twice the series length eliminates circular
// wrap-around, so the result equals the direct (non-circular) estimator.
func autocovariance(x []float64) []float64 {
	n := len(x)
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	m := 2 * n
	padded := make([]float64, m)
	for i, v := range x {
		padded[i] = v - mean
	}

	fft := fourier.NewFFT(m)
	coeff := fft.FFT(nil, padded)

	power := make([]float64, m)
	power[0] = coeff[0] * coeff[0]
	half := m / 2
	for k := 1; k < half; k++ {
		power[2*k-1] = coeff[2*k-1]*coeff[2*k-1] + coeff[2*k]*coeff[2*k]
	}
	if m%2 == 0 {
		power[m-1] = coeff[m-1] * coeff[m-1]
	}

	raw := fft.IFFT(nil, power)

	acov := make([]float64, n)
	for lag := 0; lag < n; lag++ {
		acov[lag] = raw[lag] / (float64(m) * float64(n))
	}
	return acov
}
