package mcmc

import "errors"

// Error kinds surfaced across the builder, model and sampler layers. See
// Section 7 of the design: construction-time errors halt setup immediately;
// runtime numerical failures at a single parameter are recovered locally by
// the caller (a -Inf log-posterior), not by returning one of these.
var (
	// ErrInvalidBuilder reports a builder invoked with missing or
	// conflicting configuration.
	ErrInvalidBuilder = errors.New("mcmc: invalid builder configuration")

	// ErrInvalidHierarchy reports a tempering sequence that is not
	// non-decreasing or does not terminate at 1.
	ErrInvalidHierarchy = errors.New("mcmc: invalid model hierarchy")

	// ErrDimensionMismatch reports disagreeing parameter, data, noise or
	// covariance dimensions.
	ErrDimensionMismatch = errors.New("mcmc: dimension mismatch")

	// ErrIllConditioned reports a covariance whose Cholesky factorization
	// failed.
	ErrIllConditioned = errors.New("mcmc: covariance is not positive definite")

	// ErrSolverFailure reports a forward solver that signalled
	// non-convergence at a given parameter.
	ErrSolverFailure = errors.New("mcmc: forward solver failed to converge")

	// ErrDegenerateChain reports an integrated-autocorrelation estimate
	// that failed to converge within the admissible window.
	ErrDegenerateChain = errors.New("mcmc: autocorrelation estimate did not converge")
)
