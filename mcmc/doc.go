// Package mcmc implements a Markov-chain Monte Carlo engine for Bayesian
// inverse problems.
//
// # Reading Guide
//
// Start with these files to understand the sampling core:
//   - parameter.go: the typed parameter vector passed between every layer
//   - covariance.go: the covariance operator contract (chol/inv/norm2)
//   - posterior.go: prior + likelihood + tempering -> unnormalised log posterior
//   - kernel.go: the Metropolis-Hastings accept/reject state machine
//   - mlda.go: the recursive multi-level delayed-acceptance sampler
//
// # Architecture
//
// mcmc defines the statistical model (prior, noise, likelihood, posterior,
// hierarchy) and the samplers that consume it (Metropolis-Hastings, MLDA).
// Forward models are supplied by the caller through the ForwardSolver
// interface; mcmc only wraps them in a memoizing cache (forward.go). AEM
// bias/covariance correction (likelihood.go) subscribes to a sampler's
// accepted-state events rather than being driven by a hidden global
// registry.
//
// Builders (builder.go) assemble a posterior plus a proposal into a runnable
// Sampler; construction-time misconfiguration is reported immediately as an
// error from Section 7 (errors.go), never as a panic.
//
// A single sampler instance is not safe for concurrent use; independent
// chains are the caller's responsibility to parallelise across disjoint RNG
// seeds (see rng.go).
package mcmc
