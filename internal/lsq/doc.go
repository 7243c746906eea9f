// Package lsq implements bounded nonlinear least squares with the
// Levenberg–Marquardt method.
//
// # Problem layout
//
// A [Problem] names its parameters, the number of residuals, and a residual
// function that fills dst from the current parameter values. Parameters may
// be fixed (Vary=false) or bounded by Min and/or Max.
//
// # Bounds
//
// Bounded parameters are mapped to an unbounded internal variable with the
// MINUIT transforms, so the optimiser itself never sees a constraint:
//
//	min only: external = min - 1 + sqrt(internal² + 1)
//	max only: external = max + 1 - sqrt(internal² + 1)
//	both:     external = min + (sin(internal) + 1)·(max - min)/2
//
// # Uncertainties
//
// After convergence the Jacobian is re-evaluated in external parameter space
// and the covariance is estimated as (JᵀJ)⁻¹ scaled by the reduced
// chi-square SSR/(m - nfree). Standard errors are the square roots of its
// diagonal; they are NaN when the covariance cannot be estimated.
package lsq
