// Package medlyn fits the Medlyn et al. stomatal-conductance model to leaf
// gas-exchange observations.
//
// The model (corrigendum form, Medlyn et al. 2012, Global Change Biology 18)
// predicts stomatal conductance from vapour pressure deficit (VPD, kPa),
// net assimilation A and leaf-surface CO2 Cs:
//
//	gs = g0 + 1.6 · (1 + g1/√VPD) · A/Cs
//
// A fit proceeds in three steps: BuildParameters chooses which of g0 and g1
// may vary, MinimizeParameters runs a bounded Levenberg–Marquardt fit of the
// residuals observed − predicted, and ComputeStatistics summarises the fit
// (parameter values, standard errors, r², sample count, RMSE).
//
// Inputs are not validated: VPD ≤ 0 or Cs = 0 produce non-finite
// predictions, which abort the minimisation with an error.
package medlyn
