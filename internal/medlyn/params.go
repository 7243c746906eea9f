package medlyn

import (
	"math"

	"github.com/agbru/gsfit/internal/lsq"
)

// Parameter names as reported in results.
const (
	NameG0 = "g0"
	NameG1 = "g1"
)

// Starting values and bounds of a fit.
const (
	InitialG0 = 0.0
	InitialG1 = 2.0
	MinG1     = 0.0
)

// Parameter is a single model parameter with its starting value and range.
type Parameter = lsq.Param

// ParameterSet holds the two Medlyn parameters.
type ParameterSet struct {
	G0 Parameter
	G1 Parameter
}

// BuildParameters returns the starting parameter set. g0 starts at 0 and
// varies only if fitG0 is true; g1 starts at 2 and is bounded below by 0.
func BuildParameters(fitG0 bool) ParameterSet {
	g0 := lsq.Fixed(NameG0, InitialG0)
	if fitG0 {
		g0 = lsq.Free(NameG0, InitialG0)
	}
	return ParameterSet{
		G0: g0,
		G1: lsq.Free(NameG1, InitialG1).WithMin(MinG1),
	}
}

// Free reports how many parameters the minimiser may vary.
func (ps ParameterSet) Free() int {
	n := 0
	for _, p := range ps.list() {
		if p.Vary {
			n++
		}
	}
	return n
}

func (ps ParameterSet) list() []lsq.Param {
	return []lsq.Param{ps.G0, ps.G1}
}

// Result is the outcome of a successful minimisation.
type Result struct {
	G0       float64
	G0StdErr float64
	G1       float64
	G1StdErr float64

	// SSR is the final sum of squared residuals.
	SSR float64
	// Iterations and Evaluations report the minimiser's work.
	Iterations  int
	Evaluations int
	// FreeParams is the number of parameters that varied.
	FreeParams int
}

func resultFrom(r *lsq.Result) Result {
	out := Result{
		SSR:         r.SSR,
		Iterations:  r.Iterations,
		Evaluations: r.Evaluations,
		FreeParams:  r.NFree,
		G0StdErr:    math.NaN(),
		G1StdErr:    math.NaN(),
	}
	out.G0, _ = r.Value(NameG0)
	out.G1, _ = r.Value(NameG1)
	if se, ok := r.Err(NameG0); ok {
		out.G0StdErr = se
	}
	if se, ok := r.Err(NameG1); ok {
		out.G1StdErr = se
	}
	return out
}
