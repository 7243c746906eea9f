package lsq

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidProblem is returned when a Problem is malformed.
	ErrInvalidProblem = errors.New("invalid least-squares problem")
	// ErrNonFinite is returned when the residual function yields NaN or ±Inf.
	ErrNonFinite = errors.New("residual function returned non-finite values")
	// ErrNotConverged is returned when the iteration limit is reached.
	ErrNotConverged = errors.New("minimisation did not converge")
)

// Param is a named model parameter. Min and Max default to ±Inf through the
// constructors; a Param built as a struct literal must set them explicitly.
type Param struct {
	Name  string
	Value float64
	Vary  bool
	Min   float64
	Max   float64
}

// Free returns an unbounded parameter that the optimiser may vary.
func Free(name string, value float64) Param {
	return Param{Name: name, Value: value, Vary: true, Min: math.Inf(-1), Max: math.Inf(1)}
}

// Fixed returns a parameter held at value.
func Fixed(name string, value float64) Param {
	p := Free(name, value)
	p.Vary = false
	return p
}

// WithMin returns a copy of p with a lower bound.
func (p Param) WithMin(lo float64) Param {
	p.Min = lo
	return p
}

// WithMax returns a copy of p with an upper bound.
func (p Param) WithMax(hi float64) Param {
	p.Max = hi
	return p
}

// ResidualFunc fills dst with the residuals for the given external parameter
// values, ordered as Problem.Params. It must not retain or modify params.
type ResidualFunc func(dst, params []float64)

// Problem is a nonlinear least-squares problem: minimise the sum of squared
// residuals over the varying parameters.
type Problem struct {
	Params   []Param
	Size     int
	Residual ResidualFunc
}

func (p Problem) validate() error {
	if p.Residual == nil {
		return fmt.Errorf("%w: nil residual function", ErrInvalidProblem)
	}
	if p.Size <= 0 {
		return fmt.Errorf("%w: residual size %d", ErrInvalidProblem, p.Size)
	}
	for _, par := range p.Params {
		if math.IsNaN(par.Value) || math.IsInf(par.Value, 0) {
			return fmt.Errorf("%w: parameter %q has non-finite value", ErrInvalidProblem, par.Name)
		}
		if par.Vary && !(par.Min < par.Max) {
			return fmt.Errorf("%w: parameter %q has empty range [%g, %g]", ErrInvalidProblem, par.Name, par.Min, par.Max)
		}
	}
	return nil
}

func (p Problem) free() []int {
	idx := make([]int, 0, len(p.Params))
	for i, par := range p.Params {
		if par.Vary {
			idx = append(idx, i)
		}
	}
	return idx
}

// Settings control convergence of the Levenberg–Marquardt iteration.
type Settings struct {
	// MaxIterations bounds the number of damped steps tried. Zero selects
	// 2000·(nfree+1).
	MaxIterations int
	// FTol stops when an accepted step reduces the cost by less than this
	// fraction.
	FTol float64
	// XTol stops when the step is small relative to the parameter vector.
	XTol float64
	// GTol stops when the gradient's max-norm falls below it.
	GTol float64
	// Tau scales the initial damping against the largest diagonal of JᵀJ.
	Tau float64
}

// DefaultSettings mirrors MINPACK's lmdif tolerances.
func DefaultSettings() Settings {
	return Settings{
		FTol: 1.5e-8,
		XTol: 1.5e-8,
		GTol: 1e-15,
		Tau:  1e-3,
	}
}

func (s Settings) withDefaults(nfree int) Settings {
	d := DefaultSettings()
	if s.MaxIterations <= 0 {
		s.MaxIterations = 2000 * (nfree + 1)
	}
	if s.FTol <= 0 {
		s.FTol = d.FTol
	}
	if s.XTol <= 0 {
		s.XTol = d.XTol
	}
	if s.GTol <= 0 {
		s.GTol = d.GTol
	}
	if s.Tau <= 0 {
		s.Tau = d.Tau
	}
	return s
}

// Result is the outcome of a successful minimisation.
type Result struct {
	// Params holds the fitted parameters in Problem order.
	Params []Param
	// StdErr holds one standard error per parameter: 0 for fixed
	// parameters, NaN when the covariance could not be estimated.
	StdErr []float64
	// SSR is the final sum of squared residuals.
	SSR float64
	// Iterations counts damped steps attempted.
	Iterations int
	// Evaluations counts residual function calls, finite differences included.
	Evaluations int
	// NFree is the number of varying parameters.
	NFree int
}

// Value returns the fitted value of the named parameter.
func (r *Result) Value(name string) (float64, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return 0, false
}

// Err returns the standard error of the named parameter.
func (r *Result) Err(name string) (float64, bool) {
	for i, p := range r.Params {
		if p.Name == name {
			return r.StdErr[i], true
		}
	}
	return 0, false
}
