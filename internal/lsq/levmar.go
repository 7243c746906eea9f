package lsq

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// maxCondition is the largest condition number of JᵀJ for which a
// covariance estimate is reported.
const maxCondition = 1e14

// LevenbergMarquardt minimises a Problem with the damped Gauss–Newton
// method, using central finite differences for the Jacobian.
type LevenbergMarquardt struct {
	Settings Settings
}

// Minimize runs the iteration from the parameters' starting values.
func (lm LevenbergMarquardt) Minimize(ctx context.Context, p Problem) (*Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	free := p.free()
	n, m := len(free), p.Size
	s := lm.Settings.withDefaults(n)

	ev := newEvaluator(p, free)
	x := make([]float64, n)
	for k, i := range free {
		x[k] = toInternal(p.Params[i], p.Params[i].Value)
	}

	r := make([]float64, m)
	if err := ev.internal(r, x); err != nil {
		return nil, err
	}
	cost := 0.5 * floats.Dot(r, r)

	iter := 0
	if n > 0 {
		J := mat.NewDense(m, n, nil)
		A := mat.NewSymDense(n, nil)
		g := mat.NewVecDense(n, nil)
		if err := ev.normal(J, A, g, x, r); err != nil {
			return nil, err
		}

		mu := s.Tau * maxDiag(A)
		if mu == 0 {
			mu = s.Tau
		}
		nu := 2.0
		xNew := make([]float64, n)
		rNew := make([]float64, m)

		for ; ; iter++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if iter >= s.MaxIterations || math.IsInf(mu, 1) {
				return nil, fmt.Errorf("%w after %d iterations (ssr=%g)", ErrNotConverged, iter, 2*cost)
			}
			if cost == 0 || mat.Norm(g, math.Inf(1)) <= s.GTol {
				break
			}

			h, ok := solveDamped(A, g, mu)
			if !ok {
				mu *= nu
				nu *= 2
				continue
			}
			if floats.Norm(h, 2) <= s.XTol*(floats.Norm(x, 2)+s.XTol) {
				break
			}

			floats.AddTo(xNew, x, h)
			if err := ev.internal(rNew, xNew); err != nil {
				return nil, err
			}
			costNew := 0.5 * floats.Dot(rNew, rNew)

			// Predicted reduction of the quadratic model: ½hᵀ(μh − g).
			predicted := 0.5 * (mu*floats.Dot(h, h) - floats.Dot(h, g.RawVector().Data))
			rho := -1.0
			if predicted > 0 {
				rho = (cost - costNew) / predicted
			}
			if rho <= 0 {
				mu *= nu
				nu *= 2
				continue
			}

			reduction := cost - costNew
			x, xNew = xNew, x
			r, rNew = rNew, r
			cost = costNew
			if err := ev.normal(J, A, g, x, r); err != nil {
				return nil, err
			}
			mu *= math.Max(1.0/3, 1-math.Pow(2*rho-1, 3))
			nu = 2
			if reduction <= s.FTol*(cost+reduction) {
				iter++
				break
			}
		}
	}

	res := &Result{
		Params:     make([]Param, len(p.Params)),
		StdErr:     make([]float64, len(p.Params)),
		SSR:        2 * cost,
		Iterations: iter,
		NFree:      n,
	}
	copy(res.Params, p.Params)
	for k, i := range free {
		res.Params[i].Value = toExternal(p.Params[i], x[k])
	}
	if n > 0 {
		stderr := ev.standardErrors(res.Params, res.SSR)
		for k, i := range free {
			res.StdErr[i] = stderr[k]
		}
	}
	res.Evaluations = ev.calls
	return res, nil
}

// solveDamped solves (A + μI)h = −g.
func solveDamped(A *mat.SymDense, g *mat.VecDense, mu float64) ([]float64, bool) {
	n := A.SymmetricDim()
	B := mat.NewSymDense(n, nil)
	B.CopySym(A)
	for i := 0; i < n; i++ {
		B.SetSym(i, i, B.At(i, i)+mu)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(B); !ok {
		return nil, false
	}
	var h mat.VecDense
	if err := chol.SolveVecTo(&h, g); err != nil {
		return nil, false
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = -h.AtVec(i)
	}
	if !allFinite(out) {
		return nil, false
	}
	return out, true
}

func maxDiag(A *mat.SymDense) float64 {
	largest := 0.0
	for i := 0; i < A.SymmetricDim(); i++ {
		largest = math.Max(largest, A.At(i, i))
	}
	return largest
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// evaluator adapts the problem's residual function to the free internal
// variables the optimiser works on.
type evaluator struct {
	p     Problem
	free  []int
	calls int
}

func newEvaluator(p Problem, free []int) *evaluator {
	return &evaluator{p: p, free: free}
}

// external evaluates residuals with the free parameters set to xe,
// given in external units.
func (e *evaluator) external(dst, xe []float64) {
	params := make([]float64, len(e.p.Params))
	for i, par := range e.p.Params {
		params[i] = clamp(par, par.Value)
	}
	for k, i := range e.free {
		params[i] = xe[k]
	}
	e.calls++
	e.p.Residual(dst, params)
}

// internal evaluates residuals for internal variables x and checks that
// every residual is finite.
func (e *evaluator) internal(dst, x []float64) error {
	e.external(dst, e.toExternal(x))
	if !allFinite(dst) {
		return ErrNonFinite
	}
	return nil
}

func (e *evaluator) toExternal(x []float64) []float64 {
	xe := make([]float64, len(x))
	for k, i := range e.free {
		xe[k] = toExternal(e.p.Params[i], x[k])
	}
	return xe
}

// normal refreshes J, A = JᵀJ and g = Jᵀr at x.
func (e *evaluator) normal(J *mat.Dense, A *mat.SymDense, g *mat.VecDense, x, r []float64) error {
	fd.Jacobian(J, func(y, u []float64) {
		e.external(y, e.toExternal(u))
	}, x, &fd.JacobianSettings{Formula: fd.Central})
	if !allFinite(J.RawMatrix().Data) {
		return ErrNonFinite
	}
	A.Reset()
	A.SymOuterK(1, J.T())
	g.MulVec(J.T(), mat.NewVecDense(len(r), r))
	return nil
}

// standardErrors estimates parameter uncertainties at the fitted values.
func (e *evaluator) standardErrors(params []Param, ssr float64) []float64 {
	n, m := len(e.free), e.p.Size
	out := make([]float64, n)
	for k := range out {
		out[k] = math.NaN()
	}
	if m <= n {
		return out
	}

	xe := make([]float64, n)
	for k, i := range e.free {
		xe[k] = params[i].Value
	}
	J := mat.NewDense(m, n, nil)
	fd.Jacobian(J, e.external, xe, &fd.JacobianSettings{Formula: fd.Central})
	if !allFinite(J.RawMatrix().Data) {
		return out
	}

	A := mat.NewSymDense(n, nil)
	A.SymOuterK(1, J.T())
	var chol mat.Cholesky
	if ok := chol.Factorize(A); !ok || chol.Cond() > maxCondition {
		return out
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return out
	}
	redchi := ssr / float64(m-n)
	for k := range out {
		out[k] = math.Sqrt(cov.At(k, k) * redchi)
	}
	return out
}
