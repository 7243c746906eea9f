//go:generate mockgen -source=fitter.go -destination=mocks/mock_fitter.go -package=mocks

package medlyn

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/gsfit/internal/errors"
	"github.com/agbru/gsfit/internal/logging"
	"github.com/agbru/gsfit/internal/lsq"
)

const tracerName = "github.com/agbru/gsfit/internal/medlyn"

// Minimizer solves a least-squares problem. lsq.LevenbergMarquardt is the
// production implementation.
type Minimizer interface {
	Minimize(ctx context.Context, p lsq.Problem) (*lsq.Result, error)
}

// Fitter fits the Medlyn model to observation tables whose columns are
// named by its Roles. A Fitter holds no per-fit state and may be shared.
type Fitter struct {
	roles     Roles
	minimizer Minimizer
	logger    logging.Logger
	tracer    trace.Tracer
}

// Option configures a Fitter during construction.
type Option func(*Fitter)

// WithMinimizer replaces the default Levenberg–Marquardt minimiser.
func WithMinimizer(m Minimizer) Option {
	return func(f *Fitter) { f.minimizer = m }
}

// WithLogger sets the logger used for fit diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(f *Fitter) { f.logger = l }
}

// WithTracerProvider sets the OpenTelemetry provider spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(f *Fitter) { f.tracer = tp.Tracer(tracerName) }
}

// New creates a Fitter for the given column roles. The roles are not
// checked until a table is used.
func New(roles Roles, opts ...Option) *Fitter {
	f := &Fitter{roles: roles}
	for _, opt := range opts {
		opt(f)
	}
	if f.minimizer == nil {
		f.minimizer = lsq.LevenbergMarquardt{Settings: lsq.DefaultSettings()}
	}
	if f.logger == nil {
		f.logger = logging.Nop()
	}
	if f.tracer == nil {
		f.tracer = otel.Tracer(tracerName)
	}
	return f
}

// Roles returns the column mapping the Fitter was created with.
func (f *Fitter) Roles() Roles { return f.roles }

// BuildParameters returns the starting parameters; see BuildParameters.
func (f *Fitter) BuildParameters(fitG0 bool) ParameterSet {
	return BuildParameters(fitG0)
}

// Residual returns observed − predicted for every row of t, using the
// current values of ps.
func (f *Fitter) Residual(ps ParameterSet, t Table) ([]float64, error) {
	c, err := f.roles.resolve(t)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(c.obs))
	c.residual(out, ps.G0.Value, ps.G1.Value)
	return out, nil
}

func (c columns) residual(dst []float64, g0, g1 float64) {
	predictInto(dst, c.vpd, c.assim, c.co2, g0, g1)
	for i := range dst {
		dst[i] = c.obs[i] - dst[i]
	}
}

// MinimizeParameters fits ps to t by minimising the sum of squared
// residuals. On failure it returns a zero Result and a *apperrors.FitError
// naming the stage that failed; no partial result is produced.
func (f *Fitter) MinimizeParameters(ctx context.Context, ps ParameterSet, t Table) (Result, error) {
	ctx, span := f.tracer.Start(ctx, "medlyn.MinimizeParameters")
	defer span.End()

	res, err := f.minimize(ctx, ps, t)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fit failed")
		f.logger.Error("minimisation failed", err, logging.Int("rows", t.Len()))
		return Result{}, err
	}
	span.SetAttributes(
		attribute.Int("gsfit.iterations", res.Iterations),
		attribute.Float64("gsfit.ssr", res.SSR),
	)
	return res, nil
}

func (f *Fitter) minimize(ctx context.Context, ps ParameterSet, t Table) (Result, error) {
	c, err := f.roles.resolve(t)
	if err != nil {
		return Result{}, apperrors.NewFitError(apperrors.StageColumns, err)
	}

	params := ps.list()
	problem := lsq.Problem{
		Params: params,
		Size:   len(c.obs),
		Residual: func(dst, p []float64) {
			c.residual(dst, p[0], p[1])
		},
	}

	start := time.Now()
	r, err := f.minimizer.Minimize(ctx, problem)
	if err != nil {
		stage := apperrors.StageMinimize
		if errors.Is(err, lsq.ErrNonFinite) {
			stage = apperrors.StageResidual
		}
		return Result{}, apperrors.NewFitError(stage, err)
	}
	if r == nil {
		return Result{}, apperrors.NewFitError(apperrors.StageMinimize, errors.New("minimiser returned no result"))
	}

	res := resultFrom(r)
	f.logger.Debug("minimisation converged",
		logging.Int("rows", len(c.obs)),
		logging.Int("iterations", res.Iterations),
		logging.Int("evaluations", res.Evaluations),
		logging.Float64("ssr", res.SSR),
		logging.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Fit runs the whole pipeline: build parameters, minimise, summarise.
func (f *Fitter) Fit(ctx context.Context, fitG0 bool, t Table) (Result, Statistics, error) {
	res, err := f.MinimizeParameters(ctx, f.BuildParameters(fitG0), t)
	if err != nil {
		return Result{}, Statistics{}, err
	}
	stats, err := f.ComputeStatistics(res, t)
	if err != nil {
		return Result{}, Statistics{}, apperrors.NewFitError(apperrors.StageStatistics, err)
	}
	return res, stats, nil
}
