package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/gsfit/internal/cli"
	"github.com/agbru/gsfit/internal/config"
	apperrors "github.com/agbru/gsfit/internal/errors"
	"github.com/agbru/gsfit/internal/logging"
	"github.com/agbru/gsfit/internal/lsq"
	"github.com/agbru/gsfit/internal/medlyn"
	"github.com/agbru/gsfit/internal/metrics"
	"github.com/agbru/gsfit/internal/table"
)

const (
	programName = "gsfit"
	tracerName  = "github.com/agbru/gsfit/internal/app"
)

// Application represents the gsfit application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer

	minimizer      medlyn.Minimizer
	logger         logging.Logger
	tracerProvider trace.TracerProvider
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithMinimizer replaces the Levenberg–Marquardt minimiser built from the
// configuration.
func WithMinimizer(m medlyn.Minimizer) AppOption {
	return func(a *Application) { a.minimizer = m }
}

// WithLogger replaces the logger selected by --log-format.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.logger = l }
}

// WithTracerProvider sets the OpenTelemetry provider. The global provider
// is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) AppOption {
	return func(a *Application) { a.tracerProvider = tp }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	name := programName
	var cmdArgs []string
	if len(args) > 0 {
		name = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(name, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if app.tracerProvider == nil {
		app.tracerProvider = otel.GetTracerProvider()
	}
	if app.minimizer == nil {
		settings := lsq.DefaultSettings()
		settings.MaxIterations = cfg.MaxIterations
		app.minimizer = lsq.LevenbergMarquardt{Settings: settings}
	}
	if app.logger == nil {
		app.logger = newLogger(cfg, errWriter)
	}
	return app, nil
}

// newLogger selects the logging backend for cfg.
func newLogger(cfg config.AppConfig, w io.Writer) logging.Logger {
	if cfg.Quiet {
		return logging.Nop()
	}
	if cfg.LogFormat == config.LogFormatText {
		level := slog.LevelInfo
		if cfg.Verbose {
			level = slog.LevelDebug
		}
		color := os.Getenv("NO_COLOR") == "" && cli.IsTerminal(w)
		return logging.NewConsoleLogger(w, programName, level, color)
	}
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	if w == io.Writer(os.Stderr) {
		return logging.NewDefaultLogger().WithLevel(level)
	}
	return logging.NewLogger(w, programName).WithLevel(level)
}

// Run loads the observation table, fits the model and prints the statistics
// to out. It returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	m := metrics.New()
	err := a.runFit(ctx, out, m)
	if err != nil {
		a.report(err)
	}

	if a.Config.MetricsFile != "" {
		m.ObserveMemory(metrics.ReadMemory())
		m.ObserveSystem(metrics.ReadSystem())
		if werr := m.WriteTextfile(a.Config.MetricsFile); werr != nil {
			a.report(apperrors.WrapError(werr, "failed to write metrics"))
			if err == nil {
				return apperrors.ExitErrorGeneric
			}
		}
	}
	return apperrors.ExitCodeFor(err)
}

func (a *Application) runFit(ctx context.Context, out io.Writer, m *metrics.Metrics) error {
	ctx, span := a.tracerProvider.Tracer(tracerName).Start(ctx, "gsfit.Run",
		trace.WithAttributes(attribute.String("gsfit.input", a.Config.Input)))
	defer span.End()

	if a.Config.Verbose {
		cli.PrintExecutionConfig(a.Config, a.ErrWriter)
	}

	obs, err := a.loadTable(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return err
	}

	fitter := medlyn.New(a.Config.Roles(),
		medlyn.WithMinimizer(a.minimizer),
		medlyn.WithLogger(a.logger),
		medlyn.WithTracerProvider(a.tracerProvider),
	)

	progress := cli.StartProgress(a.ErrWriter, "Fitting Medlyn model...", !a.Config.Quiet)
	start := time.Now()
	res, stats, err := fitter.Fit(ctx, a.Config.FitG0, obs)
	elapsed := time.Since(start)
	progress.Stop()

	if err != nil {
		m.ObserveFit(metrics.OutcomeFailure, elapsed, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fit failed")
		return err
	}
	m.ObserveFit(metrics.OutcomeSuccess, elapsed, res.Iterations)
	m.ObserveStatistics(stats.RSquared, stats.RMSE, stats.NumPoints)
	a.logger.Info("fit completed",
		logging.Float64(medlyn.KeyG1, stats.G1),
		logging.Float64(medlyn.KeyG0, stats.G0),
		logging.Float64(medlyn.KeyRSquared, stats.RSquared),
		logging.Int(medlyn.KeyNumPts, stats.NumPoints),
		logging.Duration("elapsed", elapsed),
	)

	if err := cli.DisplayStatistics(out, stats); err != nil {
		return apperrors.WrapError(err, "failed to write statistics")
	}
	if a.Config.Verbose {
		cli.DisplayFitSummary(a.ErrWriter, res, elapsed)
	}
	return nil
}

func (a *Application) loadTable(ctx context.Context) (*table.Table, error) {
	_, span := a.tracerProvider.Tracer(tracerName).Start(ctx, "gsfit.LoadTable")
	defer span.End()

	obs, err := table.Load(a.Config.Input, table.Options{Comma: a.Config.Comma()})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("gsfit.rows", obs.Len()))
	a.logger.Debug("observation table loaded",
		logging.String("input", a.Config.Input),
		logging.Int("rows", obs.Len()),
	)
	return obs, nil
}

// report makes err visible on the diagnostic stream. Quiet mode silences
// the logger, so the error is then printed plainly.
func (a *Application) report(err error) {
	if a.Config.Quiet {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return
	}
	a.logger.Error("run failed", err, logging.Int("exit_code", apperrors.ExitCodeFor(err)))
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
