// Package config defines the command-line configuration of gsfit.
//
// Values are resolved in priority order: explicit flags, then GSFIT_*
// environment variables, then the defaults below.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/gsfit/internal/errors"
	"github.com/agbru/gsfit/internal/medlyn"
)

// EnvPrefix is prepended to every environment variable the tool reads.
const EnvPrefix = "GSFIT_"

// Defaults.
const (
	DefaultInput     = "data/PI_ISierrae_Ags.csv"
	DefaultTimeout   = 1 * time.Minute
	DefaultLogFormat = "json"
)

// Log formats accepted by --log-format.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Input is the path of the observation table.
	Input string
	// Delimiter separates fields in the input file.
	Delimiter string
	// ObsColumn, VPDColumn, AssimColumn and CO2Column name the table
	// columns holding each model input.
	ObsColumn   string
	VPDColumn   string
	AssimColumn string
	CO2Column   string
	// FitG0 lets the intercept g0 vary; otherwise it is held at zero.
	FitG0 bool
	// MaxIterations bounds the minimiser. Zero selects its default.
	MaxIterations int
	// Timeout bounds the whole run.
	Timeout time.Duration
	// Verbose adds a fit summary and debug logging.
	Verbose bool
	// Quiet suppresses logging and progress output.
	Quiet bool
	// LogFormat is "json" or "text".
	LogFormat string
	// MetricsFile, if set, receives a Prometheus textfile after the run.
	MetricsFile string
}

// Roles returns the column mapping for the fitter.
func (c AppConfig) Roles() medlyn.Roles {
	return medlyn.Roles{
		Obs:   c.ObsColumn,
		VPD:   c.VPDColumn,
		Assim: c.AssimColumn,
		CO2:   c.CO2Column,
	}
}

// Comma returns the delimiter as a rune.
func (c AppConfig) Comma() rune {
	if c.Delimiter == `\t` {
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}

// Validate checks the configuration for consistency.
func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return apperrors.NewConfigError("an input file is required (--input)")
	}
	if c.Delimiter != `\t` && len([]rune(c.Delimiter)) != 1 {
		return apperrors.NewConfigError("delimiter must be a single character or \\t, got %q", c.Delimiter)
	}
	for flagName, col := range map[string]string{
		"obs": c.ObsColumn, "vpd": c.VPDColumn, "assim": c.AssimColumn, "co2": c.CO2Column,
	} {
		if strings.TrimSpace(col) == "" {
			return apperrors.NewConfigError("column name for --%s must not be empty", flagName)
		}
	}
	if c.MaxIterations < 0 {
		return apperrors.NewConfigError("invalid value %d for flag --max-iter", c.MaxIterations)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatText {
		return apperrors.NewConfigError("unknown log format %q (want %s or %s)", c.LogFormat, LogFormatJSON, LogFormatText)
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	}
	return nil
}

// ParseConfig parses command-line arguments into an AppConfig, applies
// environment overrides for flags not given explicitly, and validates the
// result.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags]\n\n", programName)
		fmt.Fprintln(errorWriter, "Fits the Medlyn stomatal-conductance model (g0, g1) to gas-exchange data.")
		fmt.Fprintln(errorWriter, "\nFlags:")
		fs.PrintDefaults()
		fmt.Fprintf(errorWriter, "\nEvery flag can also be set with %s<NAME>, e.g. %sINPUT.\n", EnvPrefix, EnvPrefix)
	}

	roles := medlyn.DefaultRoles()
	config := AppConfig{}
	fs.StringVar(&config.Input, "input", DefaultInput, "Path of the observation table (CSV with a header row).")
	fs.StringVar(&config.Input, "i", DefaultInput, "Shorthand for --input.")
	fs.StringVar(&config.Delimiter, "delimiter", ",", `Field delimiter of the input file ("\t" for tabs).`)
	fs.StringVar(&config.ObsColumn, "obs", roles.Obs, "Column holding observed stomatal conductance.")
	fs.StringVar(&config.VPDColumn, "vpd", roles.VPD, "Column holding vapour pressure deficit.")
	fs.StringVar(&config.AssimColumn, "assim", roles.Assim, "Column holding net assimilation.")
	fs.StringVar(&config.CO2Column, "co2", roles.CO2, "Column holding leaf-surface CO2.")
	fs.BoolVar(&config.FitG0, "fit-g0", true, "Fit the intercept g0 (otherwise g0 is fixed at 0).")
	fs.IntVar(&config.MaxIterations, "max-iter", 0, "Maximum minimiser iterations (0 = automatic).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum duration of the run.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Print a fit summary and debug logs.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the statistics.")
	fs.StringVar(&config.LogFormat, "log-format", DefaultLogFormat, "Log format: json or text.")
	fs.StringVar(&config.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	applyEnvOverrides(&config, fs)

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		return AppConfig{}, err
	}
	return config, nil
}
