// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayStatistics], [DisplayFitSummary].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatStatistics], [FormatExecutionDuration].

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/agbru/gsfit/internal/config"
	"github.com/agbru/gsfit/internal/medlyn"
)

// FormatStatistics renders the statistics one "key = value" line per entry,
// in report order, with four decimals.
//
// Parameters:
//   - stats: The statistics of a successful fit.
//
// Returns:
//   - string: The formatted report, newline-terminated.
func FormatStatistics(stats medlyn.Statistics) string {
	var b strings.Builder
	for _, e := range stats.Entries() {
		fmt.Fprintf(&b, "%s = %.4f\n", e.Key, e.Value)
	}
	return b.String()
}

// DisplayStatistics writes the statistics report to out.
func DisplayStatistics(out io.Writer, stats medlyn.Statistics) error {
	_, err := io.WriteString(out, FormatStatistics(stats))
	return err
}

// DisplayFitSummary writes the minimiser's work and the elapsed time.
// It is shown in verbose mode on the diagnostic stream.
//
// Parameters:
//   - out: The writer for diagnostic output.
//   - res: The minimisation result.
//   - elapsed: Wall-clock time of the fit.
func DisplayFitSummary(out io.Writer, res medlyn.Result, elapsed time.Duration) {
	fmt.Fprintf(out, "--- Fit Summary ---\n")
	fmt.Fprintf(out, "Free parameters: %d\n", res.FreeParams)
	fmt.Fprintf(out, "Iterations: %d, residual evaluations: %d\n", res.Iterations, res.Evaluations)
	fmt.Fprintf(out, "Sum of squared residuals: %.6g\n", res.SSR)
	fmt.Fprintf(out, "Fit time: %s\n", FormatExecutionDuration(elapsed))
}

// PrintExecutionConfig displays the run configuration on the diagnostic
// stream: input, column mapping and environment.
//
// Parameters:
//   - cfg: The application configuration.
//   - out: The writer for diagnostic output.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	roles := cfg.Roles()
	g0 := "fixed at 0"
	if cfg.FitG0 {
		g0 = "fitted"
	}
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Fitting %s with a timeout of %s (g0 %s).\n", cfg.Input, cfg.Timeout, g0)
	fmt.Fprintf(out, "Columns: obs=%s vpd=%s assim=%s co2=%s.\n", roles.Obs, roles.VPD, roles.Assim, roles.CO2)
	fmt.Fprintf(out, "Environment: %d logical processors, Go %s.\n", runtime.NumCPU(), runtime.Version())
}
