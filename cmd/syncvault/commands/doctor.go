package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syncvault/syncvault/internal/doctor"
	vaulterrors "github.com/syncvault/syncvault/internal/errors"
	"github.com/syncvault/syncvault/internal/paths"
)

var (
	doctorJSON bool
	doctorFix  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"attempt to fix issues automatically")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose backup configuration issues",
	Long: `Run diagnostic checks on the syncvault environment.

Validates the configuration file, verifies sources and the destination,
and looks for staging directories left behind by interrupted runs.

Output modes:
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	configPath := cfgFile
	if configPath == "" {
		configPath = paths.ConfigFile()
	}

	runner := doctor.NewRunner()
	runner.AddCheck(&doctor.ConfigCheck{Path: configPath})
	runner.AddCheck(&doctor.SourceCheck{Config: cfg})
	runner.AddCheck(&doctor.DestinationCheck{Config: cfg})
	runner.AddCheck(&doctor.StagingCheck{Root: paths.StagingRoot()})
	runner.AddCheck(&doctor.HistoryCheck{Config: cfg})

	report := runner.Run()

	if doctorFix {
		applyFixes(runner)
		// Re-run so the report reflects the post-fix state.
		report = runner.Run()
	}

	if err := outputDoctorReport(report); err != nil {
		return err
	}

	switch {
	case report.HasErrors():
		return vaulterrors.NewSystemError(vaulterrors.New("errors found"), "")
	case report.HasWarnings():
		return vaulterrors.NewUserError(vaulterrors.New("warnings found"), "")
	default:
		return nil
	}
}

// applyFixes runs Fix on every check that found fixable issues.
func applyFixes(runner *doctor.Runner) {
	for _, check := range runner.Checks() {
		fixer, ok := check.(doctor.Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}
		for _, fix := range fixer.Fix() {
			if fix.Fixed {
				logger.Info("fixed", "path", fix.Path, "action", fix.Description)
			} else {
				logger.Warn("fix failed", "path", fix.Path, "reason", fix.Description)
			}
		}
	}
}

func outputDoctorReport(report *doctor.Report) error {
	if quiet {
		return nil
	}
	if doctorJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return vaulterrors.Wrap(err, "encoding JSON")
		}
		return nil
	}
	return outputDoctorText(report)
}

func outputDoctorText(report *doctor.Report) error {
	// In normal mode, show only errors and warnings.
	showAll := verbosity > 0

	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		fmt.Printf("%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Printf("  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput || showAll {
		fmt.Println()
	}

	fmt.Printf("Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}
