// Package commands implements the CLI commands for syncvault.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syncvault/syncvault/internal/config"
	vaulterrors "github.com/syncvault/syncvault/internal/errors"
	"github.com/syncvault/syncvault/internal/logging"
)

// version is set at build time via ldflags.
const version = "0.1.0"

// cfgFile holds the value of the --config flag; empty means the default
// location.
var cfgFile string

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to an optional JSON log file.
var logFile string

// logger is the process-wide logger, configured in setupLogging.
var logger *slog.Logger = logging.Default()

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.config/syncvault/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("syncvault version {{.Version}}\n")

	// Silence errors and usage so Execute controls error output.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "syncvault",
	Short: "Differential, parallel file backups",
	Long: `syncvault backs up configured directories with parallel, content-aware
change detection.

Every run hashes each source file and compares the digest against the
previous run's manifest; differential runs copy only changed or new files.
Staged files are packed into a zip or tar.gz archive (or left as a plain
directory) at the configured destination, and a history record is kept for
every run.`,
	Example: `  # Configure and run a first backup
  syncvault source add ~/documents
  syncvault config set destination /mnt/backups
  syncvault run

  # Restore an archive
  syncvault restore /mnt/backups/backup_20250304_020000_full.zip /tmp/restored

  # Inspect state
  syncvault history
  syncvault config show`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command and reports errors to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exitErr *vaulterrors.ExitError
		if vaulterrors.As(err, &exitErr) && exitErr.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "Suggestion: %s\n", exitErr.Suggestion)
		}
	}
	return err
}

// setupLogging configures the package logger from the persistent flags.
func setupLogging() error {
	if quiet && verbosity > 0 {
		return vaulterrors.NewUserError(
			vaulterrors.New("cannot use --quiet and --verbose together"), "")
	}

	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbosity >= 1:
		level = slog.LevelDebug
	}

	format := logging.FormatText
	if logFormat == string(logging.FormatJSON) {
		format = logging.FormatJSON
	}

	logger = logging.New(logging.Config{Level: level, Format: format})

	if logFile != "" {
		return attachFileLogging(logFile)
	}
	return nil
}

// attachFileLogging tees the package logger into a JSON log file. The file
// captures debug-level records regardless of the terminal verbosity.
func attachFileLogging(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return vaulterrors.Wrapf(err, "creating log directory for %s", path)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return vaulterrors.Wrapf(err, "opening log file %s", path)
	}
	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger = slog.New(logging.NewMultiHandler(logger.Handler(), fileHandler))
	return nil
}

// loadConfig reads the configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, vaulterrors.Wrap(err, "loading configuration")
	}
	return cfg, nil
}

// saveConfig persists the configuration honoring the --config flag.
func saveConfig(cfg *config.Config) error {
	if err := cfg.Save(cfgFile); err != nil {
		return vaulterrors.Wrap(err, "saving configuration")
	}
	return nil
}
