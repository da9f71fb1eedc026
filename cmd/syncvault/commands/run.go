package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/syncvault/syncvault/internal/backup"
	"github.com/syncvault/syncvault/internal/config"
	vaulterrors "github.com/syncvault/syncvault/internal/errors"
	"github.com/syncvault/syncvault/internal/paths"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("full", false, "force a full backup regardless of schedule")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backup now",
	Long: `Run a backup of all configured sources.

The first run is always full. Later runs are differential unless the
configured backup type is "full" or today is the configured full-backup
weekday; --full forces a full backup for this run only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Runs always keep a file trail, even without --log-file.
		if logFile == "" {
			runLog := filepath.Join(paths.StateDir(), "syncvault.log")
			if err := attachFileLogging(runLog); err != nil {
				logger.Warn("run log unavailable", "path", runLog, "error", err)
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if force, _ := cmd.Flags().GetBool("full"); force {
			cfg.BackupType = config.TypeFull
		}

		var bar *progressbar.ProgressBar
		progress := func(done, total int) {
			if quiet {
				return
			}
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("staging"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		}

		runner := backup.NewRunner(cfg,
			backup.WithLogger(logger),
			backup.WithConfigPath(cfgFile),
			backup.WithProgress(progress),
		)

		started := time.Now()
		record, err := runner.Run(cmd.Context())
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			switch {
			case vaulterrors.Is(err, vaulterrors.ErrNoSources):
				return vaulterrors.NewUserError(err, "add one with: syncvault source add <path>")
			case vaulterrors.Is(err, vaulterrors.ErrNoDestination):
				return vaulterrors.NewUserError(err, "set one with: syncvault config set destination <path>")
			case vaulterrors.Is(err, vaulterrors.ErrNothingStaged):
				return vaulterrors.NewUserError(err, "every file was unchanged or failed; run with --full to force a full backup")
			default:
				return vaulterrors.NewSystemError(err, "")
			}
		}

		if !quiet {
			fmt.Printf("Backup complete: %s\n", record.Path)
			fmt.Printf("  type: %s, files: %d, processed: %d, skipped: %d, errors: %d\n",
				record.Type, record.FileCount, record.Processed, record.Skipped, record.Errors)
			fmt.Printf("  size: %s, took %s\n",
				humanSize(record.SizeBytes), time.Since(started).Round(time.Millisecond))
		}
		return nil
	},
}

// humanSize renders a byte count with a binary unit suffix.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
