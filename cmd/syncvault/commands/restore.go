package commands

import (
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/syncvault/syncvault/internal/backup"
	"github.com/syncvault/syncvault/internal/config"
	vaulterrors "github.com/syncvault/syncvault/internal/errors"
)

func init() {
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [backup] <directory>",
	Short: "Restore a backup into a directory",
	Long: `Restore extracts a backup artifact into the given directory.

The artifact may be a zip archive, a tar.gz archive, or an uncompressed
backup directory. When the backup argument is omitted, one is picked
interactively from the backup history.

Restoring a differential backup recovers only the files that run staged;
restore the preceding full backup first for a complete tree.`,
	Example: `  syncvault restore /mnt/backups/backup_20250304_020000_full.zip /tmp/restored

  # Pick a backup from the history
  syncvault restore /tmp/restored`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var backupPath, restoreDir string
		if len(args) == 2 {
			backupPath, restoreDir = args[0], args[1]
		} else {
			restoreDir = args[0]
			picked, err := pickBackup()
			if err != nil {
				return err
			}
			if picked == "" {
				return nil
			}
			backupPath = picked
		}

		if err := backup.Restore(backupPath, restoreDir, logger); err != nil {
			if vaulterrors.Is(err, vaulterrors.ErrUnsupportedFormat) {
				return vaulterrors.NewUserError(err, "expected a .zip, .tar.gz, or backup directory")
			}
			return vaulterrors.NewSystemError(err, "")
		}

		if !quiet {
			fmt.Printf("Restored %s to %s\n", backupPath, restoreDir)
		}
		return nil
	},
}

// pickBackup lets the user choose a backup from the history with a fuzzy
// finder. Returns an empty path when the selection is aborted.
func pickBackup() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if len(cfg.History) == 0 {
		return "", vaulterrors.NewUserError(vaulterrors.ErrNoBackupsFound,
			"run a backup first with: syncvault run")
	}

	// Most recent first.
	records := make([]config.HistoryRecord, len(cfg.History))
	for i, rec := range cfg.History {
		records[len(records)-1-i] = rec
	}

	idx, err := fuzzyfinder.Find(
		records,
		func(i int) string {
			return fmt.Sprintf("%s %s (%d files)", records[i].Timestamp, records[i].Type, records[i].FileCount)
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			rec := records[i]
			return fmt.Sprintf("Timestamp: %s\nType: %s\nPath: %s\nSize: %s\nFiles: %d\nProcessed: %d, skipped: %d, errors: %d",
				rec.Timestamp, rec.Type, rec.Path, humanSize(rec.SizeBytes),
				rec.FileCount, rec.Processed, rec.Skipped, rec.Errors)
		}),
	)
	if err != nil {
		if vaulterrors.Is(err, fuzzyfinder.ErrAbort) {
			return "", nil
		}
		return "", vaulterrors.Wrap(err, "selecting backup")
	}

	return records[idx].Path, nil
}
