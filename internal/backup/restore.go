package backup

import (
	"log/slog"
	"os"

	"github.com/syncvault/syncvault/internal/archive"
	"github.com/syncvault/syncvault/internal/errors"
)

// Restore extracts a backup artifact into restoreDir. The artifact may be
// a zip archive, a tar.gz archive, or an uncompressed backup directory.
//
// Restoring a differential backup recovers only the files it staged;
// unchanged files live in the preceding backups of the chain.
func Restore(backupPath, restoreDir string, logger *slog.Logger) error {
	if _, err := os.Stat(backupPath); err != nil {
		return errors.Wrapf(err, "backup %s", backupPath)
	}
	if err := os.MkdirAll(restoreDir, 0o755); err != nil {
		return errors.Wrap(err, "creating restore directory")
	}

	logger.Info("restoring backup", "backup", backupPath, "destination", restoreDir)
	if err := archive.Extract(backupPath, restoreDir); err != nil {
		return errors.Wrapf(err, "restoring %s", backupPath)
	}
	logger.Info("restore complete", "destination", restoreDir)
	return nil
}
