package archive

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/syncvault/syncvault/internal/errors"
	"github.com/syncvault/syncvault/pkg/fileutil"
)

// CopyTree recursively copies sourceDir to destPath, preserving file
// permission bits and modification times. It is used when compression is
// disabled and the staged directory itself becomes the backup artifact.
func CopyTree(sourceDir, destPath string) error {
	return filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walking %s", sourceDir)
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(destPath, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if _, err := fileutil.CopyFile(path, target); err != nil {
			return errors.Wrapf(err, "copying %s", rel)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
