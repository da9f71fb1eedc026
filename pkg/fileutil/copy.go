package fileutil

import (
	"io"
	"os"

	"github.com/syncvault/syncvault/internal/errors"
)

// CopyFile copies src to dst, preserving the source's permission bits and
// modification time. It returns the number of bytes copied.
//
// The caller is responsible for ensuring the parent directory exists.
func CopyFile(src, dst string) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat source file")
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, errors.Wrap(err, "creating destination file")
	}

	written, err := io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		return 0, errors.Wrap(err, "copying file")
	}

	if err := dstFile.Close(); err != nil {
		return 0, errors.Wrap(err, "closing destination file")
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return 0, errors.Wrap(err, "setting permissions")
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return 0, errors.Wrap(err, "setting modification time")
	}

	return written, nil
}
