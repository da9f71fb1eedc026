// Package archive turns a staged backup directory into a single artifact
// and back again.
//
// Two container formats are supported, zip and tar.gz, both holding entries
// whose names are relative to the staging directory root so extraction
// reproduces exactly the staged tree. Uncompressed backups are plain
// directory copies. Compression uses github.com/klauspost/compress for both
// deflate (zip) and gzip (tar.gz).
package archive

import (
	"strings"

	"github.com/syncvault/syncvault/internal/errors"
)

// Supported archive formats.
const (
	FormatZip   = "zip"
	FormatTarGz = "tar.gz"
)

// Ext returns the file extension (including the leading dot) for a format.
func Ext(format string) (string, error) {
	switch format {
	case FormatZip:
		return ".zip", nil
	case FormatTarGz:
		return ".tar.gz", nil
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedFormat, "%q", format)
	}
}

// ValidFormat reports whether format names a supported archive container.
func ValidFormat(format string) bool {
	_, err := Ext(format)
	return err == nil
}

// Compress archives sourceDir into a single artifact at destPath using the
// given format. Entry names are relative to sourceDir.
func Compress(sourceDir, destPath, format string) error {
	switch format {
	case FormatZip:
		return compressZip(sourceDir, destPath)
	case FormatTarGz:
		return compressTarGz(sourceDir, destPath)
	default:
		return errors.Wrapf(errors.ErrUnsupportedFormat, "%q", format)
	}
}

// Extract restores a backup artifact into destDir. The artifact may be a
// zip file, a tar.gz file, or a plain directory produced by an
// uncompressed run; the kind is inferred from the path.
func Extract(backupPath, destDir string) error {
	switch {
	case isDir(backupPath):
		return CopyTree(backupPath, destDir)
	case strings.HasSuffix(backupPath, ".zip"):
		return extractZip(backupPath, destDir)
	case strings.HasSuffix(backupPath, ".tar.gz"):
		return extractTarGz(backupPath, destDir)
	default:
		return errors.Wrapf(errors.ErrUnsupportedFormat, "%s", backupPath)
	}
}
