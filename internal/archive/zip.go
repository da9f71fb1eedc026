package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/syncvault/syncvault/internal/errors"
)

// compressZip writes every file under sourceDir into a zip archive at
// destPath, with entry names relative to sourceDir.
func compressZip(sourceDir, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return errors.Wrap(err, "creating zip file")
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	// klauspost's flate is substantially faster than the stdlib at the
	// same ratio; register it as the deflate implementation.
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})

	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		f.Close()
		return err
	})
	if err != nil {
		zw.Close()
		return errors.Wrap(err, "adding files to zip")
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "finalizing zip")
	}
	return out.Close()
}

// extractZip unpacks a zip archive into destDir.
func extractZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrap(err, "opening zip")
	}
	defer zr.Close()

	for _, f := range zr.File {
		target, err := securePath(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "creating %s", target)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrapf(err, "creating directory for %s", f.Name)
		}

		rc, err := f.Open()
		if err != nil {
			return errors.Wrapf(err, "opening %s in zip", f.Name)
		}
		err = writeExtracted(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return errors.Wrapf(err, "extracting %s", f.Name)
		}
		// Best effort; zip timestamps have 2s resolution anyway.
		_ = os.Chtimes(target, f.Modified, f.Modified)
	}

	return nil
}

// securePath joins an archive entry name onto destDir, rejecting entries
// that would escape it (zip-slip).
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", errors.Newf("archive entry %q escapes destination", name)
	}
	return target, nil
}

// writeExtracted writes the contents of r to target with the given mode.
func writeExtracted(target string, r io.Reader, mode os.FileMode) error {
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
