package archive

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/syncvault/syncvault/internal/errors"
)

// compressTarGz writes every file under sourceDir into a gzip-compressed
// tar archive at destPath, with entry names relative to sourceDir.
func compressTarGz(sourceDir, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return errors.Wrap(err, "creating tar.gz file")
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	tw := tar.NewWriter(gw)

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

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, f)
		f.Close()
		return err
	})
	if err != nil {
		tw.Close()
		gw.Close()
		return errors.Wrap(err, "adding files to tar.gz")
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "finalizing tar")
	}
	if err := gw.Close(); err != nil {
		return errors.Wrap(err, "finalizing gzip")
	}
	return out.Close()
}

// extractTarGz unpacks a tar.gz archive into destDir.
func extractTarGz(archivePath, destDir string) error {
	in, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(err, "opening tar.gz")
	}
	defer in.Close()

	gr, err := gzip.NewReader(in)
	if err != nil {
		return errors.Wrap(err, "reading gzip header")
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading tar entry")
		}

		target, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "creating %s", target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Wrapf(err, "creating directory for %s", hdr.Name)
			}
			if err := writeExtracted(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return errors.Wrapf(err, "extracting %s", hdr.Name)
			}
			_ = os.Chtimes(target, hdr.ModTime, hdr.ModTime)
		default:
			// Symlinks and special files are never staged, so they are
			// not expected in an archive; ignore rather than fail.
		}
	}
}
