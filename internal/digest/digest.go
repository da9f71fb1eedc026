// Package digest computes content digests for change detection.
//
// Digests are MD5 (128-bit, hex-encoded) over a file's full byte stream.
// MD5 is used for change detection only, not for any security purpose; it
// keeps manifests compatible with those written by earlier releases.
package digest

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"

	"github.com/syncvault/syncvault/internal/errors"
)

// ChunkSize is the read buffer size used when hashing.
// Files are streamed in fixed chunks so peak memory stays bounded
// regardless of file size.
const ChunkSize = 1 << 20 // 1 MiB

// File computes the hex-encoded digest of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, ChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrapf(err, "reading %s", path)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Bytes computes the hex-encoded digest of an in-memory byte slice.
// It exists so tests can verify chunked hashing against a one-pass hash.
func Bytes(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
