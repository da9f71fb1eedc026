package fileutil

import (
	"encoding/json"
	"os"

	"github.com/syncvault/syncvault/internal/errors"
)

// ReadJSON reads the file at path and unmarshals it into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading file")
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}

	return nil
}
