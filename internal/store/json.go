package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "streamgate/internal/errors"
)

// readJSONFile loads a whole JSON document into out. A missing file is not
// an error: out is left untouched and false is returned.
func readJSONFile(path string, out interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, apperrors.StoreError("failed to read "+filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, apperrors.StoreError("failed to decode "+filepath.Base(path), err)
	}
	return true, nil
}

// writeJSONFile overwrites the whole document atomically: write to a temp
// file in the same directory, then rename over the target.
func writeJSONFile(path string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.StoreError("failed to create directory for "+filepath.Base(path), err)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return apperrors.StoreError("failed to encode "+filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return apperrors.StoreError("failed to write "+filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperrors.StoreError("failed to replace "+filepath.Base(path), err)
	}
	return nil
}
