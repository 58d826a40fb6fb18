package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotExist reports that the backing file has not been created yet.
var ErrNotExist = errors.New("store file does not exist")

// JSONFile persists a single JSON document on disk. Writes go to a
// temporary file in the same directory followed by a rename, so readers
// never observe a half-written store.
type JSONFile struct {
	path string
}

// NewJSONFile ensures the parent directory exists and returns a handle.
func NewJSONFile(path string) (*JSONFile, error) {
	if path == "" {
		return nil, fmt.Errorf("json store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &JSONFile{path: path}, nil
}

// Path returns the location of the backing file.
func (f *JSONFile) Path() string {
	return f.path
}

// Exists reports whether the backing file is present.
func (f *JSONFile) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Load decodes the document into dest. Returns ErrNotExist when the file
// has never been written.
func (f *JSONFile) Load(dest interface{}) error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotExist
		}
		return fmt.Errorf("read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", f.path, err)
	}
	return nil
}

// Save encodes the document and atomically replaces the backing file.
func (f *JSONFile) Save(doc interface{}) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", f.path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()        //nolint:errcheck
		os.Remove(tmpPath) //nolint:errcheck
		return fmt.Errorf("write temp file for %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck
		return fmt.Errorf("close temp file for %s: %w", f.path, err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// Remove deletes the backing file if present.
func (f *JSONFile) Remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", f.path, err)
	}
	return nil
}
