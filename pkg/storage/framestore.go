package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FrameStore persists enrollment frames on disk, one directory per
// identity label.
type FrameStore struct {
	baseDir string
}

// NewFrameStore ensures the base directory exists and returns a handle.
func NewFrameStore(baseDir string) (*FrameStore, error) {
	if baseDir == "" {
		baseDir = "./data/students"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame directory: %w", err)
	}
	return &FrameStore{baseDir: baseDir}, nil
}

// Save stores a captured frame for the label and returns the number of
// frames now on disk for it.
func (s *FrameStore) Save(label string, data []byte) (int, error) {
	dir := s.labelDir(label)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("prepare frame directory: %w", err)
	}
	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return 0, fmt.Errorf("write frame: %w", err)
	}
	return s.Count(label)
}

// Count returns the number of frames stored for the label.
func (s *FrameStore) Count(label string) (int, error) {
	entries, err := os.ReadDir(s.labelDir(label))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read frame directory: %w", err)
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".jpg") {
			count++
		}
	}
	return count, nil
}

// List returns the contents of every frame stored for the label.
func (s *FrameStore) List(label string) ([][]byte, error) {
	dir := s.labelDir(label)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read frame directory: %w", err)
	}
	frames := make([][]byte, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jpg") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read frame %s: %w", entry.Name(), err)
		}
		frames = append(frames, raw)
	}
	return frames, nil
}

func (s *FrameStore) labelDir(label string) string {
	// labels are produced by models.NewLabel and contain no separators
	// beyond underscores, but keep filepath traversal out just in case
	return filepath.Join(s.baseDir, filepath.Base(label))
}
