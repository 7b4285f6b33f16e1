package profanity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileWordStore persists custom words as an ordered JSON list of strings.
// A missing file reads as an empty list. A corrupt file also reads as empty:
// losing custom words must never prevent the application from starting.
type FileWordStore struct {
	path string
}

// NewFileWordStore returns a store writing to path. The parent directory is
// created on the first save.
func NewFileWordStore(path string) *FileWordStore {
	return &FileWordStore{path: path}
}

// Load reads the custom word list. Missing file is not an error.
func (s *FileWordStore) Load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("word list is corrupt, ignoring: %w", err)
	}
	return words, nil
}

// Save writes the custom word list atomically (temp file plus rename) so a
// crash mid-write never leaves a truncated list behind.
func (s *FileWordStore) Save(words []string) error {
	if words == nil {
		words = []string{}
	}
	data, err := json.Marshal(words)
	if err != nil {
		return fmt.Errorf("failed to encode word list: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create word list directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".words-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp word list: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write word list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close word list: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace word list: %w", err)
	}
	return nil
}
