package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore persists the mapping as a single JSON file. Saves go through a
// temp file in the same directory followed by an atomic rename, so an
// interrupted write never leaves a half-written store behind.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a FileStore backed by the JSON file at path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the mapping file. A missing file is the normal first-run state
// and yields an empty mapping; an undecodable file yields ErrCorruptStore.
func (s *FileStore) Load(_ context.Context) (Mapping, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Mapping{}, nil
		}
		return nil, fmt.Errorf("read mapping file %s: %w", s.path, err)
	}

	var m Mapping
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode mapping file %s: %w: %v", s.path, ErrCorruptStore, err)
	}
	if m == nil {
		m = Mapping{}
	}
	return m, nil
}

// Save durably replaces the mapping file with m.
func (s *FileStore) Save(_ context.Context, m Mapping) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create mapping dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mapping-*.json")
	if err != nil {
		return fmt.Errorf("create temp mapping file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp mapping file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp mapping file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp mapping file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace mapping file %s: %w", s.path, err)
	}

	s.logger.Debug("mapping saved", zap.String("path", s.path), zap.Int("entries", len(m)))
	return nil
}
