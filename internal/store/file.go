package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore persists every key as one JSON document on disk.
// Values must themselves be valid JSON.
type FileStore struct {
	logger *zap.Logger
	path   string
	mu     sync.Mutex
	values map[string]json.RawMessage
}

// DefaultFilePath returns <user config dir>/zonesync/state.json, falling back to the working directory
func DefaultFilePath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	return filepath.Join(configDir, "zonesync", "state.json")
}

// NewFileStore opens (or lazily creates) the store file at path
func NewFileStore(logger *zap.Logger, path string) (*FileStore, error) {
	s := &FileStore{
		logger: logger,
		path:   path,
		values: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("State file not found, starting empty", zap.String("path", path))
			return s, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.values); err != nil {
			// A corrupt file must not block startup; it is rewritten on the next save
			logger.Warn("State file is corrupt, starting empty",
				zap.String("path", path),
				zap.Error(err))
			s.values = make(map[string]json.RawMessage)
		}
	}

	logger.Info("State file loaded", zap.String("path", path), zap.Int("keys", len(s.values)))
	return s, nil
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %s is not valid JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append(json.RawMessage(nil), value...)
	return s.flushLocked()
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

// flushLocked writes the whole document via a temp file and rename
func (s *FileStore) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
