package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/config"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/registry"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// ContextStore implements registry.Store over a single JSON state file
type ContextStore struct {
	statePath string
}

// NewContextStore creates a ContextStore for the configured state file
func NewContextStore(cfg *config.RuntimeConfig) *ContextStore {
	return NewContextStoreAt(cfg.StatePath)
}

// NewContextStoreAt creates a ContextStore for an explicit path
func NewContextStoreAt(path string) *ContextStore {
	return &ContextStore{statePath: path}
}

// Path returns the state file location
func (s *ContextStore) Path() string {
	return s.statePath
}

// Exists reports whether the state file is present
func (s *ContextStore) Exists() bool {
	_, err := os.Stat(s.statePath)
	return err == nil
}

// Load reads the state file. A missing or unparsable file is malformed state.
func (s *ContextStore) Load(_ context.Context) (*models.RegistrySnapshot, error) {
	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: state file %s: %w", domain.ErrMalformedState, s.statePath, err)
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var snapshot models.RegistrySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		// syntax errors are reported before RegistrySnapshot.UnmarshalJSON runs
		if !errors.Is(err, domain.ErrMalformedState) {
			err = fmt.Errorf("%w: %v", domain.ErrMalformedState, err)
		}
		return nil, fmt.Errorf("state file %s: %w", s.statePath, err)
	}

	return &snapshot, nil
}

// Save writes the snapshot to a temp file and renames it over the state
// file, so readers never observe a partial write.
func (s *ContextStore) Save(_ context.Context, snapshot *models.RegistrySnapshot) error {
	dir := filepath.Dir(s.statePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	tmp := s.statePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.statePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// Remove deletes the state file. A missing file is not an error.
func (s *ContextStore) Remove(_ context.Context) error {
	err := os.Remove(s.statePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

// Ensure ContextStore implements registry.Store and usecase.StateStore
var (
	_ registry.Store     = (*ContextStore)(nil)
	_ usecase.StateStore = (*ContextStore)(nil)
)
