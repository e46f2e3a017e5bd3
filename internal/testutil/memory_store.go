// Package testutil provides in-memory stand-ins for the chain and the
// state file so registry and harness logic can be tested without a node.
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/models"
)

// MemoryStore keeps the last saved snapshot as its JSON encoding, so tests
// exercise the same marshal and validation path as the state file.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte

	SaveErr error
	Saves   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith seeds the store with a raw document.
func NewMemoryStoreWith(raw string) *MemoryStore {
	return &MemoryStore{data: []byte(raw)}
}

func (s *MemoryStore) Load(ctx context.Context) (*models.RegistrySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, domain.ErrMalformedState
	}
	var snap models.RegistrySnapshot
	if err := json.Unmarshal(s.data, &snap); err != nil {
		if !errors.Is(err, domain.ErrMalformedState) {
			err = fmt.Errorf("%w: %v", domain.ErrMalformedState, err)
		}
		return nil, err
	}
	return &snap, nil
}

func (s *MemoryStore) Save(ctx context.Context, snapshot *models.RegistrySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	s.data = data
	s.Saves++
	return nil
}

func (s *MemoryStore) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data != nil
}

// Raw returns the last saved document.
func (s *MemoryStore) Raw() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.data)
}

func (s *MemoryStore) Path() string {
	return ":memory:"
}

// Remove drops the stored document, as deleting the state file would.
func (s *MemoryStore) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}
