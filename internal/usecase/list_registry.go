package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/registry"
)

// ListRegistryParams contains parameters for listing registry entries
type ListRegistryParams struct {
	// Filter keeps entries whose name or identifier contains it, ignoring case
	Filter string
}

// RegistryListResult contains the matching codes and contracts
type RegistryListResult struct {
	StatePath string
	// Empty is true when the registry itself holds nothing, regardless of Filter
	Empty     bool
	Codes     []*models.CodeInfo
	Contracts []*models.ContractInfo
}

// ListRegistry is the use case for listing registry entries
type ListRegistry struct {
	state StateStore
	log   *slog.Logger
}

// NewListRegistry creates a new ListRegistry use case
func NewListRegistry(state StateStore, log *slog.Logger) *ListRegistry {
	return &ListRegistry{state: state, log: log}
}

// Run executes the list registry use case
func (uc *ListRegistry) Run(ctx context.Context, params ListRegistryParams) (*RegistryListResult, error) {
	reg, err := registry.Open(ctx, uc.state, uc.log)
	if err != nil {
		return nil, err
	}

	filter := strings.ToLower(params.Filter)
	matches := func(s string) bool {
		return filter == "" || strings.Contains(strings.ToLower(s), filter)
	}

	return &RegistryListResult{
		StatePath: uc.state.Path(),
		Empty:     reg.Snapshot().Empty(),
		Codes: lo.Filter(reg.Codes(), func(c *models.CodeInfo, _ int) bool {
			return matches(c.Name())
		}),
		Contracts: lo.Filter(reg.Contracts(), func(c *models.ContractInfo, _ int) bool {
			return matches(c.Identifier())
		}),
	}, nil
}
