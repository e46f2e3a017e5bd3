package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/registry"
)

// ShowEntryResult holds either a code with its instances or a contract with its code
type ShowEntryResult struct {
	Code      *models.CodeInfo
	Contracts []*models.ContractInfo
	Contract  *models.ContractInfo
}

// ShowEntry resolves a code name, contract identifier or contract address
type ShowEntry struct {
	state StateStore
	log   *slog.Logger
}

// NewShowEntry creates a new ShowEntry use case
func NewShowEntry(state StateStore, log *slog.Logger) *ShowEntry {
	return &ShowEntry{state: state, log: log}
}

// Run executes the show entry use case
func (uc *ShowEntry) Run(ctx context.Context, key string) (*ShowEntryResult, error) {
	reg, err := registry.Open(ctx, uc.state, uc.log)
	if err != nil {
		return nil, err
	}

	if code, err := reg.GetCodeInfo(key); err == nil {
		return &ShowEntryResult{
			Code: code,
			Contracts: lo.Filter(reg.Contracts(), func(c *models.ContractInfo, _ int) bool {
				return c.CodeID() == code.CodeID()
			}),
		}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	contract, err := reg.GetContractInfo(key)
	if err != nil && common.IsHexAddress(key) {
		contract, err = reg.GetContractInfoByAddress(key)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		known := append(
			lo.Map(reg.Codes(), func(c *models.CodeInfo, _ int) string { return c.Name() }),
			lo.Map(reg.Contracts(), func(c *models.ContractInfo, _ int) string { return c.Identifier() })...,
		)
		return nil, domain.NewNotFoundError("entry", key, known)
	}

	code, err := reg.GetCodeInfoByID(contract.CodeID())
	if err != nil {
		return nil, err
	}
	return &ShowEntryResult{Code: code, Contract: contract}, nil
}
