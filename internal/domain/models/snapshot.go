package models

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/steadifi/contract-harness/internal/domain"
)

// RegistrySnapshot is an immutable copy of the registry's two maps.
// It is the unit written to and read from the state file.
type RegistrySnapshot struct {
	codes     map[string]CodeInfoData
	contracts map[string]ContractInfoData
}

// registryDocument is the on-disk layout of a snapshot.
type registryDocument struct {
	Codes     map[string]CodeInfoData     `json:"codes"`
	Contracts map[string]ContractInfoData `json:"contracts"`
}

// NewRegistrySnapshot copies codes and contracts into a new snapshot.
func NewRegistrySnapshot(codes map[string]CodeInfoData, contracts map[string]ContractInfoData) *RegistrySnapshot {
	return &RegistrySnapshot{
		codes:     lo.Assign(map[string]CodeInfoData{}, codes),
		contracts: lo.Assign(map[string]ContractInfoData{}, contracts),
	}
}

// Codes returns a copy of the code entries keyed by name.
func (s *RegistrySnapshot) Codes() map[string]CodeInfoData {
	return lo.Assign(map[string]CodeInfoData{}, s.codes)
}

// Contracts returns a copy of the contract entries keyed by identifier.
func (s *RegistrySnapshot) Contracts() map[string]ContractInfoData {
	return lo.Assign(map[string]ContractInfoData{}, s.contracts)
}

// Empty reports whether the snapshot holds no entries.
func (s *RegistrySnapshot) Empty() bool {
	return len(s.codes) == 0 && len(s.contracts) == 0
}

func (s *RegistrySnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(registryDocument{Codes: s.Codes(), Contracts: s.Contracts()})
}

// UnmarshalJSON parses and validates the state file layout. Any violation
// is reported as domain.ErrMalformedState.
func (s *RegistrySnapshot) UnmarshalJSON(data []byte) error {
	var doc registryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedState, err)
	}
	if doc.Codes == nil || doc.Contracts == nil {
		return fmt.Errorf("%w: both \"codes\" and \"contracts\" objects are required", domain.ErrMalformedState)
	}
	if err := validateDocument(doc); err != nil {
		return err
	}
	s.codes = doc.Codes
	s.contracts = doc.Contracts
	return nil
}

func validateDocument(doc registryDocument) error {
	for name, code := range doc.Codes {
		if code.CodeID == "" || code.WasmPath == "" {
			return fmt.Errorf("%w: code %q is missing codeId or wasmPath", domain.ErrMalformedState, name)
		}
		if derived := NameFromPath(code.WasmPath); derived != name {
			return fmt.Errorf("%w: code key %q does not match artifact name %q", domain.ErrMalformedState, name, derived)
		}
	}
	for id, contract := range doc.Contracts {
		if contract.Identifier != id {
			return fmt.Errorf("%w: contract key %q does not match identifier %q", domain.ErrMalformedState, id, contract.Identifier)
		}
		if contract.CodeID == "" || contract.ContractAddress == "" {
			return fmt.Errorf("%w: contract %q is missing codeId or contractAddress", domain.ErrMalformedState, id)
		}
	}
	return nil
}
