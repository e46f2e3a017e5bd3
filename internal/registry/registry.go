// Package registry keeps the deployment registry: which artifacts were
// uploaded under which code ids, and which contracts were instantiated from
// them. A Registry is constructed explicitly and handed to its users; it
// persists itself through a Store.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/models"
)

// Store persists registry snapshots.
type Store interface {
	Load(ctx context.Context) (*models.RegistrySnapshot, error)
	Save(ctx context.Context, snapshot *models.RegistrySnapshot) error
	Exists() bool
}

// Registry maps code names to uploaded code and contract identifiers to
// instantiated contracts.
type Registry struct {
	mu        sync.RWMutex
	store     Store
	log       *slog.Logger
	codes     map[string]*models.CodeInfo
	contracts map[string]*models.ContractInfo
	closed    bool
}

// New creates an empty, active registry backed by store.
func New(store Store, log *slog.Logger) *Registry {
	return &Registry{
		store:     store,
		log:       log.With("component", "registry"),
		codes:     make(map[string]*models.CodeInfo),
		contracts: make(map[string]*models.ContractInfo),
	}
}

// Open creates a registry and loads persisted state when the store has any.
// A missing state file yields an empty registry; a malformed one is an error.
func Open(ctx context.Context, store Store, log *slog.Logger) (*Registry, error) {
	r := New(store, log)
	if !store.Exists() {
		return r, nil
	}
	if err := r.Load(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// AddCodeInfo registers an uploaded artifact under the name derived from
// its path. Re-adding identical content returns the existing entry.
func (r *Registry) AddCodeInfo(codeID, artifactPath string) (*models.CodeInfo, error) {
	info := models.NewCodeInfo(codeID, artifactPath)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, domain.ErrRegistryClosed
	}

	if existing, ok := r.codes[info.Name()]; ok {
		if existing.Equal(info) {
			return existing, nil
		}
		return nil, codeConflict(existing, info)
	}

	r.codes[info.Name()] = info
	r.log.Debug("registered code", "name", info.Name(), "codeId", codeID)
	return info, nil
}

// GetCodeInfo resolves a code by name.
func (r *Registry) GetCodeInfo(name string) (*models.CodeInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, domain.ErrRegistryClosed
	}

	info, ok := r.codes[name]
	if !ok {
		return nil, domain.NewNotFoundError("code", name, lo.Keys(r.codes))
	}
	return info, nil
}

// GetCodeInfoByID resolves a code by its chain-assigned id. When several
// names share the id, the first name in sorted order wins.
func (r *Registry) GetCodeInfoByID(codeID string) (*models.CodeInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, domain.ErrRegistryClosed
	}

	names := lo.Keys(r.codes)
	sort.Strings(names)
	for _, name := range names {
		if info := r.codes[name]; info.CodeID() == codeID {
			return info, nil
		}
	}
	return nil, domain.NewNotFoundError("code id", codeID, nil)
}

// AddContractInfo records an instantiation of contractName under the first
// free identifier contractName_0, contractName_1, ...
func (r *Registry) AddContractInfo(contractName, address string) (*models.ContractInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, domain.ErrRegistryClosed
	}

	code, ok := r.codes[contractName]
	if !ok {
		return nil, domain.NewNotFoundError("code", contractName, lo.Keys(r.codes))
	}

	suffix := NextSuffix(contractName, r.hasContract, len(r.contracts))
	if suffix < 0 {
		return nil, fmt.Errorf("no free identifier for %s among %d contracts", contractName, len(r.contracts))
	}

	info := models.NewContractInfo(Identifier(contractName, suffix), code.CodeID(), address)
	r.contracts[info.Identifier()] = info
	r.log.Debug("registered contract", "identifier", info.Identifier(), "address", address)
	return info, nil
}

// AddContractInfoWithSuffix records an instantiation under contractName+suffix.
// The caller supplies any separator. Re-adding identical content returns the
// existing entry.
func (r *Registry) AddContractInfoWithSuffix(contractName, address, suffix string) (*models.ContractInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, domain.ErrRegistryClosed
	}

	code, ok := r.codes[contractName]
	if !ok {
		return nil, domain.NewNotFoundError("code", contractName, lo.Keys(r.codes))
	}

	info := models.NewContractInfo(contractName+suffix, code.CodeID(), address)
	if existing, ok := r.contracts[info.Identifier()]; ok {
		if existing.Equal(info) {
			return existing, nil
		}
		return nil, contractConflict(existing, info)
	}

	r.contracts[info.Identifier()] = info
	r.log.Debug("registered contract", "identifier", info.Identifier(), "address", address)
	return info, nil
}

// GetContractInfo resolves a contract by identifier.
func (r *Registry) GetContractInfo(identifier string) (*models.ContractInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, domain.ErrRegistryClosed
	}

	info, ok := r.contracts[identifier]
	if !ok {
		return nil, domain.NewNotFoundError("contract", identifier, lo.Keys(r.contracts))
	}
	return info, nil
}

// GetContractInfoByAddress resolves a contract by address, ignoring hex case.
func (r *Registry) GetContractInfoByAddress(address string) (*models.ContractInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, domain.ErrRegistryClosed
	}

	for _, info := range r.contracts {
		if strings.EqualFold(info.Address(), address) {
			return info, nil
		}
	}
	return nil, domain.NewNotFoundError("contract address", address, nil)
}

// Codes returns every code entry sorted by name.
func (r *Registry) Codes() []*models.CodeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := lo.Values(r.codes)
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Contracts returns every contract entry sorted by identifier.
func (r *Registry) Contracts() []*models.ContractInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := lo.Values(r.contracts)
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier() < out[j].Identifier() })
	return out
}

// Snapshot returns an immutable copy of the current store.
func (r *Registry) Snapshot() *models.RegistrySnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() *models.RegistrySnapshot {
	codes := lo.MapValues(r.codes, func(c *models.CodeInfo, _ string) models.CodeInfoData { return c.Data() })
	contracts := lo.MapValues(r.contracts, func(c *models.ContractInfo, _ string) models.ContractInfoData { return c.Data() })
	return models.NewRegistrySnapshot(codes, contracts)
}

// Merge applies snapshot with the same rules as the add operations. It is
// validated in full first, so it either applies completely or not at all.
func (r *Registry) Merge(snapshot *models.RegistrySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.ErrRegistryClosed
	}
	return r.mergeLocked(snapshot)
}

func (r *Registry) mergeLocked(snapshot *models.RegistrySnapshot) error {
	incomingCodes := make(map[string]*models.CodeInfo)
	knownIDs := make(map[string]bool)
	for _, code := range r.codes {
		knownIDs[code.CodeID()] = true
	}

	for name, data := range snapshot.Codes() {
		info := models.CodeInfoFromData(data)
		if info.Name() != name {
			return fmt.Errorf("%w: code key %q does not match artifact name %q", domain.ErrMalformedState, name, info.Name())
		}
		if existing, ok := r.codes[name]; ok && !existing.Equal(info) {
			return codeConflict(existing, info)
		}
		incomingCodes[name] = info
		knownIDs[info.CodeID()] = true
	}

	incomingContracts := make(map[string]*models.ContractInfo)
	for id, data := range snapshot.Contracts() {
		info := models.ContractInfoFromData(data)
		if info.Identifier() != id {
			return fmt.Errorf("%w: contract key %q does not match identifier %q", domain.ErrMalformedState, id, info.Identifier())
		}
		if !knownIDs[info.CodeID()] {
			return domain.NewNotFoundError("code id", info.CodeID(), nil)
		}
		if existing, ok := r.contracts[id]; ok && !existing.Equal(info) {
			return contractConflict(existing, info)
		}
		incomingContracts[id] = info
	}

	for name, info := range incomingCodes {
		if _, ok := r.codes[name]; !ok {
			r.codes[name] = info
		}
	}
	for id, info := range incomingContracts {
		if _, ok := r.contracts[id]; !ok {
			r.contracts[id] = info
		}
	}
	return nil
}

// Save writes the full store through the Store, replacing what was there.
func (r *Registry) Save(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return domain.ErrRegistryClosed
	}
	return r.saveLocked(ctx)
}

func (r *Registry) saveLocked(ctx context.Context) error {
	snapshot := r.snapshotLocked()
	if err := r.store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}
	r.log.Debug("saved registry", "codes", len(r.codes), "contracts", len(r.contracts))
	return nil
}

// Load reads persisted state and merges it into the store. The state must
// exist and be well formed.
func (r *Registry) Load(ctx context.Context) error {
	snapshot, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.ErrRegistryClosed
	}

	if err := r.mergeLocked(snapshot); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %v", domain.ErrMalformedState, err)
		}
		return err
	}
	r.log.Debug("loaded registry", "codes", len(r.codes), "contracts", len(r.contracts))
	return nil
}

// Close saves the store and closes the registry. Later calls are no-ops.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	if err := r.saveLocked(ctx); err != nil {
		return err
	}
	r.closed = true
	return nil
}

func (r *Registry) hasContract(identifier string) bool {
	_, ok := r.contracts[identifier]
	return ok
}

func codeConflict(existing, incoming *models.CodeInfo) error {
	return &domain.ConflictError{
		Kind:     "code",
		Key:      existing.Name(),
		Existing: describeCode(existing),
		Incoming: describeCode(incoming),
	}
}

func contractConflict(existing, incoming *models.ContractInfo) error {
	return &domain.ConflictError{
		Kind:     "contract",
		Key:      existing.Identifier(),
		Existing: describeContract(existing),
		Incoming: describeContract(incoming),
	}
}

func describeCode(c *models.CodeInfo) string {
	return "codeId " + c.CodeID() + " (" + c.ArtifactPath() + ")"
}

func describeContract(c *models.ContractInfo) string {
	return c.Address() + " (codeId " + c.CodeID() + ")"
}

// Identifier builds the probed contract identifier base_i.
func Identifier(base string, i int) string {
	return base + "_" + strconv.Itoa(i)
}
