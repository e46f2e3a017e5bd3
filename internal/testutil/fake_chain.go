package testutil

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/models"
)

// FakeChain is an in-memory chain client. Uploaded code gets sequential
// code ids and every instantiated contract behaves like a mintable token:
// the instantiator is the minter and the last integer constructor argument
// is the initial supply credited to it.
type FakeChain struct {
	mu sync.Mutex

	ChainIDValue *big.Int

	// Error responses
	StoreCodeErr   error
	InstantiateErr error
	ExecuteErr     error
	QueryErr       error

	// Call counters
	CallCounts map[string]int
	Closed     bool

	native    map[common.Address]*big.Int
	codes     map[string]*models.Artifact
	contracts map[common.Address]*fakeContract
	nonce     uint64
	block     uint64
}

type fakeContract struct {
	codeID   string
	minter   common.Address
	supply   *big.Int
	balances map[common.Address]*big.Int
}

// NewFakeChain creates an empty fake chain with chain id 31337.
func NewFakeChain() *FakeChain {
	return &FakeChain{
		ChainIDValue: big.NewInt(31337),
		CallCounts:   make(map[string]int),
		native:       make(map[common.Address]*big.Int),
		codes:        make(map[string]*models.Artifact),
		contracts:    make(map[common.Address]*fakeContract),
	}
}

// SetBalance sets an account's native balance.
func (f *FakeChain) SetBalance(account common.Address, wei *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.native[account] = new(big.Int).Set(wei)
}

// Calls returns how often method was invoked.
func (f *FakeChain) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CallCounts[method]
}

// StoredArtifact returns the artifact uploaded under codeID.
func (f *FakeChain) StoredArtifact(codeID string) (*models.Artifact, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.codes[codeID]
	return a, ok
}

func (f *FakeChain) ChainID(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCounts["ChainID"]++
	return new(big.Int).Set(f.ChainIDValue), nil
}

func (f *FakeChain) StoreCode(ctx context.Context, signer *models.Wallet, artifact *models.Artifact) (string, *models.TxResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCounts["StoreCode"]++
	if f.StoreCodeErr != nil {
		return "", nil, f.StoreCodeErr
	}
	if _, err := artifact.CreationCode(); err != nil {
		return "", nil, err
	}

	addr := f.nextAddress(signer.Address())
	codeID := addr.Hex()
	f.codes[codeID] = artifact
	return codeID, f.result(&addr, nil), nil
}

func (f *FakeChain) Instantiate(ctx context.Context, signer *models.Wallet, codeID string, contractABI *abi.ABI, args ...any) (*models.TxResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCounts["Instantiate"]++
	if f.InstantiateErr != nil {
		return nil, f.InstantiateErr
	}
	if _, ok := f.codes[codeID]; !ok {
		return nil, fmt.Errorf("%w: no code at %s", domain.ErrInvalidBlueprint, codeID)
	}

	c := &fakeContract{
		codeID:   codeID,
		minter:   signer.Address(),
		supply:   new(big.Int),
		balances: make(map[common.Address]*big.Int),
	}
	for _, arg := range args {
		if v, ok := arg.(*big.Int); ok {
			c.supply = new(big.Int).Set(v)
		}
	}
	if c.supply.Sign() > 0 {
		c.balances[signer.Address()] = new(big.Int).Set(c.supply)
	}

	addr := f.nextAddress(signer.Address())
	f.contracts[addr] = c
	return f.result(&addr, nil), nil
}

func (f *FakeChain) Execute(ctx context.Context, signer *models.Wallet, contract common.Address, contractABI *abi.ABI, method string, args ...any) (*models.TxResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCounts["Execute"]++
	if f.ExecuteErr != nil {
		return nil, f.ExecuteErr
	}
	c, err := f.lookup(contract, contractABI, method)
	if err != nil {
		return nil, err
	}

	switch method {
	case "transfer":
		to, amount, err := addressAmount(method, args)
		if err != nil {
			return nil, err
		}
		if c.balance(signer.Address()).Cmp(amount) < 0 {
			return nil, fmt.Errorf("%w: execution reverted: insufficient balance", domain.ErrTxFailed)
		}
		c.balances[signer.Address()] = new(big.Int).Sub(c.balance(signer.Address()), amount)
		c.balances[to] = new(big.Int).Add(c.balance(to), amount)
		return f.result(nil, []models.Event{transferEvent(contract, signer.Address(), to, amount)}), nil
	case "mint":
		to, amount, err := addressAmount(method, args)
		if err != nil {
			return nil, err
		}
		if signer.Address() != c.minter {
			return nil, fmt.Errorf("%w: execution reverted: unauthorized", domain.ErrTxFailed)
		}
		c.supply = new(big.Int).Add(c.supply, amount)
		c.balances[to] = new(big.Int).Add(c.balance(to), amount)
		return f.result(nil, []models.Event{transferEvent(contract, common.Address{}, to, amount)}), nil
	default:
		return nil, fmt.Errorf("%w: fake chain has no handler for %s", domain.ErrTxFailed, method)
	}
}

func (f *FakeChain) Query(ctx context.Context, contract common.Address, contractABI *abi.ABI, method string, args ...any) ([]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCounts["Query"]++
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	c, err := f.lookup(contract, contractABI, method)
	if err != nil {
		return nil, err
	}

	switch method {
	case "balanceOf":
		if len(args) != 1 {
			return nil, fmt.Errorf("balanceOf: want 1 argument, got %d", len(args))
		}
		holder, ok := args[0].(common.Address)
		if !ok {
			return nil, fmt.Errorf("balanceOf: holder must be common.Address, got %T", args[0])
		}
		return []any{c.balance(holder)}, nil
	case "totalSupply":
		return []any{new(big.Int).Set(c.supply)}, nil
	case "minter":
		return []any{c.minter}, nil
	default:
		return nil, fmt.Errorf("fake chain has no query handler for %s", method)
	}
}

func (f *FakeChain) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCounts["NativeBalance"]++
	return f.nativeBalance(account), nil
}

func (f *FakeChain) SendNative(ctx context.Context, signer *models.Wallet, to common.Address, amount *big.Int) (*models.TxResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCounts["SendNative"]++

	from := signer.Address()
	if f.nativeBalance(from).Cmp(amount) < 0 {
		return nil, fmt.Errorf("%w: insufficient funds for transfer", domain.ErrTxFailed)
	}
	f.native[from] = new(big.Int).Sub(f.nativeBalance(from), amount)
	f.native[to] = new(big.Int).Add(f.nativeBalance(to), amount)

	return f.result(nil, []models.Event{{
		Type: "transfer",
		Attributes: []models.Attribute{
			{Key: "sender", Value: from.Hex()},
			{Key: "recipient", Value: to.Hex()},
			{Key: "amount", Value: amount.String()},
		},
	}}), nil
}

func (f *FakeChain) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
}

func (f *FakeChain) lookup(contract common.Address, contractABI *abi.ABI, method string) (*fakeContract, error) {
	c, ok := f.contracts[contract]
	if !ok {
		return nil, fmt.Errorf("no contract at %s", contract.Hex())
	}
	if contractABI != nil {
		if _, ok := contractABI.Methods[method]; !ok {
			return nil, fmt.Errorf("method %q not found in abi", method)
		}
	}
	return c, nil
}

func (f *FakeChain) nextAddress(sender common.Address) common.Address {
	addr := crypto.CreateAddress(sender, f.nonce)
	f.nonce++
	return addr
}

func (f *FakeChain) result(created *common.Address, events []models.Event) *models.TxResult {
	f.block++
	return &models.TxResult{
		Hash:            crypto.Keccak256Hash(big.NewInt(int64(f.block)).Bytes()),
		BlockNumber:     f.block,
		GasUsed:         21000,
		ContractAddress: created,
		Events:          events,
	}
}

func (f *FakeChain) nativeBalance(account common.Address) *big.Int {
	if b, ok := f.native[account]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (c *fakeContract) balance(holder common.Address) *big.Int {
	if b, ok := c.balances[holder]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func addressAmount(method string, args []any) (common.Address, *big.Int, error) {
	if len(args) != 2 {
		return common.Address{}, nil, fmt.Errorf("%s: want 2 arguments, got %d", method, len(args))
	}
	to, ok := args[0].(common.Address)
	if !ok {
		return common.Address{}, nil, fmt.Errorf("%s: recipient must be common.Address, got %T", method, args[0])
	}
	amount, ok := args[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, fmt.Errorf("%s: amount must be *big.Int, got %T", method, args[1])
	}
	return to, amount, nil
}

func transferEvent(contract, from, to common.Address, amount *big.Int) models.Event {
	return models.Event{
		Type:    "Transfer",
		Address: contract.Hex(),
		Attributes: []models.Attribute{
			{Key: "from", Value: from.Hex()},
			{Key: "to", Value: to.Hex()},
			{Key: "value", Value: amount.String()},
		},
	}
}
