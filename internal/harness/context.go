// Package harness is the entry point for integration tests. A Context ties
// the deployment registry to a chain client and the fixture wallets so a
// test can look up uploaded code, instantiate it and drive the resulting
// contracts by identifier.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/steadifi/contract-harness/internal/adapters/artifacts"
	"github.com/steadifi/contract-harness/internal/adapters/blockchain"
	"github.com/steadifi/contract-harness/internal/adapters/fs"
	"github.com/steadifi/contract-harness/internal/adapters/wallets"
	"github.com/steadifi/contract-harness/internal/config"
	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/logging"
	"github.com/steadifi/contract-harness/internal/registry"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// Context is the registry plus everything needed to act on its entries.
// Registry mutations stay in memory until Save or Close.
type Context struct {
	*registry.Registry

	client    usecase.ChainClient
	wallets   usecase.WalletBook
	artifacts usecase.ArtifactSource
	log       *slog.Logger
}

// New assembles a Context from its parts
func New(reg *registry.Registry, client usecase.ChainClient, wallets usecase.WalletBook, loader usecase.ArtifactSource, log *slog.Logger) *Context {
	return &Context{
		Registry:  reg,
		client:    client,
		wallets:   wallets,
		artifacts: loader,
		log:       log.With("component", "harness"),
	}
}

var (
	instanceOnce sync.Once
	instance     *Context
	instanceErr  error
)

// Instance returns the process-wide Context built from the environment on
// first use. Every call returns the same Context, or the same error.
func Instance() (*Context, error) {
	instanceOnce.Do(func() {
		instance, instanceErr = FromEnvironment(context.Background())
	})
	return instance, instanceErr
}

// FromEnvironment resolves configuration the way the CLI does and connects
func FromEnvironment(ctx context.Context) (*Context, error) {
	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Provider(config.SetupViper(projectRoot, nil))
	if err != nil {
		return nil, err
	}
	return Connect(ctx, cfg)
}

// Connect opens the configured registry and dials the configured network
func Connect(ctx context.Context, cfg *config.RuntimeConfig) (*Context, error) {
	log := logging.NewLogger(cfg)

	reg, err := registry.Open(ctx, fs.NewContextStore(cfg), log)
	if err != nil {
		return nil, err
	}

	client, err := blockchain.NewConnector(cfg, log, nil).Connect(ctx)
	if err != nil {
		return nil, err
	}

	return New(reg, client, wallets.NewBook(), artifacts.NewLoader(log), log), nil
}

// Client exposes the underlying chain client
func (c *Context) Client() usecase.ChainClient {
	return c.client
}

// Close persists the registry and releases the chain connection
func (c *Context) Close(ctx context.Context) error {
	err := c.Registry.Close(ctx)
	c.client.Close()
	return err
}

// GetTestWallet returns a fixture wallet such as "test1"
func (c *Context) GetTestWallet(name string) (*models.Wallet, error) {
	return c.wallets.Get(name)
}

// StoreCode uploads the artifact at artifactPath and registers it
func (c *Context) StoreCode(ctx context.Context, signer *models.Wallet, artifactPath string) (*models.CodeInfo, *models.TxResult, error) {
	artifact, err := c.artifacts.Load(artifactPath)
	if err != nil {
		return nil, nil, err
	}

	codeID, tx, err := c.client.StoreCode(ctx, signer, artifact)
	if err != nil {
		return nil, nil, fmt.Errorf("store %s: %w", artifact.Name(), err)
	}

	code, err := c.AddCodeInfo(codeID, artifactPath)
	if err != nil {
		return nil, nil, err
	}
	c.log.Debug("stored code", "name", code.Name(), "code_id", codeID)
	return code, tx, nil
}

// Instantiate creates a contract from registered code. An empty suffix
// registers it as <codeName>_<n> with the lowest free n.
func (c *Context) Instantiate(ctx context.Context, signer *models.Wallet, codeName, suffix string, args ...any) (*models.ContractInfo, *models.TxResult, error) {
	code, err := c.GetCodeInfo(codeName)
	if err != nil {
		return nil, nil, err
	}

	artifact, err := c.artifacts.Load(code.ArtifactPath())
	if err != nil {
		return nil, nil, err
	}
	contractABI, err := artifact.ParsedABI()
	if err != nil {
		return nil, nil, err
	}

	tx, err := c.client.Instantiate(ctx, signer, code.CodeID(), contractABI, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("instantiate %s: %w", codeName, err)
	}
	if tx.ContractAddress == nil {
		return nil, nil, fmt.Errorf("instantiate %s: receipt carries no contract address", codeName)
	}

	var contract *models.ContractInfo
	if suffix == "" {
		contract, err = c.AddContractInfo(codeName, tx.ContractAddress.Hex())
	} else {
		contract, err = c.AddContractInfoWithSuffix(codeName, tx.ContractAddress.Hex(), suffix)
	}
	if err != nil {
		return nil, nil, err
	}
	return contract, tx, nil
}

// Execute sends a state-changing call to a contract named by identifier or address
func (c *Context) Execute(ctx context.Context, signer *models.Wallet, contract, method string, args ...any) (*models.TxResult, error) {
	address, contractABI, err := c.target(contract, method)
	if err != nil {
		return nil, err
	}
	return c.client.Execute(ctx, signer, address, contractABI, method, args...)
}

// Query performs a read-only call on a contract named by identifier or address
func (c *Context) Query(ctx context.Context, contract, method string, args ...any) ([]any, error) {
	address, contractABI, err := c.target(contract, method)
	if err != nil {
		return nil, err
	}
	return c.client.Query(ctx, address, contractABI, method, args...)
}

// NativeBalance returns the native balance of account in wei
func (c *Context) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.client.NativeBalance(ctx, account)
}

// SendNative transfers wei from a wallet
func (c *Context) SendNative(ctx context.Context, from *models.Wallet, to common.Address, amount *big.Int) (*models.TxResult, error) {
	return c.client.SendNative(ctx, from, to, amount)
}

// TokenBalance returns holder's balance of an ERC-20 style token
func (c *Context) TokenBalance(ctx context.Context, holder common.Address, token string) (*big.Int, error) {
	out, err := c.Query(ctx, token, "balanceOf", holder)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("balanceOf on %s returned nothing", token)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf on %s returned %T", token, out[0])
	}
	return balance, nil
}

// SendTokens transfers amount of token from a wallet to a recipient
func (c *Context) SendTokens(ctx context.Context, from *models.Wallet, to common.Address, amount *big.Int, token string) (*models.TxResult, error) {
	return c.Execute(ctx, from, token, "transfer", to, amount)
}

// MintTokens mints amount of token to a recipient. Only the token's minter succeeds.
func (c *Context) MintTokens(ctx context.Context, minter *models.Wallet, to common.Address, amount *big.Int, token string) (*models.TxResult, error) {
	return c.Execute(ctx, minter, token, "mint", to, amount)
}

// target resolves a contract reference and the ABI to call method with.
// Registered contracts use their artifact ABI when it has the method;
// everything else falls back to the built-in ERC-20 ABI.
func (c *Context) target(contract, method string) (common.Address, *abi.ABI, error) {
	info, err := c.GetContractInfo(contract)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) || !common.IsHexAddress(contract) {
			return common.Address{}, nil, err
		}
		info, _ = c.GetContractInfoByAddress(contract)
	}

	address := common.HexToAddress(contract)
	if info != nil {
		address = common.HexToAddress(info.Address())
		if contractABI := c.artifactABI(info); contractABI != nil {
			if _, ok := contractABI.Methods[method]; ok {
				return address, contractABI, nil
			}
		}
	}

	fallback, err := erc20ABI()
	if err != nil {
		return common.Address{}, nil, err
	}
	if _, ok := fallback.Methods[method]; !ok {
		return common.Address{}, nil, fmt.Errorf("method %q not found for %s", method, contract)
	}
	return address, fallback, nil
}

func (c *Context) artifactABI(info *models.ContractInfo) *abi.ABI {
	code, err := c.GetCodeInfoByID(info.CodeID())
	if err != nil {
		c.log.Debug("no code for contract", "contract", info.Identifier(), "error", err)
		return nil
	}
	artifact, err := c.artifacts.Load(code.ArtifactPath())
	if err != nil {
		c.log.Debug("artifact unavailable", "path", code.ArtifactPath(), "error", err)
		return nil
	}
	contractABI, err := artifact.ParsedABI()
	if err != nil {
		c.log.Debug("artifact abi unreadable", "path", code.ArtifactPath(), "error", err)
		return nil
	}
	return contractABI
}
