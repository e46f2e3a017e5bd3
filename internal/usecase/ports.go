package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/registry"
)

// ChainClient uploads, instantiates and exercises contracts on a chain.
type ChainClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	// StoreCode uploads an artifact and returns the chain-assigned code id.
	StoreCode(ctx context.Context, signer *models.Wallet, artifact *models.Artifact) (string, *models.TxResult, error)
	// Instantiate creates a contract from uploaded code. The result carries
	// the new contract address.
	Instantiate(ctx context.Context, signer *models.Wallet, codeID string, contractABI *abi.ABI, args ...any) (*models.TxResult, error)
	Execute(ctx context.Context, signer *models.Wallet, contract common.Address, contractABI *abi.ABI, method string, args ...any) (*models.TxResult, error)
	Query(ctx context.Context, contract common.Address, contractABI *abi.ABI, method string, args ...any) ([]any, error)
	NativeBalance(ctx context.Context, account common.Address) (*big.Int, error)
	SendNative(ctx context.Context, signer *models.Wallet, to common.Address, amount *big.Int) (*models.TxResult, error)
	Close()
}

// ChainConnector opens a chain client on demand so commands that only read
// the registry never dial the node.
type ChainConnector interface {
	Connect(ctx context.Context) (ChainClient, error)
}

// NodeManager controls the local node when the harness manages it.
type NodeManager interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Reset(ctx context.Context) error
	Status(ctx context.Context) (*NodeStatus, error)
	WaitReady(ctx context.Context) error
	Fund(ctx context.Context, account common.Address, wei *big.Int) error
}

// NodeStatus describes the managed node process.
type NodeStatus struct {
	Running    bool
	PID        int
	RPCURL     string
	RPCHealthy bool
	LogFile    string
}

// ArtifactSource discovers and reads compiled artifacts.
type ArtifactSource interface {
	Discover(ctx context.Context, root string) ([]*models.Artifact, error)
	Load(path string) (*models.Artifact, error)
}

// ArtifactBuilder runs the external build step that produces artifacts.
type ArtifactBuilder interface {
	Build(ctx context.Context) error
}

// ArgumentParser converts command-line strings to the Go values abi.Pack expects.
type ArgumentParser interface {
	ParseArgs(inputs abi.Arguments, raw []string) ([]any, error)
}

// WalletBook resolves fixture test wallets.
type WalletBook interface {
	Get(name string) (*models.Wallet, error)
	Names() []string
}

// StateStore is the registry store plus removal, used by teardown.
type StateStore interface {
	registry.Store
	Path() string
	Remove(ctx context.Context) error
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Current int
	Total   int
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
