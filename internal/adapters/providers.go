package adapters

import (
	"log/slog"

	"github.com/google/wire"
	"github.com/steadifi/contract-harness/internal/adapters/abi"
	"github.com/steadifi/contract-harness/internal/adapters/anvil"
	"github.com/steadifi/contract-harness/internal/adapters/artifacts"
	"github.com/steadifi/contract-harness/internal/adapters/blockchain"
	"github.com/steadifi/contract-harness/internal/adapters/fs"
	"github.com/steadifi/contract-harness/internal/adapters/wallets"
	"github.com/steadifi/contract-harness/internal/config"
	"github.com/steadifi/contract-harness/internal/metrics"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// ProvideChainConnector provides a connector whose clients report to m
func ProvideChainConnector(cfg *config.RuntimeConfig, log *slog.Logger, m *metrics.Metrics) *blockchain.Connector {
	return blockchain.NewConnector(cfg, log, func(client usecase.ChainClient) usecase.ChainClient {
		return metrics.NewInstrumentedClient(client, m)
	})
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewContextStore,
	wire.Bind(new(usecase.StateStore), new(*fs.ContextStore)),
)

// ArtifactSet provides artifact discovery and the build step
var ArtifactSet = wire.NewSet(
	artifacts.NewLoader,
	wire.Bind(new(usecase.ArtifactSource), new(*artifacts.Loader)),

	artifacts.NewScriptBuilder,
	wire.Bind(new(usecase.ArtifactBuilder), new(*artifacts.ScriptBuilder)),
)

// NodeSet provides the local node manager
var NodeSet = wire.NewSet(
	anvil.NewManager,
	wire.Bind(new(usecase.NodeManager), new(*anvil.Manager)),
)

// BlockchainSet provides chain access
var BlockchainSet = wire.NewSet(
	metrics.New,
	ProvideChainConnector,
	wire.Bind(new(usecase.ChainConnector), new(*blockchain.Connector)),

	abi.NewArgParser,
	wire.Bind(new(usecase.ArgumentParser), new(*abi.ArgParser)),
)

// WalletSet provides the fixture test wallets
var WalletSet = wire.NewSet(
	wallets.NewBook,
	wire.Bind(new(usecase.WalletBook), new(*wallets.Book)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	ArtifactSet,
	NodeSet,
	BlockchainSet,
	WalletSet,
)
