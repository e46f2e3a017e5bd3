package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/config"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/registry"
)

// SetupEnvironmentParams contains parameters for the global setup phase
type SetupEnvironmentParams struct {
	// SkipBuild skips the build script even when rebuilding is enabled
	SkipBuild bool
}

// SetupEnvironmentResult describes what setup did
type SetupEnvironmentResult struct {
	Network     string
	ChainID     uint64
	NodeStarted bool
	Funded      []string
	Built       bool
	Codes       []*models.CodeInfo
	StatePath   string
}

// SetupEnvironment prepares the chain for a test run: managed node, build,
// upload of every artifact, and a fresh state file.
type SetupEnvironment struct {
	config    *config.RuntimeConfig
	node      NodeManager
	builder   ArtifactBuilder
	artifacts ArtifactSource
	connector ChainConnector
	wallets   WalletBook
	state     StateStore
	sink      ProgressSink
	log       *slog.Logger
}

// NewSetupEnvironment creates a new SetupEnvironment use case
func NewSetupEnvironment(
	cfg *config.RuntimeConfig,
	node NodeManager,
	builder ArtifactBuilder,
	artifacts ArtifactSource,
	connector ChainConnector,
	wallets WalletBook,
	state StateStore,
	sink ProgressSink,
	log *slog.Logger,
) *SetupEnvironment {
	return &SetupEnvironment{
		config:    cfg,
		node:      node,
		builder:   builder,
		artifacts: artifacts,
		connector: connector,
		wallets:   wallets,
		state:     state,
		sink:      sink,
		log:       log.With("component", "setup"),
	}
}

// Run executes the setup phase
func (uc *SetupEnvironment) Run(ctx context.Context, params SetupEnvironmentParams) (*SetupEnvironmentResult, error) {
	result := &SetupEnvironmentResult{StatePath: uc.state.Path()}
	if uc.config.Network != nil {
		result.Network = uc.config.Network.Name
		result.ChainID = uc.config.Network.ChainID
	}

	if uc.config.Node.Managed {
		funded, err := uc.startNode(ctx)
		if err != nil {
			return nil, err
		}
		result.NodeStarted = true
		result.Funded = funded
	}

	if !uc.config.DisableRebuild && !params.SkipBuild {
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: "build", Message: "Running build script", Spinner: true})
		if err := uc.builder.Build(ctx); err != nil {
			return nil, fmt.Errorf("failed to build artifacts: %w", err)
		}
		result.Built = true
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "discover", Message: uc.config.ArtifactsPath, Spinner: true})
	found, err := uc.artifacts.Discover(ctx, uc.config.ArtifactsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to discover artifacts: %w", err)
	}
	if dupes := lo.FindDuplicatesBy(found, func(a *models.Artifact) string { return a.Name() }); len(dupes) > 0 {
		names := lo.Map(dupes, func(a *models.Artifact, _ int) string { return a.Name() })
		return nil, fmt.Errorf("%w: artifacts share a code name: %s", domain.ErrConflict, strings.Join(names, ", "))
	}

	codes, err := uc.upload(ctx, found)
	if err != nil {
		return nil, err
	}
	result.Codes = codes

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "complete", Current: len(codes), Total: len(codes), Message: "Setup complete"})
	return result, nil
}

func (uc *SetupEnvironment) startNode(ctx context.Context) ([]string, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "node", Message: "Resetting local node", Spinner: true})
	if err := uc.node.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset node: %w", err)
	}
	if err := uc.node.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start node: %w", err)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "node", Message: "Waiting for RPC", Spinner: true})
	if err := uc.node.WaitReady(ctx); err != nil {
		return nil, err
	}

	if uc.config.FundAmount == nil || uc.config.FundAmount.Sign() <= 0 {
		return nil, nil
	}

	names := uc.wallets.Names()
	for i, name := range names {
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: "fund", Current: i + 1, Total: len(names), Message: name, Spinner: true})
		wallet, err := uc.wallets.Get(name)
		if err != nil {
			return nil, err
		}
		if err := uc.node.Fund(ctx, wallet.Address(), uc.config.FundAmount); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// upload stores every artifact with the deployer wallet and writes a fresh
// registry holding exactly the uploaded codes.
func (uc *SetupEnvironment) upload(ctx context.Context, found []*models.Artifact) ([]*models.CodeInfo, error) {
	deployer, err := uc.wallets.Get(uc.config.Deployer)
	if err != nil {
		return nil, fmt.Errorf("deployer: %w", err)
	}

	client, err := uc.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	reg := registry.New(uc.state, uc.log)
	codes := make([]*models.CodeInfo, 0, len(found))
	for i, artifact := range found {
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "upload",
			Current: i + 1,
			Total:   len(found),
			Message: artifact.Name(),
			Spinner: true,
		})

		codeID, _, err := client.StoreCode(ctx, deployer, artifact)
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", artifact.Name(), err)
		}
		info, err := reg.AddCodeInfo(codeID, artifact.Path)
		if err != nil {
			return nil, err
		}
		uc.log.Debug("uploaded artifact", "name", info.Name(), "codeId", codeID)
		codes = append(codes, info)
	}

	if err := reg.Save(ctx); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}
	return codes, nil
}
