package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steadifi/contract-harness/internal/domain/config"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/registry"
)

// InstantiateContractParams contains parameters for instantiating uploaded code
type InstantiateContractParams struct {
	CodeName string
	Args     []string
	// Wallet signs the instantiation, the deployer when empty
	Wallet string
	// Suffix is appended verbatim to CodeName; empty picks the next _<n>
	Suffix string
}

// InstantiateContractResult contains the registered contract and its receipt
type InstantiateContractResult struct {
	Contract *models.ContractInfo
	Code     *models.CodeInfo
	Tx       *models.TxResult
}

// InstantiateContract creates a contract from registered code and records it
type InstantiateContract struct {
	config    *config.RuntimeConfig
	state     StateStore
	artifacts ArtifactSource
	parser    ArgumentParser
	connector ChainConnector
	wallets   WalletBook
	sink      ProgressSink
	log       *slog.Logger
}

// NewInstantiateContract creates a new InstantiateContract use case
func NewInstantiateContract(
	cfg *config.RuntimeConfig,
	state StateStore,
	artifacts ArtifactSource,
	parser ArgumentParser,
	connector ChainConnector,
	wallets WalletBook,
	sink ProgressSink,
	log *slog.Logger,
) *InstantiateContract {
	return &InstantiateContract{
		config:    cfg,
		state:     state,
		artifacts: artifacts,
		parser:    parser,
		connector: connector,
		wallets:   wallets,
		sink:      sink,
		log:       log.With("component", "instantiate"),
	}
}

// Run executes the instantiation
func (uc *InstantiateContract) Run(ctx context.Context, params InstantiateContractParams) (*InstantiateContractResult, error) {
	reg, err := registry.Open(ctx, uc.state, uc.log)
	if err != nil {
		return nil, err
	}

	code, err := reg.GetCodeInfo(params.CodeName)
	if err != nil {
		return nil, err
	}

	artifact, err := uc.artifacts.Load(code.ArtifactPath())
	if err != nil {
		return nil, fmt.Errorf("artifact for %s: %w", code.Name(), err)
	}
	contractABI, err := artifact.ParsedABI()
	if err != nil {
		return nil, err
	}
	args, err := uc.parser.ParseArgs(contractABI.Constructor.Inputs, params.Args)
	if err != nil {
		return nil, fmt.Errorf("constructor of %s: %w", code.Name(), err)
	}

	walletName := params.Wallet
	if walletName == "" {
		walletName = uc.config.Deployer
	}
	signer, err := uc.wallets.Get(walletName)
	if err != nil {
		return nil, err
	}

	client, err := uc.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "instantiate", Message: code.Name(), Spinner: true})
	tx, err := client.Instantiate(ctx, signer, code.CodeID(), contractABI, args...)
	if err != nil {
		return nil, err
	}
	if tx.ContractAddress == nil {
		return nil, fmt.Errorf("instantiate %s: receipt carries no contract address", code.Name())
	}

	var contract *models.ContractInfo
	if params.Suffix == "" {
		contract, err = reg.AddContractInfo(code.Name(), tx.ContractAddress.Hex())
	} else {
		contract, err = reg.AddContractInfoWithSuffix(code.Name(), tx.ContractAddress.Hex(), params.Suffix)
	}
	if err != nil {
		return nil, err
	}

	if err := reg.Save(ctx); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "complete", Message: contract.Identifier()})
	return &InstantiateContractResult{Contract: contract, Code: code, Tx: tx}, nil
}
