package usecase

import (
	"context"
	"fmt"

	"github.com/steadifi/contract-harness/internal/domain/config"
)

// TeardownEnvironmentParams contains parameters for the global teardown phase
type TeardownEnvironmentParams struct {
	// Purge removes the state file
	Purge bool
}

// TeardownEnvironmentResult describes what teardown did
type TeardownEnvironmentResult struct {
	NodeStopped bool
	Purged      bool
	StatePath   string
}

// TeardownEnvironment stops the managed node and optionally drops the state file
type TeardownEnvironment struct {
	config *config.RuntimeConfig
	node   NodeManager
	state  StateStore
	sink   ProgressSink
}

// NewTeardownEnvironment creates a new TeardownEnvironment use case
func NewTeardownEnvironment(cfg *config.RuntimeConfig, node NodeManager, state StateStore, sink ProgressSink) *TeardownEnvironment {
	return &TeardownEnvironment{
		config: cfg,
		node:   node,
		state:  state,
		sink:   sink,
	}
}

// Run executes the teardown phase
func (uc *TeardownEnvironment) Run(ctx context.Context, params TeardownEnvironmentParams) (*TeardownEnvironmentResult, error) {
	result := &TeardownEnvironmentResult{StatePath: uc.state.Path()}

	if uc.config.Node.Managed {
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: "node", Message: "Stopping local node", Spinner: true})
		if err := uc.node.Reset(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset node: %w", err)
		}
		result.NodeStopped = true
	}

	if params.Purge {
		if err := uc.state.Remove(ctx); err != nil {
			return nil, err
		}
		result.Purged = true
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "complete", Message: "Teardown complete"})
	return result, nil
}
