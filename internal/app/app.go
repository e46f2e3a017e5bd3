package app

import (
	"github.com/steadifi/contract-harness/internal/domain/config"
	"github.com/steadifi/contract-harness/internal/metrics"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Metrics *metrics.Metrics
	Node    usecase.NodeManager

	// Use cases
	SetupEnvironment    *usecase.SetupEnvironment
	TeardownEnvironment *usecase.TeardownEnvironment
	InstantiateContract *usecase.InstantiateContract
	ListRegistry        *usecase.ListRegistry
	ShowEntry           *usecase.ShowEntry
	ListWallets         *usecase.ListWallets
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	m *metrics.Metrics,
	node usecase.NodeManager,
	setupEnvironment *usecase.SetupEnvironment,
	teardownEnvironment *usecase.TeardownEnvironment,
	instantiateContract *usecase.InstantiateContract,
	listRegistry *usecase.ListRegistry,
	showEntry *usecase.ShowEntry,
	listWallets *usecase.ListWallets,
) (*App, error) {
	return &App{
		Config:              cfg,
		Metrics:             m,
		Node:                node,
		SetupEnvironment:    setupEnvironment,
		TeardownEnvironment: teardownEnvironment,
		InstantiateContract: instantiateContract,
		ListRegistry:        listRegistry,
		ShowEntry:           showEntry,
		ListWallets:         listWallets,
	}, nil
}
