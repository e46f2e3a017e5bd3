//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/steadifi/contract-harness/internal/adapters"
	"github.com/steadifi/contract-harness/internal/config"
	"github.com/steadifi/contract-harness/internal/logging"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewSetupEnvironment,
		usecase.NewTeardownEnvironment,
		usecase.NewInstantiateContract,
		usecase.NewListRegistry,
		usecase.NewShowEntry,
		usecase.NewListWallets,

		// App
		NewApp,
	)
	return nil, nil
}
