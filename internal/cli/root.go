package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/steadifi/contract-harness/internal/adapters/progress"
	"github.com/steadifi/contract-harness/internal/app"
	"github.com/steadifi/contract-harness/internal/cli/render"
	"github.com/steadifi/contract-harness/internal/config"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// appInitializer builds the App; tests replace it
var appInitializer = app.InitApp

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var sink usecase.ProgressSink = progress.NewNopSink()

	rootCmd := &cobra.Command{
		Use:   "harness",
		Short: "Integration test harness for EVM contracts",
		Long: `harness prepares a chain for contract integration tests: it starts a
local node when asked, uploads every compiled artifact, and keeps a registry
of uploaded code and instantiated contracts in a state file the tests share.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, nil)
			bindGlobalFlags(v, cmd)

			if !v.GetBool("json") && !color.NoColor {
				sink = progress.NewSpinnerSink()
			}

			appInstance, err := appInitializer(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			// Add timeout if configured
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if s, ok := sink.(*progress.SpinnerSink); ok {
				s.Stop()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network from harness.toml, or 'local' for the local node")
	rootCmd.PersistentFlags().String("state-file", "", "Registry state file (default .tmp_context)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "environment",
		Title: "Environment Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "registry",
		Title: "Registry Commands",
	})

	setupCmd := NewSetupCmd()
	setupCmd.GroupID = "environment"
	rootCmd.AddCommand(setupCmd)

	teardownCmd := NewTeardownCmd()
	teardownCmd.GroupID = "environment"
	rootCmd.AddCommand(teardownCmd)

	nodeCmd := NewNodeCmd()
	nodeCmd.GroupID = "environment"
	rootCmd.AddCommand(nodeCmd)

	walletsCmd := NewWalletsCmd()
	walletsCmd.GroupID = "environment"
	rootCmd.AddCommand(walletsCmd)

	instantiateCmd := NewInstantiateCmd()
	instantiateCmd.GroupID = "registry"
	rootCmd.AddCommand(instantiateCmd)

	registryCmd := NewRegistryCmd()
	registryCmd.GroupID = "registry"
	rootCmd.AddCommand(registryCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// bindGlobalFlags binds command flags to viper
func bindGlobalFlags(v *viper.Viper, cmd *cobra.Command) {
	// Only bind flags that exist and have been changed
	if f := cmd.Flag("debug"); f != nil && f.Changed {
		v.Set("debug", f.Value.String())
	}
	if f := cmd.Flag("json"); f != nil && f.Changed {
		v.Set("json", f.Value.String())
	}
	if f := cmd.Flag("network"); f != nil && f.Changed {
		v.Set("network", f.Value.String())
	}
	if f := cmd.Flag("state-file"); f != nil && f.Changed {
		v.Set("state_file", f.Value.String())
	}
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}

// outputFormat picks JSON when --json is set, else text
func outputFormat(a *app.App) render.Format {
	if a.Config.JSON {
		return render.FormatJSON
	}
	return render.FormatText
}
