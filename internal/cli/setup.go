package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/steadifi/contract-harness/internal/cli/render"
	"github.com/steadifi/contract-harness/internal/metrics"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// NewSetupCmd creates the setup command
func NewSetupCmd() *cobra.Command {
	var skipBuild bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Prepare the chain and upload every artifact",
		Long: `Prepare the chain for a test run.

With LOCAL_NODE=TRUE the local node is reset, started and every test wallet
funded. Artifacts are rebuilt unless DISABLE_REBUILD=TRUE, then every
artifact with bytecode is uploaded with the deployer wallet and recorded in a
fresh state file.`,
		Example: `  # Full setup against a managed local node
  LOCAL_NODE=TRUE harness setup

  # Upload the existing artifacts to a remote chain
  USE_LOCAL_DEFAULT=FALSE CLIENT_URL=http://10.0.0.5:8545 CHAIN_ID=1337 harness setup --skip-build`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.SetupEnvironment.Run(cmd.Context(), usecase.SetupEnvironmentParams{SkipBuild: skipBuild})
			if metricsErr := writeMetrics(app.Config.MetricsFile, app.Metrics); metricsErr != nil && err == nil {
				err = metricsErr
			}
			if err != nil {
				return err
			}

			return render.NewEnvironmentRenderer(cmd.OutOrStdout(), outputFormat(app)).Render(result)
		},
	}

	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Skip the build script for this run")

	return cmd
}

// NewTeardownCmd creates the teardown command
func NewTeardownCmd() *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Stop the managed node and optionally remove the state file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.TeardownEnvironment.Run(cmd.Context(), usecase.TeardownEnvironmentParams{Purge: purge})
			if err != nil {
				return err
			}

			return render.NewEnvironmentRenderer(cmd.OutOrStdout(), outputFormat(app)).RenderTeardown(result)
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "Remove the state file")

	return cmd
}

// writeMetrics dumps chain call metrics when a metrics file is configured
func writeMetrics(path string, m *metrics.Metrics) error {
	if path == "" || m == nil {
		return nil
	}
	if err := m.WriteTextfile(path); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}
