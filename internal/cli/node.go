package cli

import (
	"github.com/spf13/cobra"
	"github.com/steadifi/contract-harness/internal/cli/render"
)

// NewNodeCmd creates the node command group
func NewNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage the local node",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the local node is running and healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			status, err := app.Node.Status(cmd.Context())
			if err != nil {
				return err
			}

			return render.NewNodeRenderer(cmd.OutOrStdout(), outputFormat(app)).Render(status)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the local node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			return app.Node.Stop(cmd.Context())
		},
	})

	return cmd
}
