package cli

import (
	"github.com/spf13/cobra"
	"github.com/steadifi/contract-harness/internal/cli/render"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// NewWalletsCmd creates the wallets command
func NewWalletsCmd() *cobra.Command {
	var balances bool

	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "List the test wallets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListWallets.Run(cmd.Context(), usecase.ListWalletsParams{Balances: balances})
			if err != nil {
				return err
			}

			return render.NewWalletsRenderer(cmd.OutOrStdout(), outputFormat(app)).Render(result)
		},
	}

	cmd.Flags().BoolVar(&balances, "balances", false, "Query native balances from the chain")

	return cmd
}
