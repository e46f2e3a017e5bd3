package cli

import (
	"github.com/spf13/cobra"
	"github.com/steadifi/contract-harness/internal/cli/render"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// NewInstantiateCmd creates the instantiate command
func NewInstantiateCmd() *cobra.Command {
	var (
		wallet string
		suffix string
	)

	cmd := &cobra.Command{
		Use:   "instantiate <code> [args...]",
		Short: "Instantiate uploaded code and record the contract",
		Long: `Instantiate code uploaded by setup. Constructor arguments are given as
strings and converted by the constructor's ABI types: integers in decimal or
0x hex, addresses in hex or as a test wallet name, arrays as [a,b,c].

Without --suffix the contract is recorded as <code>_<n> with the lowest free n.`,
		Example: `  # Token_0 with an initial supply for the deployer
  harness instantiate Token "Harness Token" 1000000

  # Token_ANDR signed by test2
  harness instantiate Token "Andromeda" 5 --suffix _ANDR --wallet test2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.InstantiateContract.Run(cmd.Context(), usecase.InstantiateContractParams{
				CodeName: args[0],
				Args:     args[1:],
				Wallet:   wallet,
				Suffix:   suffix,
			})
			if err != nil {
				return err
			}

			return render.NewInstantiateRenderer(cmd.OutOrStdout(), outputFormat(app)).Render(result)
		},
	}

	cmd.Flags().StringVarP(&wallet, "wallet", "w", "", "Test wallet that signs (default: deployer)")
	cmd.Flags().StringVar(&suffix, "suffix", "", "Identifier suffix appended to the code name, e.g. _ANDR")

	return cmd
}
