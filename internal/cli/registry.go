package cli

import (
	"github.com/spf13/cobra"
	"github.com/steadifi/contract-harness/internal/cli/render"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// NewRegistryCmd creates the registry command group
func NewRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "registry",
		Aliases: []string{"reg"},
		Short:   "Inspect the deployment registry",
	}

	cmd.AddCommand(newRegistryListCmd())
	cmd.AddCommand(newRegistryShowCmd())

	return cmd
}

func newRegistryListCmd() *cobra.Command {
	var (
		filter string
		asYAML bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List uploaded codes and instantiated contracts",
		Example: `  harness registry list
  harness registry list --filter token
  harness registry list --yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListRegistry.Run(cmd.Context(), usecase.ListRegistryParams{Filter: filter})
			if err != nil {
				return err
			}

			format := outputFormat(app)
			if asYAML {
				format = render.FormatYAML
			}
			return render.NewRegistryRenderer(cmd.OutOrStdout(), format).Render(result)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only entries whose name contains this text")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output as YAML")

	return cmd
}

func newRegistryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <code|contract|address>",
		Short: "Show one code or contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowEntry.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render.NewRegistryRenderer(cmd.OutOrStdout(), outputFormat(app)).RenderEntry(result)
		},
	}

	return cmd
}
