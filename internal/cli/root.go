package cli

import (
	"github.com/kolah/truffle/internal/config"
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "truffle",
		Short:        "Truffle - browse an OpenAPI document and try its endpoints",
		Version:      "1.0.0",
		SilenceUsage: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	config.BindFlags(root)

	root.AddCommand(
		EndpointsCommand(),
		ShowCommand(),
		ExampleCommand(),
		CurlCommand(),
		CallCommand(),
	)

	return root
}
