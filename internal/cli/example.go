package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolah/truffle/internal/example"
)

func ExampleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "example METHOD PATH",
		Short: "Print a synthesized example response or request body",
		Args:  endpointArgs,
		RunE:  runExample,
	}

	cmd.Flags().String("status", "", "Response status code (default: first 2xx)")
	cmd.Flags().Bool("request", false, "Print the request body example instead")

	return cmd
}

func runExample(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ep, err := a.session.Find(args[0], args[1])
	if err != nil {
		return err
	}
	spec, err := a.session.Spec()
	if err != nil {
		return err
	}

	var (
		value any
		ok    bool
	)
	if wantRequest, _ := cmd.Flags().GetBool("request"); wantRequest {
		value, ok = example.RequestBody(spec, ep.Operation)
		if !ok {
			return fmt.Errorf("%s declares no request body", ep.Key())
		}
	} else {
		status, _ := cmd.Flags().GetString("status")
		value, ok = example.Response(spec, ep.Operation, status)
		if !ok {
			if status == "" {
				return fmt.Errorf("%s documents no response body", ep.Key())
			}
			return fmt.Errorf("%s documents no response body for status %s", ep.Key(), status)
		}
	}

	out, err := example.MarshalIndent(value, "  ")
	if err != nil {
		return fmt.Errorf("rendering example: %w", err)
	}
	return a.writeJSON(cmd.OutOrStdout(), string(out))
}
