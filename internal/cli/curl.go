package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolah/truffle/internal/request"
)

func CurlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curl METHOD PATH",
		Short: "Print the curl command for a request without sending it",
		Args:  endpointArgs,
		RunE:  runCurl,
	}

	bindInputFlags(cmd)

	return cmd
}

func runCurl(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	req, err := a.build(cmd, args)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), request.Curl(req))
	return err
}

func (a *app) build(cmd *cobra.Command, args []string) (*request.Request, error) {
	ep, err := a.session.Find(args[0], args[1])
	if err != nil {
		return nil, err
	}
	in, err := readInput(cmd)
	if err != nil {
		return nil, err
	}
	return a.session.Build(ep, in)
}
