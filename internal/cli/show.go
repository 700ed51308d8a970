package cli

import (
	"github.com/spf13/cobra"

	"github.com/kolah/truffle/internal/templates"
)

func ShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show METHOD PATH",
		Short: "Show documentation for one endpoint",
		Args:  endpointArgs,
		RunE:  runShow,
	}

	bindInputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ep, err := a.session.Find(args[0], args[1])
	if err != nil {
		return err
	}
	in, err := readInput(cmd)
	if err != nil {
		return err
	}
	req, err := a.session.Build(ep, in)
	if err != nil {
		return err
	}
	spec, err := a.session.Spec()
	if err != nil {
		return err
	}

	view, err := templates.NewEndpointView(spec, ep, req)
	if err != nil {
		return err
	}
	engine, err := a.engine()
	if err != nil {
		return err
	}
	return engine.Render(cmd.OutOrStdout(), "endpoint.tmpl", view)
}
