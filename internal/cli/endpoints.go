package cli

import (
	"github.com/spf13/cobra"

	"github.com/kolah/truffle/internal/index"
	"github.com/kolah/truffle/internal/model"
)

func EndpointsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "List endpoints grouped by tag",
		Args:  cobra.NoArgs,
		RunE:  runEndpoints,
	}

	cmd.Flags().String("tag", "", "Only endpoints carrying this tag")
	cmd.Flags().String("method", "", "Only endpoints with this HTTP method")

	return cmd
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	groups, err := a.session.Groups()
	if err != nil {
		return err
	}

	tag, _ := cmd.Flags().GetString("tag")
	method, _ := cmd.Flags().GetString("method")
	if tag != "" || method != "" {
		groups = filterGroups(groups, tag, method)
	}

	engine, err := a.engine()
	if err != nil {
		return err
	}
	return engine.Render(cmd.OutOrStdout(), "endpoints.tmpl", groups)
}

func filterGroups(groups []model.TagGroup, tag, method string) []model.TagGroup {
	var result []model.TagGroup
	for _, g := range groups {
		g.Endpoints = index.Filter(g.Endpoints, tag, method)
		if len(g.Endpoints) > 0 {
			result = append(result, g)
		}
	}
	return result
}
