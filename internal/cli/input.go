package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kolah/truffle/internal/model"
	"github.com/kolah/truffle/internal/request"
)

func bindInputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayP("param", "p", nil, "Parameter value as name=value (repeatable)")
	flags.String("body", "", "Request body text")
	flags.String("body-file", "", "Read the request body from a file")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")
}

// parseParams turns name=value pairs into a map. A later pair for the same
// name wins.
func parseParams(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected name=value)", pair)
		}
		values[name] = value
	}
	return values, nil
}

func readInput(cmd *cobra.Command) (request.Input, error) {
	pairs, _ := cmd.Flags().GetStringArray("param")
	values, err := parseParams(pairs)
	if err != nil {
		return request.Input{}, err
	}

	body, _ := cmd.Flags().GetString("body")
	if path, _ := cmd.Flags().GetString("body-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return request.Input{}, fmt.Errorf("reading body file: %w", err)
		}
		body = string(data)
	}

	return request.Input{Values: values, Body: body}, nil
}

// endpointArgs validates the METHOD PATH positional pair.
func endpointArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(2)(cmd, args); err != nil {
		return err
	}
	if _, ok := model.ParseMethod(args[0]); !ok {
		return fmt.Errorf("unsupported method %q", args[0])
	}
	return nil
}
