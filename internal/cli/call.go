package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/kolah/truffle/internal/request"
	"github.com/kolah/truffle/internal/templates"
)

func CallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call METHOD PATH",
		Short: "Send a request to the API and print the response",
		Args:  endpointArgs,
		RunE:  runCall,
	}

	bindInputFlags(cmd)

	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	req, err := a.build(cmd, args)
	if err != nil {
		return err
	}
	if req.URL == req.Path+req.Query {
		return fmt.Errorf("no base URL: the document declares no server and --base-url is not set")
	}

	level.Debug(a.logger).Log("msg", "sending request", "method", req.Method, "url", req.URL)
	res, err := a.session.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	if res.Err != nil {
		return fmt.Errorf("request failed: %w", res.Err)
	}

	return a.writeResult(cmd.OutOrStdout(), res)
}

func (a *app) writeResult(w io.Writer, res *request.Result) error {
	fmt.Fprintf(w, "%s  (%s, %s)\n", res.Status, res.Duration.Round(time.Millisecond), templates.Bytes(len(res.Body)))
	if len(res.Body) > 0 {
		fmt.Fprintln(w)
		if res.IsJSON() {
			if err := a.writeJSON(w, res.Pretty()); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(w, res.Text())
		}
	}

	writeViolations(w, "Request does not match the documented operation:", res.RequestViolations)
	writeViolations(w, "Response does not match the documented schema:", res.Violations)
	return nil
}

func writeViolations(w io.Writer, title string, violations []request.Violation) {
	if len(violations) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, v := range violations {
		fmt.Fprintf(w, "  - %s\n", v.Message)
		if v.Reason != "" {
			fmt.Fprintf(w, "    %s\n", v.Reason)
		}
	}
}
