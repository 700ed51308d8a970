package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/go-kit/log"
	"github.com/spf13/cobra"

	"github.com/kolah/truffle/internal/config"
	"github.com/kolah/truffle/internal/logging"
	"github.com/kolah/truffle/internal/session"
	"github.com/kolah/truffle/internal/templates"
	builtin "github.com/kolah/truffle/templates"
)

// app is what every command needs once flags are parsed: the configuration
// and a session whose document is already loaded.
type app struct {
	cfg     *config.Config
	logger  log.Logger
	session *session.Session
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	s := session.New(session.Options{
		Source:            cfg.Spec,
		BaseURL:           cfg.BaseURL,
		Hidden:            cfg.Hidden(),
		Credential:        cfg.Credential(),
		Client:            &http.Client{Timeout: cfg.Timeout},
		ValidateResponses: cfg.ValidateResponses,
		Logger:            logger,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()
	if err := s.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading spec: %w", err)
	}
	for _, w := range s.Warnings() {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	return &app{cfg: cfg, logger: logger, session: s}, nil
}

func (a *app) engine() (*templates.TextTemplateEngine, error) {
	engine, err := templates.NewEngine(builtin.FS, a.cfg.Templates.Dir, templates.Funcs())
	if err != nil {
		return nil, fmt.Errorf("creating template engine: %w", err)
	}
	return engine, nil
}

// writeJSON prints already formatted JSON, highlighted when color is on.
func (a *app) writeJSON(w io.Writer, src string) error {
	if a.cfg.Color {
		if err := quick.Highlight(w, src, "json", "terminal", "swapoff"); err != nil {
			return fmt.Errorf("highlighting output: %w", err)
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, src)
	return err
}
