// Package logging builds the logfmt logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Levels accepted by New, least to most severe.
var Levels = []string{"debug", "info", "warn", "error"}

// New returns a logfmt logger writing to w that drops records below lvl.
// Every record carries a UTC timestamp.
func New(w io.Writer, lvl string) (log.Logger, error) {
	opt, err := filter(lvl)
	if err != nil {
		return nil, err
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC), nil
}

// ValidLevel reports whether lvl is one of Levels.
func ValidLevel(lvl string) bool {
	_, err := filter(lvl)
	return err == nil
}

// Component tags every record of logger with the component name.
func Component(logger log.Logger, name string) log.Logger {
	return log.With(logger, "component", name)
}

func filter(lvl string) (level.Option, error) {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug(), nil
	case "info", "":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	default:
		return nil, fmt.Errorf("invalid log level %q (valid: %s)", lvl, strings.Join(Levels, ", "))
	}
}
