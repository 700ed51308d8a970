package templates

import (
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-wordwrap"
)

func Funcs() template.FuncMap {
	return template.FuncMap{
		"wrap":   Wrap,
		"indent": Indent,
		"pad":    Pad,
		"bytes":  Bytes,
		"join":   strings.Join,
		"upper":  strings.ToUpper,
		"lower":  strings.ToLower,
	}
}

// Wrap breaks s into lines of at most width characters on word boundaries.
func Wrap(width int, s string) string {
	return wordwrap.WrapString(strings.TrimSpace(s), uint(width))
}

// Indent prefixes every non-empty line of s with n spaces.
func Indent(n int, s string) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// Pad right-pads s with spaces to width.
func Pad(width int, s string) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Bytes renders a byte count for humans, e.g. "1.2 kB".
func Bytes(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
