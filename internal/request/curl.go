package request

import (
	"strings"

	"github.com/alessio/shellescape"
)

// Curl renders r as an equivalent curl invocation. It never executes anything.
func Curl(r *Request) string {
	var b strings.Builder
	b.WriteString("curl -X ")
	b.WriteString(string(r.Method))
	b.WriteByte(' ')
	b.WriteString(shellescape.Quote(r.URL))
	for _, h := range r.Headers {
		b.WriteString(" \\\n  -H ")
		b.WriteString(shellescape.Quote(h.Name + ": " + h.Value))
	}
	if r.HasBody {
		b.WriteString(" \\\n  -d ")
		b.WriteString(shellescape.Quote(r.Body))
	}
	return b.String()
}
