package request

// DefaultAuthHeader carries the credential when no header name is configured.
const DefaultAuthHeader = "X-API-Key"

// Credential is the single static token supplied by the hosting environment.
// It is attached verbatim to every request when present.
type Credential struct {
	Header string
	Token  string
}

func (c Credential) header() (Header, bool) {
	if c.Token == "" {
		return Header{}, false
	}
	name := c.Header
	if name == "" {
		name = DefaultAuthHeader
	}
	return Header{Name: name, Value: c.Token}, true
}
