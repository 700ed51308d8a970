package model

// Spec is the structural model of an OpenAPI document. It is built once by the
// loader and never mutated afterwards.
type Spec struct {
	OpenAPI    string
	Info       Info
	Servers    []Server
	Tags       []Tag
	Paths      []PathItem // document key order
	Components Components
}

// BaseURL returns the first declared server URL, or "" when none is declared.
func (s *Spec) BaseURL() string {
	if len(s.Servers) == 0 {
		return ""
	}
	return s.Servers[0].URL
}

// PathItem returns the item keyed by the literal path template.
func (s *Spec) PathItem(path string) (*PathItem, bool) {
	for i := range s.Paths {
		if s.Paths[i].Path == path {
			return &s.Paths[i], true
		}
	}
	return nil, false
}

// Tag returns the declared tag with the given name.
func (s *Spec) Tag(name string) (Tag, bool) {
	for _, t := range s.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

type Info struct {
	Title       string
	Description string
	Version     string
}

type Server struct {
	URL         string
	Description string
}

type Tag struct {
	Name        string
	Description string
}

// Components holds the named definitions that `$ref` pointers resolve against.
type Components struct {
	Schemas    map[string]*Schema
	Parameters map[string]ParameterRef
}

const (
	SchemaRefPrefix    = "#/components/schemas/"
	ParameterRefPrefix = "#/components/parameters/"
)

// Endpoint is a (path, method, operation) triple derived from the path map.
type Endpoint struct {
	Path      string
	Method    Method
	Operation *Operation
}

// Key returns "METHOD /path".
func (e Endpoint) Key() string {
	return string(e.Method) + " " + e.Path
}

// PrimaryTag returns the first declared tag, or "" for untagged operations.
func (e Endpoint) PrimaryTag() string {
	if e.Operation == nil || len(e.Operation.Tags) == 0 {
		return ""
	}
	return e.Operation.Tags[0]
}

// TagGroup is a navigation group of endpoints sharing a primary tag.
type TagGroup struct {
	Name        string
	Description string
	Endpoints   []Endpoint
}
