package model

import "strings"

type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// Methods is the fixed order in which a path item's operations are walked.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch}

// ParseMethod maps a case-insensitive method name to a supported Method.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(s))
	for _, known := range Methods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// AcceptsBody reports whether a request body may be attached for this method.
func (m Method) AcceptsBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// PathItem holds at most one operation per supported method.
type PathItem struct {
	Path   string
	Get    *Operation
	Post   *Operation
	Put    *Operation
	Delete *Operation
	Patch  *Operation
}

// Operation returns the operation declared for m, or nil.
func (p *PathItem) Operation(m Method) *Operation {
	switch m {
	case MethodGet:
		return p.Get
	case MethodPost:
		return p.Post
	case MethodPut:
		return p.Put
	case MethodDelete:
		return p.Delete
	case MethodPatch:
		return p.Patch
	}
	return nil
}

// SetOperation stores op under m. Unsupported methods are ignored.
func (p *PathItem) SetOperation(m Method, op *Operation) {
	switch m {
	case MethodGet:
		p.Get = op
	case MethodPost:
		p.Post = op
	case MethodPut:
		p.Put = op
	case MethodDelete:
		p.Delete = op
	case MethodPatch:
		p.Patch = op
	}
}

type Operation struct {
	ID          string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Parameters  []ParameterRef // declaration order, literal or $ref
	RequestBody *RequestBody
	Responses   []Response // declaration order
}

type ParameterLocation string

const (
	LocationPath   ParameterLocation = "path"
	LocationQuery  ParameterLocation = "query"
	LocationHeader ParameterLocation = "header"
	LocationCookie ParameterLocation = "cookie"
)

type Parameter struct {
	Name        string
	In          ParameterLocation
	Description string
	Required    bool
	Schema      *Schema
	Example     any
	HasExample  bool
}

// ParameterRef is one entry of an operation's parameter list: either a
// literal parameter (Value) or a pointer into components (Ref).
type ParameterRef struct {
	Ref   string
	Value *Parameter
}

type RequestBody struct {
	Description string
	Required    bool
	MediaType   string
	Schema      *Schema
}

type Response struct {
	StatusCode  string
	Description string
	MediaType   string
	Schema      *Schema
}

// IsJSONMediaType reports whether a media type carries JSON, including
// structured suffixes such as application/problem+json.
func IsJSONMediaType(mt string) bool {
	mt = strings.ToLower(strings.TrimSpace(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
