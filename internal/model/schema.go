package model

import "strings"

// Kind is the shape tag of a Schema. KindAny covers an absent or unknown type.
type Kind string

const (
	KindAny     Kind = ""
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// ParseKind maps a JSON Schema type name to a Kind. Unknown names become KindAny.
func ParseKind(s string) Kind {
	switch k := Kind(s); k {
	case KindString, KindNumber, KindInteger, KindBoolean, KindArray, KindObject:
		return k
	}
	return KindAny
}

const FormatDateTime = "date-time"

type Schema struct {
	// Ref is the raw `$ref` pointer. When set, the remaining fields are
	// normally empty and the schema must be resolved against Components.
	Ref string

	Kind        Kind
	Format      string
	Description string
	Properties  []Property // declaration order
	Required    []string
	Items       *Schema
	Enum        []any
	Example     any
	HasExample  bool // `example` is present, possibly as null
	Default     any
}

type Property struct {
	Name   string
	Schema *Schema
}

// IsRequired reports whether the named property is listed as required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// TypeName returns a short display name such as "string(date-time)",
// "array" or "$ref:Pet".
func (s *Schema) TypeName() string {
	switch {
	case s == nil:
		return "any"
	case s.Ref != "":
		if name, ok := strings.CutPrefix(s.Ref, SchemaRefPrefix); ok {
			return name
		}
		return s.Ref
	case s.Kind == KindAny:
		return "any"
	case s.Format != "":
		return string(s.Kind) + "(" + s.Format + ")"
	}
	return string(s.Kind)
}
