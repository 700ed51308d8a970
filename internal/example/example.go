// Package example synthesizes representative JSON values from schemas.
//
// The output is illustrative rather than a valid instance: enum, required and
// numeric range constraints are not applied. Objects are returned as ordered
// maps so property declaration order survives rendering.
package example

import (
	"strings"

	"github.com/kolah/truffle/internal/model"
	"github.com/kolah/truffle/internal/resolver"
	"github.com/pb33f/libopenapi/orderedmap"
)

// DateTime is the instant used for `format: date-time` string properties.
const DateTime = "2024-01-01T00:00:00Z"

// MaxDepth bounds nesting through array items so self-referencing array
// schemas terminate.
const MaxDepth = 16

// Object is an ordered JSON object.
type Object = orderedmap.Map[string, any]

func newObject() *Object {
	return orderedmap.New[string, any]()
}

// Synthesize produces an example value for schema. It is pure: the same spec
// and schema always produce a structurally identical value.
func Synthesize(spec *model.Spec, schema *model.Schema) any {
	return synthesize(spec, schema, MaxDepth)
}

func synthesize(spec *model.Spec, schema *model.Schema, depth int) any {
	if schema == nil || depth <= 0 {
		return newObject()
	}

	// An unresolvable $ref falls through as an untyped schema.
	schema = resolver.ResolveSchema(spec, schema)

	if schema.HasExample {
		return schema.Example
	}

	switch schema.Kind {
	case model.KindArray:
		if schema.Items == nil {
			return []any{newObject()}
		}
		return []any{synthesize(spec, schema.Items, depth-1)}
	case model.KindObject:
		if len(schema.Properties) > 0 {
			obj := newObject()
			for _, p := range schema.Properties {
				obj.Set(p.Name, propertyValue(spec, p.Schema))
			}
			return obj
		}
	}

	return newObject()
}

// propertyValue is the shallow default used for object members. Nested
// arrays and objects are not expanded.
func propertyValue(spec *model.Spec, schema *model.Schema) any {
	schema = resolver.ResolveSchema(spec, schema)
	if schema == nil {
		return nil
	}
	if schema.HasExample {
		return schema.Example
	}

	switch schema.Kind {
	case model.KindString:
		if schema.Format == model.FormatDateTime {
			return DateTime
		}
		return "string"
	case model.KindNumber, model.KindInteger:
		return 0
	case model.KindBoolean:
		return true
	case model.KindArray:
		return []any{}
	default:
		return nil
	}
}

// RequestBody synthesizes the example body for op. It reports false when the
// operation declares no body schema.
func RequestBody(spec *model.Spec, op *model.Operation) (any, bool) {
	if op == nil || op.RequestBody == nil || op.RequestBody.Schema == nil {
		return nil, false
	}
	return Synthesize(spec, op.RequestBody.Schema), true
}

// Response synthesizes an example for one of op's responses. An empty status
// selects the first 2xx response, falling back to the first declared one.
// A status that is not declared falls back to "default".
func Response(spec *model.Spec, op *model.Operation, status string) (any, bool) {
	resp, ok := SelectResponse(op, status)
	if !ok || resp.Schema == nil {
		return nil, false
	}
	return Synthesize(spec, resp.Schema), true
}

// SelectResponse picks a response as described on Response.
func SelectResponse(op *model.Operation, status string) (model.Response, bool) {
	if op == nil || len(op.Responses) == 0 {
		return model.Response{}, false
	}
	if status == "" {
		for _, r := range op.Responses {
			if strings.HasPrefix(r.StatusCode, "2") {
				return r, true
			}
		}
		return op.Responses[0], true
	}
	for _, r := range op.Responses {
		if strings.EqualFold(r.StatusCode, status) {
			return r, true
		}
	}
	for _, r := range op.Responses {
		if r.StatusCode == "default" {
			return r, true
		}
	}
	return model.Response{}, false
}

// ParameterExample returns a documented example for p: its own example, then
// its schema's example, then the schema default. It reports false when none
// is documented. A documented null example is returned as nil, true.
func ParameterExample(spec *model.Spec, p *model.Parameter) (any, bool) {
	if p == nil {
		return nil, false
	}
	if p.HasExample {
		return p.Example, true
	}
	schema := resolver.ResolveSchema(spec, p.Schema)
	if schema == nil {
		return nil, false
	}
	if schema.HasExample {
		return schema.Example, true
	}
	return schema.Default, schema.Default != nil
}
