// Package resolver follows `$ref` pointers against a spec's components tables.
//
// Resolution is permissive: a pointer that does not match the expected
// `#/components/...` shape, or names a missing definition, is not an error.
// Schemas come back in their unresolved form and parameters are reported as
// absent. Every lookup is bounded by MaxHops so self-referencing chains
// terminate.
package resolver

import (
	"strings"

	"github.com/kolah/truffle/internal/model"
)

// MaxHops bounds how many `$ref` indirections a single resolution follows.
const MaxHops = 32

// ResolveSchema follows schema's `$ref` chain. The result is the first schema
// in the chain without a `$ref`, or the last one reached when a pointer cannot
// be followed or the hop budget runs out.
func ResolveSchema(spec *model.Spec, schema *model.Schema) *model.Schema {
	if spec == nil {
		return schema
	}
	for hops := 0; schema != nil && schema.Ref != "" && hops < MaxHops; hops++ {
		name, ok := strings.CutPrefix(schema.Ref, model.SchemaRefPrefix)
		if !ok {
			return schema
		}
		target, ok := spec.Components.Schemas[name]
		if !ok || target == nil {
			return schema
		}
		schema = target
	}
	return schema
}

// ResolveParameter returns the parameter an entry stands for. Unlike schemas,
// an unresolvable parameter reference yields false: without a target there is
// no name or location to work with.
func ResolveParameter(spec *model.Spec, p model.ParameterRef) (*model.Parameter, bool) {
	for hops := 0; hops <= MaxHops; hops++ {
		if p.Ref == "" {
			return p.Value, p.Value != nil
		}
		if spec == nil {
			return nil, false
		}
		name, ok := strings.CutPrefix(p.Ref, model.ParameterRefPrefix)
		if !ok {
			return nil, false
		}
		next, ok := spec.Components.Parameters[name]
		if !ok {
			return nil, false
		}
		p = next
	}
	return nil, false
}

// ResolveParameters resolves an operation's parameter list in declaration
// order, dropping entries that cannot be resolved.
func ResolveParameters(spec *model.Spec, op *model.Operation) []*model.Parameter {
	if op == nil {
		return nil
	}
	result := make([]*model.Parameter, 0, len(op.Parameters))
	for _, ref := range op.Parameters {
		if p, ok := ResolveParameter(spec, ref); ok {
			result = append(result, p)
		}
	}
	return result
}

// ParametersIn filters resolved parameters by location.
func ParametersIn(params []*model.Parameter, in model.ParameterLocation) []*model.Parameter {
	var result []*model.Parameter
	for _, p := range params {
		if p.In == in {
			result = append(result, p)
		}
	}
	return result
}
