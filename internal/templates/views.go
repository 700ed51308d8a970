package templates

import (
	"fmt"
	"strings"

	"github.com/kolah/truffle/internal/example"
	"github.com/kolah/truffle/internal/model"
	"github.com/kolah/truffle/internal/request"
	"github.com/kolah/truffle/internal/resolver"
)

// EndpointView is the data behind endpoint.tmpl.
type EndpointView struct {
	Method          model.Method
	Path            string
	Summary         string
	Description     string
	Deprecated      bool
	Tags            []string
	Parameters      []ParameterView
	RequestBody     *BodyView
	Responses       []model.Response
	ResponseExample *BodyView
	Curl            string
}

type ParameterView struct {
	Name        string
	In          model.ParameterLocation
	Required    bool
	Type        string
	Description string
	Example     string
	Enum        string
}

type BodyView struct {
	Status    string
	MediaType string
	Example   string
	Fields    []FieldView
}

// FieldView is one top-level property of a request body object.
type FieldView struct {
	Name     string
	Type     string
	Required bool
	Enum     string
}

// NewEndpointView collects everything shown for ep. req is the request built
// from the current input and only feeds the curl rendering.
func NewEndpointView(spec *model.Spec, ep model.Endpoint, req *request.Request) (EndpointView, error) {
	op := ep.Operation
	v := EndpointView{
		Method:      ep.Method,
		Path:        ep.Path,
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
		Tags:        op.Tags,
		Responses:   op.Responses,
		Curl:        request.Curl(req),
	}

	for _, p := range resolver.ResolveParameters(spec, op) {
		pv := ParameterView{
			Name:        p.Name,
			In:          p.In,
			Required:    p.Required,
			Type:        resolver.ResolveSchema(spec, p.Schema).TypeName(),
			Description: p.Description,
		}
		if ex, ok := example.ParameterExample(spec, p); ok {
			rendered, err := example.Marshal(ex)
			if err != nil {
				return EndpointView{}, fmt.Errorf("rendering example for parameter %s: %w", p.Name, err)
			}
			pv.Example = string(rendered)
		}
		enum, err := enumList(resolver.ResolveSchema(spec, p.Schema))
		if err != nil {
			return EndpointView{}, fmt.Errorf("rendering values for parameter %s: %w", p.Name, err)
		}
		pv.Enum = enum
		v.Parameters = append(v.Parameters, pv)
	}

	if body, ok := example.RequestBody(spec, op); ok {
		rendered, err := example.MarshalIndent(body, "  ")
		if err != nil {
			return EndpointView{}, fmt.Errorf("rendering example request body: %w", err)
		}
		v.RequestBody = &BodyView{MediaType: op.RequestBody.MediaType, Example: string(rendered)}

		schema := resolver.ResolveSchema(spec, op.RequestBody.Schema)
		for _, p := range schema.Properties {
			prop := resolver.ResolveSchema(spec, p.Schema)
			enum, err := enumList(prop)
			if err != nil {
				return EndpointView{}, fmt.Errorf("rendering values for body field %s: %w", p.Name, err)
			}
			v.RequestBody.Fields = append(v.RequestBody.Fields, FieldView{
				Name:     p.Name,
				Type:     prop.TypeName(),
				Required: schema.IsRequired(p.Name),
				Enum:     enum,
			})
		}
	}

	if resp, ok := example.SelectResponse(op, ""); ok && resp.Schema != nil {
		rendered, err := example.MarshalIndent(example.Synthesize(spec, resp.Schema), "  ")
		if err != nil {
			return EndpointView{}, fmt.Errorf("rendering example response: %w", err)
		}
		v.ResponseExample = &BodyView{Status: resp.StatusCode, MediaType: resp.MediaType, Example: string(rendered)}
	}

	return v, nil
}

// enumList renders the allowed values of schema as a comma separated list of
// JSON literals.
func enumList(schema *model.Schema) (string, error) {
	if schema == nil || len(schema.Enum) == 0 {
		return "", nil
	}
	values := make([]string, 0, len(schema.Enum))
	for _, e := range schema.Enum {
		rendered, err := example.Marshal(e)
		if err != nil {
			return "", err
		}
		values = append(values, string(rendered))
	}
	return strings.Join(values, ", "), nil
}
