package loader

import (
	"errors"
	"strings"

	"github.com/kolah/truffle/internal/model"
	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"
)

const (
	requestBodyRefPrefix = "#/components/requestBodies/"
	responseRefPrefix    = "#/components/responses/"
)

// transformer walks the document tree libopenapi parsed. Unlike the
// libopenapi high-level model it keeps `$ref` pointers in place, including
// ones that point nowhere, so resolution stays an explicit step against the
// components tables.
type transformer struct {
	requestBodies *yaml.Node
	responses     *yaml.Node
}

// Transform converts the root node of a JSON or YAML OpenAPI document into the
// structural model.
func Transform(node *yaml.Node) (*model.Spec, error) {
	root := deref(node)
	if root != nil && root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = deref(root.Content[0])
	}
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, errors.New("document root is not an object")
	}

	components := lookup(root, "components")
	t := &transformer{
		requestBodies: lookup(components, "requestBodies"),
		responses:     lookup(components, "responses"),
	}

	spec := &model.Spec{
		OpenAPI:    scalar(lookup(root, "openapi")),
		Info:       transformInfo(lookup(root, "info")),
		Servers:    transformServers(lookup(root, "servers")),
		Tags:       transformTags(lookup(root, "tags")),
		Components: t.transformComponents(components),
	}

	forEachPair(lookup(root, "paths"), func(path string, item *yaml.Node) {
		spec.Paths = append(spec.Paths, t.transformPath(path, item))
	})

	return spec, nil
}

func transformInfo(node *yaml.Node) model.Info {
	return model.Info{
		Title:       scalar(lookup(node, "title")),
		Description: scalar(lookup(node, "description")),
		Version:     scalar(lookup(node, "version")),
	}
}

func transformServers(node *yaml.Node) []model.Server {
	var result []model.Server
	forEachItem(node, func(s *yaml.Node) {
		result = append(result, model.Server{
			URL:         scalar(lookup(s, "url")),
			Description: scalar(lookup(s, "description")),
		})
	})
	return result
}

func transformTags(node *yaml.Node) []model.Tag {
	var result []model.Tag
	forEachItem(node, func(t *yaml.Node) {
		result = append(result, model.Tag{
			Name:        scalar(lookup(t, "name")),
			Description: scalar(lookup(t, "description")),
		})
	})
	return result
}

func (t *transformer) transformComponents(node *yaml.Node) model.Components {
	c := model.Components{
		Schemas:    make(map[string]*model.Schema),
		Parameters: make(map[string]model.ParameterRef),
	}
	forEachPair(lookup(node, "schemas"), func(name string, s *yaml.Node) {
		c.Schemas[name] = transformSchema(s)
	})
	forEachPair(lookup(node, "parameters"), func(name string, p *yaml.Node) {
		c.Parameters[name] = transformParameterRef(p)
	})
	return c
}

func (t *transformer) transformPath(path string, node *yaml.Node) model.PathItem {
	item := model.PathItem{Path: path}

	var shared []model.ParameterRef
	forEachItem(lookup(node, "parameters"), func(p *yaml.Node) {
		shared = append(shared, transformParameterRef(p))
	})

	for _, m := range model.Methods {
		opNode := lookup(node, strings.ToLower(string(m)))
		if opNode == nil || opNode.Kind != yaml.MappingNode {
			continue
		}
		item.SetOperation(m, t.transformOperation(opNode, shared))
	}

	return item
}

func (t *transformer) transformOperation(node *yaml.Node, shared []model.ParameterRef) *model.Operation {
	op := &model.Operation{
		ID:          scalar(lookup(node, "operationId")),
		Summary:     scalar(lookup(node, "summary")),
		Description: scalar(lookup(node, "description")),
		Tags:        stringList(lookup(node, "tags")),
		Deprecated:  boolean(lookup(node, "deprecated")),
	}

	var own []model.ParameterRef
	forEachItem(lookup(node, "parameters"), func(p *yaml.Node) {
		own = append(own, transformParameterRef(p))
	})
	op.Parameters = inheritParameters(shared, own)

	if rb := t.followRef(lookup(node, "requestBody"), requestBodyRefPrefix, t.requestBodies); rb != nil {
		mediaType, schema := selectContent(lookup(rb, "content"))
		op.RequestBody = &model.RequestBody{
			Description: scalar(lookup(rb, "description")),
			Required:    boolean(lookup(rb, "required")),
			MediaType:   mediaType,
			Schema:      schema,
		}
	}

	forEachPair(lookup(node, "responses"), func(code string, r *yaml.Node) {
		r = t.followRef(r, responseRefPrefix, t.responses)
		mediaType, schema := selectContent(lookup(r, "content"))
		op.Responses = append(op.Responses, model.Response{
			StatusCode:  code,
			Description: scalar(lookup(r, "description")),
			MediaType:   mediaType,
			Schema:      schema,
		})
	})

	return op
}

// inheritParameters prepends path-level parameters that the operation does not
// override with a literal of the same name and location.
func inheritParameters(shared, own []model.ParameterRef) []model.ParameterRef {
	if len(shared) == 0 {
		return own
	}
	overridden := make(map[string]bool)
	for _, p := range own {
		if p.Value != nil {
			overridden[string(p.Value.In)+":"+p.Value.Name] = true
		}
	}
	var result []model.ParameterRef
	for _, p := range shared {
		if p.Value != nil && overridden[string(p.Value.In)+":"+p.Value.Name] {
			continue
		}
		result = append(result, p)
	}
	return append(result, own...)
}

// followRef resolves a requestBody or response `$ref` one hop against the
// raw components node. Unknown pointers yield the node unchanged.
func (t *transformer) followRef(node *yaml.Node, prefix string, table *yaml.Node) *yaml.Node {
	ref := scalar(lookup(node, "$ref"))
	if ref == "" {
		return node
	}
	name, ok := strings.CutPrefix(ref, prefix)
	if !ok {
		return node
	}
	if target := lookup(table, name); target != nil {
		return target
	}
	return node
}

// selectContent picks the first JSON media type, falling back to the first
// declared one.
func selectContent(content *yaml.Node) (string, *model.Schema) {
	var fallback string
	var fallbackNode *yaml.Node
	var found string
	var foundNode *yaml.Node
	forEachPair(content, func(mediaType string, mt *yaml.Node) {
		if found != "" {
			return
		}
		if model.IsJSONMediaType(mediaType) {
			found, foundNode = mediaType, mt
			return
		}
		if fallback == "" {
			fallback, fallbackNode = mediaType, mt
		}
	})
	if found == "" {
		found, foundNode = fallback, fallbackNode
	}
	if found == "" {
		return "", nil
	}
	return found, transformSchema(lookup(foundNode, "schema"))
}

func transformParameterRef(node *yaml.Node) model.ParameterRef {
	if ref := scalar(lookup(node, "$ref")); ref != "" {
		return model.ParameterRef{Ref: ref}
	}
	return model.ParameterRef{Value: transformParameter(node)}
}

func transformParameter(node *yaml.Node) *model.Parameter {
	p := &model.Parameter{
		Name:        scalar(lookup(node, "name")),
		In:          model.ParameterLocation(strings.ToLower(scalar(lookup(node, "in")))),
		Description: scalar(lookup(node, "description")),
		Required:    boolean(lookup(node, "required")),
		Schema:      transformSchema(lookup(node, "schema")),
	}
	if ex := lookup(node, "example"); ex != nil {
		p.Example, p.HasExample = decodeValue(ex), true
	}
	return p
}

func transformSchema(node *yaml.Node) *model.Schema {
	node = deref(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	if ref := scalar(lookup(node, "$ref")); ref != "" {
		return &model.Schema{
			Ref:         ref,
			Description: scalar(lookup(node, "description")),
		}
	}

	schema := &model.Schema{
		Kind:        schemaKind(lookup(node, "type")),
		Format:      scalar(lookup(node, "format")),
		Description: scalar(lookup(node, "description")),
		Required:    stringList(lookup(node, "required")),
		Items:       transformSchema(lookup(node, "items")),
	}

	forEachPair(lookup(node, "properties"), func(name string, p *yaml.Node) {
		schema.Properties = append(schema.Properties, model.Property{
			Name:   name,
			Schema: transformSchema(p),
		})
	})

	if ex := lookup(node, "example"); ex != nil {
		schema.Example, schema.HasExample = decodeValue(ex), true
	}
	if def := lookup(node, "default"); def != nil {
		schema.Default = decodeValue(def)
	}
	forEachItem(lookup(node, "enum"), func(e *yaml.Node) {
		schema.Enum = append(schema.Enum, decodeValue(e))
	})

	return schema
}

// schemaKind reads `type`, which OpenAPI 3.1 allows to be a list; the first
// non-null entry wins.
func schemaKind(node *yaml.Node) model.Kind {
	node = deref(node)
	if node == nil {
		return model.KindAny
	}
	if node.Kind == yaml.SequenceNode {
		for _, t := range node.Content {
			if v := scalar(t); v != "null" {
				return model.ParseKind(v)
			}
		}
		return model.KindAny
	}
	return model.ParseKind(scalar(node))
}

// decodeValue converts a literal (example, default, enum entry) into plain Go
// values. Mappings become ordered maps so declaration order survives.
func decodeValue(node *yaml.Node) any {
	node = deref(node)
	if node == nil {
		return nil
	}
	switch node.Kind {
	case yaml.MappingNode:
		m := orderedmap.New[string, any]()
		forEachPair(node, func(k string, v *yaml.Node) {
			m.Set(k, decodeValue(v))
		})
		return m
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			list = append(list, decodeValue(item))
		}
		return list
	case yaml.ScalarNode:
		if node.ShortTag() == "!!timestamp" {
			return node.Value
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return node.Value
		}
		return v
	}
	return nil
}

func deref(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func lookup(node *yaml.Node, key string) *yaml.Node {
	node = deref(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return deref(node.Content[i+1])
		}
	}
	return nil
}

func forEachPair(node *yaml.Node, fn func(key string, value *yaml.Node)) {
	node = deref(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		fn(node.Content[i].Value, deref(node.Content[i+1]))
	}
}

func forEachItem(node *yaml.Node, fn func(item *yaml.Node)) {
	node = deref(node)
	if node == nil || node.Kind != yaml.SequenceNode {
		return
	}
	for _, item := range node.Content {
		fn(deref(item))
	}
}

func scalar(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}

func boolean(node *yaml.Node) bool {
	return scalar(node) == "true"
}

func stringList(node *yaml.Node) []string {
	var result []string
	forEachItem(node, func(item *yaml.Node) {
		if v := scalar(item); v != "" {
			result = append(result, v)
		}
	})
	return result
}
