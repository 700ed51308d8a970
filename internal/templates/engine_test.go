package templates

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/kolah/truffle/internal/model"
	"github.com/kolah/truffle/internal/request"
	builtin "github.com/kolah/truffle/templates"
)

func TestEngineCustomDirOverrides(t *testing.T) {
	embedded := fstest.MapFS{
		"greeting.tmpl": {Data: []byte("hello {{.}}")},
		"farewell.tmpl": {Data: []byte("bye {{.}}")},
		"README.md":     {Data: []byte("ignored")},
	}
	customDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(customDir, "greeting.tmpl"), []byte("hi {{upper .}}"), 0644))

	engine, err := NewEngine(embedded, customDir, Funcs())
	require.NoError(t, err)

	out, err := engine.Execute("greeting.tmpl", "bob")
	require.NoError(t, err)
	require.Equal(t, "hi BOB", out)

	out, err = engine.Execute("farewell.tmpl", "bob")
	require.NoError(t, err)
	require.Equal(t, "bye bob", out)

	_, err = engine.Execute("README.md", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "template not found")
}

func TestEngineMissingCustomDir(t *testing.T) {
	embedded := fstest.MapFS{"a.tmpl": {Data: []byte("a")}}

	_, err := NewEngine(embedded, filepath.Join(t.TempDir(), "nope"), Funcs())
	require.NoError(t, err)
}

func TestEngineParseError(t *testing.T) {
	embedded := fstest.MapFS{"bad.tmpl": {Data: []byte("{{.Broken")}}

	_, err := NewEngine(embedded, "", Funcs())
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad.tmpl")
}

func pingSpec() (*model.Spec, model.Endpoint) {
	spec := &model.Spec{
		Tags: []model.Tag{{Name: "Health", Description: "Service status"}},
		Components: model.Components{Schemas: map[string]*model.Schema{
			"Pong": {Kind: model.KindObject, Properties: []model.Property{
				{Name: "ok", Schema: &model.Schema{Kind: model.KindBoolean}},
			}},
		}},
	}
	op := &model.Operation{
		Summary:     "Liveness check",
		Description: "Returns ok when the service is up.",
		Tags:        []string{"Health"},
		Parameters: []model.ParameterRef{
			{Value: &model.Parameter{Name: "verbose", In: model.LocationQuery, Schema: &model.Schema{Kind: model.KindBoolean}, Example: false, HasExample: true}},
		},
		Responses: []model.Response{
			{StatusCode: "200", Description: "ok", MediaType: "application/json", Schema: &model.Schema{Ref: "#/components/schemas/Pong"}},
			{StatusCode: "503", Description: "down"},
		},
	}
	spec.Paths = []model.PathItem{{Path: "/ping", Get: op}}
	return spec, model.Endpoint{Path: "/ping", Method: model.MethodGet, Operation: op}
}

func TestRenderEndpoint(t *testing.T) {
	engine, err := NewEngine(builtin.FS, "", Funcs())
	require.NoError(t, err)

	spec, ep := pingSpec()
	req := request.Build(spec, ep, "", request.Input{}, request.Credential{})
	view, err := NewEndpointView(spec, ep, req)
	require.NoError(t, err)

	require.Len(t, view.Parameters, 1)
	require.Equal(t, "boolean", view.Parameters[0].Type)
	require.Equal(t, "false", view.Parameters[0].Example)
	require.Nil(t, view.RequestBody)
	require.NotNil(t, view.ResponseExample)
	require.Equal(t, "200", view.ResponseExample.Status)
	require.Equal(t, "{\n  \"ok\": true\n}", view.ResponseExample.Example)

	out, err := engine.Execute("endpoint.tmpl", view)
	require.NoError(t, err)

	expected := `GET /ping

Liveness check

Returns ok when the service is up.

Tags: Health

Parameters:
  verbose  query  boolean  e.g. false

Responses:
  200  ok
  503  down

Example response 200 (application/json):
  {
    "ok": true
  }

Try it:
  curl -X GET /ping
`
	require.Equal(t, expected, out)
}

func TestRenderEndpointWithBody(t *testing.T) {
	engine, err := NewEngine(builtin.FS, "", Funcs())
	require.NoError(t, err)

	op := &model.Operation{
		Deprecated: true,
		Parameters: []model.ParameterRef{
			{Value: &model.Parameter{Name: "id", In: model.LocationPath, Required: true, Description: "Item identifier", Schema: &model.Schema{Kind: model.KindString}}},
			{Value: &model.Parameter{Name: "mode", In: model.LocationQuery, Schema: &model.Schema{Kind: model.KindString, Enum: []any{"fast", "safe"}}}},
			{Value: &model.Parameter{Name: "trace", In: model.LocationHeader, HasExample: true, Schema: &model.Schema{Kind: model.KindString, Example: "abc", HasExample: true}}},
		},
		RequestBody: &model.RequestBody{MediaType: "application/json", Schema: &model.Schema{Kind: model.KindObject, Required: []string{"name"}, Properties: []model.Property{
			{Name: "name", Schema: &model.Schema{Kind: model.KindString}},
			{Name: "size", Schema: &model.Schema{Kind: model.KindInteger, Example: 3, HasExample: true, Enum: []any{1, 3}}},
		}}},
	}
	spec := &model.Spec{}
	ep := model.Endpoint{Path: "/items/{id}", Method: model.MethodPut, Operation: op}
	req := request.Build(spec, ep, "http://h", request.Input{Values: map[string]string{"id": "1"}, Body: `{"name":"x"}`}, request.Credential{})

	view, err := NewEndpointView(spec, ep, req)
	require.NoError(t, err)
	out, err := engine.Execute("endpoint.tmpl", view)
	require.NoError(t, err)

	require.Contains(t, out, "PUT /items/{id}  [deprecated]\n")
	require.Contains(t, out, "  id  path, required  string\n      Item identifier\n")
	require.Contains(t, out, "  mode  query  string  one of: \"fast\", \"safe\"\n")
	require.Contains(t, out, "  trace  header  string  e.g. null\n", "a documented null example is kept")
	require.Contains(t, out, "Request body (application/json):\n  {\n    \"name\": \"string\",\n    \"size\": 3\n  }\n")
	require.Contains(t, out, "Body fields:\n  name  string, required\n  size  integer  one of: 1, 3\n")
	require.NotContains(t, out, "Responses:")
	require.Contains(t, out, "-d '{\"name\":\"x\"}'")
}

func TestRenderEndpoints(t *testing.T) {
	engine, err := NewEngine(builtin.FS, "", Funcs())
	require.NoError(t, err)

	groups := []model.TagGroup{
		{Name: "Health", Description: "Service status", Endpoints: []model.Endpoint{
			{Path: "/ping", Method: model.MethodGet, Operation: &model.Operation{Summary: "Liveness check"}},
		}},
		{Name: "Other", Endpoints: []model.Endpoint{
			{Path: "/items/{id}", Method: model.MethodDelete, Operation: &model.Operation{}},
		}},
	}

	out, err := engine.Execute("endpoints.tmpl", groups)
	require.NoError(t, err)
	require.Equal(t, "Health  Service status\n  GET     /ping  Liveness check\n\nOther\n  DELETE  /items/{id}\n", out)
}

func TestFuncs(t *testing.T) {
	require.Equal(t, "one two\nthree", Wrap(8, " one two three "))
	require.Equal(t, "  a\n\n  b", Indent(2, "a\n\nb"))
	require.Equal(t, "GET    ", Pad(7, "GET"))
	require.Equal(t, "DELETE!", Pad(3, "DELETE!"))
	require.Equal(t, "1.5 kB", Bytes(1500))
	require.Equal(t, "0 B", Bytes(-1))
}
