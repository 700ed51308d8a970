package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kolah/truffle/internal/model"
	"github.com/kolah/truffle/internal/resolver"
	"github.com/pb33f/libopenapi/orderedmap"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

const petstoreSpec = `
openapi: "3.0.3"
info:
  title: Petstore
  version: "1.2.0"
servers:
  - url: https://petstore.example.com/v1
tags:
  - name: pets
    description: Everything about pets
  - name: store
paths:
  /pets/{petId}:
    parameters:
      - $ref: '#/components/parameters/PetId'
      - name: trace
        in: header
        schema:
          type: string
    get:
      summary: Get a pet
      operationId: getPet
      tags: [pets]
      parameters:
        - name: trace
          in: header
          required: true
          schema:
            type: string
      responses:
        "200":
          description: A pet
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
        default:
          $ref: '#/components/responses/Error'
    delete:
      tags: [pets]
      responses:
        "204":
          description: Deleted
  /pets:
    post:
      operationId: createPet
      tags: [pets]
      deprecated: true
      requestBody:
        $ref: '#/components/requestBodies/NewPet'
      responses:
        "201":
          description: Created
    get:
      parameters:
        - name: limit
          in: query
          example: 20
          schema:
            type: integer
      responses:
        "200":
          description: List
          content:
            text/plain:
              schema:
                type: string
            application/problem+json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
components:
  parameters:
    PetId:
      name: petId
      in: path
      required: true
      schema:
        type: string
  requestBodies:
    NewPet:
      required: true
      content:
        application/json:
          schema:
            $ref: '#/components/schemas/Pet'
  responses:
    Error:
      description: Unexpected error
      content:
        application/json:
          schema:
            type: object
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
          example: Rex
        born:
          type: string
          format: date-time
        tags:
          type: array
          items:
            type: string
        owner:
          type: object
          example:
            zeta: 1
            alpha: two
`

func transform(t *testing.T, doc string) *model.Spec {
	t.Helper()
	result, err := LoadBytes([]byte(doc))
	require.NoError(t, err)
	return result.Spec
}

func TestTransform(t *testing.T) {
	spec := transform(t, petstoreSpec)

	require.Equal(t, "3.0.3", spec.OpenAPI)
	require.Equal(t, "Petstore", spec.Info.Title)
	require.Equal(t, "1.2.0", spec.Info.Version)
	require.Equal(t, "https://petstore.example.com/v1", spec.BaseURL())
	require.Equal(t, []model.Tag{{Name: "pets", Description: "Everything about pets"}, {Name: "store"}}, spec.Tags)

	require.Len(t, spec.Paths, 2)
	require.Equal(t, "/pets/{petId}", spec.Paths[0].Path)
	require.Equal(t, "/pets", spec.Paths[1].Path)
}

func TestTransformKeepsRefs(t *testing.T) {
	spec := transform(t, petstoreSpec)

	get := spec.Paths[0].Get
	require.NotNil(t, get)
	require.Equal(t, "getPet", get.ID)
	require.Equal(t, "#/components/schemas/Pet", get.Responses[0].Schema.Ref)

	param, ok := spec.Components.Parameters["PetId"]
	require.True(t, ok)
	require.Equal(t, "petId", param.Value.Name)
	require.Equal(t, model.LocationPath, param.Value.In)
	require.True(t, param.Value.Required)
}

func TestTransformInheritsPathParameters(t *testing.T) {
	spec := transform(t, petstoreSpec)

	get := spec.Paths[0].Get
	require.Len(t, get.Parameters, 2)
	require.Equal(t, "#/components/parameters/PetId", get.Parameters[0].Ref)
	require.Equal(t, "trace", get.Parameters[1].Value.Name)
	require.True(t, get.Parameters[1].Value.Required, "operation literal overrides path-level one")

	del := spec.Paths[0].Delete
	require.Len(t, del.Parameters, 2)
	require.False(t, del.Parameters[1].Value.Required)
}

func TestTransformFollowsBodyAndResponseRefs(t *testing.T) {
	spec := transform(t, petstoreSpec)

	post := spec.Paths[1].Post
	require.NotNil(t, post)
	require.True(t, post.Deprecated)
	require.NotNil(t, post.RequestBody)
	require.True(t, post.RequestBody.Required)
	require.Equal(t, "application/json", post.RequestBody.MediaType)
	require.Equal(t, "#/components/schemas/Pet", post.RequestBody.Schema.Ref)

	get := spec.Paths[0].Get
	require.Equal(t, "default", get.Responses[1].StatusCode)
	require.Equal(t, "Unexpected error", get.Responses[1].Description)
	require.Equal(t, model.KindObject, get.Responses[1].Schema.Kind)
}

func TestTransformPrefersJSONContent(t *testing.T) {
	spec := transform(t, petstoreSpec)

	list := spec.Paths[1].Get
	require.Equal(t, "application/problem+json", list.Responses[0].MediaType)
	require.Equal(t, model.KindArray, list.Responses[0].Schema.Kind)
	require.Equal(t, "#/components/schemas/Pet", list.Responses[0].Schema.Items.Ref)

	require.Equal(t, 20, list.Parameters[0].Value.Example)
}

func TestTransformSchema(t *testing.T) {
	spec := transform(t, petstoreSpec)

	pet := spec.Components.Schemas["Pet"]
	require.NotNil(t, pet)
	require.Equal(t, model.KindObject, pet.Kind)
	require.True(t, pet.IsRequired("name"))

	var names []string
	for _, p := range pet.Properties {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"name", "born", "tags", "owner"}, names)
	require.Equal(t, "Rex", pet.Properties[0].Schema.Example)
	require.Equal(t, model.FormatDateTime, pet.Properties[1].Schema.Format)
	require.Equal(t, model.KindString, pet.Properties[2].Schema.Items.Kind)

	owner, ok := pet.Properties[3].Schema.Example.(*orderedmap.Map[string, any])
	require.True(t, ok)
	var keys []string
	for k := range owner.FromOldest() {
		keys = append(keys, k)
	}
	require.Equal(t, []string{"zeta", "alpha"}, keys)
}

func TestTransformJSONDocument(t *testing.T) {
	doc := `{"openapi":"3.0.0","info":{"title":"J","version":"1"},
	"paths":{"/b":{"get":{"responses":{}}},"/a":{"patch":{"responses":{}}}},
	"components":{"schemas":{"S":{"type":["string","null"],"example":"2024-05-01T10:00:00Z"}}}}`

	spec := transform(t, doc)
	require.Equal(t, "/b", spec.Paths[0].Path)
	require.Equal(t, "/a", spec.Paths[1].Path)
	require.NotNil(t, spec.Paths[1].Patch)
	require.Equal(t, model.KindString, spec.Components.Schemas["S"].Kind)
	require.Equal(t, "2024-05-01T10:00:00Z", spec.Components.Schemas["S"].Example)
}

func TestTransformRejectsNonObject(t *testing.T) {
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`- a`), &doc))

	_, err := Transform(&doc)
	require.Error(t, err)
}

func TestTransformNullExample(t *testing.T) {
	spec := transform(t, `openapi: "3.0.0"
info:
  title: Nulls
  version: "1"
paths:
  /notes:
    get:
      parameters:
        - name: cursor
          in: query
          example: null
          schema:
            type: string
            example: abc
      responses: {}
components:
  schemas:
    Note:
      type: object
      example: null
      properties:
        text:
          type: string
`)

	cursor := spec.Paths[0].Get.Parameters[0].Value
	require.True(t, cursor.HasExample)
	require.Nil(t, cursor.Example)
	require.True(t, cursor.Schema.HasExample)

	note := spec.Components.Schemas["Note"]
	require.True(t, note.HasExample)
	require.Nil(t, note.Example)
	require.False(t, note.Properties[0].Schema.HasExample)
}

const unresolvedRefsSpec = `
openapi: "3.0.3"
info:
  title: Partial
  version: "1"
paths:
  /orders/{id}:
    get:
      parameters:
        - $ref: '#/components/parameters/Missing'
        - $ref: '#/components/parameters/OrderId'
        - $ref: 'common.yaml#/components/parameters/Trace'
      responses:
        "200":
          description: An order
          content:
            application/json:
              schema:
                $ref: 'common.yaml#/components/schemas/Order'
        "404":
          description: Not found
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Gone'
components:
  parameters:
    OrderId:
      name: id
      in: path
      required: true
      schema:
        type: string
`

func TestLoadBytesKeepsUnresolvedRefs(t *testing.T) {
	result, err := LoadBytes([]byte(unresolvedRefsSpec))
	require.NoError(t, err)

	get := result.Spec.Paths[0].Get
	require.Len(t, get.Parameters, 3)
	require.Equal(t, "#/components/parameters/Missing", get.Parameters[0].Ref)
	require.Equal(t, "common.yaml#/components/parameters/Trace", get.Parameters[2].Ref)
	require.Equal(t, "common.yaml#/components/schemas/Order", get.Responses[0].Schema.Ref)
	require.Equal(t, "#/components/schemas/Gone", get.Responses[1].Schema.Ref)

	params := resolver.ResolveParameters(result.Spec, get)
	require.Len(t, params, 1, "pointers that lead nowhere are dropped")
	require.Equal(t, "id", params[0].Name)

	order := resolver.ResolveSchema(result.Spec, get.Responses[0].Schema)
	require.Equal(t, "common.yaml#/components/schemas/Order", order.Ref)
}

func TestLoadFileWithExternalRef(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(unresolvedRefsSpec), 0644))

	result, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Partial", result.Spec.Info.Title)
	require.Equal(t, "common.yaml#/components/schemas/Order", result.Spec.Paths[0].Get.Responses[0].Schema.Ref)
}

func TestLoadBytesRejectsSwagger2(t *testing.T) {
	_, err := LoadBytes([]byte(`swagger: "2.0"
info:
  title: Old
  version: "1"
paths: {}
`))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestLoadBytesWarnsOn31(t *testing.T) {
	result, err := LoadBytes([]byte(`openapi: "3.1.0"
info:
  title: New
  version: "1"
paths: {}
`))
	require.NoError(t, err)
	require.Equal(t, "3.1.0", result.Version)
	require.Len(t, result.Warnings, 1)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petstoreSpec), 0644))

	result, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	require.Equal(t, path, result.Source)
	require.Equal(t, "3.0.3", result.Version)
	require.NotNil(t, result.Document)
	require.Empty(t, result.Warnings)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadURL(t *testing.T) {
	var accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		if r.URL.Path != "/openapi.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(petstoreSpec))
	}))
	defer srv.Close()

	result, err := Load(context.Background(), srv.URL+"/openapi.yaml", srv.Client())
	require.NoError(t, err)
	require.Equal(t, "Petstore", result.Spec.Info.Title)
	require.Contains(t, accept, "application/json")

	_, err = Load(context.Background(), srv.URL+"/missing.yaml", srv.Client())
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, http.StatusNotFound, loadErr.StatusCode)
	require.Contains(t, err.Error(), "HTTP 404")
}

func TestIsRemote(t *testing.T) {
	require.True(t, IsRemote("https://example.com/openapi.json"))
	require.True(t, IsRemote("http://localhost/openapi.json"))
	require.False(t, IsRemote("./openapi.json"))
}
