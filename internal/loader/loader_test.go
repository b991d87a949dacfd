package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kolah/brunoapi/internal/model"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `openapi: 3.1.0
info:
  title: Minimal
  version: "1.0"
paths:
  /ping:
    get:
      operationId: ping
      responses:
        "200":
          description: pong
`

const minimalJSON = `{
  "openapi": "3.0.1",
  "info": {"title": "Minimal", "version": "1.0"},
  "paths": {}
}`

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/specs/api.yaml", []byte(minimalYAML), 0644))

	res, err := New(fs, nil).LoadFile("/specs/api.yaml")
	require.NoError(t, err)
	require.Equal(t, "3.1.0", res.Version)
	require.Equal(t, FormatYAML, res.Format)
	require.Equal(t, "/specs/api.yaml", res.Source)
	require.Empty(t, res.Warnings)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), nil).LoadFile("/nope.yaml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading spec file")
}

func TestLoadBytesWarnsOn30(t *testing.T) {
	res, err := LoadBytes([]byte(minimalJSON))
	require.NoError(t, err)
	require.Equal(t, FormatJSON, res.Format)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "3.0")
}

func TestLoadBytesRejectsSwagger(t *testing.T) {
	_, err := LoadBytes([]byte(`{"swagger": "2.0", "info": {"title": "Old", "version": "1"}, "paths": {}}`))
	require.Error(t, err)
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/openapi":
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write([]byte(minimalYAML))
		case "/openapi.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(minimalJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := New(afero.NewMemMapFs(), srv.Client())

	res, err := l.Load(context.Background(), srv.URL+"/openapi")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, res.Format)
	require.Equal(t, srv.URL+"/openapi", res.Source)

	res, err = l.Load(context.Background(), srv.URL+"/openapi.json")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, res.Format)

	_, err = l.Load(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		contentType string
		source      string
		want        string
	}{
		{"yaml content type", "{}", "application/x-yaml", "", FormatYAML},
		{"json content type", "a: b", "application/json; charset=utf-8", "", FormatJSON},
		{"yml suffix", "{}", "text/plain", "https://x/spec.yml?v=2", FormatYAML},
		{"json suffix", "a: b", "", "spec.json", FormatJSON},
		{"sniffed json", "  {\"openapi\": \"3.1.0\"}", "", "", FormatJSON},
		{"sniffed yaml", "openapi: 3.1.0", "", "", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, detectFormat([]byte(tt.data), tt.contentType, tt.source))
		})
	}
}

func TestTransform(t *testing.T) {
	doc := `openapi: 3.1.0
info:
  title: Shop
  description: Shop API
  version: "2"
servers:
  - url: https://shop.example.com
    description: Live
tags:
  - name: orders
    description: Order handling
paths:
  /orders/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema: {type: string}
    put:
      tags: [orders]
      summary: Update order
      parameters:
        - name: dryRun
          in: query
          example: true
          schema: {type: boolean}
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Order'
            examples:
              basic:
                value: {status: open}
      responses:
        "200": {description: ok}
      security:
        - key: []
components:
  securitySchemes:
    key:
      type: apiKey
      in: header
      name: X-Key
  schemas:
    Order:
      type: [object, "null"]
      required: [status]
      properties:
        status:
          type: string
          enum: [open, closed]
`
	res, err := LoadBytes([]byte(doc))
	require.NoError(t, err)
	spec, err := Transform(res)
	require.NoError(t, err)

	require.Equal(t, model.Info{Title: "Shop", Description: "Shop API", Version: "2"}, spec.Info)
	require.Equal(t, []model.Server{{URL: "https://shop.example.com", Description: "Live"}}, spec.Servers)
	require.Equal(t, "Order handling", spec.TagByName("orders").Description)
	require.Len(t, spec.Operations, 1)

	op := spec.Operations[0]
	require.Equal(t, model.MethodPut, op.Method)
	require.Equal(t, "/orders/{id}", op.Path)
	require.Equal(t, []string{"orders"}, op.Tags)
	require.Len(t, op.Parameters, 2)
	require.Equal(t, "id", op.Parameters[0].Name)
	require.True(t, op.Parameters[0].Required)
	require.Equal(t, "dryRun", op.Parameters[1].Name)
	require.NotNil(t, op.Parameters[1].Example)
	require.Equal(t, []string{"key"}, op.Security)

	body := op.RequestBody.JSONContent()
	require.NotNil(t, body)
	require.True(t, op.RequestBody.Required)
	require.Equal(t, "#/components/schemas/Order", body.Schema.Ref)
	require.NotNil(t, body.Example)

	order := spec.SchemaByRef("#/components/schemas/Order")
	require.NotNil(t, order)
	require.Equal(t, model.TypeObject, order.Type)
	require.True(t, order.Nullable)
	require.Equal(t, []string{"status"}, order.Required)
	require.Len(t, order.Property("status").Enum, 2)

	require.Equal(t, []model.SecurityScheme{{Name: "key", Type: model.SecurityTypeAPIKey, In: "header", KeyName: "X-Key"}}, spec.Security)
}

func TestTransformSecurityFallsBackToDocument(t *testing.T) {
	doc := `openapi: 3.1.0
info: {title: Keys, version: "1"}
security:
  - header: []
  - query: []
    header: []
paths:
  /a:
    get:
      responses:
        "200": {description: ok}
  /b:
    get:
      security:
        - query: []
      responses:
        "200": {description: ok}
components:
  securitySchemes:
    header: {type: apiKey, in: header, name: X-Key}
    query: {type: apiKey, in: query, name: key}
`
	res, err := LoadBytes([]byte(doc))
	require.NoError(t, err)
	spec, err := Transform(res)
	require.NoError(t, err)

	require.Len(t, spec.Operations, 2)
	require.Equal(t, []string{"header", "query"}, spec.Operations[0].Security)
	require.Equal(t, []string{"query"}, spec.Operations[1].Security)
	require.Equal(t, "key", spec.SecuritySchemeByName("query").KeyName)
}
