// Package openapi assembles, renders and validates the OpenAPI document
// produced from a collection.
package openapi

import (
	"fmt"
	"strings"

	"github.com/kolah/brunoapi/internal/model"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"
)

const (
	Version         = "3.0.0"
	SchemaRefPrefix = "#/components/schemas/"
	JSONMediaType   = "application/json"
)

func NewDocument(title, version, serverURL string) *v3.Document {
	return &v3.Document{
		Version: Version,
		Info: &base.Info{
			Title:   title,
			Version: version,
		},
		Servers: []*v3.Server{{URL: serverURL}},
		Paths: &v3.Paths{
			PathItems: orderedmap.New[string, *v3.PathItem](),
		},
		Components: &v3.Components{
			Schemas: orderedmap.New[string, *base.SchemaProxy](),
		},
	}
}

// SetOperation stores op under path and method, replacing whatever was there.
// It reports whether an operation was replaced.
func SetOperation(doc *v3.Document, path, method string, op *v3.Operation) (bool, error) {
	item, ok := doc.Paths.PathItems.Get(path)
	if !ok {
		item = &v3.PathItem{}
	}

	var slot **v3.Operation
	switch strings.ToLower(method) {
	case "get":
		slot = &item.Get
	case "put":
		slot = &item.Put
	case "post":
		slot = &item.Post
	case "delete":
		slot = &item.Delete
	case "options":
		slot = &item.Options
	case "head":
		slot = &item.Head
	case "patch":
		slot = &item.Patch
	case "trace":
		slot = &item.Trace
	default:
		return false, fmt.Errorf("method %q cannot be expressed in OpenAPI 3.0", method)
	}

	replaced := *slot != nil
	*slot = op
	if !ok {
		doc.Paths.PathItems.Set(path, item)
	}
	return replaced, nil
}

// Operations returns the operations of item in the fixed OpenAPI method order.
func Operations(item *v3.PathItem) []*v3.Operation {
	var ops []*v3.Operation
	for _, op := range []*v3.Operation{
		item.Get, item.Put, item.Post, item.Delete,
		item.Options, item.Head, item.Patch, item.Trace,
	} {
		if op != nil {
			ops = append(ops, op)
		}
	}
	return ops
}

// Counts returns the number of paths and operations in doc.
func Counts(doc *v3.Document) (paths, operations int) {
	if doc.Paths == nil || doc.Paths.PathItems == nil {
		return 0, 0
	}
	for _, item := range doc.Paths.PathItems.FromOldest() {
		paths++
		operations += len(Operations(item))
	}
	return paths, operations
}

func AddSchema(doc *v3.Document, name string, s *model.Schema) {
	if doc.Components == nil {
		doc.Components = &v3.Components{}
	}
	if doc.Components.Schemas == nil {
		doc.Components.Schemas = orderedmap.New[string, *base.SchemaProxy]()
	}
	doc.Components.Schemas.Set(name, SchemaProxy(s))
}

// Finalize drops the components section when it holds no schemas.
func Finalize(doc *v3.Document) {
	if doc.Components != nil && (doc.Components.Schemas == nil || doc.Components.Schemas.Len() == 0) {
		doc.Components = nil
	}
}

// SchemaProxy converts a model schema into its libopenapi representation.
func SchemaProxy(s *model.Schema) *base.SchemaProxy {
	if s == nil {
		return base.CreateSchemaProxy(&base.Schema{})
	}
	if s.Ref != "" {
		return base.CreateSchemaProxyRef(s.Ref)
	}

	bs := &base.Schema{
		Description: s.Description,
		Format:      s.Format,
		Required:    s.Required,
	}
	if s.Type != "" {
		bs.Type = []string{string(s.Type)}
	}
	if s.Items != nil {
		bs.Items = &base.DynamicValue[*base.SchemaProxy, bool]{A: SchemaProxy(s.Items)}
	}
	if len(s.Properties) > 0 {
		props := orderedmap.New[string, *base.SchemaProxy]()
		for _, p := range s.Properties {
			props.Set(p.Name, SchemaProxy(p.Schema))
		}
		bs.Properties = props
	}
	return base.CreateSchemaProxy(bs)
}

func stringSchema() *base.SchemaProxy {
	return base.CreateSchemaProxy(&base.Schema{Type: []string{string(model.TypeString)}})
}

func PathParameter(name string) *v3.Parameter {
	required := true
	return &v3.Parameter{
		Name:     name,
		In:       string(model.LocationPath),
		Required: &required,
		Schema:   stringSchema(),
	}
}

func QueryParameter(name string) *v3.Parameter {
	required := false
	return &v3.Parameter{
		Name:     name,
		In:       string(model.LocationQuery),
		Required: &required,
		Schema:   stringSchema(),
	}
}

// JSONRequestBody references the component schema called schemaName and
// carries example as the literal request example.
func JSONRequestBody(schemaName string, example *yaml.Node) *v3.RequestBody {
	content := orderedmap.New[string, *v3.MediaType]()
	content.Set(JSONMediaType, &v3.MediaType{
		Schema:  base.CreateSchemaProxyRef(SchemaRefPrefix + schemaName),
		Example: example,
	})
	return &v3.RequestBody{Content: content}
}

func DefaultResponses() *v3.Responses {
	codes := orderedmap.New[string, *v3.Response]()
	codes.Set("200", &v3.Response{Description: "Successful response"})
	return &v3.Responses{Codes: codes}
}

// Render serializes doc as indented JSON.
func Render(doc *v3.Document) ([]byte, error) {
	data, err := doc.RenderJSON("  ")
	if err != nil {
		return nil, fmt.Errorf("rendering OpenAPI document: %w", err)
	}
	return data, nil
}
