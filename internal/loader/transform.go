package loader

import (
	"slices"
	"strings"

	"github.com/kolah/brunoapi/internal/model"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"go.yaml.in/yaml/v4"
)

type transformer struct {
	componentSchemas map[*base.Schema]string
	security         []string
}

// Transform converts a loaded document into the internal model. Component
// schemas are referenced, not inlined, wherever the document reuses them.
func Transform(result *Result) (*model.Spec, error) {
	doc := result.Document.Model

	t := &transformer{
		componentSchemas: make(map[*base.Schema]string),
		security:         requirementNames(doc.Security),
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		for name, schemaProxy := range doc.Components.Schemas.FromOldest() {
			t.componentSchemas[schemaProxy.Schema()] = "#/components/schemas/" + name
		}
	}

	spec := &model.Spec{
		Info:    transformInfo(doc.Info),
		Servers: transformServers(doc.Servers),
		Tags:    transformTags(doc.Tags),
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		for name, schemaProxy := range doc.Components.Schemas.FromOldest() {
			if schema := t.transformSchema(name, schemaProxy.Schema()); schema != nil {
				spec.Schemas = append(spec.Schemas, *schema)
			}
		}
	}

	if doc.Paths != nil && doc.Paths.PathItems != nil {
		for pathStr, pathItem := range doc.Paths.PathItems.FromOldest() {
			spec.Operations = append(spec.Operations, t.transformPath(pathStr, pathItem)...)
		}
	}

	if doc.Components != nil && doc.Components.SecuritySchemes != nil {
		for name, scheme := range doc.Components.SecuritySchemes.FromOldest() {
			spec.Security = append(spec.Security, transformSecurityScheme(name, scheme))
		}
	}

	return spec, nil
}

func transformInfo(info *base.Info) model.Info {
	if info == nil {
		return model.Info{}
	}
	return model.Info{
		Title:       info.Title,
		Description: info.Description,
		Version:     info.Version,
	}
}

func transformServers(servers []*v3.Server) []model.Server {
	var result []model.Server
	for _, s := range servers {
		result = append(result, model.Server{
			URL:         s.URL,
			Description: s.Description,
		})
	}
	return result
}

func transformTags(tags []*base.Tag) []model.Tag {
	var result []model.Tag
	for _, t := range tags {
		result = append(result, model.Tag{
			Name:        t.Name,
			Description: t.Description,
		})
	}
	return result
}

func (t *transformer) transformPath(pathStr string, pathItem *v3.PathItem) []model.Operation {
	var ops []model.Operation

	methods := []struct {
		method model.Method
		op     *v3.Operation
	}{
		{model.MethodGet, pathItem.Get},
		{model.MethodPost, pathItem.Post},
		{model.MethodPut, pathItem.Put},
		{model.MethodDelete, pathItem.Delete},
		{model.MethodPatch, pathItem.Patch},
		{model.MethodHead, pathItem.Head},
		{model.MethodOptions, pathItem.Options},
		{model.MethodTrace, pathItem.Trace},
	}

	for _, m := range methods {
		if m.op == nil {
			continue
		}
		ops = append(ops, t.transformOperation(m.method, pathStr, m.op, pathItem.Parameters))
	}

	return ops
}

// transformOperation merges path level parameters into the operation; an
// operation parameter with the same name and location wins.
func (t *transformer) transformOperation(method model.Method, path string, op *v3.Operation, shared []*v3.Parameter) model.Operation {
	operation := model.Operation{
		ID:          op.OperationId,
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  boolPtr(op.Deprecated),
	}

	own := make(map[string]bool)
	for _, p := range op.Parameters {
		own[p.In+":"+p.Name] = true
	}
	for _, p := range shared {
		if !own[p.In+":"+p.Name] {
			operation.Parameters = append(operation.Parameters, t.transformParameter(p))
		}
	}
	for _, p := range op.Parameters {
		operation.Parameters = append(operation.Parameters, t.transformParameter(p))
	}

	if op.RequestBody != nil {
		operation.RequestBody = t.transformRequestBody(op.RequestBody)
	}

	operation.Security = t.security
	if op.Security != nil {
		operation.Security = requirementNames(op.Security)
	}

	return operation
}

// requirementNames lists the schemes named by reqs once each, in order.
func requirementNames(reqs []*base.SecurityRequirement) []string {
	var names []string
	for _, req := range reqs {
		if req == nil || req.Requirements == nil {
			continue
		}
		for name := range req.Requirements.FromOldest() {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return names
}

func (t *transformer) transformParameter(p *v3.Parameter) model.Parameter {
	param := model.Parameter{
		Name:        p.Name,
		In:          model.ParameterLocation(strings.ToLower(p.In)),
		Description: p.Description,
		Required:    boolPtr(p.Required),
		Deprecated:  p.Deprecated,
	}

	if p.Example != nil {
		param.Example = p.Example
	} else if p.Examples != nil {
		for _, ex := range p.Examples.FromOldest() {
			if ex != nil && ex.Value != nil {
				param.Example = ex.Value
				break
			}
		}
	}

	if p.Schema != nil {
		param.Schema = t.transformSchemaProxy(p.Schema)
	}

	return param
}

func (t *transformer) transformRequestBody(rb *v3.RequestBody) *model.RequestBody {
	body := &model.RequestBody{
		Description: rb.Description,
		Required:    boolPtr(rb.Required),
	}

	if rb.Content != nil {
		for mediaType, content := range rb.Content.FromOldest() {
			mtc := model.MediaTypeContent{MediaType: mediaType}
			if content.Schema != nil {
				mtc.Schema = t.transformSchemaProxy(content.Schema)
			}
			if ex := mediaExample(content); ex != nil {
				mtc.Example = ex
			}
			body.Content = append(body.Content, mtc)
		}
	}

	return body
}

// mediaExample returns the media type's example, falling back to the first
// named example with an inline value.
func mediaExample(content *v3.MediaType) *yaml.Node {
	if content.Example != nil {
		return content.Example
	}
	if content.Examples == nil {
		return nil
	}
	for _, ex := range content.Examples.FromOldest() {
		if ex != nil && ex.Value != nil {
			return ex.Value
		}
	}
	return nil
}

func (t *transformer) transformSchemaProxy(proxy *base.SchemaProxy) *model.Schema {
	if proxy == nil {
		return nil
	}

	ref := proxy.GetReference()
	if ref == "" {
		if resolved, ok := t.componentSchemas[proxy.Schema()]; ok {
			return &model.Schema{Ref: resolved}
		}
	} else if strings.HasPrefix(ref, "#/components/schemas/") {
		return &model.Schema{Ref: ref}
	}

	schema := t.transformSchema("", proxy.Schema())
	if schema != nil && ref != "" {
		schema.Ref = ref
	}
	return schema
}

func (t *transformer) transformSchema(name string, s *base.Schema) *model.Schema {
	if s == nil {
		return nil
	}

	schema := &model.Schema{
		Name:        name,
		Description: s.Description,
		Format:      s.Format,
		Nullable:    boolPtr(s.Nullable),
	}
	if s.Default != nil {
		schema.Default = s.Default
	}
	if s.Example != nil {
		schema.Example = s.Example
	} else if len(s.Examples) > 0 {
		schema.Example = s.Examples[0]
	}

	for _, typ := range s.Type {
		if typ == string(model.TypeNull) {
			schema.Nullable = true
			continue
		}
		if schema.Type == "" {
			schema.Type = model.SchemaType(typ)
		}
	}

	for _, e := range s.Enum {
		schema.Enum = append(schema.Enum, e)
	}

	if s.Properties != nil {
		for propName, propProxy := range s.Properties.FromOldest() {
			propSchema := t.transformSchemaProxy(propProxy)
			schema.Properties = append(schema.Properties, model.Property{
				Name:   propName,
				Schema: propSchema,
			})
		}
	}

	schema.Required = s.Required

	if s.Items != nil && s.Items.IsA() {
		schema.Items = t.transformSchemaProxy(s.Items.A)
	}

	if s.AdditionalProperties != nil && s.AdditionalProperties.IsA() {
		schema.AdditionalProperties = t.transformSchemaProxy(s.AdditionalProperties.A)
	}

	for _, proxy := range s.AllOf {
		schema.AllOf = append(schema.AllOf, t.transformSchemaProxy(proxy))
	}
	for _, proxy := range s.OneOf {
		schema.OneOf = append(schema.OneOf, t.transformSchemaProxy(proxy))
	}
	for _, proxy := range s.AnyOf {
		schema.AnyOf = append(schema.AnyOf, t.transformSchemaProxy(proxy))
	}

	return schema
}

func transformSecurityScheme(name string, scheme *v3.SecurityScheme) model.SecurityScheme {
	return model.SecurityScheme{
		Name:    name,
		Type:    model.SecuritySchemeType(scheme.Type),
		In:      scheme.In,
		KeyName: scheme.Name,
		Scheme:  scheme.Scheme,
	}
}

func boolPtr(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
