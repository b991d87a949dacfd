// Package mapper turns an OpenAPI model into a request collection.
package mapper

import (
	"fmt"
	"strings"

	"github.com/kolah/brunoapi/internal/bru"
	"github.com/kolah/brunoapi/internal/collection"
	"github.com/kolah/brunoapi/internal/environment"
	"github.com/kolah/brunoapi/internal/model"
	"github.com/kolah/brunoapi/internal/naming"
	"github.com/kolah/brunoapi/internal/schema"
)

type GroupBy string

const (
	GroupByTags GroupBy = "tags"
	GroupByPath GroupBy = "path"
)

const (
	defaultName     = "API"
	baseURLVar      = "baseUrl"
	localEnvName    = "Local"
	baseURLTemplate = "{{" + baseURLVar + "}}"
)

type Options struct {
	// Name overrides the collection name taken from the document title.
	Name    string
	GroupBy GroupBy
}

// ParseGroupBy accepts "tags", "path" or "" (tags).
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(strings.ToLower(s)) {
	case "", GroupByTags:
		return GroupByTags, nil
	case GroupByPath:
		return GroupByPath, nil
	}
	return "", fmt.Errorf("invalid group-by %q (expected tags or path)", s)
}

type Result struct {
	Collection *collection.Collection
	Warnings   []string
}

type mapper struct {
	spec     *model.Spec
	opts     Options
	warnings []string
	// expanding counts the component references being expanded by example.
	expanding map[string]int
}

// ToCollection maps every operation of spec onto a request. Requests are
// grouped into folders by their first tag or first path segment; operations
// that fall in no group stay at the collection root.
func ToCollection(spec *model.Spec, opts Options) *Result {
	if opts.GroupBy == "" {
		opts.GroupBy = GroupByTags
	}
	m := &mapper{spec: spec, opts: opts}

	col := &collection.Collection{
		Name:         m.collectionName(),
		Description:  spec.Info.Description,
		Root:         m.root(),
		Environments: m.environments(),
		Items:        m.items(),
	}
	return &Result{Collection: col, Warnings: m.warnings}
}

func (m *mapper) collectionName() string {
	if m.opts.Name != "" {
		return m.opts.Name
	}
	if m.spec.Info.Title != "" {
		return m.spec.Info.Title
	}
	return defaultName
}

func (m *mapper) root() *bru.Root {
	root := &bru.Root{Auth: bru.AuthInherit, Docs: m.spec.Info.Description}
	for _, s := range m.spec.Security {
		if s.Type == model.SecurityTypeHTTP && strings.EqualFold(s.Scheme, "bearer") {
			root.Auth = bru.AuthBearer
			break
		}
	}
	return root
}

func (m *mapper) environments() []collection.Environment {
	if len(m.spec.Servers) == 0 {
		return []collection.Environment{m.newEnvironment(localEnvName, environment.DefaultBaseURL)}
	}

	envs := make([]collection.Environment, 0, len(m.spec.Servers))
	for i, srv := range m.spec.Servers {
		name := srv.Description
		if name == "" {
			name = fmt.Sprintf("Environment %d", i+1)
		}
		envs = append(envs, m.newEnvironment(name, strings.TrimRight(srv.URL, "/")))
	}
	return envs
}

// newEnvironment declares baseUrl and one secret variable per API key scheme.
func (m *mapper) newEnvironment(name, baseURL string) collection.Environment {
	vars := []bru.Variable{{Name: baseURLVar, Value: baseURL, Enabled: true}}
	for _, s := range m.spec.Security {
		if s.Type == model.SecurityTypeAPIKey {
			vars = append(vars, bru.Variable{Name: s.Name, Enabled: true, Secret: true})
		}
	}
	return collection.Environment{Name: name, Variables: vars}
}

type folder struct {
	name  string
	items []collection.Item
}

func (m *mapper) items() []collection.Item {
	var rootItems []collection.Item
	var folders []*folder
	byName := make(map[string]*folder)

	for _, op := range m.spec.Operations {
		group := m.group(op)
		if group == "" {
			rootItems = append(rootItems, m.request(op, len(rootItems)+1))
			continue
		}
		f, ok := byName[group]
		if !ok {
			f = &folder{name: group}
			byName[group] = f
			folders = append(folders, f)
		}
		f.items = append(f.items, m.request(op, len(f.items)+1))
	}

	items := make([]collection.Item, 0, len(folders)+len(rootItems))
	for i, f := range folders {
		root := &bru.Root{Meta: &bru.Meta{Name: f.name, Seq: i + 1}, Auth: bru.AuthInherit}
		if tag := m.spec.TagByName(f.name); tag != nil && m.opts.GroupBy == GroupByTags {
			root.Docs = tag.Description
		}
		items = append(items, collection.Item{
			Type:  collection.ItemFolder,
			Name:  f.name,
			Root:  root,
			Items: f.items,
		})
	}
	return append(items, rootItems...)
}

func (m *mapper) group(op model.Operation) string {
	if m.opts.GroupBy == GroupByPath {
		return firstSegment(op.Path)
	}
	if len(op.Tags) > 0 {
		return op.Tags[0]
	}
	return ""
}

// firstSegment returns the first path segment that is not a parameter.
func firstSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || strings.HasPrefix(seg, "{") || strings.HasPrefix(seg, ":") {
			continue
		}
		return seg
	}
	return ""
}

func requestName(op model.Operation) string {
	switch {
	case op.Summary != "":
		return op.Summary
	case op.ID != "":
		return op.ID
	default:
		return string(op.Method) + " " + op.Path
	}
}

func (m *mapper) request(op model.Operation, seq int) collection.Item {
	name := requestName(op)
	req := &bru.Request{
		Meta: bru.Meta{Name: name, Type: bru.TypeHTTP, Seq: seq},
		HTTP: &bru.HTTP{
			Method: strings.ToLower(string(op.Method)),
			URL:    baseURLTemplate + naming.ColonPath(op.Path),
			Body:   bru.BodyNone,
			Auth:   bru.AuthInherit,
		},
		Docs: requestDocs(op),
	}

	var cookies []string
	for _, p := range op.Parameters {
		value := m.parameterValue(p)
		switch p.In {
		case model.LocationPath:
			req.Params = append(req.Params, bru.Param{Name: p.Name, Value: value, Type: bru.ParamPath, Enabled: true})
		case model.LocationQuery:
			req.Params = append(req.Params, bru.Param{Name: p.Name, Value: value, Type: bru.ParamQuery, Enabled: p.Required})
		case model.LocationHeader:
			req.Headers = append(req.Headers, bru.KeyValue{Name: p.Name, Value: value, Enabled: true})
		case model.LocationCookie:
			cookies = append(cookies, p.Name+"="+value)
		}
	}

	// API keys are sent as "{{scheme}}", resolved from the environment.
	for _, name := range op.Security {
		scheme := m.spec.SecuritySchemeByName(name)
		if scheme == nil || scheme.Type != model.SecurityTypeAPIKey || scheme.KeyName == "" {
			continue
		}
		value := "{{" + scheme.Name + "}}"
		switch scheme.In {
		case "header":
			req.Headers = append(req.Headers, bru.KeyValue{Name: scheme.KeyName, Value: value, Enabled: true})
		case "query":
			req.Params = append(req.Params, bru.Param{Name: scheme.KeyName, Value: value, Type: bru.ParamQuery, Enabled: true})
		case "cookie":
			cookies = append(cookies, scheme.KeyName+"="+value)
		}
	}
	if len(cookies) > 0 {
		req.Headers = append(req.Headers, bru.KeyValue{Name: "Cookie", Value: strings.Join(cookies, "; "), Enabled: true})
	}

	if content := op.RequestBody.JSONContent(); content != nil {
		body, err := m.bodyExample(content)
		if err != nil {
			m.warnings = append(m.warnings, fmt.Sprintf("%s %s: request body example left out: %v", op.Method, op.Path, err))
		} else {
			req.HTTP.Body = bru.BodyJSON
			req.Body.JSON = body
		}
	}

	return collection.Item{Type: collection.ItemHTTPRequest, Name: name, Request: req}
}

// requestDocs collects the operation description, its deprecation and the
// notes on parameters and body that have no other place in a request.
func requestDocs(op model.Operation) string {
	var sections []string
	if op.Deprecated {
		sections = append(sections, "**Deprecated**")
	}
	if op.Description != "" {
		sections = append(sections, op.Description)
	}

	var params []string
	for _, p := range op.Parameters {
		if p.Description == "" && !p.Deprecated {
			continue
		}
		attrs := []string{string(p.In)}
		if p.Required {
			attrs = append(attrs, "required")
		}
		if p.Deprecated {
			attrs = append(attrs, "deprecated")
		}
		line := fmt.Sprintf("- `%s` (%s)", p.Name, strings.Join(attrs, ", "))
		if p.Description != "" {
			line += ": " + p.Description
		}
		params = append(params, line)
	}
	if len(params) > 0 {
		sections = append(sections, "## Parameters\n\n"+strings.Join(params, "\n"))
	}

	if b := op.RequestBody; b != nil && (b.Description != "" || b.Required) {
		text := b.Description
		if b.Required {
			text = strings.TrimSpace("Required. " + text)
		}
		sections = append(sections, "## Body\n\n"+text)
	}

	return strings.Join(sections, "\n\n")
}

func (m *mapper) bodyExample(content *model.MediaTypeContent) (string, error) {
	if content.Example != nil {
		return schema.FormatJSON(toNode(content.Example))
	}
	return schema.FormatJSON(m.example(content.Schema, 0))
}

// parameterValue picks the parameter example, then the schema example, then
// the schema default. Structured values are written as compact JSON.
func (m *mapper) parameterValue(p model.Parameter) string {
	candidates := []any{p.Example}
	if s := m.resolve(p.Schema); s != nil {
		candidates = append(candidates, s.Example, s.Default)
	}
	for _, c := range candidates {
		if c == nil {
			continue
		}
		return scalarString(c)
	}
	return ""
}
