package collection

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kolah/brunoapi/internal/bru"
	"github.com/kolah/brunoapi/internal/environment"
	"github.com/kolah/brunoapi/internal/naming"
	"github.com/kolah/brunoapi/internal/openapi"
	"github.com/kolah/brunoapi/internal/schema"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/spf13/afero"
)

const (
	defaultTitle   = "API"
	defaultVersion = "1.0.0"
	bodySchemaName = "RequestBody"
)

// Endpoint is one HTTP request recovered from a request file.
type Endpoint struct {
	Name        string
	Method      string
	URL         string
	PathParams  []string
	QueryParams []string
	Body        *EndpointBody
	Docs        string
	File        string
}

type EndpointBody struct {
	Mode string
	JSON string
}

type Reader struct {
	fs    afero.Fs
	codec bru.Codec
}

func NewReader(fs afero.Fs, codec bru.Codec) *Reader {
	return &Reader{fs: fs, codec: codec}
}

type ReadResult struct {
	Title     string
	BaseURL   string
	Document  *v3.Document
	Endpoints []Endpoint
	Stats     Stats
	Warnings  []string
}

type Stats struct {
	PathCount      int
	OperationCount int
	SchemaCount    int
}

// Read reconstructs an OpenAPI document from the collection in dir.
func (r *Reader) Read(dir string) (*ReadResult, error) {
	data, err := afero.ReadFile(r.fs, filepath.Join(dir, bru.ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("reading collection config: %w", err)
	}
	cfg, err := bru.ParseConfig(data)
	if err != nil {
		return nil, err
	}

	res := &ReadResult{Title: cfg.Name}
	if res.Title == "" {
		res.Title = defaultTitle
	}

	files, err := r.requestFiles(dir, cfg)
	if err != nil {
		return nil, fmt.Errorf("listing collection: %w", err)
	}

	for _, path := range files {
		ep, err := r.endpoint(path)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("skipping %s: %v", path, err))
			continue
		}
		if ep != nil {
			res.Endpoints = append(res.Endpoints, *ep)
		}
	}

	env := environment.NewResolver(r.fs, r.codec).Resolve(filepath.Join(dir, bru.EnvironmentDir))
	res.Warnings = append(res.Warnings, env.Warnings...)
	res.BaseURL = env.BaseURL

	doc := openapi.NewDocument(res.Title, defaultVersion, naming.ServerURL(res.BaseURL))
	seq := 0
	for _, ep := range res.Endpoints {
		var warnings []string
		seq, warnings = addEndpoint(doc, ep, res.BaseURL, seq)
		res.Warnings = append(res.Warnings, warnings...)
	}
	openapi.Finalize(doc)

	res.Document = doc
	res.Stats.PathCount, res.Stats.OperationCount = openapi.Counts(doc)
	res.Stats.SchemaCount = seq
	return res, nil
}

// requestFiles lists every request file below dir in directory listing order.
// Environment files, folder and collection metadata and ignored directories
// are left out.
func (r *Reader) requestFiles(dir string, cfg *bru.Config) ([]string, error) {
	var files []string

	var walk func(current string) error
	walk = func(current string) error {
		entries, err := afero.ReadDir(r.fs, current)
		if err != nil {
			return err
		}
		inEnvDir := filepath.Base(current) == bru.EnvironmentDir
		for _, e := range entries {
			path := filepath.Join(current, e.Name())
			if e.IsDir() {
				if cfg.Ignores(e.Name()) {
					continue
				}
				if err := walk(path); err != nil {
					return err
				}
				continue
			}
			if inEnvDir || e.Name() == bru.CollectionFile || e.Name() == bru.FolderFile {
				continue
			}
			if strings.HasSuffix(e.Name(), bru.Ext) {
				files = append(files, path)
			}
		}
		return nil
	}

	if err := walk(dir); err != nil {
		return nil, err
	}
	return files, nil
}

// endpoint parses one request file. It returns nil without an error for files
// that are not HTTP requests.
func (r *Reader) endpoint(path string) (*Endpoint, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, err
	}
	req, err := r.codec.ParseRequest(string(data))
	if err != nil {
		return nil, err
	}
	if req.Meta.Type != bru.TypeHTTP || req.HTTP == nil {
		return nil, nil
	}

	ep := &Endpoint{
		Name:   req.Meta.Name,
		Method: strings.ToLower(req.HTTP.Method),
		URL:    naming.StripVariables(req.HTTP.URL),
		Docs:   req.Docs,
		File:   path,
	}
	if ep.Name == "" {
		ep.Name = strings.TrimSuffix(filepath.Base(path), bru.Ext)
	}
	for _, p := range req.ParamsOf(bru.ParamPath) {
		ep.PathParams = append(ep.PathParams, p.Name)
	}
	for _, p := range req.ParamsOf(bru.ParamQuery) {
		ep.QueryParams = append(ep.QueryParams, p.Name)
	}
	if req.HTTP.Body == bru.BodyJSON && req.Body.JSON != "" {
		ep.Body = &EndpointBody{Mode: bru.BodyJSON, JSON: req.Body.JSON}
	}
	return ep, nil
}

// addEndpoint adds ep to doc. seq is the number of request body schemas
// registered so far; the updated count is returned.
func addEndpoint(doc *v3.Document, ep Endpoint, baseURL string, seq int) (int, []string) {
	var warnings []string

	path := naming.PathPattern(baseURL, ep.URL)
	op := &v3.Operation{
		OperationId: naming.OperationID(ep.Name),
		Summary:     ep.Name,
		Description: ep.Docs,
		Responses:   openapi.DefaultResponses(),
	}
	for _, name := range ep.PathParams {
		op.Parameters = append(op.Parameters, openapi.PathParameter(name))
	}
	for _, name := range ep.QueryParams {
		op.Parameters = append(op.Parameters, openapi.QueryParameter(name))
	}

	replaced, err := openapi.SetOperation(doc, path, ep.Method, op)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("%s: %v", ep.File, err))
		return seq, warnings
	}
	if replaced {
		warnings = append(warnings, fmt.Sprintf("%s: replaces an earlier %s %s", ep.File, strings.ToUpper(ep.Method), path))
	}

	if ep.Body != nil {
		node, err := schema.ParseJSON(ep.Body.JSON)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: request body left out: %v", ep.File, err))
			return seq, warnings
		}
		seq++
		name := fmt.Sprintf("%s%d", bodySchemaName, seq)
		openapi.AddSchema(doc, name, schema.Infer(node))
		op.RequestBody = openapi.JSONRequestBody(name, node)
	}
	return seq, warnings
}
