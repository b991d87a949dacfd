// Package convert runs the two conversions between OpenAPI documents and
// request collections.
package convert

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"

	"github.com/kolah/brunoapi/internal/bru"
	"github.com/kolah/brunoapi/internal/collection"
	"github.com/kolah/brunoapi/internal/loader"
	"github.com/kolah/brunoapi/internal/mapper"
	"github.com/kolah/brunoapi/internal/model"
	"github.com/kolah/brunoapi/internal/openapi"
	"github.com/spf13/afero"
)

type Converter struct {
	fs     afero.Fs
	codec  bru.Codec
	loader *loader.Loader
}

type Option func(*Converter)

// WithHTTPClient sets the client used to fetch remote documents.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Converter) {
		c.loader = loader.New(c.fs, client)
	}
}

// WithCodec replaces the text codec used for collection files.
func WithCodec(codec bru.Codec) Option {
	return func(c *Converter) {
		c.codec = codec
	}
}

func New(fs afero.Fs, opts ...Option) *Converter {
	c := &Converter{fs: fs, codec: bru.New()}
	c.loader = loader.New(fs, nil)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ImportOptions struct {
	// Source is a file path or an http(s) URL. It is ignored when Data is set.
	Source string
	// Data holds an in-memory JSON or YAML document.
	Data      []byte
	OutputDir string
	Name      string
	GroupBy   mapper.GroupBy
}

type ImportResult struct {
	Success          bool
	CollectionName   string
	OutputPath       string
	ItemCount        int
	EnvironmentCount int
	Files            []string
	Warnings         []string
}

// Import loads an OpenAPI document and writes it out as a collection.
func (c *Converter) Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	var loaded *loader.Result
	var err error
	if opts.Data != nil {
		loaded, err = loader.LoadBytes(opts.Data)
	} else {
		loaded, err = c.loader.Load(ctx, opts.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("loading spec: %w", err)
	}

	spec, err := loader.Transform(loaded)
	if err != nil {
		return nil, fmt.Errorf("transforming spec: %w", err)
	}

	res, err := c.ImportSpec(spec, opts)
	if err != nil {
		return nil, err
	}
	res.Warnings = slices.Concat(loaded.Warnings, res.Warnings)
	return res, nil
}

// ImportSpec writes an already loaded document as a collection.
func (c *Converter) ImportSpec(spec *model.Spec, opts ImportOptions) (*ImportResult, error) {
	mapped := mapper.ToCollection(spec, mapper.Options{Name: opts.Name, GroupBy: opts.GroupBy})

	written, err := collection.NewWriter(c.fs, c.codec).Write(mapped.Collection, opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("writing collection: %w", err)
	}

	return &ImportResult{
		Success:          true,
		CollectionName:   mapped.Collection.Name,
		OutputPath:       written.OutputPath,
		ItemCount:        written.ItemCount,
		EnvironmentCount: written.EnvironmentCount,
		Files:            written.Files,
		Warnings:         slices.Concat(mapped.Warnings, written.Warnings),
	}, nil
}

type ExportOptions struct {
	CollectionDir string
	OutputFile    string
	// Validate runs the rendered document through the OpenAPI validator and
	// reports its findings as warnings.
	Validate bool
}

type ExportResult struct {
	Success        bool
	CollectionName string
	OutputPath     string
	PathCount      int
	OperationCount int
	SchemaCount    int
	// TagCount is always zero: exported operations carry no tags.
	TagCount int
	Warnings []string
}

// Export reconstructs an OpenAPI document from a collection directory and
// writes it as JSON.
func (c *Converter) Export(opts ExportOptions) (*ExportResult, error) {
	read, err := collection.NewReader(c.fs, c.codec).Read(opts.CollectionDir)
	if err != nil {
		return nil, fmt.Errorf("reading collection: %w", err)
	}

	data, err := openapi.Render(read.Document)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(opts.OutputFile); dir != "" {
		if err := c.fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := afero.WriteFile(c.fs, opts.OutputFile, data, 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", opts.OutputFile, err)
	}

	res := &ExportResult{
		Success:        true,
		CollectionName: read.Title,
		OutputPath:     opts.OutputFile,
		PathCount:      read.Stats.PathCount,
		OperationCount: read.Stats.OperationCount,
		SchemaCount:    read.Stats.SchemaCount,
		Warnings:       read.Warnings,
	}

	if opts.Validate {
		problems, err := openapi.Validate(data)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("validation skipped: %v", err))
		}
		for _, p := range problems {
			res.Warnings = append(res.Warnings, "validation: "+p)
		}
	}

	return res, nil
}
