// Package loader reads OpenAPI 3.x documents from files, URLs or memory and
// transforms them into the internal model.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/spf13/afero"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Result struct {
	Document *libopenapi.DocumentModel[v3.Document]
	Version  string
	// Format is the detected serialization of the source, FormatJSON or FormatYAML.
	Format   string
	Source   string
	Warnings []string
}

type Loader struct {
	fs     afero.Fs
	client *http.Client
}

// New returns a Loader reading files from fs and URLs with client.
// A nil client means http.DefaultClient.
func New(fs afero.Fs, client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{fs: fs, client: client}
}

// IsURL reports whether source names a remote document.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads source as a URL when it looks like one and as a file path otherwise.
func (l *Loader) Load(ctx context.Context, source string) (*Result, error) {
	if IsURL(source) {
		return l.LoadURL(ctx, source)
	}
	return l.LoadFile(source)
}

func (l *Loader) LoadFile(path string) (*Result, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	// Relative file references can only be followed on the real filesystem.
	var config *datamodel.DocumentConfiguration
	if _, ok := l.fs.(*afero.OsFs); ok {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving absolute path: %w", err)
		}
		config = &datamodel.DocumentConfiguration{
			BasePath:            filepath.Dir(absPath),
			AllowFileReferences: true,
		}
	}

	result, err := loadWithConfig(data, config)
	if err != nil {
		return nil, err
	}
	result.Source = path
	result.Format = detectFormat(data, "", path)
	return result, nil
}

func (l *Loader) LoadURL(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching spec: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching spec: %s returned %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading spec response: %w", err)
	}

	result, err := loadWithConfig(data, nil)
	if err != nil {
		return nil, err
	}
	result.Source = url
	result.Format = detectFormat(data, resp.Header.Get("Content-Type"), url)
	return result, nil
}

// LoadBytes parses an in-memory document. External references are not followed.
func LoadBytes(data []byte) (*Result, error) {
	result, err := loadWithConfig(data, nil)
	if err != nil {
		return nil, err
	}
	result.Format = detectFormat(data, "", "")
	return result, nil
}

func loadWithConfig(data []byte, config *datamodel.DocumentConfiguration) (*Result, error) {
	var doc libopenapi.Document
	var err error

	if config != nil {
		doc, err = libopenapi.NewDocumentWithConfiguration(data, config)
	} else {
		doc, err = libopenapi.NewDocument(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("unsupported OpenAPI version: %s (only 3.x supported)", version)
	}

	model, err := doc.BuildV3Model()
	if err != nil {
		return nil, fmt.Errorf("building OpenAPI model: %w", err)
	}

	result := &Result{
		Document: model,
		Version:  version,
	}

	if strings.HasPrefix(version, "3.0") {
		result.Warnings = append(result.Warnings, "OpenAPI 3.0.x detected; some 3.1 features unavailable")
	}

	return result, nil
}

// detectFormat prefers the content type, then the file suffix, then the
// first significant byte of the payload.
func detectFormat(data []byte, contentType, name string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "yaml"):
		return FormatYAML
	case strings.Contains(ct, "json"):
		return FormatJSON
	}

	lower := strings.ToLower(name)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	switch {
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON
	}

	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if strings.HasPrefix(trimmed, "{") {
		return FormatJSON
	}
	return FormatYAML
}
