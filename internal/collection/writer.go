package collection

import (
	"fmt"
	"path/filepath"

	"github.com/kolah/brunoapi/internal/bru"
	"github.com/kolah/brunoapi/internal/naming"
	"github.com/spf13/afero"
)

type Writer struct {
	fs    afero.Fs
	codec bru.Codec
}

func NewWriter(fs afero.Fs, codec bru.Codec) *Writer {
	return &Writer{fs: fs, codec: codec}
}

type WriteResult struct {
	OutputPath       string
	ItemCount        int
	EnvironmentCount int
	Files            []string
	Warnings         []string
}

type writeRun struct {
	*Writer
	result  *WriteResult
	written map[string]bool
}

// Write lays c out under outputDir. Existing files with the same names are
// overwritten and unrelated files are left alone. Failing to create outputDir
// or its top-level files aborts the write; a failing item is reported in
// WriteResult.Warnings and its siblings are still written.
func (w *Writer) Write(c *Collection, outputDir string) (*WriteResult, error) {
	if err := w.fs.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	run := &writeRun{
		Writer:  w,
		result:  &WriteResult{OutputPath: outputDir},
		written: make(map[string]bool),
	}

	cfg, err := bru.MarshalConfig(bru.NewConfig(c.Name))
	if err != nil {
		return nil, err
	}
	if err := run.writeFile(filepath.Join(outputDir, bru.ConfigFile), cfg); err != nil {
		return nil, err
	}

	root := c.Root
	if root == nil {
		root = &bru.Root{Auth: bru.AuthInherit, Docs: c.Description}
	}
	text, err := w.codec.StringifyRoot(*root)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", bru.CollectionFile, err)
	}
	if err := run.writeFile(filepath.Join(outputDir, bru.CollectionFile), []byte(text)); err != nil {
		return nil, err
	}

	if len(c.Environments) > 0 {
		envDir := filepath.Join(outputDir, bru.EnvironmentDir)
		if err := w.fs.MkdirAll(envDir, 0755); err != nil {
			return nil, fmt.Errorf("creating environments directory: %w", err)
		}
		for _, env := range c.Environments {
			if err := run.environment(envDir, env); err != nil {
				run.warn("writing environment %q: %v", env.Name, err)
				continue
			}
			run.result.EnvironmentCount++
		}
	}

	run.items(outputDir, c.Items)

	return run.result, nil
}

func (r *writeRun) environment(dir string, env Environment) error {
	text, err := r.codec.StringifyEnvironment(bru.Environment{Variables: env.Variables})
	if err != nil {
		return err
	}
	return r.writeFile(filepath.Join(dir, naming.FileName(env.Name, bru.Ext)), []byte(text))
}

func (r *writeRun) items(dir string, items []Item) {
	for _, it := range items {
		if err := r.item(dir, it); err != nil {
			r.warn("writing %q in %s: %v", it.Name, dir, err)
		}
	}
}

func (r *writeRun) item(dir string, it Item) error {
	if it.IsFolder() {
		return r.folder(dir, it)
	}

	req := bru.Request{}
	if it.Request != nil {
		req = *it.Request
	}
	if req.Meta.Name == "" {
		req.Meta.Name = it.Name
	}
	if req.Meta.Type == "" {
		req.Meta.Type = it.RequestType()
	}

	text, err := r.codec.StringifyRequest(req)
	if err != nil {
		return err
	}
	if err := r.writeFile(filepath.Join(dir, naming.FileName(it.Name, bru.Ext)), []byte(text)); err != nil {
		return err
	}
	r.result.ItemCount++
	return nil
}

func (r *writeRun) folder(dir string, it Item) error {
	folderDir := filepath.Join(dir, naming.SanitizeName(it.Name))
	if err := r.fs.MkdirAll(folderDir, 0755); err != nil {
		return fmt.Errorf("creating folder: %w", err)
	}

	if it.Root != nil {
		text, err := r.codec.StringifyRoot(*it.Root)
		if err == nil {
			err = r.writeFile(filepath.Join(folderDir, bru.FolderFile), []byte(text))
		}
		if err != nil {
			r.warn("writing folder metadata for %q: %v", it.Name, err)
		}
	}

	r.items(folderDir, it.Items)
	return nil
}

func (r *writeRun) writeFile(path string, data []byte) error {
	if r.written[path] {
		r.warn("%s written more than once in this run, keeping the last version", path)
	}
	if err := afero.WriteFile(r.fs, path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if !r.written[path] {
		r.result.Files = append(r.result.Files, path)
	}
	r.written[path] = true
	return nil
}

func (r *writeRun) warn(format string, args ...any) {
	r.result.Warnings = append(r.result.Warnings, fmt.Sprintf(format, args...))
}
