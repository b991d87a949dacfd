package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const spec = `openapi: 3.1.0
info:
  title: Notes
  version: "1"
paths:
  /notes:
    get:
      tags: [notes]
      summary: List notes
      responses:
        "200": {description: ok}
    post:
      tags: [notes]
      summary: Add note
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                text: {type: string}
      responses:
        "201": {description: created}
`

func run(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	var stderr bytes.Buffer
	cmd := NewRootCmd(fs)
	cmd.SetArgs(args)
	cmd.SetErr(&stderr)
	cmd.SetOut(&stderr)
	err := cmd.Execute()
	return stderr.String(), err
}

func TestImportThenExport(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/specs/notes.yaml", []byte(spec), 0644))

	out, err := run(t, fs, "import", "-s", "/specs/notes.yaml", "-o", "/notes", "-v")
	require.NoError(t, err)
	require.Contains(t, out, `Imported collection "Notes" into /notes`)
	require.Contains(t, out, "Requests: 2")
	require.Contains(t, out, "Written: /notes/notes/Add note.bru")

	out, err = run(t, fs, "export", "-d", "/notes", "-o", "/api/openapi.json", "--validate")
	require.NoError(t, err)
	require.Contains(t, out, "Paths: 1")
	require.Contains(t, out, "Operations: 2")
	require.Contains(t, out, "Schemas: 1")

	exists, err := afero.Exists(fs, "/api/openapi.json")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestImportRequiresFlags(t *testing.T) {
	_, err := run(t, afero.NewMemMapFs(), "import", "-o", "/out")
	require.ErrorContains(t, err, "spec file is required")

	_, err = run(t, afero.NewMemMapFs(), "import", "-s", "x.yaml", "-o", "/out", "--group-by", "verb")
	require.ErrorContains(t, err, "invalid group-by")
}

func TestVerboseFailurePrintsCauses(t *testing.T) {
	out, err := run(t, afero.NewMemMapFs(), "import", "-s", "/missing.yaml", "-o", "/out", "--verbose")
	require.Error(t, err)
	require.Contains(t, err.Error(), "importing /missing.yaml")
	require.Contains(t, out, "caused by: loading spec")
	require.Contains(t, out, "caused by: reading spec file")
}

func TestExportRequiresCollection(t *testing.T) {
	_, err := run(t, afero.NewMemMapFs(), "export", "-d", "/nothing", "-o", "/out.json")
	require.ErrorContains(t, err, "reading collection")
}

func TestImportReadsConfigFromFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/specs/notes.yaml", []byte(spec), 0644))
	require.NoError(t, afero.WriteFile(fs, "brunoapi.yaml", []byte("spec: /specs/notes.yaml\nimport:\n  output-dir: /from-config\n  group-by: path\n"), 0644))

	out, err := run(t, fs, "import")
	require.NoError(t, err)
	require.Contains(t, out, `Imported collection "Notes" into /from-config`)

	exists, err := afero.Exists(fs, "/from-config/notes/folder.bru")
	require.NoError(t, err)
	require.True(t, exists)
}
