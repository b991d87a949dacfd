package collection

import (
	"testing"

	"github.com/kolah/brunoapi/internal/bru"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const configJSON = `{"version": "1", "name": "Shop", "type": "collection", "ignore": ["node_modules", ".git"]}`

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
}

func requestFile(name, method, url string, extra string) string {
	return "meta {\n  name: " + name + "\n  type: http\n}\n\n" +
		method + " {\n  url: " + url + "\n  body: none\n  auth: inherit\n}\n" + extra
}

func jsonRequestFile(name, method, url, body string) string {
	return "meta {\n  name: " + name + "\n  type: http\n}\n\n" +
		method + " {\n  url: " + url + "\n  body: json\n  auth: inherit\n}\n\n" +
		"body:json {\n" + body + "}\n"
}

func TestReadBuildsDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/col/bruno.json":              configJSON,
		"/col/collection.bru":          "auth {\n  mode: inherit\n}\n",
		"/col/environments/Local.bru":  "vars {\n  baseUrl: http://localhost:8080\n}\n",
		"/col/users/folder.bru":        "meta {\n  name: users\n}\n\nauth {\n  mode: inherit\n}\n",
		"/col/users/List users.bru":    requestFile("List users", "get", "{{baseUrl}}/users", "\nparams:query {\n  ~page: 1\n}\n"),
		"/col/users/Get user.bru":      requestFile("Get user", "get", "{{baseUrl}}/users/:id", "\nparams:path {\n  id: 1\n}\n\ndocs {\n  Fetch one user.\n}\n"),
		"/col/users/Create user.bru":   jsonRequestFile("Create user", "post", "{{baseUrl}}/users", "  {\n    \"name\": \"Ada\",\n    \"age\": 36\n  }\n"),
		"/col/node_modules/x/Skip.bru": requestFile("Skip", "get", "/skip", ""),
		"/col/notes.txt":               "not a request",
	})

	res, err := NewReader(fs, bru.New()).Read("/col")
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	require.Equal(t, "Shop", res.Title)
	require.Equal(t, "http://localhost:8080", res.BaseURL)
	require.Len(t, res.Endpoints, 3)
	require.Equal(t, Stats{PathCount: 2, OperationCount: 3, SchemaCount: 1}, res.Stats)

	doc := res.Document
	require.Equal(t, "3.0.0", doc.Version)
	require.Equal(t, "Shop", doc.Info.Title)
	require.Equal(t, "1.0.0", doc.Info.Version)
	require.Equal(t, "http://localhost:8080", doc.Servers[0].URL)

	users, ok := doc.Paths.PathItems.Get("/users")
	require.True(t, ok)
	require.NotNil(t, users.Get)
	require.Equal(t, "list_users", users.Get.OperationId)
	require.Len(t, users.Get.Parameters, 1)
	require.Equal(t, "page", users.Get.Parameters[0].Name)
	require.Equal(t, "query", users.Get.Parameters[0].In)
	require.False(t, *users.Get.Parameters[0].Required)

	require.NotNil(t, users.Post)
	require.Equal(t, "Create user", users.Post.Summary)
	media, ok := users.Post.RequestBody.Content.Get("application/json")
	require.True(t, ok)
	require.Equal(t, "#/components/schemas/RequestBody1", media.Schema.GetReference())

	user, ok := doc.Paths.PathItems.Get("/users/{id}")
	require.True(t, ok)
	require.Equal(t, "get_user", user.Get.OperationId)
	require.Equal(t, "Fetch one user.", user.Get.Description)
	require.Equal(t, "path", user.Get.Parameters[0].In)
	require.True(t, *user.Get.Parameters[0].Required)

	resp, ok := user.Get.Responses.Codes.Get("200")
	require.True(t, ok)
	require.Equal(t, "Successful response", resp.Description)

	require.NotNil(t, doc.Components)
	body, ok := doc.Components.Schemas.Get("RequestBody1")
	require.True(t, ok)
	s := body.Schema()
	require.Equal(t, []string{"object"}, s.Type)
	require.Equal(t, []string{"name", "age"}, s.Required)
}

func TestReadDuplicatePathsCollapse(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/col/bruno.json":    configJSON,
		"/col/a/Widgets.bru": requestFile("Widgets", "get", "{{baseUrl}}/widgets", ""),
		"/col/b/Widgets.bru": requestFile("All widgets", "get", "{{baseUrl}}/widgets", ""),
	})

	res, err := NewReader(fs, bru.New()).Read("/col")
	require.NoError(t, err)
	require.Equal(t, 1, res.Stats.PathCount)
	require.Equal(t, 1, res.Stats.OperationCount)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "GET /widgets")

	item, ok := res.Document.Paths.PathItems.Get("/widgets")
	require.True(t, ok)
	require.Equal(t, "all_widgets", item.Get.OperationId)
}

func TestReadSkipsMetadataAndEnvironments(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/col/bruno.json":                    configJSON,
		"/col/collection.bru":                "auth {\n  mode: bearer\n}\n",
		"/col/environments/Staging.bru":      "vars {\n  baseUrl: http://staging\n}\n",
		"/col/nested/environments/Other.bru": "vars {\n  baseUrl: http://other\n}\n",
		"/col/nested/folder.bru":             "meta {\n  name: nested\n}\n",
		"/col/nested/Ping.bru":               requestFile("Ping", "get", "{{baseUrl}}/ping", ""),
	})

	res, err := NewReader(fs, bru.New()).Read("/col")
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	require.Len(t, res.Endpoints, 1)
	require.Equal(t, "Ping", res.Endpoints[0].Name)
	require.Equal(t, "/ping", res.Endpoints[0].URL)
	require.Equal(t, "http://staging", res.BaseURL)
}

func TestReadSkipsMalformedAndNonHTTPFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/col/bruno.json": configJSON,
		"/col/Broken.bru": "meta {\n  name: Broken\n",
		"/col/Query.bru":  "meta {\n  name: Query\n  type: graphql\n}\n\npost {\n  url: /graphql\n}\n",
		"/col/Ping.bru":   requestFile("Ping", "get", "/ping", ""),
	})

	res, err := NewReader(fs, bru.New()).Read("/col")
	require.NoError(t, err)
	require.Len(t, res.Endpoints, 1)
	require.Equal(t, "Ping", res.Endpoints[0].Name)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "Broken.bru")
	require.Equal(t, 1, res.Stats.OperationCount)
}

func TestReadBodySchemasAreNumberedInOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/col/bruno.json":   configJSON,
		"/col/1 Create.bru": jsonRequestFile("Create", "post", "/things", "  {\"a\": 1}\n"),
		"/col/2 Bad.bru":    jsonRequestFile("Bad", "put", "/things", "  {not json\n"),
		"/col/3 Patch.bru":  jsonRequestFile("Patch", "patch", "/things", "  [true]\n"),
	})

	res, err := NewReader(fs, bru.New()).Read("/col")
	require.NoError(t, err)
	require.Equal(t, 2, res.Stats.SchemaCount)
	require.Equal(t, 3, res.Stats.OperationCount)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "request body left out")

	item, ok := res.Document.Paths.PathItems.Get("/things")
	require.True(t, ok)
	require.Nil(t, item.Put.RequestBody)

	media, ok := item.Patch.RequestBody.Content.Get("application/json")
	require.True(t, ok)
	require.Equal(t, "#/components/schemas/RequestBody2", media.Schema.GetReference())

	second, ok := res.Document.Components.Schemas.Get("RequestBody2")
	require.True(t, ok)
	require.Equal(t, []string{"array"}, second.Schema().Type)
}

func TestReadAPIBaseURL(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/col/bruno.json":             configJSON,
		"/col/environments/Local.bru": "vars {\n  baseUrl: http://x/api\n}\n",
		"/col/Get user.bru":           requestFile("Get user", "get", "http://x/api/users/:id", ""),
	})

	res, err := NewReader(fs, bru.New()).Read("/col")
	require.NoError(t, err)
	require.Equal(t, "http://x", res.Document.Servers[0].URL)

	_, ok := res.Document.Paths.PathItems.Get("/api/users/{id}")
	require.True(t, ok)
}

func TestReadDefaultsWithoutEnvironmentsOrBodies(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/col/bruno.json": `{"version": "1", "type": "collection"}`,
		"/col/Ping.bru":   requestFile("Ping", "get", "{{baseUrl}}/ping", ""),
	})

	res, err := NewReader(fs, bru.New()).Read("/col")
	require.NoError(t, err)
	require.Equal(t, "API", res.Title)
	require.Equal(t, "http://localhost:3000", res.BaseURL)
	require.Nil(t, res.Document.Components)
}

func TestReadRequiresConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/col", 0755))

	_, err := NewReader(fs, bru.New()).Read("/col")
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading collection config")
}
