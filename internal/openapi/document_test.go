package openapi

import (
	"testing"

	"github.com/kolah/brunoapi/internal/model"
	"github.com/pb33f/libopenapi"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/stretchr/testify/require"
)

func TestSetOperation(t *testing.T) {
	doc := NewDocument("Test", "1.0.0", "http://localhost")

	replaced, err := SetOperation(doc, "/pets", "GET", &v3.Operation{OperationId: "first"})
	require.NoError(t, err)
	require.False(t, replaced)

	replaced, err = SetOperation(doc, "/pets", "post", &v3.Operation{OperationId: "create"})
	require.NoError(t, err)
	require.False(t, replaced)

	replaced, err = SetOperation(doc, "/pets", "get", &v3.Operation{OperationId: "second"})
	require.NoError(t, err)
	require.True(t, replaced)

	_, err = SetOperation(doc, "/pets", "connect", &v3.Operation{})
	require.Error(t, err)

	item, ok := doc.Paths.PathItems.Get("/pets")
	require.True(t, ok)
	require.Equal(t, "second", item.Get.OperationId)
	require.Equal(t, "create", item.Post.OperationId)

	paths, ops := Counts(doc)
	require.Equal(t, 1, paths)
	require.Equal(t, 2, ops)
}

func TestOperationsOrder(t *testing.T) {
	item := &v3.PathItem{
		Patch: &v3.Operation{OperationId: "patch"},
		Get:   &v3.Operation{OperationId: "get"},
		Post:  &v3.Operation{OperationId: "post"},
	}

	var ids []string
	for _, op := range Operations(item) {
		ids = append(ids, op.OperationId)
	}
	require.Equal(t, []string{"get", "post", "patch"}, ids)
}

func TestFinalize(t *testing.T) {
	doc := NewDocument("Test", "1.0.0", "http://localhost")
	Finalize(doc)
	require.Nil(t, doc.Components)

	doc = NewDocument("Test", "1.0.0", "http://localhost")
	AddSchema(doc, "Thing", &model.Schema{Type: model.TypeString})
	Finalize(doc)
	require.NotNil(t, doc.Components)
	require.Equal(t, 1, doc.Components.Schemas.Len())
}

func TestSchemaProxy(t *testing.T) {
	s := &model.Schema{
		Type: model.TypeObject,
		Properties: []model.Property{
			{Name: "tags", Schema: &model.Schema{Type: model.TypeArray, Items: &model.Schema{Type: model.TypeString}}},
			{Name: "owner", Schema: &model.Schema{Ref: "#/components/schemas/Owner"}},
		},
		Required: []string{"tags"},
	}

	out := SchemaProxy(s).Schema()
	require.Equal(t, []string{"object"}, out.Type)
	require.Equal(t, []string{"tags"}, out.Required)

	var names []string
	for name := range out.Properties.FromOldest() {
		names = append(names, name)
	}
	require.Equal(t, []string{"tags", "owner"}, names)

	tags, ok := out.Properties.Get("tags")
	require.True(t, ok)
	require.Equal(t, []string{"string"}, tags.Schema().Items.A.Schema().Type)

	owner, ok := out.Properties.Get("owner")
	require.True(t, ok)
	require.True(t, owner.IsReference())
	require.Equal(t, "#/components/schemas/Owner", owner.GetReference())
}

func TestRenderIsLoadable(t *testing.T) {
	doc := NewDocument("Pets", "1.0.0", "http://localhost:3000")
	_, err := SetOperation(doc, "/pets/{id}", "get", &v3.Operation{
		OperationId: "get_pet",
		Summary:     "Get pet",
		Parameters:  []*v3.Parameter{PathParameter("id"), QueryParameter("verbose")},
		Responses:   DefaultResponses(),
	})
	require.NoError(t, err)
	Finalize(doc)

	data, err := Render(doc)
	require.NoError(t, err)
	require.Contains(t, string(data), `"openapi": "3.0.0"`)

	loaded, err := libopenapi.NewDocument(data)
	require.NoError(t, err)
	built, err := loaded.BuildV3Model()
	require.NoError(t, err)

	item, ok := built.Model.Paths.PathItems.Get("/pets/{id}")
	require.True(t, ok)
	require.Equal(t, "get_pet", item.Get.OperationId)
	require.Len(t, item.Get.Parameters, 2)
	require.True(t, *item.Get.Parameters[0].Required)
}

func TestValidate(t *testing.T) {
	doc := NewDocument("Pets", "1.0.0", "http://localhost:3000")
	_, err := SetOperation(doc, "/pets", "get", &v3.Operation{
		OperationId: "list_pets",
		Responses:   DefaultResponses(),
	})
	require.NoError(t, err)
	Finalize(doc)

	data, err := Render(doc)
	require.NoError(t, err)

	problems, err := Validate(data)
	require.NoError(t, err)
	require.Empty(t, problems)

	_, err = Validate([]byte("not an openapi document"))
	require.Error(t, err)
}
