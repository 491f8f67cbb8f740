package openapi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type csvDocument struct {
	Rows [][]string
}

// csvPlugin claims csvDocument bodies with a registered component schema and
// a text/csv media type.
type csvPlugin struct {
	BasePlugin
	gen *SchemaGenerator
}

func (p *csvPlugin) Init(gen *SchemaGenerator) {
	p.gen = gen
}

func (p *csvPlugin) SchemaHelper(obj any, _ string) (*Schema, error) {
	body, ok := obj.(*Body)
	if !ok {
		return nil, nil
	}
	if _, ok := body.Value.(csvDocument); !ok {
		return nil, nil
	}
	schema := &Schema{Type: "string", Description: "CSV rows"}
	if err := p.gen.RegisterSchema("CSVDocument", schema); err != nil {
		return nil, err
	}
	return &Schema{Ref: "#/components/schemas/CSVDocument"}, nil
}

func (p *csvPlugin) MediaTypeHelper(body *Body, _ *Schema) (string, error) {
	if _, ok := body.Value.(csvDocument); ok {
		return "text/csv", nil
	}
	return "", nil
}

func TestPluginClaimsBody(t *testing.T) {
	doc, err := NewSpec(Info{}).
		WithRegistry(NewRegistry()).
		UsePlugin(&csvPlugin{}).
		Build([]RouteDef{
			{
				Path: "/export", Method: http.MethodGet,
				Metadata: (&Metadata{}).Response(ResponseSchema{Body: csvDocument{}}),
			},
		})
	require.NoError(t, err)

	resp := doc.Paths["/export"].Get.Responses["200"]
	require.Contains(t, resp.Content, "text/csv")
	assert.Equal(t, "#/components/schemas/CSVDocument", resp.Content["text/csv"].Schema.Ref)
	assert.Contains(t, doc.Components.Schemas, "CSVDocument")
}

func TestPluginUnclaimedFallsThrough(t *testing.T) {
	doc, err := NewSpec(Info{}).
		WithRegistry(NewRegistry()).
		UsePlugin(&csvPlugin{}).
		Build([]RouteDef{
			{
				Path: "/users", Method: http.MethodGet,
				Metadata: (&Metadata{}).Response(ResponseSchema{Body: userRecord{}}),
			},
		})
	require.NoError(t, err)

	// The CSV plugin declines, so the built-in reflection plugin runs.
	resp := doc.Paths["/users"].Get.Responses["200"]
	require.Contains(t, resp.Content, "application/json")
	assert.Equal(t, "#/components/schemas/userRecord", resp.Content["application/json"].Schema.Ref)
}

// failingPlugin claims everything with an error.
type failingPlugin struct {
	BasePlugin
}

func (failingPlugin) SchemaHelper(obj any, _ string) (*Schema, error) {
	if _, ok := obj.(*Body); ok {
		return nil, errors.New("schema backend unavailable")
	}
	return nil, nil
}

func TestPluginErrorAbortsBuild(t *testing.T) {
	_, err := NewSpec(Info{}).
		WithRegistry(NewRegistry()).
		UsePlugin(failingPlugin{}).
		Build([]RouteDef{
			{
				Path: "/users", Method: http.MethodGet,
				Metadata: (&Metadata{}).Response(ResponseSchema{Body: userRecord{}}),
			},
		})
	require.EqualError(t, err, "schema backend unavailable")
}

// fixedSchemaPlugin claims every body with a constant schema, to observe
// dispatch ordering.
type fixedSchemaPlugin struct {
	BasePlugin
	schema *Schema
}

func (p fixedSchemaPlugin) SchemaHelper(obj any, _ string) (*Schema, error) {
	if _, ok := obj.(*Body); ok {
		return p.schema, nil
	}
	return nil, nil
}

func TestPluginOrderFirstClaimWins(t *testing.T) {
	first := fixedSchemaPlugin{schema: &Schema{Type: "string", Format: "first"}}
	second := fixedSchemaPlugin{schema: &Schema{Type: "string", Format: "second"}}

	doc, err := NewSpec(Info{}).
		WithRegistry(NewRegistry()).
		UsePlugin(first, second).
		Build([]RouteDef{
			{
				Path: "/thing", Method: http.MethodGet,
				Metadata: (&Metadata{}).Response(ResponseSchema{Body: userRecord{}}),
			},
		})
	require.NoError(t, err)

	schema := doc.Paths["/thing"].Get.Responses["200"].Content["application/json"].Schema
	assert.Equal(t, "first", schema.Format)
}

func TestBuiltinMediaTypeGuess(t *testing.T) {
	m, _ := newTestMerger()

	t.Run("structured body is json", func(t *testing.T) {
		mt, err := m.dispatch.mediaType(&Body{Value: userRecord{}}, &Schema{Type: "object"})
		require.NoError(t, err)
		assert.Equal(t, "application/json", mt)
	})

	t.Run("binary body is octet-stream", func(t *testing.T) {
		mt, err := m.dispatch.mediaType(&Body{Value: []byte(nil)}, &Schema{})
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", mt)
	})
}

func TestIsBinaryValue(t *testing.T) {
	assert.True(t, isBinaryValue([]byte(nil)))
	assert.True(t, isBinaryValue(&[]byte{}))

	type blob []byte
	assert.True(t, isBinaryValue(blob(nil)))

	assert.False(t, isBinaryValue(nil))
	assert.False(t, isBinaryValue("text"))
	assert.False(t, isBinaryValue([]int{}))
}
