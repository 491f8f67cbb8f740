package ginext

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fatal1ty/openapify/openapi"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestConvertPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/users", "/users"},
		{"/users/:id", "/users/{id}"},
		{"/orgs/:org/users/:id", "/orgs/{org}/users/{id}"},
		{"/static/*filepath", "/static/{filepath}"},
		{"/", "/"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ConvertPath(tc.in))
	}
}

func listPets(c *gin.Context)  { c.Status(http.StatusOK) }
func getPet(c *gin.Context)    { c.Status(http.StatusOK) }
func createPet(c *gin.Context) { c.Status(http.StatusCreated) }

type pet struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func petEngine() *gin.Engine {
	r := gin.New()
	r.GET("/pets", listPets)
	r.POST("/pets", createPet)
	r.GET("/pets/:id", getPet)
	return r
}

func TestRoutes(t *testing.T) {
	defs := Routes(petEngine())
	require.Len(t, defs, 3)

	byKey := make(map[string]openapi.RouteDef, len(defs))
	for _, def := range defs {
		byKey[def.Method+" "+def.Path] = def
	}

	require.Contains(t, byKey, "GET /pets")
	require.Contains(t, byKey, "POST /pets")
	require.Contains(t, byKey, "GET /pets/{id}")

	get := byKey["GET /pets/{id}"]
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, "id", get.Parameters[0].Name)
	assert.Equal(t, openapi.InPath, get.Parameters[0].In)
	assert.True(t, get.Parameters[0].Required)
	assert.NotNil(t, get.Handler)
}

func TestRoutesPickUpHandlerMetadata(t *testing.T) {
	registry := openapi.NewRegistry()
	registry.Describe(listPets).
		Docs(openapi.Docs{Summary: "List pets", Tags: []string{"pets"}}).
		Response(openapi.ResponseSchema{Body: []pet{}})

	doc, err := openapi.NewSpec(openapi.Info{Title: "Pets", Version: "1.0.0"}).
		WithRegistry(registry).
		Build(Routes(petEngine()))
	require.NoError(t, err)

	op := doc.Paths["/pets"].Get
	require.NotNil(t, op)
	assert.Equal(t, "List pets", op.Summary)

	schema := op.Responses["200"].Content["application/json"].Schema
	require.NotNil(t, schema)
	assert.Equal(t, "#/components/schemas/pet", schema.Items.Ref)
}

func TestHandle(t *testing.T) {
	engine := petEngine()
	spec := openapi.NewSpec(openapi.Info{Title: "Pets", Version: "1.0.0"}).
		WithRegistry(openapi.NewRegistry())
	Handle(engine, spec, "/docs", nil)

	t.Run("json document", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))

		paths, ok := decoded["paths"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, paths, "/pets")
		assert.Contains(t, paths, "/pets/{id}")
	})

	t.Run("docs ui", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs", nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "swagger-ui")
	})
}
