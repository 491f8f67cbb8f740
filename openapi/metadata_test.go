package openapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDescribe(t *testing.T) {
	r := NewRegistry()

	handler := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	t.Run("creates on first use", func(t *testing.T) {
		m := r.Describe(handler)
		require.NotNil(t, m)
		assert.Same(t, m, r.Lookup(handler))
	})

	t.Run("same bag on repeat", func(t *testing.T) {
		assert.Same(t, r.Describe(handler), r.Describe(handler))
	})

	t.Run("distinct handlers get distinct bags", func(t *testing.T) {
		other := func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}
		assert.NotSame(t, r.Describe(handler), r.Describe(other))
	})

	t.Run("lookup without describe", func(t *testing.T) {
		assert.Nil(t, r.Lookup(func() {}))
	})

	t.Run("nil handler", func(t *testing.T) {
		assert.Nil(t, r.Lookup(nil))
	})

	t.Run("non-func handler", func(t *testing.T) {
		m := r.Describe("users.list")
		assert.Same(t, m, r.Lookup("users.list"))
	})
}

func TestMetadataChaining(t *testing.T) {
	m := (&Metadata{}).
		Docs(Docs{Summary: "List users"}).
		Request(RequestSchema{BodyValue: struct{}{}}).
		Response(ResponseSchema{HTTPCode: 200}).
		Response(ResponseSchema{HTTPCode: 404}).
		Security(SecuritySchemes{"basic": {Type: "http", Scheme: "basic"}})

	assert.Len(t, m.entries, 5)
	require.NoError(t, m.validate())
}

func TestMetadataValidate(t *testing.T) {
	t.Run("repeated docs", func(t *testing.T) {
		m := (&Metadata{}).
			Docs(Docs{Summary: "one"}).
			Docs(Docs{Summary: "two"})

		err := m.validate()
		var conflict *MetadataConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "docs", conflict.Kind)
	})

	t.Run("repeated request", func(t *testing.T) {
		m := (&Metadata{}).
			Request(RequestSchema{}).
			Request(RequestSchema{})

		err := m.validate()
		var conflict *MetadataConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "request", conflict.Kind)
	})

	t.Run("repeated security", func(t *testing.T) {
		m := (&Metadata{}).
			Security(SecuritySchemes{"a": {Type: "http"}}).
			Security(SecuritySchemes{"b": {Type: "http"}})

		err := m.validate()
		var conflict *MetadataConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "security", conflict.Kind)
	})

	t.Run("repeated response is allowed", func(t *testing.T) {
		m := (&Metadata{}).
			Response(ResponseSchema{HTTPCode: 200}).
			Response(ResponseSchema{HTTPCode: 201}).
			Response(ResponseSchema{HTTPCode: 400})

		require.NoError(t, m.validate())
	})

	t.Run("whole body and piecewise body", func(t *testing.T) {
		m := (&Metadata{}).Request(RequestSchema{
			Body:      &Body{Value: struct{}{}},
			BodyValue: struct{}{},
		})

		err := m.validate()
		var conflict *MetadataConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "request", conflict.Kind)
		assert.Contains(t, conflict.Reason, "mutually exclusive")
	})

	t.Run("whole body alone", func(t *testing.T) {
		m := (&Metadata{}).Request(RequestSchema{Body: &Body{Value: struct{}{}}})
		require.NoError(t, m.validate())
	})
}

func TestRequestSchemaBody(t *testing.T) {
	t.Run("whole body", func(t *testing.T) {
		b := &Body{Value: 1}
		r := RequestSchema{Body: b}
		assert.Same(t, b, r.body())
	})

	t.Run("piecewise", func(t *testing.T) {
		required := true
		r := RequestSchema{
			BodyValue:       1,
			MediaType:       "application/json",
			BodyRequired:    &required,
			BodyDescription: "payload",
		}
		b := r.body()
		require.NotNil(t, b)
		assert.Equal(t, 1, b.Value)
		assert.Equal(t, "application/json", b.MediaType)
		assert.True(t, *b.Required)
		assert.Equal(t, "payload", b.Description)
	})

	t.Run("media type only", func(t *testing.T) {
		r := RequestSchema{MediaType: "application/octet-stream"}
		b := r.body()
		require.NotNil(t, b)
		assert.Nil(t, b.Value)
	})

	t.Run("no body", func(t *testing.T) {
		r := RequestSchema{QueryParams: map[string]*QueryParam{"q": {}}}
		assert.Nil(t, r.body())
	})
}
