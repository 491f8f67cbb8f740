package openapi

import "reflect"

// Plugin customizes schema generation and media-type selection. Plugins are
// consulted in registration order before the built-in defaults; the first
// hook returning a non-absent result wins and dispatch stops.
//
// A hook reports "not claimed" by returning the zero result (nil schema or
// empty media type) with a nil error. A non-nil error aborts the build.
//
// Embed BasePlugin to implement only the hooks a plugin cares about:
//
//	type csvPlugin struct {
//	    openapi.BasePlugin
//	}
//
//	func (csvPlugin) MediaTypeHelper(body *openapi.Body, schema *openapi.Schema) (string, error) {
//	    if _, ok := body.Value.(CSVDocument); ok {
//	        return "text/csv", nil
//	    }
//	    return "", nil
//	}
type Plugin interface {
	// Init is called once per build with the generator registering into
	// the document under construction. Plugins that register component
	// schemas as a side effect of claiming a value do so through it.
	Init(gen *SchemaGenerator)

	// SchemaHelper converts a descriptor (*Body, *QueryParam,
	// *HeaderParam, or *CookieParam) into a schema fragment. The name is
	// the parameter name, or empty for bodies.
	SchemaHelper(obj any, name string) (*Schema, error)

	// MediaTypeHelper selects the media type for a body whose descriptor
	// does not name one. The schema is the fragment already built for
	// the body.
	MediaTypeHelper(body *Body, schema *Schema) (string, error)
}

// BasePlugin is a no-op Plugin implementation for embedding.
type BasePlugin struct{}

// Init implements Plugin.
func (BasePlugin) Init(*SchemaGenerator) {}

// SchemaHelper implements Plugin; it claims nothing.
func (BasePlugin) SchemaHelper(any, string) (*Schema, error) { return nil, nil }

// MediaTypeHelper implements Plugin; it claims nothing.
func (BasePlugin) MediaTypeHelper(*Body, *Schema) (string, error) { return "", nil }

// binaryBodyPlugin gives raw byte payloads an empty schema so that the
// media-type guesser can classify them as binary.
type binaryBodyPlugin struct {
	BasePlugin
}

func (binaryBodyPlugin) SchemaHelper(obj any, _ string) (*Schema, error) {
	if body, ok := obj.(*Body); ok && isBinaryValue(body.Value) {
		return &Schema{}, nil
	}
	return nil, nil
}

// guessMediaTypePlugin resolves the default media type for bodies:
// application/octet-stream for binary payloads, application/json otherwise.
type guessMediaTypePlugin struct {
	BasePlugin
}

func (guessMediaTypePlugin) MediaTypeHelper(body *Body, schema *Schema) (string, error) {
	if isEmptySchema(schema) && isBinaryValue(body.Value) {
		return "application/octet-stream", nil
	}
	return "application/json", nil
}

// reflectSchemaPlugin is the default schema algorithm: reflection-driven
// generation with component registration, as implemented by SchemaGenerator.
type reflectSchemaPlugin struct {
	BasePlugin
	gen *SchemaGenerator
}

func (p *reflectSchemaPlugin) Init(gen *SchemaGenerator) {
	p.gen = gen
}

func (p *reflectSchemaPlugin) SchemaHelper(obj any, name string) (*Schema, error) {
	switch d := obj.(type) {
	case *Body:
		return p.gen.Generate(d.Value, name)
	case *QueryParam:
		schema, err := p.gen.Generate(paramValue(d.Value), name)
		if err != nil {
			return nil, err
		}
		if d.Default != nil && schema.Ref == "" {
			schema.Default = d.Default
		}
		return schema, nil
	case *HeaderParam:
		return p.gen.Generate(paramValue(d.Value), name)
	case *CookieParam:
		return p.gen.Generate(paramValue(d.Value), name)
	}
	return nil, nil
}

// paramValue defaults untyped parameters to string.
func paramValue(v any) any {
	if v == nil {
		return ""
	}
	return v
}

func isBinaryValue(v any) bool {
	switch v.(type) {
	case []byte, *[]byte:
		return true
	case nil:
		return false
	}
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func isEmptySchema(s *Schema) bool {
	return s == nil || reflect.DeepEqual(s, &Schema{})
}

// pluginDispatcher tries hooks in order: caller plugins first, then the
// built-in defaults. Only one plugin is ever consulted per claim, so partial
// side effects need no rollback.
type pluginDispatcher struct {
	plugins []Plugin
}

// newPluginDispatcher builds the dispatch chain for one build, appending the
// built-in plugins after the caller's and initializing each with the
// generator.
func newPluginDispatcher(plugins []Plugin, gen *SchemaGenerator) *pluginDispatcher {
	chain := make([]Plugin, 0, len(plugins)+3)
	chain = append(chain, plugins...)
	chain = append(chain, binaryBodyPlugin{}, guessMediaTypePlugin{}, &reflectSchemaPlugin{})
	for _, p := range chain {
		p.Init(gen)
	}
	return &pluginDispatcher{plugins: chain}
}

// schema resolves a descriptor to a schema fragment. It returns (nil, nil)
// when no plugin claims the descriptor.
func (d *pluginDispatcher) schema(obj any, name string) (*Schema, error) {
	for _, p := range d.plugins {
		schema, err := p.SchemaHelper(obj, name)
		if err != nil {
			return nil, err
		}
		if schema != nil {
			return schema, nil
		}
	}
	return nil, nil
}

// mediaType resolves the media type for a body with no explicit one.
func (d *pluginDispatcher) mediaType(body *Body, schema *Schema) (string, error) {
	for _, p := range d.plugins {
		mt, err := p.MediaTypeHelper(body, schema)
		if err != nil {
			return "", err
		}
		if mt != "" {
			return mt, nil
		}
	}
	return "", nil
}
