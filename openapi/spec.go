package openapi

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// Defaults applied when constructing a fresh document.
const (
	DefaultTitle          = "API"
	DefaultVersion        = "1.0.0"
	DefaultOpenAPIVersion = "3.1.0"
)

// pathVarRegexp matches path template placeholders in the form {name}.
var pathVarRegexp = regexp.MustCompile(`\{([^}]+)\}`)

// Spec collects configuration and builds a complete OpenAPI Document from
// route definitions. A Spec (and the Document being built) must not be used
// from multiple goroutines; builds run synchronously.
type Spec struct {
	info            Info
	openAPIVersion  string
	servers         []Server
	securitySchemes map[string]*SecurityScheme
	security        []SecurityRequirement
	tags            []Tag
	plugins         []Plugin
	registry        *Registry
	doc             *Document
}

// NewSpec creates a spec builder with the given API info. Empty title and
// version fall back to "API" and "1.0.0".
func NewSpec(info Info) *Spec {
	if info.Title == "" {
		info.Title = DefaultTitle
	}
	if info.Version == "" {
		info.Version = DefaultVersion
	}
	return &Spec{
		info:           info,
		openAPIVersion: DefaultOpenAPIVersion,
		registry:       DefaultRegistry,
	}
}

// NewSpecFromDocument creates a spec builder that reuses and mutates an
// existing document instead of constructing a fresh one. Component names
// already present keep their uniqueness guarantees during the build.
func NewSpecFromDocument(doc *Document) *Spec {
	return &Spec{
		doc:      doc,
		registry: DefaultRegistry,
	}
}

// SetOpenAPIVersion overrides the document's openapi version string
// (default "3.1.0"). Only the string is configurable; the document layout
// always follows the 3.1 object model.
func (s *Spec) SetOpenAPIVersion(version string) *Spec {
	s.openAPIVersion = version
	return s
}

// AddServer adds a server to the document.
func (s *Spec) AddServer(server Server) *Spec {
	s.servers = append(s.servers, server)
	return s
}

// AddServerURL adds a server given only its URL.
func (s *Spec) AddServerURL(url string) *Spec {
	return s.AddServer(Server{URL: url})
}

// AddSecurityScheme registers a reusable security scheme in components.
func (s *Spec) AddSecurityScheme(name string, scheme *SecurityScheme) *Spec {
	if s.securitySchemes == nil {
		s.securitySchemes = make(map[string]*SecurityScheme)
	}
	s.securitySchemes[name] = scheme
	return s
}

// SetSecurity sets the document-level security requirements.
func (s *Spec) SetSecurity(reqs ...SecurityRequirement) *Spec {
	s.security = reqs
	return s
}

// AddTag adds a user-defined tag with optional description and external docs.
func (s *Spec) AddTag(tag Tag) *Spec {
	s.tags = append(s.tags, tag)
	return s
}

// UsePlugin appends plugins consulted before the built-in defaults, in the
// order given.
func (s *Spec) UsePlugin(plugins ...Plugin) *Spec {
	s.plugins = append(s.plugins, plugins...)
	return s
}

// WithRegistry selects the metadata registry consulted for handler
// annotations (default: the package-level DefaultRegistry).
func (s *Spec) WithRegistry(r *Registry) *Spec {
	s.registry = r
	return s
}

// Build merges the route definitions with their handlers' metadata into a
// single OpenAPI document. Routes are processed in the order supplied.
//
// All errors are fatal: the build never skips a broken route, because a
// document with silent gaps is worse than a hard failure at build time.
func (s *Spec) Build(routes []RouteDef) (*Document, error) {
	doc := s.doc
	if doc == nil {
		doc = &Document{
			OpenAPI:  s.openAPIVersion,
			Info:     s.info,
			Servers:  s.servers,
			Security: s.security,
		}
	}
	if doc.Paths == nil {
		doc.Paths = make(map[string]*PathItem)
	}

	for _, name := range sortedKeys(s.securitySchemes) {
		if err := doc.registerSecurityScheme(name, s.securitySchemes[name]); err != nil {
			return nil, err
		}
	}

	gen := NewSchemaGenerator(doc)
	m := &merger{
		doc:      doc,
		registry: s.registry,
		dispatch: newPluginDispatcher(s.plugins, gen),
	}

	for _, route := range routes {
		op, err := m.mergeRoute(route)
		if err != nil {
			return nil, err
		}

		pathItem := doc.Paths[route.Path]
		if pathItem == nil {
			pathItem = &PathItem{}
			doc.Paths[route.Path] = pathItem
		}
		if err := assignOperation(pathItem, route, op); err != nil {
			return nil, err
		}
	}

	doc.Tags = mergeTags(s.tags, doc.Paths)
	return doc, nil
}

// assignOperation assigns an operation to the path item slot for the route's
// HTTP method. An occupied slot means the same (path, method) pair was
// supplied twice, which is a caller programming error.
func assignOperation(pathItem *PathItem, route RouteDef, op *Operation) error {
	var slot **Operation
	switch strings.ToUpper(route.Method) {
	case "GET":
		slot = &pathItem.Get
	case "PUT":
		slot = &pathItem.Put
	case "POST":
		slot = &pathItem.Post
	case "DELETE":
		slot = &pathItem.Delete
	case "OPTIONS":
		slot = &pathItem.Options
	case "HEAD":
		slot = &pathItem.Head
	case "PATCH":
		slot = &pathItem.Patch
	case "TRACE":
		slot = &pathItem.Trace
	default:
		return fmt.Errorf("openapi: invalid HTTP method %q for path %s", route.Method, route.Path)
	}
	if *slot != nil {
		return &DuplicateOperationError{Method: strings.ToUpper(route.Method), Path: route.Path}
	}
	*slot = op
	return nil
}

// PathParameters extracts {name} placeholders from a path template and
// returns one required path parameter per placeholder, with a string schema.
// Adapters use this to synthesize parameters for RouteDefs.
func PathParameters(path string) []*Parameter {
	var params []*Parameter
	for _, match := range pathVarRegexp.FindAllStringSubmatch(path, -1) {
		params = append(params, &Parameter{
			Name:     match[1],
			In:       InPath,
			Required: true,
			Schema:   &Schema{Type: "string"},
		})
	}
	return params
}

// mergeTags combines auto-collected tags from operations with user-defined
// tags. User-defined tags keep their description and external docs; tags
// defined but unused are still included. The result is sorted by name.
func mergeTags(userDefined []Tag, paths map[string]*PathItem) []Tag {
	userTags := make(map[string]Tag, len(userDefined))
	for _, tag := range userDefined {
		userTags[tag.Name] = tag
	}

	seen := make(map[string]bool)
	var tags []Tag

	for _, pathItem := range paths {
		for _, op := range []*Operation{
			pathItem.Get, pathItem.Post, pathItem.Put,
			pathItem.Delete, pathItem.Patch, pathItem.Head,
			pathItem.Options, pathItem.Trace,
		} {
			if op == nil {
				continue
			}
			for _, tagName := range op.Tags {
				if seen[tagName] {
					continue
				}
				seen[tagName] = true
				if userTag, ok := userTags[tagName]; ok {
					tags = append(tags, userTag)
				} else {
					tags = append(tags, Tag{Name: tagName})
				}
			}
		}
	}

	for _, tag := range userDefined {
		if !seen[tag.Name] {
			seen[tag.Name] = true
			tags = append(tags, tag)
		}
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})
	return tags
}

// componentSchema looks up a named schema in the document components.
func (d *Document) componentSchema(name string) (*Schema, bool) {
	if d.Components == nil || d.Components.Schemas == nil {
		return nil, false
	}
	s, ok := d.Components.Schemas[name]
	return s, ok
}

// setComponentSchema stores a named schema, creating the components maps on
// first use.
func (d *Document) setComponentSchema(name string, schema *Schema) {
	if d.Components == nil {
		d.Components = &Components{}
	}
	if d.Components.Schemas == nil {
		d.Components.Schemas = make(map[string]*Schema)
	}
	d.Components.Schemas[name] = schema
}

// registerSecurityScheme stores a named security scheme, applying the same
// uniqueness rule as component schemas: identical redefinition is
// idempotent, a structurally different definition is a conflict.
func (d *Document) registerSecurityScheme(name string, scheme *SecurityScheme) error {
	if d.Components == nil {
		d.Components = &Components{}
	}
	if d.Components.SecuritySchemes == nil {
		d.Components.SecuritySchemes = make(map[string]*SecurityScheme)
	}
	if existing, ok := d.Components.SecuritySchemes[name]; ok {
		if reflect.DeepEqual(existing, scheme) {
			return nil
		}
		return &SchemaConflictError{Component: ComponentSecurityScheme, Name: name}
	}
	d.Components.SecuritySchemes[name] = scheme
	return nil
}
