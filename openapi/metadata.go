package openapi

import "reflect"

// RouteDef describes one (path, method, handler) triple supplied by the
// caller or a web-framework adapter. The optional fields act as fallbacks:
// metadata attached to the handler takes precedence during the merge.
//
// Path uses {name} placeholders for path parameters and Method is a valid
// HTTP verb. RouteDefs are read-only to the engine.
type RouteDef struct {
	Path    string
	Method  string
	Handler any

	Summary     string
	Description string
	Tags        []string
	Parameters  []*Parameter

	// Metadata overrides the registry lookup for Handler when set. This
	// makes the bag usable as a first-class value without handler stashing.
	Metadata *Metadata
}

// Body pairs a request or response body value type with its presentation
// attributes. Value is a Go value whose type drives schema generation, or a
// *Schema used verbatim.
type Body struct {
	Value       any
	MediaType   string
	Required    *bool
	Description string
	Example     any
	Examples    map[string]any
}

// QueryParam describes a single query-string parameter.
type QueryParam struct {
	Value           any
	Default         any
	Required        bool
	Description     string
	Deprecated      bool
	AllowEmptyValue bool
	Style           string
	Explode         *bool
	Example         any
	Examples        map[string]any
}

// HeaderParam describes a request header parameter or a response header.
type HeaderParam struct {
	Value           any
	Description     string
	Required        bool
	Deprecated      bool
	AllowEmptyValue bool
	Example         any
	Examples        map[string]any
}

// CookieParam describes a cookie parameter.
type CookieParam struct {
	Value           any
	Description     string
	Required        bool
	Deprecated      bool
	AllowEmptyValue bool
	Example         any
	Examples        map[string]any
}

// Docs carries generic operation documentation. All fields are optional;
// non-empty values win over the corresponding RouteDef fields, and Tags are
// appended to the RouteDef tags.
type Docs struct {
	Summary          string
	Description      string
	Tags             []string
	OperationID      string
	ExternalDocsURL  string
	ExternalDocsDesc string
	Deprecated       bool
}

// RequestSchema describes the request side of an operation: at most one body
// plus any number of query parameters, headers, and cookies.
//
// The body is given either as a whole Body value or piecewise through the
// BodyValue/Body* fields. Mixing both forms is a contract violation reported
// as a MetadataConflictError at build time.
type RequestSchema struct {
	Body *Body

	BodyValue       any
	MediaType       string
	BodyRequired    *bool
	BodyDescription string
	BodyExample     any
	BodyExamples    map[string]any

	QueryParams map[string]*QueryParam
	Headers     map[string]*HeaderParam
	Cookies     map[string]*CookieParam
}

// ResponseSchema describes one response of an operation. HTTPCode defaults
// to 200 and MediaType is resolved through the plugin dispatcher when empty.
type ResponseSchema struct {
	Body        any
	HTTPCode    int
	MediaType   string
	Description string
	Headers     map[string]*HeaderParam
	Example     any
	Examples    map[string]any
}

// Annotation kinds stored in a Metadata bag.
const (
	kindDocs     = "docs"
	kindRequest  = "request"
	kindResponse = "response"
	kindSecurity = "security"
)

// metaEntry is one annotation application. Exactly one descriptor field is
// set, selected by kind. Entry order is the order of application.
type metaEntry struct {
	kind     string
	docs     *Docs
	request  *RequestSchema
	response *ResponseSchema
	security []SecuritySchemes
}

// SecuritySchemes maps scheme names to their definitions for one
// OR-alternative of an operation's security requirements.
type SecuritySchemes map[string]*SecurityScheme

// Metadata is the append-only bag of annotations attached to one handler.
// One bag per handler, created lazily on the first annotation and never
// shared across handlers.
//
// The attachment methods are chainable and never fail; invalid combinations
// (a non-repeatable annotation applied twice, or a request mixing whole-body
// and piecewise body fields) are reported by Build before the offending
// operation is emitted.
type Metadata struct {
	entries []metaEntry
}

// Docs attaches generic operation documentation. Not repeatable.
func (m *Metadata) Docs(d Docs) *Metadata {
	m.entries = append(m.entries, metaEntry{kind: kindDocs, docs: &d})
	return m
}

// Request attaches the request descriptor. Not repeatable.
func (m *Metadata) Request(r RequestSchema) *Metadata {
	m.entries = append(m.entries, metaEntry{kind: kindRequest, request: &r})
	return m
}

// Response attaches one response descriptor. Repeatable: each application
// produces one entry under its status code, distinguished by media type.
func (m *Metadata) Response(r ResponseSchema) *Metadata {
	m.entries = append(m.entries, metaEntry{kind: kindResponse, response: &r})
	return m
}

// Security attaches the operation's security requirements. Each requirement
// map is one OR-alternative; schemes within a map are required together.
// Not repeatable.
func (m *Metadata) Security(requirements ...SecuritySchemes) *Metadata {
	m.entries = append(m.entries, metaEntry{kind: kindSecurity, security: requirements})
	return m
}

// validate checks the bag invariants: non-repeatable kinds applied at most
// once and the whole-body xor piecewise-body rule on request descriptors.
func (m *Metadata) validate() error {
	counts := make(map[string]int, 3)
	for _, e := range m.entries {
		if e.kind != kindResponse {
			counts[e.kind]++
			if counts[e.kind] > 1 {
				return &MetadataConflictError{
					Kind:   e.kind,
					Reason: "applied more than once to the same handler",
				}
			}
		}
		if e.kind == kindRequest {
			if err := e.request.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *RequestSchema) validate() error {
	if r.Body == nil {
		return nil
	}
	piecewise := r.BodyValue != nil ||
		r.MediaType != "" ||
		r.BodyRequired != nil ||
		r.BodyDescription != "" ||
		r.BodyExample != nil ||
		r.BodyExamples != nil
	if piecewise {
		return &MetadataConflictError{
			Kind:   kindRequest,
			Reason: "whole-body Body and piecewise body fields are mutually exclusive",
		}
	}
	return nil
}

// body normalizes the two request body forms into a single Body value,
// or nil when the descriptor carries no body at all.
func (r *RequestSchema) body() *Body {
	if r.Body != nil {
		return r.Body
	}
	if r.BodyValue == nil && r.MediaType == "" {
		return nil
	}
	return &Body{
		Value:       r.BodyValue,
		MediaType:   r.MediaType,
		Required:    r.BodyRequired,
		Description: r.BodyDescription,
		Example:     r.BodyExample,
		Examples:    r.BodyExamples,
	}
}

// Registry associates Metadata bags with handler identities. Function
// handlers are keyed by code pointer; any other comparable handler value is
// keyed directly.
//
// A Registry is not safe for concurrent use; annotations are expected to be
// applied during program initialization, before Build runs.
type Registry struct {
	bags map[any]*Metadata
}

// NewRegistry creates an empty metadata registry.
func NewRegistry() *Registry {
	return &Registry{bags: make(map[any]*Metadata)}
}

// DefaultRegistry backs the package-level Describe function.
var DefaultRegistry = NewRegistry()

// Describe returns the Metadata bag for the handler, creating it on first
// use. Subsequent calls for the same handler return the same bag.
func (r *Registry) Describe(handler any) *Metadata {
	key := handlerKey(handler)
	if m, ok := r.bags[key]; ok {
		return m
	}
	m := &Metadata{}
	r.bags[key] = m
	return m
}

// Lookup returns the Metadata bag attached to the handler, or nil when the
// handler carries no annotations.
func (r *Registry) Lookup(handler any) *Metadata {
	if handler == nil {
		return nil
	}
	return r.bags[handlerKey(handler)]
}

// Describe returns the handler's Metadata bag in the default registry,
// creating it on first use:
//
//	openapi.Describe(getUser).
//	    Docs(openapi.Docs{Summary: "Get user by ID", Tags: []string{"users"}}).
//	    Response(openapi.ResponseSchema{Body: User{}})
func Describe(handler any) *Metadata {
	return DefaultRegistry.Describe(handler)
}

// handlerKey derives a map key from a handler identity. Functions are not
// comparable, so their code pointer is used instead.
func handlerKey(handler any) any {
	if handler == nil {
		return nil
	}
	if v := reflect.ValueOf(handler); v.Kind() == reflect.Func {
		return v.Pointer()
	}
	return handler
}
