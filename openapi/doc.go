// Package openapi builds OpenAPI v3.1.0 documents from route definitions
// and metadata attached to HTTP handlers, using Go reflection and struct
// tags for schema generation.
//
// The package targets the OpenAPI Specification v3.1.0 and uses JSON Schema
// Draft 2020-12 for schema generation. It produces a complete OpenAPI
// document from route definitions with zero external schema files.
//
// See: https://spec.openapis.org/oas/v3.1.0
// See: https://json-schema.org/draft/2020-12/json-schema-core
// See: https://json-schema.org/draft/2020-12/json-schema-validation
//
// # Attaching Metadata to Handlers
//
// Describe a handler once, anywhere, and the metadata is picked up when the
// handler appears in a route definition:
//
//	func createUser(w http.ResponseWriter, r *http.Request) { ... }
//
//	func init() {
//	    openapi.Describe(createUser).
//	        Docs(openapi.Docs{
//	            Summary: "Create a user",
//	            Tags:    []string{"users"},
//	        }).
//	        Request(openapi.RequestSchema{BodyValue: CreateUserInput{}}).
//	        Response(openapi.ResponseSchema{Body: User{}, HTTPCode: http.StatusCreated})
//	}
//
// Metadata can also be carried inline on the route definition itself via
// RouteDef.Metadata, which takes precedence over handler-attached metadata.
//
// # Building the Document
//
// Create a spec, hand it the route definitions, and build:
//
//	spec := openapi.NewSpec(openapi.Info{Title: "My API", Version: "1.0.0"})
//
//	doc, err := spec.Build([]openapi.RouteDef{
//	    {Path: "/users", Method: http.MethodPost, Handler: createUser},
//	    {Path: "/users/{id}", Method: http.MethodGet, Handler: getUser,
//	        Parameters: openapi.PathParameters("/users/{id}")},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	data, err := doc.ToYAML()
//
// Routes without attached metadata still produce a valid operation with the
// route's own summary, description, tags, and parameters, and a default
// "200 OK" response.
//
// # Schema Generation
//
// Request and response body values are converted to JSON Schema via
// reflection. Named struct types are registered once under
// #/components/schemas and referenced by $ref everywhere they appear;
// registering two distinct types under the same name fails with
// SchemaConflictError. Struct fields map as follows:
//
//   - field names and omission follow the json struct tag
//   - fields are required unless they are pointers, carry ",omitempty",
//     or declare a default in the openapi tag
//   - time.Time maps to {type: "string", format: "date-time"}
//   - uuid.UUID maps to {type: "string", format: "uuid"}
//   - []byte maps to {type: "string", contentEncoding: "byte"}
//
// Validation keywords and documentation are declared with the openapi
// struct tag:
//
//	type CreateUserInput struct {
//	    Name  string `json:"name" openapi:"minLength=1,maxLength=64"`
//	    Email string `json:"email" openapi:"format=email"`
//	    Age   int    `json:"age,omitempty" openapi:"minimum=0,maximum=150"`
//	    Role  string `json:"role" openapi:"enum=admin|user,default=user"`
//	}
//
// Types implementing the Exampler interface contribute an example value to
// their generated schema.
//
// # Responses
//
// Multiple Response entries per handler accumulate: distinct status codes
// become distinct responses, and distinct media types under the same status
// code merge into one response with multiple content entries. Response
// descriptions default to the standard HTTP status text.
//
// # Security
//
// Attach per-operation security requirements; the named schemes are
// registered under #/components/securitySchemes automatically:
//
//	openapi.Describe(getUser).Security(openapi.SecuritySchemes{
//	    "bearerAuth": {Type: "http", Scheme: "bearer"},
//	})
//
// Document-wide schemes and default requirements are configured on the spec
// with AddSecurityScheme and SetSecurity.
//
// # Plugins
//
// Plugins customize schema generation and media type selection. A plugin
// implements the Plugin interface; embed BasePlugin to pick up no-op
// defaults. For each request body, parameter, and response body, plugins
// are consulted in registration order and the first one that claims the
// value wins; built-in plugins run last and cover reflection-based schema
// generation, binary bodies, and media type guessing.
//
//	spec.UsePlugin(&myPlugin{})
//
// # Serving the Document
//
// Handle registers HTTP endpoints serving the built document as JSON and
// YAML together with an interactive docs UI (Swagger UI, RapiDoc, or
// Redoc):
//
//	mux := http.NewServeMux()
//	spec.Handle(mux, "/docs", routes, nil)
//
// # Determinism
//
// Building the same routes and metadata twice produces byte-identical
// JSON and YAML output: object keys are emitted in sorted order and no
// generation-order state leaks into the document.
package openapi
