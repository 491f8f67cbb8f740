// Package ginext bridges gin routers and openapi document generation. It
// converts the routes registered on a gin engine into route definitions
// that a Spec can build into an OpenAPI document.
package ginext

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Fatal1ty/openapify/openapi"
)

// Routes converts all routes registered on the engine into route
// definitions. Gin path parameters (":name" and "*name" segments) become
// OpenAPI template parameters ("{name}"), and matching required path
// parameters are synthesized on each definition.
//
// The final handler of each route is used as the metadata handler, so
// metadata attached with openapi.Describe on that handler is picked up:
//
//	r := gin.New()
//	r.GET("/users/:id", getUser)
//
//	spec := openapi.NewSpec(openapi.Info{Title: "My API", Version: "1.0.0"})
//	doc, err := spec.Build(ginext.Routes(r))
func Routes(engine *gin.Engine) []openapi.RouteDef {
	var defs []openapi.RouteDef
	for _, route := range engine.Routes() {
		path := ConvertPath(route.Path)
		defs = append(defs, openapi.RouteDef{
			Path:       path,
			Method:     route.Method,
			Handler:    route.HandlerFunc,
			Parameters: openapi.PathParameters(path),
		})
	}
	return defs
}

// ConvertPath rewrites a gin route path to OpenAPI path template syntax:
// ":name" and "*name" segments become "{name}".
func ConvertPath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if len(segment) < 2 {
			continue
		}
		switch segment[0] {
		case ':', '*':
			segments[i] = "{" + segment[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

// Handle registers documentation endpoints on the engine under basePath
// (default "/docs"), serving the document built from the engine's current
// routes. It must be called after all API routes are registered. See
// openapi.Spec.Handle for the endpoint layout and configuration.
func Handle(engine *gin.Engine, spec *openapi.Spec, basePath string, cfg *openapi.HandleConfig) {
	basePath = strings.TrimRight(basePath, "/")
	if basePath == "" {
		basePath = "/docs"
	}

	mux := http.NewServeMux()
	spec.Handle(mux, basePath, Routes(engine), cfg)

	wrap := gin.WrapH(mux)
	engine.GET(basePath, wrap)
	engine.GET(basePath+"/*any", wrap)
}
