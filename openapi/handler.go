package openapi

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"
)

// DocsUI selects which interactive documentation UI to serve.
type DocsUI int

const (
	DocsSwaggerUI DocsUI = iota
	DocsRapiDoc
	DocsRedoc
)

// HandleConfig configures the endpoints registered by Handle. The JSON and
// YAML endpoints serve the serialized OpenAPI document.
type HandleConfig struct {
	// UI selects the interactive docs UI (default: DocsSwaggerUI).
	UI DocsUI

	// Title overrides the HTML page title (default: the spec info title).
	Title string

	// JSONFilename is the path for the JSON document endpoint
	// (default: "openapi.json"). Set to "-" to disable.
	//
	// Relative paths are joined with the base path; absolute paths
	// (starting with "/") are used as-is.
	JSONFilename string

	// YAMLFilename is the path for the YAML document endpoint
	// (default: "openapi.yaml"). Set to "-" to disable. Follows the same
	// absolute/relative rules as JSONFilename.
	YAMLFilename string

	// DisableDocs disables the interactive HTML docs UI endpoint.
	DisableDocs bool
}

func (cfg HandleConfig) jsonFilename() string {
	if cfg.JSONFilename == "" {
		return "openapi.json"
	}
	return cfg.JSONFilename
}

func (cfg HandleConfig) yamlFilename() string {
	if cfg.YAMLFilename == "" {
		return "openapi.yaml"
	}
	return cfg.YAMLFilename
}

// resolvePath returns the full route path for a filename. Absolute
// filenames (starting with "/") are returned as-is; relative filenames are
// joined under basePath.
func resolvePath(basePath, filename string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	if basePath == "" {
		return "/" + filename
	}
	return basePath + "/" + filename
}

// lazyDocument builds the document on first request and caches the result,
// including a build failure. Rebuild-per-request callers should register
// their own handlers instead.
type lazyDocument struct {
	once  sync.Once
	build func() (*Document, error)
	doc   *Document
	err   error
}

func (l *lazyDocument) get() (*Document, error) {
	l.once.Do(func() {
		defer func() {
			if rv := recover(); rv != nil {
				l.err = fmt.Errorf("%v", rv)
			}
		}()
		l.doc, l.err = l.build()
	})
	return l.doc, l.err
}

// Handle registers documentation endpoints under the given base path:
//
//	<basePath>/            - interactive HTML docs (unless DisableDocs)
//	<JSONFilename path>    - OpenAPI document as JSON  (unless "-")
//	<YAMLFilename path>    - OpenAPI document as YAML  (unless "-")
//
// The cfg parameter is optional; pass nil for defaults:
//
//	spec.Handle(mux, "/docs", routes, nil)
//
// The document is built once on first request and cached.
func (s *Spec) Handle(mux *http.ServeMux, basePath string, routes []RouteDef, cfg *HandleConfig) {
	if cfg == nil {
		cfg = &HandleConfig{}
	}
	basePath = strings.TrimRight(basePath, "/")

	lazy := &lazyDocument{build: func() (*Document, error) {
		return s.Build(routes)
	}}

	var jsonPath, yamlPath string

	if file := cfg.jsonFilename(); file != "-" {
		jsonPath = resolvePath(basePath, file)
		registerDocument(mux, jsonPath, lazy, "application/json", (*Document).ToJSON)
	}
	if file := cfg.yamlFilename(); file != "-" {
		yamlPath = resolvePath(basePath, file)
		registerDocument(mux, yamlPath, lazy, "application/x-yaml", (*Document).ToYAML)
	}

	if !cfg.DisableDocs {
		specURL := jsonPath
		if specURL == "" {
			specURL = yamlPath
		}
		// Skip the docs page when no document endpoint is available.
		if specURL != "" {
			s.registerDocs(mux, basePath, cfg, specURL)
		}
	}
}

// registerDocument registers a handler serving the built document in the
// given rendering.
func registerDocument(mux *http.ServeMux, path string, lazy *lazyDocument, contentType string, render func(*Document) ([]byte, error)) {
	var (
		once sync.Once
		data []byte
	)
	mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
		doc, err := lazy.get()
		if err == nil {
			once.Do(func() {
				data, err = render(doc)
			})
		}
		if err != nil || data == nil {
			http.Error(w, "failed to build OpenAPI document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
}

// registerDocs registers a handler serving the interactive HTML docs UI.
func (s *Spec) registerDocs(mux *http.ServeMux, basePath string, cfg *HandleConfig, specURL string) {
	var (
		once sync.Once
		data []byte
	)
	handler := func(w http.ResponseWriter, _ *http.Request) {
		once.Do(func() {
			title := cfg.Title
			if title == "" {
				title = s.info.Title
			}

			var page string
			switch cfg.UI {
			case DocsRapiDoc:
				page = rapidocTemplate(title, specURL)
			case DocsRedoc:
				page = redocTemplate(title, specURL)
			default:
				page = swaggerUITemplate(title, specURL)
			}
			data = []byte(page)
		})
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
	if basePath == "" {
		mux.HandleFunc("/{$}", handler)
	} else {
		mux.HandleFunc(basePath, handler)
		mux.HandleFunc(basePath+"/{$}", handler)
	}
}

func swaggerUITemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: %q, dom_id: "#swagger-ui"});
</script>
</body>
</html>`, html.EscapeString(title), specPath)
}

func rapidocTemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>
</head>
<body>
<rapi-doc spec-url=%q></rapi-doc>
</body>
</html>`, html.EscapeString(title), specPath)
}

func redocTemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body>
<redoc spec-url=%q></redoc>
<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`, html.EscapeString(title), specPath)
}
