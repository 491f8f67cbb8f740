package openapi

import (
	"net/http"
	"sort"
	"strconv"
)

// merger assembles one Operation per route from the route definition and the
// handler's metadata bag. It owns no state beyond the build in progress.
type merger struct {
	doc      *Document
	registry *Registry
	dispatch *pluginDispatcher
}

// mergeRoute combines the route definition's own fields with the decorator
// metadata attached to its handler. Decorator values win for summary,
// description, and generic docs; decorator-derived parameters are appended
// after the route-definition parameters. A handler with no metadata still
// yields a minimal operation with a default 200 response.
func (m *merger) mergeRoute(route RouteDef) (*Operation, error) {
	meta := route.Metadata
	if meta == nil {
		meta = m.registry.Lookup(route.Handler)
	}

	op := &Operation{
		Summary:     route.Summary,
		Description: route.Description,
		Tags:        append([]string(nil), route.Tags...),
		Parameters:  append([]*Parameter(nil), route.Parameters...),
	}

	if meta != nil {
		if err := meta.validate(); err != nil {
			return nil, err
		}
		for _, entry := range meta.entries {
			var err error
			switch entry.kind {
			case kindDocs:
				m.applyDocs(op, entry.docs)
			case kindRequest:
				err = m.applyRequest(op, entry.request)
			case kindResponse:
				err = m.applyResponse(op, entry.response)
			case kindSecurity:
				err = m.applySecurity(op, entry.security)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	if len(op.Responses) == 0 {
		op.Responses = map[string]*Response{
			"200": {Description: responseDescription("200")},
		}
	}
	return op, nil
}

// applyDocs overlays generic documentation onto the operation. Non-empty
// decorator fields win over the route-definition values already in place;
// tags accumulate.
func (m *merger) applyDocs(op *Operation, docs *Docs) {
	if docs.Summary != "" {
		op.Summary = docs.Summary
	}
	if docs.Description != "" {
		op.Description = docs.Description
	}
	op.Tags = append(op.Tags, docs.Tags...)
	if docs.OperationID != "" {
		op.OperationID = docs.OperationID
	}
	if docs.ExternalDocsURL != "" {
		op.ExternalDocs = &ExternalDocs{
			URL:         docs.ExternalDocsURL,
			Description: docs.ExternalDocsDesc,
		}
	}
	if docs.Deprecated {
		op.Deprecated = true
	}
}

// applyRequest builds the request body content map and one parameter per
// query-param/header/cookie entry.
func (m *merger) applyRequest(op *Operation, req *RequestSchema) error {
	if body := req.body(); body != nil {
		rb, err := m.buildRequestBody(body)
		if err != nil {
			return err
		}
		op.RequestBody = rb
	}

	for _, name := range sortedKeys(req.QueryParams) {
		param, err := m.buildQueryParam(name, req.QueryParams[name])
		if err != nil {
			return err
		}
		op.Parameters = append(op.Parameters, param)
	}
	for _, name := range sortedKeys(req.Headers) {
		param, err := m.buildHeaderParam(name, req.Headers[name])
		if err != nil {
			return err
		}
		op.Parameters = append(op.Parameters, param)
	}
	for _, name := range sortedKeys(req.Cookies) {
		param, err := m.buildCookieParam(name, req.Cookies[name])
		if err != nil {
			return err
		}
		op.Parameters = append(op.Parameters, param)
	}
	return nil
}

func (m *merger) buildRequestBody(body *Body) (*RequestBody, error) {
	rb := &RequestBody{Description: body.Description}
	if body.Required != nil {
		rb.Required = *body.Required
	}

	schema, mediaType, err := m.resolveBody(body)
	if err != nil {
		return nil, err
	}
	if mediaType != "" {
		rb.Content = map[string]*MediaType{
			mediaType: {
				Schema:   schema,
				Example:  body.Example,
				Examples: buildExamples(body.Examples),
			},
		}
	}
	return rb, nil
}

// resolveBody builds the body schema and determines its media type through
// the plugin dispatcher. A body with no value but an explicit media type
// yields an unconstrained entry under that media type.
func (m *merger) resolveBody(body *Body) (*Schema, string, error) {
	mediaType := body.MediaType
	var schema *Schema

	if body.Value != nil {
		built, err := m.dispatch.schema(body, "")
		if err != nil {
			return nil, "", err
		}
		schema = built
		if mediaType == "" {
			mediaType, err = m.dispatch.mediaType(body, built)
			if err != nil {
				return nil, "", err
			}
		}
	}

	if isEmptySchema(schema) {
		schema = nil
	}
	return schema, mediaType, nil
}

func (m *merger) buildQueryParam(name string, qp *QueryParam) (*Parameter, error) {
	schema, err := m.dispatch.schema(qp, name)
	if err != nil {
		return nil, err
	}
	return &Parameter{
		Name:            name,
		In:              InQuery,
		Description:     qp.Description,
		Required:        qp.Required,
		Deprecated:      qp.Deprecated,
		AllowEmptyValue: qp.AllowEmptyValue,
		Style:           qp.Style,
		Explode:         qp.Explode,
		Schema:          schema,
		Example:         qp.Example,
		Examples:        buildExamples(qp.Examples),
	}, nil
}

func (m *merger) buildHeaderParam(name string, hp *HeaderParam) (*Parameter, error) {
	schema, err := m.dispatch.schema(hp, name)
	if err != nil {
		return nil, err
	}
	return &Parameter{
		Name:            name,
		In:              InHeader,
		Description:     hp.Description,
		Required:        hp.Required,
		Deprecated:      hp.Deprecated,
		AllowEmptyValue: hp.AllowEmptyValue,
		Schema:          schema,
		Example:         hp.Example,
		Examples:        buildExamples(hp.Examples),
	}, nil
}

func (m *merger) buildCookieParam(name string, cp *CookieParam) (*Parameter, error) {
	schema, err := m.dispatch.schema(cp, name)
	if err != nil {
		return nil, err
	}
	return &Parameter{
		Name:            name,
		In:              InCookie,
		Description:     cp.Description,
		Required:        cp.Required,
		Deprecated:      cp.Deprecated,
		AllowEmptyValue: cp.AllowEmptyValue,
		Schema:          schema,
		Example:         cp.Example,
		Examples:        buildExamples(cp.Examples),
	}, nil
}

// applyResponse merges one response descriptor into the operation's
// responses map. Entries for the same status code merge by media type, with
// a later application overriding an earlier one at the same media type.
func (m *merger) applyResponse(op *Operation, rs *ResponseSchema) error {
	code := rs.HTTPCode
	if code == 0 {
		code = http.StatusOK
	}
	key := strconv.Itoa(code)

	if op.Responses == nil {
		op.Responses = make(map[string]*Response)
	}
	resp := op.Responses[key]
	if resp == nil {
		resp = &Response{}
		op.Responses[key] = resp
	}

	if rs.Description != "" {
		resp.Description = rs.Description
	} else if resp.Description == "" {
		resp.Description = responseDescription(key)
	}

	if len(rs.Headers) > 0 {
		headers := make(map[string]*Header, len(rs.Headers))
		for _, name := range sortedKeys(rs.Headers) {
			header, err := m.buildResponseHeader(name, rs.Headers[name])
			if err != nil {
				return err
			}
			headers[name] = header
		}
		resp.Headers = headers
	}

	body := &Body{
		Value:     rs.Body,
		MediaType: rs.MediaType,
		Example:   rs.Example,
		Examples:  rs.Examples,
	}
	schema, mediaType, err := m.resolveBody(body)
	if err != nil {
		return err
	}
	if mediaType != "" {
		if resp.Content == nil {
			resp.Content = make(map[string]*MediaType)
		}
		resp.Content[mediaType] = &MediaType{
			Schema:   schema,
			Example:  rs.Example,
			Examples: buildExamples(rs.Examples),
		}
	}
	return nil
}

func (m *merger) buildResponseHeader(name string, hp *HeaderParam) (*Header, error) {
	schema, err := m.dispatch.schema(hp, name)
	if err != nil {
		return nil, err
	}
	return &Header{
		Description:     hp.Description,
		Required:        hp.Required,
		Deprecated:      hp.Deprecated,
		AllowEmptyValue: hp.AllowEmptyValue,
		Schema:          schema,
		Example:         hp.Example,
		Examples:        buildExamples(hp.Examples),
	}, nil
}

// applySecurity appends one OR-alternative per requirement map and registers
// every referenced scheme in the document components, applying the name
// uniqueness rule.
func (m *merger) applySecurity(op *Operation, requirements []SecuritySchemes) error {
	for _, requirement := range requirements {
		entry := make(SecurityRequirement, len(requirement))
		for _, name := range sortedKeys(requirement) {
			if err := m.doc.registerSecurityScheme(name, requirement[name]); err != nil {
				return err
			}
			entry[name] = []string{}
		}
		op.Security = append(op.Security, entry)
	}
	return nil
}

// responseDescription returns the default description for a status code:
// standard status text when known, the status-class description otherwise.
func responseDescription(key string) string {
	if code, err := strconv.Atoi(key); err == nil {
		if text := http.StatusText(code); text != "" {
			return text
		}
		if class, ok := statusClassDescriptions[code/100]; ok {
			return class
		}
	}
	return key
}

var statusClassDescriptions = map[int]string{
	1: "Informational",
	2: "Success",
	3: "Redirection",
	4: "Client Error",
	5: "Server Error",
}

func buildExamples(examples map[string]any) map[string]*Example {
	if len(examples) == 0 {
		return nil
	}
	result := make(map[string]*Example, len(examples))
	for key, value := range examples {
		if ex, ok := value.(*Example); ok {
			result[key] = ex
		} else {
			result[key] = &Example{Value: value}
		}
	}
	return result
}

// sortedKeys returns the map keys in lexical order. Descriptor maps have no
// inherent order, so parameter lists derived from them are sorted to keep
// the built document deterministic.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
