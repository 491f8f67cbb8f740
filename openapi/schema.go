package openapi

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Exampler can be implemented by types to provide an example value for the
// generated JSON Schema. The returned value is set as the "example" field on
// the registered component schema.
//
//	func (u User) OpenAPIExample() any {
//	    return User{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Alice"}
//	}
type Exampler interface {
	OpenAPIExample() any
}

// SchemaGenerator converts Go values to JSON Schema fragments and registers
// named struct types in the document's component schemas, returning $ref
// fragments on reuse.
//
// Registered names are unique: a second distinct type claiming an occupied
// name fails with a SchemaConflictError, while re-registering a structurally
// identical fragment is idempotent.
type SchemaGenerator struct {
	doc       *Document
	typeNames map[reflect.Type]string
	nameTypes map[string]reflect.Type
}

// NewSchemaGenerator creates a schema generator registering component
// schemas into the given document.
func NewSchemaGenerator(doc *Document) *SchemaGenerator {
	return &SchemaGenerator{
		doc:       doc,
		typeNames: make(map[reflect.Type]string),
		nameTypes: make(map[string]reflect.Type),
	}
}

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// Generate produces a JSON Schema fragment for the given value. A *Schema
// value is passed through verbatim, never re-interpreted. Named struct types
// are registered once under the type name and referenced via $ref afterward.
//
// The context parameter names the field or body where the value appears and
// is carried into error messages.
func (g *SchemaGenerator) Generate(value any, context string) (*Schema, error) {
	if value == nil {
		return nil, nil
	}
	if s, ok := value.(*Schema); ok {
		return s, nil
	}
	return g.generateType(reflect.TypeOf(value), context)
}

// RegisterSchema adds a named schema to the document components, applying
// the uniqueness rule. Plugins claiming a type are expected to register
// their component schemas through this method.
func (g *SchemaGenerator) RegisterSchema(name string, schema *Schema) error {
	existing, ok := g.doc.componentSchema(name)
	if !ok {
		g.doc.setComponentSchema(name, schema)
		return nil
	}
	if reflect.DeepEqual(existing, schema) {
		return nil
	}
	return &SchemaConflictError{Component: ComponentSchema, Name: name}
}

// generateType produces a schema for the given Go type. Pointer types are
// unwrapped one level; named struct types become registered components.
func (g *SchemaGenerator) generateType(t reflect.Type, context string) (*Schema, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return &Schema{Type: "string", Format: "date-time"}, nil
	case uuidType:
		return &Schema{Type: "string", Format: "uuid"}, nil
	}

	if t.Kind() == reflect.Struct && t.Name() != "" && t.PkgPath() != "" {
		return g.refStructSchema(t, context)
	}

	return g.generateInlineType(t, context)
}

// refStructSchema registers a named struct type as a component schema and
// returns a $ref fragment pointing at it.
func (g *SchemaGenerator) refStructSchema(t reflect.Type, context string) (*Schema, error) {
	name, err := g.schemaName(t)
	if err != nil {
		return nil, err
	}

	if _, done := g.typeNames[t]; !done {
		// Claim the name before recursing so self-referential types
		// resolve to a $ref instead of recursing forever.
		g.typeNames[t] = name
		g.nameTypes[name] = t

		schema, err := g.structSchema(t, name, context)
		if err != nil {
			delete(g.typeNames, t)
			delete(g.nameTypes, name)
			return nil, err
		}
		if ex, ok := reflect.New(t).Interface().(Exampler); ok {
			schema.Example = ex.OpenAPIExample()
		}
		if err := g.RegisterSchema(name, schema); err != nil {
			return nil, err
		}
	}

	return &Schema{Ref: "#/components/schemas/" + name}, nil
}

// generateInlineType maps Go primitive and composite types to JSON Schema.
func (g *SchemaGenerator) generateInlineType(t reflect.Type, context string) (*Schema, error) {
	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil

	case reflect.String:
		return &Schema{Type: "string"}, nil

	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: "string", Format: "byte"}, nil
		}
		items, err := g.generateType(t.Elem(), context+"[]")
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return &Schema{Type: "object"}, nil
		}
		values, err := g.generateType(t.Elem(), context+"{}")
		if err != nil {
			return nil, err
		}
		return &Schema{
			Type:                 "object",
			AdditionalProperties: SchemaAdditionalProperties(values),
		}, nil

	case reflect.Struct:
		// Anonymous struct: inline object schema, not registered.
		return g.structSchema(t, "", context)

	case reflect.Interface:
		return &Schema{}, nil
	}

	return nil, &SchemaBuildError{TypeName: t.String(), Context: context}
}

// structSchema builds an object schema from struct fields. Fields without a
// default (no omitempty option and a non-pointer type) are required, and
// additional properties are rejected.
func (g *SchemaGenerator) structSchema(t reflect.Type, title, context string) (*Schema, error) {
	schema := &Schema{
		Type:                 "object",
		Title:                title,
		Properties:           make(map[string]*Schema),
		AdditionalProperties: AllowAdditionalProperties(false),
	}

	if err := g.collectFields(t, schema, context, false); err != nil {
		return nil, err
	}

	if len(schema.Properties) == 0 {
		schema.Properties = nil
	}
	return schema, nil
}

// collectFields recursively collects struct fields into the schema. When
// allOptional is true, every field is treated as optional; this is used for
// pointer-embedded structs whose fields may all be absent.
func (g *SchemaGenerator) collectFields(t reflect.Type, schema *Schema, context string, allOptional bool) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		// Embedded structs inline their fields unless the json tag gives
		// them an explicit name, matching encoding/json behavior.
		if field.Anonymous {
			jsonName, _ := parseJSONTag(field.Tag.Get("json"))
			if jsonName == "" {
				ft := field.Type
				isPtr := ft.Kind() == reflect.Pointer
				if isPtr {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					if err := g.collectFields(ft, schema, context, allOptional || isPtr); err != nil {
						return err
					}
					continue
				}
			}
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, opts := parseJSONTag(jsonTag)
		if name == "" {
			name = field.Name
		}

		fieldContext := name
		if context != "" {
			fieldContext = context + "." + name
		}

		fieldSchema, err := g.generateType(field.Type, fieldContext)
		if err != nil {
			return err
		}
		if fieldSchema == nil {
			continue
		}
		applySchemaTag(fieldSchema, field.Tag.Get("openapi"))

		schema.Properties[name] = fieldSchema

		optional := opts.omitempty ||
			field.Type.Kind() == reflect.Pointer ||
			fieldSchema.Default != nil
		if !optional && !allOptional {
			schema.Required = append(schema.Required, name)
		}
	}
	return nil
}

type jsonTagOpts struct {
	omitempty bool
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	return name, jsonTagOpts{
		omitempty: strings.Contains(rest, "omitempty") || strings.Contains(rest, "omitzero"),
	}
}

// applySchemaTag parses the `openapi` struct tag and applies constraints to
// the field schema. Tag keys map to JSON Schema keywords.
func applySchemaTag(schema *Schema, tag string) {
	if tag == "" {
		return
	}

	for _, part := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if hasValue {
			value = strings.TrimSpace(value)
		}

		switch key {
		case "description":
			schema.Description = value
		case "title":
			schema.Title = value
		case "format":
			schema.Format = value
		case "example":
			schema.Example = coerceTagValue(schema, value)
		case "default":
			schema.Default = coerceTagValue(schema, value)
		case "minimum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Minimum = &v
			}
		case "maximum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Maximum = &v
			}
		case "exclusiveMinimum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.ExclusiveMinimum = &v
			}
		case "exclusiveMaximum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.ExclusiveMaximum = &v
			}
		case "multipleOf":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.MultipleOf = &v
			}
		case "minLength":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinLength = &v
			}
		case "maxLength":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxLength = &v
			}
		case "pattern":
			schema.Pattern = value
		case "minItems":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinItems = &v
			}
		case "maxItems":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxItems = &v
			}
		case "uniqueItems":
			schema.UniqueItems = true
		case "enum":
			values := strings.Split(value, "|")
			schema.Enum = make([]any, len(values))
			for i, v := range values {
				schema.Enum[i] = coerceTagValue(schema, v)
			}
		case "deprecated":
			schema.Deprecated = true
		}
	}
}

// coerceTagValue converts a string tag value to the Go type matching the
// schema's type field.
func coerceTagValue(schema *Schema, value string) any {
	switch schema.Type {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

// schemaName returns the component name for the given type. Two distinct
// types resolving to the same name are a SchemaConflictError, not a silent
// rename: duplicate model names are a caller-authoring mistake.
func (g *SchemaGenerator) schemaName(t reflect.Type) (string, error) {
	if name, ok := g.typeNames[t]; ok {
		return name, nil
	}
	name := sanitizeSchemaName(t.Name())
	if existing, ok := g.nameTypes[name]; ok && existing != t {
		return "", &SchemaConflictError{Component: ComponentSchema, Name: name}
	}
	return name, nil
}

// sanitizeSchemaName cleans up Go type names for use as component schema
// keys. Generic names like "Page[User]" become "PageUser", and
// "Page[[]User]" becomes "PageUserList". Package paths in type parameters
// are stripped.
func sanitizeSchemaName(name string) string {
	idx := strings.IndexByte(name, '[')
	if idx < 0 {
		return name
	}

	base := name[:idx]
	inner := name[idx+1 : len(name)-1]

	isList := strings.HasPrefix(inner, "[]")
	inner = strings.TrimPrefix(inner, "[]")

	if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
		inner = inner[dot+1:]
	}

	result := base + inner
	if isList {
		result += "List"
	}
	return result
}
