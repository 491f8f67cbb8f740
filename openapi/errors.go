package openapi

import "fmt"

// ComponentType identifies the registry a conflicting name belongs to.
type ComponentType string

const (
	// ComponentSchema indicates a name in the components schemas map.
	ComponentSchema ComponentType = "schema"
	// ComponentSecurityScheme indicates a name in the securitySchemes map.
	ComponentSecurityScheme ComponentType = "securityScheme"
)

// SchemaBuildError reports a value-type description the schema builder does
// not recognize and no plugin claimed. It carries the offending Go type and
// the field path where it was encountered. The build aborts; an unsupported
// type never degrades to an empty schema.
type SchemaBuildError struct {
	// TypeName is the Go type that could not be converted.
	TypeName string
	// Context is the field name or path where the type was encountered.
	Context string
}

func (e *SchemaBuildError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("openapi: unsupported type %s at %q", e.TypeName, e.Context)
	}
	return fmt.Sprintf("openapi: unsupported type %s", e.TypeName)
}

// SchemaConflictError reports two structurally different definitions
// registered under the same component name. Identical-by-value redefinition
// is idempotent and does not produce this error.
type SchemaConflictError struct {
	// Component is the registry where the collision occurred.
	Component ComponentType
	// Name is the colliding component name.
	Name string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("openapi: conflicting %s definitions registered under %q", e.Component, e.Name)
}

// DuplicateOperationError reports the same (path, method) pair supplied twice
// across the route list. This is a caller programming error.
type DuplicateOperationError struct {
	Method string
	Path   string
}

func (e *DuplicateOperationError) Error() string {
	return fmt.Sprintf("openapi: duplicate operation %s %s", e.Method, e.Path)
}

// MetadataConflictError reports invalid metadata attached to a handler:
// a non-repeatable annotation applied more than once, or a request descriptor
// mixing a whole-body value with piecewise body fields.
type MetadataConflictError struct {
	// Kind is the annotation kind ("docs", "request", "security").
	Kind string
	// Reason describes the conflict.
	Reason string
}

func (e *MetadataConflictError) Error() string {
	return fmt.Sprintf("openapi: %s annotation conflict: %s", e.Kind, e.Reason)
}
