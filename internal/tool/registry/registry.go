// Package registry tracks the declared tools of a session and validates
// incoming calls against their parameter schemas before anything executes.
package registry

import (
	"fmt"
	"math"

	"crucible/internal/tool"
)

// Registry holds tool declarations in registration order.
type Registry struct {
	order []string
	decls map[string]tool.Declaration
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{decls: make(map[string]tool.Declaration)}
}

// Register adds a declaration. Registering the same name twice is a
// programming error and fails loudly.
func (r *Registry) Register(decl tool.Declaration) error {
	if decl.Name == "" {
		return fmt.Errorf("%w: empty tool name", ErrInvalidDeclaration)
	}
	if _, exists := r.decls[decl.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, decl.Name)
	}
	r.decls[decl.Name] = decl
	r.order = append(r.order, decl.Name)
	return nil
}

// Declarations returns all declarations in registration order.
func (r *Registry) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.decls[name])
	}
	return decls
}

// Lookup returns the declaration for a name.
func (r *Registry) Lookup(name string) (tool.Declaration, bool) {
	decl, ok := r.decls[name]
	return decl, ok
}

// Validate checks a call's arguments against the declared schema: every
// required parameter must be present, every provided parameter must be
// declared and carry a compatible type.
func (r *Registry) Validate(name string, args map[string]any) error {
	decl, ok := r.decls[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	params := decl.Parameters
	if params == nil {
		if len(args) > 0 {
			return &SchemaError{Tool: name, Reason: "tool takes no parameters"}
		}
		return nil
	}

	for _, required := range params.Required {
		if _, present := args[required]; !present {
			return &SchemaError{Tool: name, Field: required, Reason: "required parameter missing"}
		}
	}

	for field, value := range args {
		prop, declared := params.Properties[field]
		if !declared {
			return &SchemaError{Tool: name, Field: field, Reason: "unknown parameter"}
		}
		if err := checkType(value, prop); err != nil {
			return &SchemaError{Tool: name, Field: field, Reason: err.Error()}
		}
	}
	return nil
}

// checkType verifies a decoded JSON value against a schema node. Backends
// deliver numbers as float64, so integer checks accept integral floats.
func checkType(value any, schema *tool.Schema) error {
	if value == nil {
		return fmt.Errorf("expected %s, got null", schema.Type)
	}
	switch schema.Type {
	case tool.TypeString:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		if len(schema.Enum) > 0 && !contains(schema.Enum, s) {
			return fmt.Errorf("value %q not in enum %v", s, schema.Enum)
		}
	case tool.TypeNumber:
		if !isNumber(value) {
			return fmt.Errorf("expected number, got %T", value)
		}
	case tool.TypeInteger:
		f, ok := asFloat(value)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("expected integer, got %v", value)
		}
	case tool.TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	case tool.TypeArray:
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("expected array, got %T", value)
		}
		if schema.Items != nil {
			for i, item := range items {
				if err := checkType(item, schema.Items); err != nil {
					return fmt.Errorf("item %d: %w", i, err)
				}
			}
		}
	case tool.TypeObject:
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("expected object, got %T", value)
		}
	}
	return nil
}

func isNumber(value any) bool {
	_, ok := asFloat(value)
	return ok
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
