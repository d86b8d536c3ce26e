package registry

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateTool      = errors.New("tool already registered")
	ErrUnknownTool        = errors.New("unknown tool")
	ErrInvalidDeclaration = errors.New("invalid tool declaration")

	// ErrSchema is the sentinel behind every SchemaError.
	ErrSchema = errors.New("arguments do not match tool schema")
)

// SchemaError reports which argument of which tool failed validation.
type SchemaError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("tool %s: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("tool %s, parameter %q: %s", e.Tool, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}
