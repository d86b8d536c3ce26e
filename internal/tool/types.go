// Package tool defines the shared vocabulary of the tool layer: parameter
// schemas, declarations sent to the inference backend, and capability tags
// used by the policy layer to decide which checks apply to a call.
package tool

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// Declaration declares a tool's function signature for the LLM.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Capability tags a tool with the class of side effect it can have.
// The tool manager selects safety checks by capability: filesystem
// capabilities trigger the path guard, shell-exec triggers the allowlist.
type Capability string

const (
	CapabilityFSRead   Capability = "filesystem-read"
	CapabilityFSWrite  Capability = "filesystem-write"
	CapabilityShell    Capability = "shell-exec"
	CapabilityVCS      Capability = "vcs"
	CapabilityAnalysis Capability = "analysis"
)
