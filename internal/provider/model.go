// Package provider defines the message types exchanged with inference
// backends and the interface a backend must satisfy. Concrete backends live
// in subpackages.
package provider

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single message in the conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`

	// For assistant messages requesting tool invocations
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// For tool messages carrying results back to the model
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// ToolCall represents a structured tool invocation from the model.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolResult represents the outcome of a tool execution. Failed calls carry
// the failure text in Content so the model can react; Error is set alongside
// for callers that need to distinguish.
type ToolResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Sampling contains generation parameters passed through to the backend.
type Sampling struct {
	Temperature float32
	TopP        float32
	TopK        int32
	MaxTokens   int32
}

// Reply is a single model turn. A reply with tool calls asks the runtime to
// execute them; a reply without is a final answer for this turn.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
	Usage     Usage
}

// Usage reports token accounting for one backend call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AssistantMessage converts a reply into the message form stored in the
// conversation history.
func (r *Reply) AssistantMessage() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   r.Text,
		ToolCalls: r.ToolCalls,
	}
}
