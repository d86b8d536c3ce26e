// Package toolmanager dispatches validated tool calls to their
// implementations. Every call passes schema validation and, for
// filesystem-scoped arguments, the path safety guard before the tool runs.
// Failures become tool-result content the model can react to; only
// cancellation aborts a call.
package toolmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"crucible/internal/provider"
	"crucible/internal/tool"
	"crucible/internal/tool/pathutil"
	"crucible/internal/tool/registry"
	"crucible/internal/workflow"
)

// Tool is the contract every tool implementation satisfies. NewRequest
// returns a pointer to the typed argument struct Execute expects.
type Tool interface {
	Declaration() tool.Declaration
	Capability() tool.Capability
	NewRequest() any
	Execute(ctx context.Context, req any) (string, error)
}

// PathScoped marks tools whose named string arguments are filesystem paths.
// The manager resolves them through the path guard before decoding.
type PathScoped interface {
	PathParams() []string
}

// Manager owns the tool registry and runs the per-call safety pipeline.
type Manager struct {
	registry *registry.Registry
	tools    map[string]Tool
	order    []string
	resolver *pathutil.Resolver
	timeout  time.Duration
}

// New registers the given tools. Registration order is preserved in the
// declarations sent to the model.
func New(resolver *pathutil.Resolver, timeout time.Duration, tools ...Tool) (*Manager, error) {
	m := &Manager{
		registry: registry.New(),
		tools:    make(map[string]Tool, len(tools)),
		resolver: resolver,
		timeout:  timeout,
	}
	for _, t := range tools {
		decl := t.Declaration()
		if err := m.registry.Register(decl); err != nil {
			return nil, err
		}
		m.tools[decl.Name] = t
		m.order = append(m.order, decl.Name)
	}
	return m, nil
}

// Restrict returns a manager exposing only the named subset of tools,
// sharing the underlying implementations. Used to scope specialist agents
// to their capability set.
func (m *Manager) Restrict(names []string) (*Manager, error) {
	var subset []Tool
	for _, name := range names {
		t, ok := m.tools[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", registry.ErrUnknownTool, name)
		}
		subset = append(subset, t)
	}
	return New(m.resolver, m.timeout, subset...)
}

// Declarations returns the tool declarations in registration order.
func (m *Manager) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(m.order))
	for _, name := range m.order {
		decls = append(decls, m.tools[name].Declaration())
	}
	return decls
}

// Has reports whether a tool name is registered.
func (m *Manager) Has(name string) bool {
	_, ok := m.tools[name]
	return ok
}

// Execute runs one tool call through validate, path guard, decode and the
// tool itself. All failures are folded into the returned result; the error
// return is reserved for cancellation.
func (m *Manager) Execute(ctx context.Context, call provider.ToolCall, events chan<- workflow.Event) (provider.ToolResult, error) {
	if events != nil {
		events <- workflow.ToolStartEvent{ToolName: call.Name}
	}

	result := m.run(ctx, call)

	if err := ctx.Err(); err != nil {
		return provider.ToolResult{}, err
	}
	if events != nil {
		events <- workflow.ToolEndEvent{ToolName: call.Name, Failed: result.Error != ""}
	}
	return result, nil
}

func (m *Manager) run(ctx context.Context, call provider.ToolCall) provider.ToolResult {
	t, ok := m.tools[call.Name]
	if !ok {
		decls, _ := json.MarshalIndent(m.Declarations(), "", "  ")
		return m.failure(call, fmt.Sprintf("Error: tool %q does not exist.\n\nAvailable tools:\n%s", call.Name, decls))
	}

	if err := m.registry.Validate(call.Name, call.Args); err != nil {
		decl, _ := json.MarshalIndent(t.Declaration(), "", "  ")
		return m.failure(call, fmt.Sprintf("Error: invalid arguments for tool %q: %v\n\nExpected schema:\n%s", call.Name, err, decl))
	}

	args := call.Args
	if scoped, ok := t.(PathScoped); ok {
		guarded, err := m.guardPaths(args, scoped.PathParams())
		if err != nil {
			return m.failure(call, fmt.Sprintf("Error: %v", err))
		}
		args = guarded
	}

	req := t.NewRequest()
	if err := mapstructure.Decode(args, req); err != nil {
		return m.failure(call, fmt.Sprintf("Error: invalid arguments for tool %q: %v", call.Name, err))
	}

	callCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	content, err := t.Execute(callCtx, req)
	if err != nil {
		return m.failure(call, fmt.Sprintf("Error: %v", err))
	}
	return provider.ToolResult{ID: call.ID, Name: call.Name, Content: content}
}

// guardPaths resolves every declared path argument through the safety
// guard, returning a copy of the argument map with canonical paths. An
// absent or non-string value is left for schema validation and decode to
// report.
func (m *Manager) guardPaths(args map[string]any, params []string) (map[string]any, error) {
	guarded := make(map[string]any, len(args))
	for k, v := range args {
		guarded[k] = v
	}
	for _, param := range params {
		value, ok := guarded[param]
		if !ok {
			continue
		}
		path, ok := value.(string)
		if !ok {
			continue
		}
		abs, err := m.resolver.Abs(path)
		if err != nil {
			return nil, err
		}
		guarded[param] = abs
	}
	return guarded, nil
}

func (m *Manager) failure(call provider.ToolCall, message string) provider.ToolResult {
	return provider.ToolResult{ID: call.ID, Name: call.Name, Content: message, Error: message}
}
