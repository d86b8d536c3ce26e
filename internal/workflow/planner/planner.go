// Package planner produces an advisory step list before the execution loop
// starts. Plans are context for the model, never executed mechanically; the
// loop re-derives concrete tool calls from each inference response.
package planner

import (
	"context"
	"fmt"
	"strings"

	"crucible/internal/provider"
)

const (
	planMaxTokens   = 1024
	planTemperature = 0.1

	// maxFallbackLen bounds the single-line fallback when the model ignores
	// the numbered format entirely.
	maxFallbackLen = 240
)

const planPrompt = `Generate a simple plan with numbered steps. Each step describes a high-level action.

CRITICAL: Do NOT write function calls, backticks, parentheses or code. Write in plain English only.
IMPORTANT: Avoid vague phrases like 'as needed' or 'if necessary'. Be specific about what should be done.
When a step will use one of your tools, end the line with the tool name in the form: (tool: tool_name)

Output format:
PLAN:
1. <action> (tool: tool_name)
2. <action>`

// Step is one advisory intent. Tool is the annotation the model attached,
// empty when the step needs none. Flagged marks a step naming a tool
// outside the responding agent's capability set.
type Step struct {
	ID          int
	Description string
	Tool        string
	Flagged     bool
}

// Plan is an ordered list of steps.
type Plan struct {
	Steps []Step
}

// CapabilitySet answers whether a tool name is available to the agent the
// plan is for.
type CapabilitySet interface {
	Has(name string) bool
}

// Planner generates plans through the inference backend.
type Planner struct {
	provider provider.Provider
}

func New(p provider.Provider) *Planner {
	return &Planner{provider: p}
}

// Generate asks the backend for a plan and parses it. Steps referencing
// tools outside the capability set are flagged, never silently dropped.
func (p *Planner) Generate(ctx context.Context, task string, capabilities CapabilitySet) (*Plan, error) {
	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: planPrompt},
		{Role: provider.RoleUser, Content: task},
	}
	reply, err := p.provider.Generate(ctx, messages, nil, provider.Sampling{
		Temperature: planTemperature,
		MaxTokens:   planMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	descriptions := ParseSteps(reply.Text, task)
	plan := &Plan{}
	for i, desc := range descriptions {
		step := Step{ID: i + 1}
		step.Description, step.Tool = extractToolAnnotation(desc)
		if step.Tool != "" && capabilities != nil && !capabilities.Has(step.Tool) {
			step.Flagged = true
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan, nil
}

// Render formats the plan for injection into the conversation.
func (p *Plan) Render() string {
	var b strings.Builder
	b.WriteString("Plan:\n")
	for _, step := range p.Steps {
		fmt.Fprintf(&b, "%d. %s", step.ID, step.Description)
		if step.Tool != "" {
			fmt.Fprintf(&b, " (tool: %s)", step.Tool)
		}
		if step.Flagged {
			b.WriteString(" [tool not available to this agent]")
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// ParseSteps extracts step descriptions from model output. It accepts
// numbered steps (1. / 1) / 1:), bullets (- / *), skips the PLAN: header
// and code fences, and falls back to a single short line or a direct-answer
// step when no structure is found.
func ParseSteps(content, query string) []string {
	var steps []string

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if lower == "plan:" || strings.HasPrefix(lower, "plan ") || line == "```" {
			continue
		}

		if step, ok := parseIndexedStep(line); ok {
			steps = append(steps, step)
			continue
		}
		if rest, ok := stripBullet(line); ok {
			if rest != "" {
				steps = append(steps, rest)
			}
		}
	}

	if len(steps) > 0 {
		return steps
	}

	if strings.Contains(strings.ToLower(content), "answer the user's question directly") {
		return []string{"Answer the user's question directly: " + query}
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)
		if line == "" || line == "```" || lower == "plan:" || strings.HasPrefix(lower, "plan ") {
			continue
		}
		if len(line) <= maxFallbackLen {
			return []string{line}
		}
		break
	}
	return nil
}

// parseIndexedStep matches "N. text", "N) text" and "N: text".
func parseIndexedStep(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return "", false
	}
	switch line[i] {
	case '.', ')', ':':
	default:
		return "", false
	}
	step := strings.TrimSpace(line[i+1:])
	if step == "" {
		return "", false
	}
	return step, true
}

func stripBullet(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}

// extractToolAnnotation splits a trailing "(tool: name)" marker off a step
// description.
func extractToolAnnotation(desc string) (string, string) {
	open := strings.LastIndex(desc, "(tool:")
	if open < 0 || !strings.HasSuffix(desc, ")") {
		return desc, ""
	}
	name := strings.TrimSpace(desc[open+len("(tool:") : len(desc)-1])
	if name == "" {
		return desc, ""
	}
	return strings.TrimSpace(desc[:open]), name
}
