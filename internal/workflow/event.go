// Package workflow defines the events the execution loop emits while it
// runs. Consumers handle events via type switch.
package workflow

// Event is the interface for all workflow events.
type Event interface {
	isEvent()
}

// ThinkingEvent is emitted before each inference call.
type ThinkingEvent struct{}

func (ThinkingEvent) isEvent() {}

// TextEvent is emitted when the model produces text output.
type TextEvent struct {
	Text string
}

func (TextEvent) isEvent() {}

// PlanEvent is emitted when planning produced a step list, before the loop
// starts executing.
type PlanEvent struct {
	Rendered string
}

func (PlanEvent) isEvent() {}

// ToolStartEvent is emitted when a tool invocation begins.
type ToolStartEvent struct {
	ToolName string
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a tool invocation completes.
type ToolEndEvent struct {
	ToolName string
	Failed   bool
}

func (ToolEndEvent) isEvent() {}

// DoneEvent is emitted when the loop terminates, normally or not.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
