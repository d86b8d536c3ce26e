// Package loop drives the agent execution state machine: repeated inference
// calls interleaved with tool invocations, bounded by a step budget, with
// retry on transient backend failures and cancellation observed at every
// suspension point.
package loop

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"crucible/internal/config"
	"crucible/internal/conversation"
	"crucible/internal/provider"
	"crucible/internal/tool"
	"crucible/internal/workflow"
	"crucible/internal/workflow/planner"
)

// State names the execution loop's position in its state machine.
type State string

const (
	StatePlanning      State = "planning"
	StateAwaitingModel State = "awaiting-model"
	StateToolRequested State = "tool-requested"
	StateAnswerReady   State = "answer-ready"
	StateFailed        State = "failed"
	StateDone          State = "done"
)

// Markers appended to the conversation on abnormal termination.
const (
	cancelledMarker = "[Session cancelled by user]"
	truncatedMarker = "[Max tool steps reached]"
)

// toolRunner is the slice of the tool manager the loop needs.
type toolRunner interface {
	Declarations() []tool.Declaration
	Has(name string) bool
	Execute(ctx context.Context, call provider.ToolCall, events chan<- workflow.Event) (provider.ToolResult, error)
}

// taskPlanner produces an advisory plan before execution starts.
type taskPlanner interface {
	Generate(ctx context.Context, task string, capabilities planner.CapabilitySet) (*planner.Plan, error)
}

// Outcome reports how a run ended.
type Outcome struct {
	Answer    string
	Steps     int
	State     State
	Truncated bool
	Plan      *planner.Plan
}

// Options configures a Loop beyond its required collaborators.
type Options struct {
	// Planner, when set, runs once before the loop. Nil skips planning.
	Planner  taskPlanner
	Sampling provider.Sampling
	Logger   *zap.Logger
	Events   chan<- workflow.Event
}

// Loop runs one agent turn per Run call. One loop instance may drive many
// sessions, one at a time each; the store's acquire guard enforces the
// single-writer rule.
type Loop struct {
	provider provider.Provider
	tools    toolRunner
	planner  taskPlanner
	cfg      config.LoopConfig
	sampling provider.Sampling
	logger   *zap.Logger
	events   chan<- workflow.Event
}

func New(p provider.Provider, tools toolRunner, cfg config.LoopConfig, opts Options) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		provider: p,
		tools:    tools,
		planner:  opts.Planner,
		cfg:      cfg,
		sampling: opts.Sampling,
		logger:   logger,
		events:   opts.Events,
	}
}

// Run appends the request to the session and drives inference and tools
// until a final answer, budget exhaustion, cancellation or a fatal backend
// failure. The loop makes at most MaxToolSteps+1 backend calls.
func (l *Loop) Run(ctx context.Context, store *conversation.Store, request string) (*Outcome, error) {
	if err := store.Acquire(); err != nil {
		return nil, err
	}
	defer store.Release()
	defer l.emit(workflow.DoneEvent{})

	store.Append(provider.Message{Role: provider.RoleUser, Content: request})

	outcome := &Outcome{State: StatePlanning}
	l.planOnce(ctx, store, request, outcome)

	for backendCalls := 0; ; backendCalls++ {
		if err := ctx.Err(); err != nil {
			return l.cancelled(store, outcome), err
		}

		outcome.State = StateAwaitingModel
		if dropped := store.Trim(l.cfg.ContextBudget); dropped > 0 {
			l.logger.Debug("trimmed context", zap.Int("dropped", dropped))
		}

		l.emit(workflow.ThinkingEvent{})
		reply, err := l.generate(ctx, store)
		if err != nil {
			if ctx.Err() != nil {
				return l.cancelled(store, outcome), ctx.Err()
			}
			outcome.State = StateFailed
			store.Append(provider.Message{
				Role:    provider.RoleUser,
				Content: fmt.Sprintf("[Fatal error: %v]", err),
			})
			return outcome, err
		}

		store.Append(reply.AssistantMessage())
		if reply.Text != "" {
			l.emit(workflow.TextEvent{Text: reply.Text})
		}

		if len(reply.ToolCalls) == 0 {
			outcome.State = StateDone
			outcome.Answer = reply.Text
			return outcome, nil
		}

		if backendCalls == l.cfg.MaxToolSteps {
			store.Append(provider.Message{Role: provider.RoleUser, Content: truncatedMarker})
			outcome.State = StateDone
			outcome.Truncated = true
			outcome.Answer = reply.Text
			return outcome, nil
		}

		outcome.State = StateToolRequested
		for _, call := range reply.ToolCalls {
			result, err := l.tools.Execute(ctx, call, l.events)
			if err != nil {
				return l.cancelled(store, outcome), err
			}
			store.Append(provider.Message{
				Role:        provider.RoleTool,
				ToolResults: []provider.ToolResult{result},
			})
		}
		outcome.Steps = backendCalls + 1
	}
}

// planOnce generates and injects the advisory plan. Planning failures are
// logged and skipped; the loop can run without a plan.
func (l *Loop) planOnce(ctx context.Context, store *conversation.Store, request string, outcome *Outcome) {
	if l.planner == nil {
		return
	}
	plan, err := l.planner.Generate(ctx, request, l.tools)
	if err != nil {
		l.logger.Warn("planning failed, continuing without a plan", zap.Error(err))
		return
	}
	if len(plan.Steps) == 0 {
		return
	}
	outcome.Plan = plan
	rendered := plan.Render()
	store.Append(provider.Message{Role: provider.RoleAssistant, Content: rendered})
	l.emit(workflow.PlanEvent{Rendered: rendered})
}

// generate calls the backend, retrying transient failures with doubling
// backoff. Non-retryable errors and retry exhaustion are fatal.
func (l *Loop) generate(ctx context.Context, store *conversation.Store) (*provider.Reply, error) {
	backoff := time.Duration(l.cfg.BackendBackoffMs) * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= l.cfg.BackendRetries; attempt++ {
		if attempt > 0 {
			l.logger.Debug("retrying backend call",
				zap.Int("attempt", attempt), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		reply, err := l.provider.Generate(ctx, store.Snapshot(), l.tools.Declarations(), l.sampling)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if !provider.IsRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("backend retries exhausted: %w", lastErr)
}

// cancelled records the cancellation marker and closes out the run. Partial
// results already appended stay in the session.
func (l *Loop) cancelled(store *conversation.Store, outcome *Outcome) *Outcome {
	store.Append(provider.Message{Role: provider.RoleUser, Content: cancelledMarker})
	outcome.State = StateDone
	return outcome
}

func (l *Loop) emit(event workflow.Event) {
	if l.events != nil {
		l.events <- event
	}
}
