package provider

import (
	"context"

	"crucible/internal/tool"
)

// Provider represents the interface to the inference backend.
type Provider interface {
	// Generate sends the conversation and tool declarations to the backend
	// and returns the model's next turn.
	Generate(ctx context.Context, messages []Message, tools []tool.Declaration, sampling Sampling) (*Reply, error)
}
