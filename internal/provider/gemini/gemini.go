// Package gemini implements the provider interface on the official Gemini
// SDK.
package gemini

import (
	"context"
	"sync"

	"crucible/internal/provider"
	"crucible/internal/tool"
)

// GeminiProvider implements the Provider interface for Google Gemini.
type GeminiProvider struct {
	client    GeminiClient
	mu        sync.RWMutex
	modelName string
}

// New creates a new GeminiProvider with the specified client and model.
func New(client GeminiClient, modelName string) *GeminiProvider {
	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}
}

// Generate sends the conversation to the Gemini API and returns the reply.
func (p *GeminiProvider) Generate(ctx context.Context, messages []provider.Message, tools []tool.Declaration, sampling provider.Sampling) (*provider.Reply, error) {
	p.mu.RLock()
	model := p.modelName
	p.mu.RUnlock()

	system, contents := toGeminiContents(messages)
	config := toGeminiConfig(system, sampling)
	config.Tools = toGeminiTools(tools)

	resp, err := p.client.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	return fromGeminiResponse(resp)
}

// SetModel changes the active model at runtime.
func (p *GeminiProvider) SetModel(model string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modelName = model
}

// Model returns the currently active model name.
func (p *GeminiProvider) Model() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modelName
}

// ListModels returns the model names available to the configured credentials.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	infos, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names, nil
}
