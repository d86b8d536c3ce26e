package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"crucible/internal/provider"
	"crucible/internal/tool"
)

func TestGenerateTextReply(t *testing.T) {
	client := &mockClient{response: textResponse("hello")}
	p := New(client, "gemini-2.0-flash")

	reply, err := p.Generate(context.Background(), []provider.Message{
		{Role: provider.RoleUser, Content: "hi"},
	}, nil, provider.Sampling{Temperature: 0.2, MaxTokens: 1024})

	require.NoError(t, err)
	assert.Equal(t, "hello", reply.Text)
	assert.Empty(t, reply.ToolCalls)
	assert.Equal(t, "gemini-2.0-flash", client.lastModel)
}

func TestGenerateToolCallReply(t *testing.T) {
	client := &mockClient{response: functionCallResponse("read_file", map[string]any{"path": "main.go"})}
	p := New(client, "gemini-2.0-flash")

	reply, err := p.Generate(context.Background(), []provider.Message{
		{Role: provider.RoleUser, Content: "read main.go"},
	}, nil, provider.Sampling{})

	require.NoError(t, err)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "read_file", reply.ToolCalls[0].Name)
	assert.Equal(t, "main.go", reply.ToolCalls[0].Args["path"])
	assert.NotEmpty(t, reply.ToolCalls[0].ID, "call IDs are assigned locally")
}

func TestGenerateSystemInstruction(t *testing.T) {
	client := &mockClient{response: textResponse("ok")}
	p := New(client, "gemini-2.0-flash")

	_, err := p.Generate(context.Background(), []provider.Message{
		{Role: provider.RoleSystem, Content: "you are a coding assistant"},
		{Role: provider.RoleUser, Content: "hi"},
	}, nil, provider.Sampling{})
	require.NoError(t, err)

	require.NotNil(t, client.lastConfig.SystemInstruction)
	assert.Equal(t, "you are a coding assistant", client.lastConfig.SystemInstruction.Parts[0].Text)
	assert.Len(t, client.lastContents, 1, "system message stays out of contents")
}

func TestGeneratePassesToolDeclarations(t *testing.T) {
	client := &mockClient{response: textResponse("ok")}
	p := New(client, "gemini-2.0-flash")

	decls := []tool.Declaration{
		{
			Name:        "read_file",
			Description: "Read a file",
			Parameters: &tool.Schema{
				Type: tool.TypeObject,
				Properties: map[string]*tool.Schema{
					"path": {Type: tool.TypeString, Description: "relative path"},
				},
				Required: []string{"path"},
			},
		},
	}

	_, err := p.Generate(context.Background(), []provider.Message{
		{Role: provider.RoleUser, Content: "hi"},
	}, decls, provider.Sampling{})
	require.NoError(t, err)

	require.Len(t, client.lastConfig.Tools, 1)
	fds := client.lastConfig.Tools[0].FunctionDeclarations
	require.Len(t, fds, 1)
	assert.Equal(t, "read_file", fds[0].Name)
	assert.Equal(t, genai.TypeObject, fds[0].Parameters.Type)
	assert.Equal(t, genai.TypeString, fds[0].Parameters.Properties["path"].Type)
	assert.Equal(t, []string{"path"}, fds[0].Parameters.Required)
}

func TestGenerateToolResultsBecomeFunctionResponses(t *testing.T) {
	client := &mockClient{response: textResponse("done")}
	p := New(client, "gemini-2.0-flash")

	_, err := p.Generate(context.Background(), []provider.Message{
		{Role: provider.RoleUser, Content: "read main.go"},
		{Role: provider.RoleAssistant, ToolCalls: []provider.ToolCall{
			{ID: "1", Name: "read_file", Args: map[string]any{"path": "main.go"}},
		}},
		{Role: provider.RoleTool, ToolResults: []provider.ToolResult{
			{ID: "1", Name: "read_file", Content: "package main"},
		}},
	}, nil, provider.Sampling{})
	require.NoError(t, err)

	require.Len(t, client.lastContents, 3)
	assert.Equal(t, "model", client.lastContents[1].Role)
	require.NotNil(t, client.lastContents[1].Parts[0].FunctionCall)
	require.NotNil(t, client.lastContents[2].Parts[0].FunctionResponse)
	assert.Equal(t, "read_file", client.lastContents[2].Parts[0].FunctionResponse.Name)
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantKind  error
		retryable bool
	}{
		{name: "rate limit", code: 429, wantKind: provider.ErrBackendUnavailable, retryable: true},
		{name: "server error", code: 503, wantKind: provider.ErrBackendUnavailable, retryable: true},
		{name: "auth", code: 401, wantKind: provider.ErrAuthentication},
		{name: "bad request", code: 400, wantKind: provider.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{err: &genai.APIError{Code: tt.code, Message: tt.name}}
			p := New(client, "gemini-2.0-flash")

			_, err := p.Generate(context.Background(), []provider.Message{
				{Role: provider.RoleUser, Content: "hi"},
			}, nil, provider.Sampling{})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.retryable, provider.IsRetryable(err))
		})
	}
}

func TestGenerateNetworkErrorIsRetryable(t *testing.T) {
	client := &mockClient{err: errors.New("connection refused")}
	p := New(client, "gemini-2.0-flash")

	_, err := p.Generate(context.Background(), []provider.Message{
		{Role: provider.RoleUser, Content: "hi"},
	}, nil, provider.Sampling{})

	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrBackendUnavailable)
	assert.True(t, provider.IsRetryable(err))
}

func TestGenerateSafetyBlock(t *testing.T) {
	client := &mockClient{response: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{FinishReason: genai.FinishReasonSafety},
		},
	}}
	p := New(client, "gemini-2.0-flash")

	_, err := p.Generate(context.Background(), []provider.Message{
		{Role: provider.RoleUser, Content: "hi"},
	}, nil, provider.Sampling{})

	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrContentBlocked)
	assert.False(t, provider.IsRetryable(err))
}

func TestListModels(t *testing.T) {
	client := &mockClient{models: []ModelInfo{
		{Name: "models/gemini-2.0-flash"},
		{Name: "models/gemini-2.5-pro"},
	}}
	p := New(client, "gemini-2.0-flash")

	names, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"models/gemini-2.0-flash", "models/gemini-2.5-pro"}, names)
}
