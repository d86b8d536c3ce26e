package gemini

import (
	"context"

	"google.golang.org/genai"
)

// mockClient implements GeminiClient for tests, recording the last request
// and returning canned responses.
type mockClient struct {
	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig

	response *genai.GenerateContentResponse
	err      error

	models    []ModelInfo
	modelsErr error
}

func (m *mockClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.lastModel = model
	m.lastContents = contents
	m.lastConfig = config
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	return m.models, m.modelsErr
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role:  "model",
					Parts: []*genai.Part{genai.NewPartFromText(text)},
				},
			},
		},
	}
}

func functionCallResponse(name string, args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role: "model",
					Parts: []*genai.Part{
						{FunctionCall: &genai.FunctionCall{Name: name, Args: args}},
					},
				},
			},
		},
	}
}
