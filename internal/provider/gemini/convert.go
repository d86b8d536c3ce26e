package gemini

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"crucible/internal/provider"
	"crucible/internal/tool"
)

// toGeminiContents converts the conversation to Gemini Content format.
// System messages are returned separately for the SystemInstruction slot.
func toGeminiContents(messages []provider.Message) (system string, contents []*genai.Content) {
	var systemParts []string
	contents = make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == provider.RoleSystem {
			if msg.Content != "" {
				systemParts = append(systemParts, msg.Content)
			}
			continue
		}
		if content := messageToContent(msg); content != nil {
			contents = append(contents, content)
		}
	}

	return strings.Join(systemParts, "\n\n"), contents
}

// messageToContent converts a single message to Gemini Content format.
func messageToContent(msg provider.Message) *genai.Content {
	role := "user"
	if msg.Role == provider.RoleAssistant {
		role = "model"
	}

	parts := make([]*genai.Part, 0)

	if msg.Content != "" {
		parts = append(parts, genai.NewPartFromText(msg.Content))
	}

	for _, call := range msg.ToolCalls {
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				Name: call.Name,
				Args: call.Args,
			},
		})
	}

	for _, result := range msg.ToolResults {
		content := result.Content
		if result.Error != "" && content == "" {
			content = fmt.Sprintf("Error: %s", result.Error)
		}
		parts = append(parts, &genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				Name: result.Name,
				Response: map[string]any{
					"content": content,
				},
			},
		})
	}

	// Skip empty messages
	if len(parts) == 0 {
		return nil
	}

	return &genai.Content{
		Role:  role,
		Parts: parts,
	}
}

// toGeminiConfig builds the generation config from sampling parameters.
func toGeminiConfig(system string, sampling provider.Sampling) *genai.GenerateContentConfig {
	temperature := sampling.Temperature
	topP := sampling.TopP
	topK := float32(sampling.TopK)

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopP:            &topP,
		SafetySettings:  defaultSafetySettings(),
		MaxOutputTokens: sampling.MaxTokens,
	}
	if sampling.TopK > 0 {
		cfg.TopK = &topK
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(system)},
		}
	}
	return cfg
}

// defaultSafetySettings returns safety settings with blocking disabled for
// all categories. Coding sessions trip the filters on ordinary content like
// exploit test fixtures.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdOff,
		},
	}
}

// toGeminiTools converts tool declarations to Gemini tools.
func toGeminiTools(decls []tool.Declaration) []*genai.Tool {
	if len(decls) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, decl := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        decl.Name,
			Description: decl.Description,
		}
		if decl.Parameters != nil {
			fd.Parameters = toGeminiSchema(decl.Parameters)
		}
		functionDeclarations = append(functionDeclarations, fd)
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts a parameter schema to Gemini Schema.
func toGeminiSchema(s *tool.Schema) *genai.Schema {
	schema := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
	}

	if s.Properties != nil {
		schema.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			schema.Properties[name] = toGeminiSchema(prop)
		}
	}
	if s.Items != nil {
		schema.Items = toGeminiSchema(s.Items)
	}
	if len(s.Enum) > 0 {
		schema.Enum = s.Enum
	}
	if len(s.Required) > 0 {
		schema.Required = s.Required
	}

	return schema
}

// toGeminiType converts a schema type to Gemini Type.
func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts a Gemini response to a reply. Gemini does not
// assign call IDs, so each function call gets a fresh one for correlation
// with its result message.
func fromGeminiResponse(resp *genai.GenerateContentResponse) (*provider.Reply, error) {
	if len(resp.Candidates) == 0 {
		return nil, &provider.BackendError{
			Kind:    provider.ErrInvalidRequest,
			Message: "no candidates in response",
		}
	}

	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, &provider.BackendError{
			Kind:    provider.ErrContentBlocked,
			Message: "candidate blocked by safety filters",
		}
	}

	reply := &provider.Reply{}
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				reply.Text += part.Text
			}
			if part.FunctionCall != nil {
				reply.ToolCalls = append(reply.ToolCalls, provider.ToolCall{
					ID:   uuid.NewString(),
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				})
			}
		}
	}

	if usage := resp.UsageMetadata; usage != nil {
		reply.Usage = provider.Usage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}

	return reply, nil
}

// mapGeminiError maps Gemini API errors to backend errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*genai.APIError); ok {
		switch apiErr.Code {
		case 401, 403:
			return &provider.BackendError{
				Kind:       provider.ErrAuthentication,
				Message:    "authentication failed",
				Underlying: err,
			}
		case 429:
			return &provider.BackendError{
				Kind:       provider.ErrBackendUnavailable,
				Message:    "rate limit exceeded",
				Underlying: err,
				Retryable:  true,
			}
		case 400:
			return &provider.BackendError{
				Kind:       provider.ErrInvalidRequest,
				Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
				Underlying: err,
			}
		case 500, 502, 503, 504:
			return &provider.BackendError{
				Kind:       provider.ErrBackendUnavailable,
				Message:    "service unavailable",
				Underlying: err,
				Retryable:  true,
			}
		default:
			return &provider.BackendError{
				Kind:       provider.ErrBackendUnavailable,
				Message:    fmt.Sprintf("API error: %s", apiErr.Message),
				Underlying: err,
				Retryable:  true,
			}
		}
	}

	// Transport-level failure
	return &provider.BackendError{
		Kind:       provider.ErrBackendUnavailable,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}
