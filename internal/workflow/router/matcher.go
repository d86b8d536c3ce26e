package router

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"crucible/internal/provider"
)

// minKeywordLen filters remit words too short to carry meaning.
const minKeywordLen = 4

// KeywordMatcher scores a remit by the fraction of its keywords that appear
// in the request. Fully deterministic; the default when no model-backed
// routing is configured.
type KeywordMatcher struct{}

func (KeywordMatcher) Scores(ctx context.Context, request string, descriptors []Descriptor) ([]float64, error) {
	requestWords := wordSet(request)

	scores := make([]float64, len(descriptors))
	for i, d := range descriptors {
		keywords := keywords(d.Remit)
		if len(keywords) == 0 {
			continue
		}
		matched := 0
		for _, kw := range keywords {
			if _, ok := requestWords[kw]; ok {
				matched++
			}
		}
		scores[i] = float64(matched) / float64(len(keywords))
	}
	return scores, nil
}

func keywords(remit string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, word := range splitWords(remit) {
		if len(word) < minKeywordLen {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range splitWords(text) {
		set[word] = struct{}{}
	}
	return set
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// selfAnswer is the reply the model gives when no specialist fits.
const selfAnswer = "SELF"

// ModelMatcher asks the inference backend to pick a specialist by name. The
// chosen descriptor scores 1, everything else 0, so the router's threshold
// and tie-break rules still apply.
type ModelMatcher struct {
	provider    provider.Provider
	instruction string
}

func NewModelMatcher(p provider.Provider, instruction string) *ModelMatcher {
	return &ModelMatcher{provider: p, instruction: instruction}
}

func (m *ModelMatcher) Scores(ctx context.Context, request string, descriptors []Descriptor) ([]float64, error) {
	scores := make([]float64, len(descriptors))

	var remits strings.Builder
	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
		fmt.Fprintf(&remits, "- %s: %s\n", d.Name, d.Remit)
	}

	prompt := fmt.Sprintf(
		"%s\n\nSpecialists:\n%s\nIf delegation is required, respond ONLY with one of:\n%s\nOtherwise respond ONLY with: %s\n\nUser request:\n%s",
		m.instruction, remits.String(), strings.Join(names, ", "), selfAnswer, request)

	reply, err := m.provider.Generate(ctx, []provider.Message{
		{Role: provider.RoleUser, Content: prompt},
	}, nil, provider.Sampling{Temperature: 0, MaxTokens: 32})
	if err != nil {
		return nil, fmt.Errorf("routing decision: %w", err)
	}

	decision := strings.TrimSpace(reply.Text)
	for i, d := range descriptors {
		if decision == d.Name {
			scores[i] = 1
			break
		}
	}
	return scores, nil
}
