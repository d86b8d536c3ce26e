// Package router selects which agent answers a request in the multi-agent
// runner. Routing is a one-shot decision: the coordinator either delegates
// to exactly one specialist or answers itself, and a selected specialist
// never re-routes.
package router

import "context"

// DefaultThreshold is the confidence a specialist must exceed to win a
// request. Below it the coordinator answers itself.
const DefaultThreshold = 0.25

// Descriptor declares a specialist agent in the crew file.
type Descriptor struct {
	Name         string   `yaml:"name"`
	Remit        string   `yaml:"remit"`
	Tools        []string `yaml:"tools"`
	MaxToolSteps int      `yaml:"max_tool_steps"`
	Allowlist    []string `yaml:"allowlist"`
}

// Matcher scores how well each descriptor's remit covers a request, in
// declaration order. Scores are in [0, 1].
type Matcher interface {
	Scores(ctx context.Context, request string, descriptors []Descriptor) ([]float64, error)
}

// Router picks the highest-scoring descriptor above the threshold. Equal
// scores go to the earliest declared descriptor.
type Router struct {
	matcher   Matcher
	threshold float64
}

func New(matcher Matcher, threshold float64) *Router {
	return &Router{matcher: matcher, threshold: threshold}
}

// Route returns the selected specialist, or nil when the coordinator should
// answer itself. A nil descriptor is always a valid outcome; the error only
// reports matcher trouble and never blocks the SELF fallback.
func (r *Router) Route(ctx context.Context, request string, descriptors []Descriptor) (*Descriptor, error) {
	if len(descriptors) == 0 {
		return nil, nil
	}

	scores, err := r.matcher.Scores(ctx, request, descriptors)
	if err != nil {
		return nil, err
	}

	best := -1
	bestScore := r.threshold
	for i, score := range scores {
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return nil, nil
	}
	return &descriptors[best], nil
}
