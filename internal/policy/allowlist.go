// Package policy decides which shell commands the agent may run. A rule is
// a whitespace-separated token prefix: the rule "go test" allows "go test
// ./..." but not "go generate". The active rule set is fixed for the
// lifetime of a session; re-detection replaces it wholesale.
package policy

import (
	"sort"
	"strings"
)

// Allowlist is an immutable set of command prefix rules.
type Allowlist struct {
	rules [][]string
	raw   []string
}

// NewAllowlist builds an allowlist from rule strings. Blank rules are
// ignored; the rest are kept sorted and deduplicated.
func NewAllowlist(rules []string) *Allowlist {
	seen := make(map[string]bool, len(rules))
	var raw []string
	for _, rule := range rules {
		tokens := strings.Fields(rule)
		if len(tokens) == 0 {
			continue
		}
		normalized := strings.Join(tokens, " ")
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		raw = append(raw, normalized)
	}
	sort.Strings(raw)

	parsed := make([][]string, 0, len(raw))
	for _, rule := range raw {
		parsed = append(parsed, strings.Fields(rule))
	}
	return &Allowlist{rules: parsed, raw: raw}
}

// Rules returns the normalized rule strings.
func (a *Allowlist) Rules() []string {
	return append([]string(nil), a.raw...)
}

// Authorize checks a command line against the allowlist. The command is
// tokenized with shell quoting rules; the executable must be a bare name,
// and some rule must be a token-for-token prefix of the command.
func (a *Allowlist) Authorize(command string) ([]string, error) {
	words, err := SplitCommand(command)
	if err != nil {
		return nil, &DeniedError{Command: command, Reason: err.Error()}
	}
	if len(words) == 0 {
		return nil, &DeniedError{Command: command, Reason: "command is empty"}
	}
	if strings.ContainsAny(words[0], `/\`) {
		return nil, &DeniedError{Command: command, Reason: "only bare executable names are allowed"}
	}

	for _, rule := range a.rules {
		if len(rule) <= len(words) && tokensMatch(words[:len(rule)], rule) {
			return words, nil
		}
	}
	return nil, &DeniedError{Command: command, Rules: a.raw}
}

func tokensMatch(words, rule []string) bool {
	for i := range rule {
		if words[i] != rule[i] {
			return false
		}
	}
	return true
}
