package policy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPolicyDenied is the sentinel for any command the allowlist rejects.
var ErrPolicyDenied = errors.New("command denied by policy")

// DeniedError reports a blocked command together with the active rules, so
// the model sees what it may run instead.
type DeniedError struct {
	Command string
	Reason  string
	Rules   []string
}

func (e *DeniedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("command %q blocked: %s", e.Command, e.Reason)
	}
	return fmt.Sprintf("command %q blocked by allowlist. Allowed prefixes: %s",
		e.Command, strings.Join(e.Rules, ", "))
}

func (e *DeniedError) Unwrap() error {
	return ErrPolicyDenied
}
