package persist

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no saved session matches a prefix.
var ErrNotFound = errors.New("no session found")

// AmbiguousPrefixError is returned when a prefix matches more than one saved
// session. Matches holds "name (filename)" entries for the error message.
type AmbiguousPrefixError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousPrefixError) Error() string {
	return fmt.Sprintf("ambiguous prefix %q, %d matches found:\n  %s",
		e.Prefix, len(e.Matches), strings.Join(e.Matches, "\n  "))
}
