package policy

import (
	"errors"
	"strings"
)

// ErrUnterminatedQuote is returned for commands with an open quote.
var ErrUnterminatedQuote = errors.New("unterminated quote in command")

// SplitCommand splits a command line into words the way a POSIX shell
// tokenizes arguments: whitespace separates words, single quotes preserve
// everything literally, double quotes preserve everything except backslash
// escapes, and a bare backslash escapes the next character. No expansion or
// substitution is performed; the command is executed directly, not through
// a shell.
func SplitCommand(command string) ([]string, error) {
	var words []string
	var current strings.Builder
	inWord := false

	runes := []rune(command)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\\':
			if i+1 >= len(runes) {
				return nil, errors.New("trailing backslash in command")
			}
			i++
			current.WriteRune(runes[i])
			inWord = true
		case c == '\'':
			end := indexRune(runes, i+1, '\'')
			if end < 0 {
				return nil, ErrUnterminatedQuote
			}
			current.WriteString(string(runes[i+1 : end]))
			i = end
			inWord = true
		case c == '"':
			i++
			closed := false
			for i < len(runes) {
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
					current.WriteRune(runes[i])
					i++
					continue
				}
				if runes[i] == '"' {
					closed = true
					break
				}
				current.WriteRune(runes[i])
				i++
			}
			if !closed {
				return nil, ErrUnterminatedQuote
			}
			inWord = true
		case c == ' ' || c == '\t' || c == '\n':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(c)
			inWord = true
		}
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}

func indexRune(runes []rune, from int, target rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}
	return -1
}
