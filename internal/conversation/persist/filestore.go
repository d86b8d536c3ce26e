// Package persist saves sessions as JSON files. Files are addressed by
// prefix: any unique prefix of the filename, the session name, or the
// session id resolves to one file.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"crucible/internal/conversation"
)

const timestampLayout = "20060102T1504"

// FileStore stores sessions as JSON files under a single directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the sessions directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory sessions are stored in.
func (s *FileStore) Dir() string {
	return s.dir
}

// sanitizeName converts a session name into a filename-safe slug.
func sanitizeName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' {
			return r
		}
		return '-'
	}, lowered)
	joined := strings.Join(strings.Fields(cleaned), "-")
	return strings.Trim(joined, "-")
}

// shortID returns the first 8 characters of a session id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// filename builds the stable filename for a session. It is derived from the
// creation time, name, and id, so re-saving a session overwrites its file.
func filename(session *conversation.Session) string {
	timestamp := session.CreatedAt.Local().Format(timestampLayout)
	safeName := sanitizeName(session.Name)
	if safeName == "" {
		safeName = "unnamed-" + timestamp
	}
	return fmt.Sprintf("%s_%s_%s.json", timestamp, safeName, shortID(session.ID))
}

// Save writes the session to disk and returns its filename.
func (s *FileStore) Save(session *conversation.Session) (string, error) {
	name := filename(session)
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize session: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write session file: %w", err)
	}
	return name, nil
}

type match struct {
	session  *conversation.Session
	filename string
}

// findByPrefix collects saved sessions whose filename, name, or id starts
// with the prefix.
func (s *FileStore) findByPrefix(prefix string) ([]match, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}

	loweredPrefix := strings.ToLower(prefix)
	var matches []match
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		session, err := s.read(entry.Name())
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(entry.Name(), prefix) ||
			strings.HasPrefix(strings.ToLower(session.Name), loweredPrefix) ||
			strings.HasPrefix(session.ID, prefix) {
			matches = append(matches, match{session: session, filename: entry.Name()})
		}
	}
	return matches, nil
}

func (s *FileStore) read(name string) (*conversation.Session, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read session file %s: %w", name, err)
	}
	var session conversation.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", name, err)
	}
	return &session, nil
}

// LoadByPrefix resolves a prefix to exactly one saved session. Zero matches
// is ErrNotFound; several matches is an AmbiguousPrefixError listing them.
func (s *FileStore) LoadByPrefix(prefix string) (*conversation.Session, error) {
	matches, err := s.findByPrefix(prefix)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w matching %q", ErrNotFound, prefix)
	case 1:
		return matches[0].session, nil
	default:
		listed := make([]string, 0, len(matches))
		for _, m := range matches {
			listed = append(listed, fmt.Sprintf("%s (%s)", m.session.Name, m.filename))
		}
		return nil, &AmbiguousPrefixError{Prefix: prefix, Matches: listed}
	}
}

// Summary describes a saved session for listings.
type Summary struct {
	Name     string
	ShortID  string
	Updated  string
	Messages int
}

// List returns summaries of all saved sessions, newest first.
func (s *FileStore) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}

	type item struct {
		summary Summary
		sortKey string
	}
	var items []item
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		session, err := s.read(entry.Name())
		if err != nil {
			return nil, err
		}
		items = append(items, item{
			summary: Summary{
				Name:     session.Name,
				ShortID:  shortID(session.ID),
				Updated:  session.UpdatedAt.Local().Format("2006-01-02 15:04"),
				Messages: len(session.Messages),
			},
			sortKey: session.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000000000"),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].sortKey > items[j].sortKey
	})

	summaries := make([]Summary, 0, len(items))
	for _, it := range items {
		summaries = append(summaries, it.summary)
	}
	return summaries, nil
}

// DeleteByPrefix removes the session uniquely matching the prefix and
// returns its name.
func (s *FileStore) DeleteByPrefix(prefix string) (string, error) {
	matches, err := s.findByPrefix(prefix)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w matching %q", ErrNotFound, prefix)
	case 1:
		if err := os.Remove(filepath.Join(s.dir, matches[0].filename)); err != nil {
			return "", fmt.Errorf("delete session file: %w", err)
		}
		return matches[0].session.Name, nil
	default:
		listed := make([]string, 0, len(matches))
		for _, m := range matches {
			listed = append(listed, fmt.Sprintf("%s (%s)", m.session.Name, m.filename))
		}
		return "", &AmbiguousPrefixError{Prefix: prefix, Matches: listed}
	}
}
