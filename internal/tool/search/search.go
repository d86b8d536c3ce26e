// Package search implements regex content search across the workspace.
package search

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"crucible/internal/config"
	"crucible/internal/tool"
	"crucible/internal/tool/gitutil"
	"crucible/internal/tool/pathutil"
)

// binaryDetector reports whether content looks like binary data.
type binaryDetector interface {
	IsBinaryContent(content []byte) bool
}

// Request carries the arguments of a search call.
type Request struct {
	Pattern string `mapstructure:"pattern"`
	Path    string `mapstructure:"path"`
}

// Search scans text files line by line for a regular expression and reports
// matches as path:line: text.
type Search struct {
	resolver *pathutil.Resolver
	ignore   *gitutil.Ignore
	binary   binaryDetector
	cfg      config.ToolsConfig
}

func New(resolver *pathutil.Resolver, ignore *gitutil.Ignore, binary binaryDetector, cfg config.ToolsConfig) *Search {
	return &Search{resolver: resolver, ignore: ignore, binary: binary, cfg: cfg}
}

func (t *Search) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "search",
		Description: "Search file contents with a Go regular expression. Reports matches as path:line: text.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"pattern": {Type: tool.TypeString, Description: "Regular expression to search for"},
				"path":    {Type: tool.TypeString, Description: "Subtree to search, defaults to the workspace root"},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *Search) Capability() tool.Capability { return tool.CapabilityFSRead }
func (t *Search) NewRequest() any             { return &Request{} }
func (t *Search) PathParams() []string        { return []string{"path"} }

func (t *Search) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*Request)

	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return "", fmt.Errorf("invalid pattern %q: %w", r.Pattern, err)
	}

	root := r.Path
	if root == "" {
		root = t.resolver.Root()
	}

	var matches []string
	truncated := false
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, relErr := t.resolver.Rel(path)
		if relErr != nil {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if t.ignore.Match(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > t.cfg.MaxFileSize {
			return nil
		}

		fileMatches, err := t.searchFile(path, rel, re)
		if err != nil {
			return nil // unreadable files are skipped, not fatal
		}
		matches = append(matches, fileMatches...)
		if len(matches) >= t.cfg.MaxSearchResults {
			matches = matches[:t.cfg.MaxSearchResults]
			truncated = true
			return filepath.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		if os.IsNotExist(walkErr) {
			return "", fmt.Errorf("%w: %s", tool.ErrFileMissing, root)
		}
		return "", fmt.Errorf("search in %s: %w", root, walkErr)
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No matches for %q", r.Pattern), nil
	}
	out := strings.Join(matches, "\n")
	if truncated {
		out += fmt.Sprintf("\n[results truncated at %d matches]", t.cfg.MaxSearchResults)
	}
	return out, nil
}

func (t *Search) searchFile(path, rel string, re *regexp.Regexp) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Sniff the head for binary content before scanning lines.
	head := make([]byte, t.cfg.BinarySampleSize)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return nil, err
	}
	if t.binary.IsBinaryContent(head[:n]) {
		return nil, nil
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	var matches []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if re.MatchString(text) {
			matches = append(matches, fmt.Sprintf("%s:%d: %s", rel, line, strings.TrimSpace(text)))
		}
	}
	return matches, scanner.Err()
}
