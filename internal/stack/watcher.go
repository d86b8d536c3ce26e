package stack

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// manifestNames are the files whose appearance or change can alter the
// detected stack. Source file edits are ignored; a .go file showing up in a
// Go repo changes nothing.
var manifestNames = map[string]bool{
	"go.mod":           true,
	"cargo.toml":       true,
	"package.json":     true,
	"pnpm-lock.yaml":   true,
	"yarn.lock":        true,
	"pyproject.toml":   true,
	"requirements.txt": true,
	"poetry.lock":      true,
	"pom.xml":          true,
	"build.gradle":     true,
	"build.gradle.kts": true,
	"cmakelists.txt":   true,
	"makefile":         true,
}

// Watcher observes workspace manifests and flags the stack detection as
// stale when one changes. It never swaps the active allowlist itself: the
// session keeps its policy until the owner explicitly re-detects.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	stale   atomic.Bool
}

// NewWatcher watches the workspace root for manifest changes.
func NewWatcher(root string, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(root); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{watcher: fw, logger: logger}, nil
}

// Run processes events until the context is cancelled, then closes the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name := strings.ToLower(filepath.Base(event.Name))
			if manifestNames[name] {
				w.logger.Debug("manifest changed, stack detection stale",
					zap.String("file", event.Name),
					zap.String("op", event.Op.String()))
				w.stale.Store(true)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("manifest watcher error", zap.Error(err))
		}
	}
}

// Stale reports whether a manifest changed since the last Reset.
func (w *Watcher) Stale() bool {
	return w.stale.Load()
}

// Reset clears the stale flag after the owner re-detected the stack.
func (w *Watcher) Reset() {
	w.stale.Store(false)
}
