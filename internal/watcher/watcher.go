// Package watcher reports debounced batches of source file changes.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Event represents a file change event.
type Event struct {
	Path string
	Op   string // "create", "write", "remove"
}

// DefaultDebounce is the quiet period after the last change before a batch
// is delivered.
const DefaultDebounce = 100 * time.Millisecond

// SourceExtensions are the file extensions watched by default.
var SourceExtensions = []string{".ts", ".tsx", ".mts", ".cts"}

// Watcher watches directory trees for file changes. Batches are delivered
// one at a time on the goroutine running Run.
type Watcher struct {
	roots      []string
	extensions []string
	debounce   time.Duration
	onChange   func(ctx context.Context, events []Event)
	logger     *zap.Logger

	ready chan struct{}
}

// New creates a new file watcher.
func New(roots, extensions []string, debounce time.Duration, onChange func(ctx context.Context, events []Event), logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		roots:      roots,
		extensions: extensions,
		debounce:   debounce,
		onChange:   onChange,
		logger:     logger,
		ready:      make(chan struct{}),
	}
}

// Ready is closed once every root is being watched.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	for _, root := range w.roots {
		if _, err := w.addTree(fw, root); err != nil {
			return err
		}
	}
	close(w.ready)

	pending := make(map[string]Event)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	queue := func(e Event) {
		pending[e.Path] = merge(pending[e.Path], e)
		if timer == nil {
			timer = time.NewTimer(w.debounce)
		} else {
			timer.Reset(w.debounce)
		}
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					files, err := w.addTree(fw, ev.Name)
					if err != nil {
						w.logger.Warn("watch directory", zap.String("dir", ev.Name), zap.Error(err))
					}
					for _, f := range files {
						queue(Event{Path: f, Op: "create"})
					}
					continue
				}
			}
			op := opName(ev.Op)
			if op == "" || !w.matches(ev.Name) {
				continue
			}
			w.logger.Debug("file changed", zap.String("path", ev.Name), zap.String("op", op))
			queue(Event{Path: ev.Name, Op: op})

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			events := drain(pending)
			if len(events) > 0 && w.onChange != nil {
				w.onChange(ctx, events)
			}
		}
	}
}

// addTree watches dir and its subdirectories and returns the matching files
// already present in them.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if w.matches(path) {
				files = append(files, path)
			}
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		return nil
	})
	return files, err
}

func skipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}

func (w *Watcher) matches(path string) bool {
	if strings.HasSuffix(path, ".d.ts") {
		return false
	}
	ext := filepath.Ext(path)
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return "remove"
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	}
	return ""
}

// merge folds a later event for the same path into an earlier one.
func merge(prev, next Event) Event {
	if prev.Op == "create" && next.Op == "write" {
		return prev
	}
	if prev.Op == "remove" && next.Op == "create" {
		next.Op = "write"
	}
	return next
}

func drain(pending map[string]Event) []Event {
	events := make([]Event, 0, len(pending))
	for path, e := range pending {
		events = append(events, e)
		delete(pending, path)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}
