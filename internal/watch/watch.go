// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch reports markdown files that change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kaesluder/link-extractor/internal/source"
	"github.com/kaesluder/link-extractor/pkg/types"
)

// DefaultDebounce is used when WatchConfig.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

// Handler is called with the path of a file that changed. Calls are made
// one at a time from the goroutine running Watcher.Run.
type Handler func(ctx context.Context, path string)

// Watcher monitors files and directories for markdown changes.
type Watcher struct {
	watcher   *fsnotify.Watcher
	files     map[string]string // cleaned path -> path as given
	dirs      map[string]bool   // directories whose markdown files are all watched
	recursive bool
	debounce  time.Duration
	handle    Handler
	timers    map[string]pending
	seq       uint64
}

// pending is a debounce timer waiting to deliver a path.
type pending struct {
	timer *time.Timer
	seq   uint64
}

// firing is sent by a debounce timer when it expires.
type firing struct {
	path string
	seq  uint64
}

// New prepares a watcher for paths. A file path is watched through its
// parent directory, so it may be created after the watch starts. A
// directory path covers every markdown file in it, and in its
// subdirectories when recursive is set.
func New(paths []string, recursive bool, cfg types.WatchConfig, handle Handler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:   fw,
		files:     make(map[string]string),
		dirs:      make(map[string]bool),
		recursive: recursive,
		debounce:  debounce,
		handle:    handle,
		timers:    make(map[string]pending),
	}

	for _, p := range paths {
		if err := w.add(p, recursive); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string, recursive bool) error {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return w.addDir(path, recursive)
	}

	dir := filepath.Dir(path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	w.files[filepath.Clean(path)] = path
	return nil
}

func (w *Watcher) addDir(root string, recursive bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (!recursive || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		w.dirs[filepath.Clean(path)] = true
		return nil
	})
}

// match returns the path to report for an event, if the event concerns a
// watched file.
func (w *Watcher) match(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return "", false
	}
	name := filepath.Clean(event.Name)
	if given, ok := w.files[name]; ok {
		return given, true
	}
	if w.dirs[filepath.Dir(name)] && source.IsMarkdown(name) {
		return event.Name, true
	}
	return "", false
}

// Run delivers changes to the handler until ctx is done. Bursts of events
// for one file are collapsed into a single call once the file has been
// quiet for the debounce interval. Run closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	ready := make(chan firing)
	defer func() {
		for _, p := range w.timers {
			p.timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.follow(event)
			path, ok := w.match(event)
			if !ok {
				continue
			}
			slog.Debug("markdown change detected", "file", path, "op", event.Op.String())
			w.schedule(ctx, path, ready)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		case f := <-ready:
			w.deliver(ctx, f)
		}
	}
}

// follow starts watching a directory created inside a recursively watched one.
func (w *Watcher) follow(event fsnotify.Event) {
	if !w.recursive || !event.Has(fsnotify.Create) {
		return
	}
	name := filepath.Clean(event.Name)
	if !w.dirs[filepath.Dir(name)] || strings.HasPrefix(filepath.Base(name), ".") {
		return
	}
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addDir(name, true); err != nil {
		slog.Warn("cannot watch new directory", "path", name, "error", err)
	}
}

// schedule (re)starts the debounce timer for path. A timer that already
// fired but has not been delivered is superseded by the new sequence number.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- firing) {
	if p, ok := w.timers[path]; ok {
		p.timer.Stop()
	}
	w.seq++
	f := firing{path: path, seq: w.seq}
	t := time.AfterFunc(w.debounce, func() {
		select {
		case ready <- f:
		case <-ctx.Done():
		}
	})
	w.timers[path] = pending{timer: t, seq: f.seq}
}

// deliver calls the handler for f unless a later event rescheduled its path.
func (w *Watcher) deliver(ctx context.Context, f firing) bool {
	p, ok := w.timers[f.path]
	if !ok || p.seq != f.seq {
		return false
	}
	delete(w.timers, f.path)
	w.handle(ctx, f.path)
	return true
}
