// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaesluder/link-extractor/pkg/types"
)

const waitFor = 5 * time.Second

func startWatcher(t *testing.T, paths []string, recursive bool) <-chan string {
	t.Helper()
	changed := make(chan string, 16)
	w, err := New(paths, recursive, types.WatchConfig{Debounce: 20 * time.Millisecond},
		func(_ context.Context, path string) { changed <- path })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return changed
}

func expectChange(t *testing.T, changed <-chan string, want string) {
	t.Helper()
	select {
	case got := <-changed:
		assert.Equal(t, want, got)
	case <-time.After(waitFor):
		t.Fatalf("no change reported for %s", want)
	}
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("[a](b)"), 0o644))

	changed := startWatcher(t, []string{path}, false)

	// A sibling file that was not named is ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("[a](b) [c](d)"), 0o644))

	expectChange(t, changed, path)
}

func TestWatchDirectory(t *testing.T) {
	dir := t.TempDir()
	changed := startWatcher(t, []string{dir}, false)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o644))
	created := filepath.Join(dir, "new.md")
	require.NoError(t, os.WriteFile(created, []byte("[a](b)"), 0o644))

	expectChange(t, changed, created)
}

func TestWatchDirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	changed := startWatcher(t, []string{dir}, true)

	nested := filepath.Join(sub, "deep.md")
	require.NoError(t, os.WriteFile(nested, []byte("[a](b)"), 0o644))

	expectChange(t, changed, nested)
}

func TestWatchNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	changed := startWatcher(t, []string{dir}, true)

	sub := filepath.Join(dir, "later")
	require.NoError(t, os.Mkdir(sub, 0o755))
	nested := filepath.Join(sub, "late.md")

	// The directory is added once its create event is seen, so keep
	// writing until the watcher reports the file.
	deadline := time.After(waitFor)
	for i := 0; ; i++ {
		require.NoError(t, os.WriteFile(nested, []byte{byte('a' + i%26)}, 0o644))
		select {
		case got := <-changed:
			assert.Equal(t, nested, got)
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatalf("no change reported for %s", nested)
		}
	}
}

func TestWatchDebounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "busy.md")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	changed := make(chan string, 16)
	w, err := New([]string{path}, false, types.WatchConfig{Debounce: 200 * time.Millisecond},
		func(_ context.Context, p string) { changed <- p })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}

	expectChange(t, changed, path)
	select {
	case p := <-changed:
		t.Fatalf("unexpected second change for %s", p)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestMatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	w := &Watcher{
		files: map[string]string{filepath.Clean(file): file},
		dirs:  map[string]bool{filepath.Join(dir, "docs"): true},
	}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  string
		ok    bool
	}{
		{"write to watched file", fsnotify.Event{Name: file, Op: fsnotify.Write}, file, true},
		{"remove is ignored", fsnotify.Event{Name: file, Op: fsnotify.Remove}, "", false},
		{"markdown in watched dir", fsnotify.Event{Name: filepath.Join(dir, "docs", "b.md"), Op: fsnotify.Create}, filepath.Join(dir, "docs", "b.md"), true},
		{"other file in watched dir", fsnotify.Event{Name: filepath.Join(dir, "docs", "b.txt"), Op: fsnotify.Write}, "", false},
		{"unwatched file", fsnotify.Event{Name: filepath.Join(dir, "c.md"), Op: fsnotify.Write}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := w.match(tt.event)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "nope", "a.md")}, false, types.WatchConfig{}, nil)
	assert.Error(t, err)
}

func TestDeliverDropsSupersededFirings(t *testing.T) {
	var calls []string
	w := &Watcher{
		debounce: 10 * time.Millisecond,
		handle:   func(_ context.Context, path string) { calls = append(calls, path) },
		timers:   make(map[string]pending),
	}
	ctx := context.Background()
	ready := make(chan firing, 4)

	receive := func() firing {
		t.Helper()
		select {
		case f := <-ready:
			return f
		case <-time.After(waitFor):
			t.Fatal("timer did not fire")
			return firing{}
		}
	}

	// The first timer fires, but another event arrives before its firing
	// is delivered.
	w.schedule(ctx, "a.md", ready)
	stale := receive()
	w.schedule(ctx, "a.md", ready)

	assert.False(t, w.deliver(ctx, stale))
	assert.Empty(t, calls)

	current := receive()
	assert.True(t, w.deliver(ctx, current))
	assert.Equal(t, []string{"a.md"}, calls)
	assert.Empty(t, w.timers)

	// A repeated delivery of the same firing is ignored.
	assert.False(t, w.deliver(ctx, current))
	assert.Len(t, calls, 1)
}
