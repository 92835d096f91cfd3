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

	"passcan/internal/selector"
)

const debounce = 50 * time.Millisecond

func startWatcher(t *testing.T, root string) <-chan struct{} {
	t.Helper()
	w, err := New(root, selector.DefaultRules(), debounce, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	scans := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { scans <- struct{}{} })
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
		_ = w.Close()
	})
	return scans
}

func waitScan(t *testing.T, scans <-chan struct{}) {
	t.Helper()
	select {
	case <-scans:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a rescan")
	}
}

func expectNoScan(t *testing.T, scans <-chan struct{}) {
	t.Helper()
	select {
	case <-scans:
		t.Fatal("unexpected rescan")
	case <-time.After(6 * debounce):
	}
}

func TestRunRescansOnWrite(t *testing.T) {
	root := t.TempDir()
	scans := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte("x = 1\n"), 0644))
	waitScan(t, scans)
}

func TestRunCoalescesBursts(t *testing.T) {
	root := t.TempDir()
	scans := startWatcher(t, root)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "burst.py"), []byte{byte('a' + i)}, 0644))
	}
	waitScan(t, scans)
	expectNoScan(t, scans)
}

func TestRunWatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	scans := startWatcher(t, root)

	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(sub, 0755))
	waitScan(t, scans)

	// Give the loop a moment to register the new directory.
	time.Sleep(2 * debounce)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "new.go"), []byte("package pkg\n"), 0644))
	waitScan(t, scans)
}

func TestRunIgnoresIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	nm := filepath.Join(root, "node_modules")
	require.NoError(t, os.Mkdir(nm, 0755))
	scans := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(nm, "index.js"), []byte("x\n"), 0644))
	expectNoScan(t, scans)
}

func TestNewMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), selector.DefaultRules(), debounce, nil)
	assert.Error(t, err)
}

func TestRelevant(t *testing.T) {
	w := &Watcher{root: "/repo", rules: selector.DefaultRules()}

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{"write", fsnotify.Event{Name: "/repo/a.py", Op: fsnotify.Write}, true},
		{"create nested", fsnotify.Event{Name: "/repo/src/x/a.go", Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: "/repo/a.py", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "/repo/a.py", Op: fsnotify.Chmod}, false},
		{"inside ignored dir", fsnotify.Event{Name: "/repo/.git/index", Op: fsnotify.Write}, false},
		{"deep in ignored dir", fsnotify.Event{Name: "/repo/web/Node_Modules/lib/a.js", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, w.relevant(tt.event))
		})
	}
}
