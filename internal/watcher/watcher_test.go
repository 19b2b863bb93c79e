package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) Invalidate() {
	c.calls.Add(1)
}

func startWatcher(t *testing.T, dir, name string) (*Watcher, *countingInvalidator) {
	t.Helper()
	target := &countingInvalidator{}
	w := New(dir, name, 50*time.Millisecond, target, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not start")
	}
	return w, target
}

func TestWatcher_InvalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "premio_mayor_loteria_medellin.csv")
	require.NoError(t, os.WriteFile(path, []byte("fecha\n"), 0644))

	w, target := startWatcher(t, dir, "premio_mayor_loteria_medellin.csv")

	var mu sync.Mutex
	var seen []string
	w.OnChange(func(p string, _ fsnotify.Op) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, p)
	})

	require.NoError(t, os.WriteFile(path, []byte("fecha,sorteo\n"), 0644))

	assert.Eventually(t, func() bool { return target.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1)
	assert.Equal(t, "premio_mayor_loteria_medellin.csv", filepath.Base(seen[0]))
}

func TestWatcher_MatchesCaseInsensitively(t *testing.T) {
	dir := t.TempDir()
	_, target := startWatcher(t, dir, "premio_mayor_loteria_medellin.csv")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "PREMIO_MAYOR_LOTERIA_MEDELLIN.CSV"), []byte("x"), 0644))

	assert.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	_, target := startWatcher(t, dir, "premio_mayor_loteria_medellin.csv")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notas.txt"), []byte("x"), 0644))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, target.calls.Load())
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datos.csv")
	_, target := startWatcher(t, dir, "datos.csv")

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0644))
	}

	assert.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), target.calls.Load())
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "no-existe"), "datos.csv", 0, nil, nil)
	err := w.Run(context.Background())
	assert.ErrorContains(t, err, "failed to watch")
}
