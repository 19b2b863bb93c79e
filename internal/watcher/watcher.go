// Package watcher invalidates the dataset cache when the source file changes
// on disk.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Invalidator drops cached state. dataprocessing.Cache satisfies it.
type Invalidator interface {
	Invalidate()
}

// ChangeFunc is called once per debounced burst of changes
type ChangeFunc func(path string, op fsnotify.Op)

// Watcher watches the dataset directory for changes to one file name,
// matched case-insensitively like the loader resolves it.
type Watcher struct {
	dir      string
	name     string
	debounce time.Duration
	target   Invalidator
	logger   *slog.Logger

	mu       sync.Mutex
	onChange []ChangeFunc
	ready    chan struct{}
}

// New creates a watcher for dir/name. debounce coalesces editor save bursts.
func New(dir, name string, debounce time.Duration, target Invalidator, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		name:     name,
		debounce: debounce,
		target:   target,
		logger:   logger.With(slog.String("component", "dataset_watcher")),
		ready:    make(chan struct{}),
	}
}

// OnChange registers a callback run after the cache is invalidated
func (w *Watcher) OnChange(fn ChangeFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Ready is closed once the directory is being watched
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

func (w *Watcher) matches(path string) bool {
	return strings.EqualFold(filepath.Base(path), w.name)
}

// Run blocks until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	close(w.ready)
	w.logger.InfoContext(ctx, "watching dataset",
		slog.String("dir", w.dir),
		slog.String("file", w.name),
		slog.Duration("debounce", w.debounce))

	var (
		timer   *time.Timer
		pending fsnotify.Event
		fire    = make(chan struct{}, 1)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.matches(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			pending = event
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.changed(ctx, pending)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.ErrorContext(ctx, "watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) changed(ctx context.Context, event fsnotify.Event) {
	w.logger.InfoContext(ctx, "dataset changed on disk, invalidating cache",
		slog.String("path", event.Name),
		slog.String("op", event.Op.String()))

	if w.target != nil {
		w.target.Invalidate()
	}

	w.mu.Lock()
	callbacks := append([]ChangeFunc(nil), w.onChange...)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn(event.Name, event.Op)
	}
}
