package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mikeyobrien/forge-search/internal/core/ports/driving"
	"github.com/mikeyobrien/forge-search/internal/logger"
)

// defaultDebounce coalesces the burst of write events editors emit
// while saving a file.
const defaultDebounce = 250 * time.Millisecond

// Watcher keeps a search index in sync with a vault on disk. File
// writes become incremental UpdateDocument calls and removals become
// RemoveDocument calls; no full rebuilds.
type Watcher struct {
	store    *Store
	engine   driving.SearchService
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher creates a watcher feeding index updates to the engine.
func NewWatcher(store *Store, engine driving.SearchService) *Watcher {
	return &Watcher{
		store:    store,
		engine:   engine,
		debounce: defaultDebounce,
		timers:   make(map[string]*time.Timer),
	}
}

// SetDebounce overrides the event coalescing window. Useful in tests.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run watches the vault until the context is cancelled. Directories
// created while running are watched as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := addRecursive(fsw, w.store.Root()); err != nil {
		return fmt.Errorf("watch vault: %w", err)
	}
	logger.Info("Watching %s", w.store.Root())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// handleEvent routes one filesystem event.
func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	name := filepath.Base(event.Name)

	// A new directory needs its own watch.
	if event.Op.Has(fsnotify.Create) && !strings.HasPrefix(name, ".") {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(fsw, event.Name); err != nil {
				logger.Warn("Watching new directory %s: %v", event.Name, err)
			}
			return
		}
	}

	if !isMarkdown(name) {
		return
	}
	rel := w.store.Rel(event.Name)

	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		w.cancelPending(rel)
		if err := w.engine.RemoveDocument(ctx, rel); err != nil {
			logger.Warn("Removing %s from index: %v", rel, err)
		}

	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		w.scheduleUpdate(ctx, rel)
	}
}

// scheduleUpdate (re-)arms the debounce timer for a path so a save
// burst produces a single index update.
func (w *Watcher) scheduleUpdate(ctx context.Context, rel string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[rel]; ok {
		timer.Stop()
	}
	w.timers[rel] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, rel)
		w.mu.Unlock()

		if err := w.engine.UpdateDocument(ctx, rel); err != nil {
			logger.Warn("Updating %s in index: %v", rel, err)
		}
	})
}

// cancelPending drops a scheduled update for a path that was removed.
func (w *Watcher) cancelPending(rel string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[rel]; ok {
		timer.Stop()
		delete(w.timers, rel)
	}
}

// addRecursive watches a directory tree, skipping hidden directories.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
