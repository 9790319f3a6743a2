package sync

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"scout/internal/logging"
)

// Watcher re-syncs changed files on debounced filesystem change events: a
// recursive fsnotify.Watcher plus a debounce map drained on a ticker, so
// rapid successive saves of one file collapse into a single syncOne call
// for that file rather than a full Engine.Sync walk.
type Watcher struct {
	engine      *Engine
	scope       string
	watcher     *fsnotify.Watcher
	debounceDur time.Duration

	mu          sync.Mutex
	debounceMap map[string]time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher builds a Watcher over engine.RepoRoot/scope.
func NewWatcher(engine *Engine, scope string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		engine:      engine,
		scope:       scope,
		watcher:     fw,
		debounceDur: 500 * time.Millisecond,
		debounceMap: make(map[string]time.Time),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching engine.RepoRoot/scope recursively and runs until
// ctx is cancelled or Stop is called. Non-blocking: the event loop runs in
// a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	root := filepath.Join(w.engine.RepoRoot, w.scope)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if isIgnoredDir(info.Name()) && path != root {
				return filepath.SkipDir
			}
			if watchErr := w.watcher.Add(path); watchErr != nil {
				logging.SyncWarn("sync: failed to watch %s: %v", path, watchErr)
			}
		}
		return nil
	})
	if err != nil {
		logging.SyncWarn("sync: initial watch walk failed: %v", err)
	}

	go w.run(ctx)
	return nil
}

// Stop halts the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.SyncError("sync: watcher error: %v", err)
		case <-ticker.C:
			w.flushDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	relPath, err := filepath.Rel(w.engine.RepoRoot, event.Name)
	if err != nil {
		return
	}
	if _, ok := w.engine.Registry.For(relPath); !ok {
		return
	}

	w.mu.Lock()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flushDebounced(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, t := range w.debounceMap {
		if now.Sub(t) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		relPath, err := filepath.Rel(w.engine.RepoRoot, path)
		if err != nil {
			continue
		}
		if _, skip := w.engine.syncOne(ctx, relPath, content, true); skip != nil {
			logging.SyncWarn("sync: watcher-triggered sync skipped %s: %v", relPath, skip.Err)
		}
	}
}
