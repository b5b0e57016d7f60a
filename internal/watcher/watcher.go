// Package watcher re-runs store backfills when the data files are edited
// by hand, so a quick vim session leaves the same normalized documents the
// stores write themselves.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"careerdesk/internal/store"
)

// Watcher debounces Write/Create events on master.json and prompts.json
// and triggers the owning store's backfill once edits settle. Backfills
// write only when they repair something, so the watcher's own writes do
// not loop.
type Watcher struct {
	fsw      *fsnotify.Watcher
	master   *store.MasterStore
	prompts  *store.PromptStore
	log      *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
	running bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// New builds a Watcher over the two hand-editable stores.
func New(master *store.MasterStore, prompts *store.PromptStore, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		fsw:      fsw,
		master:   master,
		prompts:  prompts,
		log:      log,
		debounce: 500 * time.Millisecond,
		pending:  map[string]time.Time{},
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start watches the data file directories and returns immediately; the
// event loop runs until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dirs := map[string]struct{}{}
	for _, path := range []string{w.master.Path(), w.prompts.Path()} {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.log.Debug("watching directory", zap.String("dir", dir))
	}

	go w.run(ctx)
	return nil
}

// Stop ends the event loop, waits for it to drain, and closes the
// underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.fsw.Close(); err != nil {
		w.log.Warn("close watcher", zap.Error(err))
	}
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
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", zap.Error(err))
		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

// handleEvent records a settling timestamp for the tracked files. Editors
// that replace-on-save surface as Create, direct writes as Write; chmod
// and remove churn is ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	path := filepath.Clean(event.Name)
	if path != filepath.Clean(w.master.Path()) && path != filepath.Clean(w.prompts.Path()) {
		return
	}
	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	var settled []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.repair(path)
	}
}

func (w *Watcher) repair(path string) {
	var (
		changed bool
		err     error
	)
	switch path {
	case filepath.Clean(w.master.Path()):
		changed, err = w.master.Backfill()
	case filepath.Clean(w.prompts.Path()):
		changed, err = w.prompts.Backfill()
	default:
		return
	}
	if err != nil {
		w.log.Error("backfill after edit failed", zap.String("path", path), zap.Error(err))
		return
	}
	if changed {
		w.log.Info("repaired hand-edited file", zap.String("path", path))
	} else {
		w.log.Debug("edit needed no repair", zap.String("path", path))
	}
}
