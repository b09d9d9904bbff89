package project

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/api"

	"agentcanvas/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent reports that a project's files changed on disk outside the
// engine's own writes and the graph has been reloaded and revalidated.
type ChangeEvent struct {
	// Dir is the project directory that changed.
	Dir string

	// File is the agent file that triggered the reload.
	File string

	// Validation is the post-reload validation outcome.
	Validation []api.NodeValidation
}

// Watcher watches a project directory for external edits and keeps the
// manager's in-memory graph fresh. Events are debounced: editors commonly
// produce several writes per save.
type Watcher struct {
	mu sync.Mutex

	manager          *Manager
	watcher          *fsnotify.Watcher
	debounceInterval time.Duration
	pending          map[string]*time.Timer
	running          bool
}

// NewWatcher creates a watcher for the given manager's directory.
func NewWatcher(manager *Manager, debounceInterval time.Duration) *Watcher {
	if debounceInterval == 0 {
		debounceInterval = 500 * time.Millisecond
	}
	return &Watcher{
		manager:          manager,
		debounceInterval: debounceInterval,
		pending:          make(map[string]*time.Timer),
	}
}

// Start begins watching. Reload outcomes are delivered on changes until the
// context is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context, changes chan<- ChangeEvent) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(w.manager.Dir()); err != nil {
		watcher.Close()
		w.mu.Unlock()
		return err
	}

	w.watcher = watcher
	w.running = true
	w.mu.Unlock()

	go w.processEvents(ctx, changes)

	logging.Info("ProjectWatcher", "Watching %s for external changes", w.manager.Dir())
	return nil
}

// Stop stops watching and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	w.watcher.Close()
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = make(map[string]*time.Timer)
}

func (w *Watcher) processEvents(ctx context.Context, changes chan<- ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.debounce(event.Name, changes)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("ProjectWatcher", "Watch error on %s: %v", w.manager.Dir(), err)
		}
	}
}

// relevant filters to agent file writes, creations, removals and renames.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, agentconfig.FileExtension) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// debounce coalesces rapid events on the same file into one reload.
func (w *Watcher) debounce(path string, changes chan<- ChangeEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	file := filepath.Base(path)
	if timer, ok := w.pending[file]; ok {
		timer.Stop()
	}
	w.pending[file] = time.AfterFunc(w.debounceInterval, func() {
		w.mu.Lock()
		delete(w.pending, file)
		running := w.running
		w.mu.Unlock()
		if !running {
			return
		}

		if err := w.manager.Reload(); err != nil {
			logging.Error("ProjectWatcher", err, "Failed to reload %s after external change", w.manager.Dir())
			return
		}

		event := ChangeEvent{
			Dir:        w.manager.Dir(),
			File:       file,
			Validation: w.manager.Validate(),
		}
		select {
		case changes <- event:
		default:
			logging.Warn("ProjectWatcher", "Change channel full, dropping event for %s", file)
		}
	})
}
