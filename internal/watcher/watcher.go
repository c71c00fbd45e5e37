// Package watcher reloads a catalog file when it changes on disk.
package watcher

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/services"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 250 * time.Millisecond

// ChangeFunc receives the reloaded catalog, or the error that prevented loading it.
type ChangeFunc func(*models.Catalog, error)

// CatalogWatcher watches one catalog file and reloads it after writes settle.
//
// The parent directory is watched rather than the file itself so that editors which save by renaming a
// temporary file over the original are still picked up.
type CatalogWatcher struct {
	path     string
	source   services.CatalogSource
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *log.Logger

	mu        sync.Mutex
	callbacks []ChangeFunc
	timer     *time.Timer
	ctx       context.Context
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a watcher for the catalog file at path. A zero debounce uses [DefaultDebounce].
func New(path string, debounce time.Duration, logger *log.Logger) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CatalogWatcher{
		path:     abs,
		source:   &services.FileSource{Path: abs, Logger: logger},
		watcher:  fw,
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// OnChange registers a callback run after every reload.
func (w *CatalogWatcher) OnChange(fn ChangeFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start watches in the background until ctx is done or [CatalogWatcher.Stop] is called.
func (w *CatalogWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()
	go w.loop(ctx)
}

func (w *CatalogWatcher) loop(ctx context.Context) {
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("catalog file changed", "file", event.Name, "op", event.Op.String())
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

func (w *CatalogWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// schedule restarts the debounce timer.
func (w *CatalogWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

// Reload loads the file now and notifies every callback.
func (w *CatalogWatcher) Reload() {
	w.reload()
}

func (w *CatalogWatcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	w.mu.Lock()
	ctx := w.ctx
	callbacks := make([]ChangeFunc, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := w.source.Catalog(ctx, "")
	if err != nil {
		w.logger.Warn("catalog reload failed", "path", w.path, "error", err)
	} else {
		w.logger.Info("catalog reloaded", "path", w.path, "tracks", len(c.Tracks))
	}
	for _, fn := range callbacks {
		fn(c, err)
	}
}

// Stop closes the underlying watcher. Calling it more than once is a no-op.
func (w *CatalogWatcher) Stop() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}
