package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/crocdb/crocdb-api/pkg/catalog"
	"github.com/crocdb/crocdb-api/pkg/infrastructure/logging"
)

// reloadDebounce coalesces the burst of filesystem events the pipeline
// produces while it is still writing the new database file.
const reloadDebounce = 2 * time.Second

// Reloader watches the catalog database file and atomically installs a
// fresh snapshot whenever the pipeline replaces it. A failed rebuild keeps
// the previous snapshot serving.
type Reloader struct {
	loader  *SQLiteLoader
	store   *catalog.Store
	watcher *fsnotify.Watcher
	log     *logging.Logger
	done    chan struct{}
}

// NewReloader creates a reloader for the loader's database file.
func NewReloader(l *SQLiteLoader, store *catalog.Store) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating catalog watcher: %w", err)
	}

	// Watch the directory, not the file: pipelines typically replace the
	// database via rename, which would orphan a file watch.
	dir := filepath.Dir(l.Path())
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching catalog directory %s: %w", dir, err)
	}

	return &Reloader{
		loader:  l,
		store:   store,
		watcher: watcher,
		log:     logging.GetGlobalLogger().WithComponent("reloader"),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching in the background until Stop is called or ctx is
// cancelled.
func (r *Reloader) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop stops watching and releases the filesystem watcher.
func (r *Reloader) Stop() {
	close(r.done)
	r.watcher.Close()
}

func (r *Reloader) run(ctx context.Context) {
	target := filepath.Clean(r.loader.Path())

	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			r.log.Debug("catalog file changed", map[string]interface{}{"event": event.Op.String()})
			if pending == nil {
				pending = time.NewTimer(reloadDebounce)
				fire = pending.C
			} else {
				if !pending.Stop() {
					select {
					case <-pending.C:
					default:
					}
				}
				pending.Reset(reloadDebounce)
			}

		case <-fire:
			pending = nil
			fire = nil
			if err := r.loader.LoadAndInstall(ctx, r.store); err != nil {
				r.log.Error("catalog reload failed, keeping previous snapshot",
					map[string]interface{}{"error": err.Error()})
			} else {
				r.log.Info("catalog reloaded")
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.log.Warn("catalog watcher error", map[string]interface{}{"error": err.Error()})

		case <-ctx.Done():
			return
		case <-r.done:
			return
		}
	}
}
