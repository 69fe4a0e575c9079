// Package watcher rebuilds the equipment catalog whenever the input
// save state changes on disk. Emulators rewrite states with a rename or
// multiple partial writes, so events are debounced before rebuilding.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/retroenv/psptransmog/internal/options"
	"github.com/retroenv/retrogolib/log"
)

const defaultDebounce = 500 * time.Millisecond

// Builder rebuilds the catalog from the program options.
type Builder interface {
	BuildCatalog(ctx context.Context, opts options.Program) error
}

// Watcher triggers catalog rebuilds on input file changes.
type Watcher struct {
	logger   *log.Logger
	builder  Builder
	debounce time.Duration
}

// New creates a watcher for the given builder.
func New(logger *log.Logger, builder Builder) *Watcher {
	return &Watcher{
		logger:   logger,
		builder:  builder,
		debounce: defaultDebounce,
	}
}

// Run builds the catalog once, then blocks rebuilding it on every change
// of the input file until the context is canceled.
func (w *Watcher) Run(ctx context.Context, opts options.Program) error {
	if err := w.builder.BuildCatalog(ctx, opts); err != nil {
		return err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() {
		_ = fsWatcher.Close()
	}()

	// watch the directory, emulators replace the state file on save
	dir := filepath.Dir(opts.Input)
	if err := fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logger.Info("Watching for changes", log.String("file", opts.Input))

	input := filepath.Clean(opts.Input)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != input {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", log.Err(err))

		case <-timer.C:
			w.logger.Info("Input changed, rebuilding catalog")
			if err := w.builder.BuildCatalog(ctx, opts); err != nil {
				w.logger.Error("Rebuilding catalog failed", log.Err(err))
			}
		}
	}
}
