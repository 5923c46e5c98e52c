package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zggff/shopbot/catalogue"
	"github.com/zggff/shopbot/pkg/x_log"
)

const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a catalogue file into a Store whenever it changes. A file
// that fails to load is logged and the previous tree stays published.
type Watcher[T, U any] struct {
	Path     string
	Format   string
	Store    *catalogue.Store[T, U]
	Debounce time.Duration

	// OnReload is called after every reload attempt; snap is nil on failure.
	OnReload func(snap *catalogue.Snapshot[T, U], err error)
}

// Watch runs a Watcher with default settings until ctx is done.
func Watch[T, U any](ctx context.Context, path, format string, store *catalogue.Store[T, U]) error {
	w := &Watcher[T, U]{Path: path, Format: format, Store: store}
	return w.Run(ctx)
}

// Run blocks until ctx is done. The parent directory is watched so editors
// that replace the file by rename are followed.
func (w *Watcher[T, U]) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.Path, err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.Path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.Path, err)
	}

	delay := w.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	base := filepath.Base(w.Path)
	x_log.Info().Str("file", w.Path).Msg("watching catalogue")

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(delay)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			x_log.Warn().Str("file", w.Path).Err(err).Msg("watcher error")

		case <-timer.C:
			w.Reload()
		}
	}
}

// Reload loads the file once and publishes it on success.
func (w *Watcher[T, U]) Reload() (*catalogue.Snapshot[T, U], error) {
	root, err := LoadFile[T, U](w.Path, w.Format)
	if err != nil {
		x_log.Error().Str("file", w.Path).Err(err).Msg("catalogue reload failed, keeping previous tree")
		if w.OnReload != nil {
			w.OnReload(nil, err)
		}
		return nil, err
	}

	snap := w.Store.Swap(root, w.Path)
	st := snap.Root.Stats()
	x_log.Info().Str("file", w.Path).Uint64("version", snap.Version).
		Int("leaves", st.Leaves).Int("groups", st.Groups).Msg("catalogue reloaded")
	if w.OnReload != nil {
		w.OnReload(snap, nil)
	}
	return snap, nil
}
