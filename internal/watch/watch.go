// Package watch re-runs a callback when a source document changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/docgrade/internal/pipeline"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Path     string
	Debounce time.Duration
	OnChange func(ctx context.Context) error
	Log      *slog.Logger
}

// Watcher observes a single file. The parent directory is watched so that
// save-by-rename editors keep triggering events.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(ctx context.Context) error
	log      *slog.Logger
	lastHash string
}

// New validates opts and returns a Watcher.
func New(opts Options) (*Watcher, error) {
	if opts.Path == "" {
		return nil, errors.New("watch: path is required")
	}
	if opts.OnChange == nil {
		return nil, errors.New("watch: OnChange is required")
	}
	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		path:     abs,
		debounce: opts.Debounce,
		onChange: opts.OnChange,
		log:      opts.Log,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.log == nil {
		w.log = slog.Default()
	}
	return w, nil
}

// Run invokes OnChange once for the current contents, then again after each
// change, until ctx is cancelled. Callback errors are logged and do not stop
// the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.log.Info("watching document", "path", w.path)
	w.check(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
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
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.check(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// check runs the callback when the file's contents differ from the last run.
// It reports whether the callback was invoked.
func (w *Watcher) check(ctx context.Context) bool {
	hash, err := pipeline.FileHashHex(w.path)
	if err != nil {
		w.log.Warn("document unreadable", "path", w.path, "error", err)
		return false
	}
	if hash == w.lastHash {
		return false
	}
	w.lastHash = hash

	start := time.Now()
	if err := w.onChange(ctx); err != nil {
		w.log.Error("re-run failed", "path", w.path, "error", err)
		return true
	}
	w.log.Info("document re-processed", "path", w.path, "duration_ms", time.Since(start).Milliseconds())
	return true
}
