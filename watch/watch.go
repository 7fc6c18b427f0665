// Package watch re-runs a callback when any of a set of files changes. It
// backs `gaffer validate --watch`, which re-validates a submission while a
// curator edits it or its metadata.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
)

const (
	// DefaultDebounce collapses the burst of events an editor save produces
	DefaultDebounce = 500 * time.Millisecond

	// DefaultMinInterval is the shortest gap between two callback runs
	DefaultMinInterval = 2 * time.Second
)

// Callback is called with the path that changed last.
type Callback func(ctx context.Context, changed string) error

// Watcher watches files through their parent directories, so files that
// editors replace by rename are still seen.
type Watcher struct {
	files    map[string]bool
	watcher  *fsnotify.Watcher
	debounce time.Duration
	limiter  *rate.Limiter
	log      *zap.SugaredLogger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the watcher waits for events to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithMinInterval limits callback runs to one per d.
func WithMinInterval(d time.Duration) Option {
	return func(w *Watcher) { w.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// WithLogger sets the logger. Nil is silent.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(w *Watcher) { w.log = log }
}

// New watches paths. Empty paths are ignored; every other path's directory
// must exist.
func New(paths []string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		files:    make(map[string]bool),
		watcher:  fw,
		debounce: DefaultDebounce,
		limiter:  rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = logger.OrNop(w.log).Named("watch")

	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to resolve %s", p)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
		dirs[dir] = true
	}
	if len(w.files) == 0 {
		fw.Close()
		return nil, errors.New("nothing to watch")
	}
	return w, nil
}

// Files returns the number of watched files.
func (w *Watcher) Files() int { return len(w.files) }

// Run calls fn after each settled change until ctx is done. Callback errors
// are logged and do not stop the watcher. Run closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, fn Callback) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	var changed string
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("Change detected", logger.FieldFile, event.Name, "op", event.Op.String())
			changed = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", "error", err)

		case <-fire:
			fire = nil
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			if err := fn(ctx, changed); err != nil {
				w.log.Warnw("Watch callback failed", logger.FieldFile, changed, "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	return err == nil && w.files[abs]
}
