package poseset

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// DefaultWatchDebounce collapses the burst of events editors emit for one save.
const DefaultWatchDebounce = 100 * time.Millisecond

// WatchOption configures Watch.
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
	onReload func(*Snapshot)
}

// WithDebounce sets how long the file must be quiet before it is reloaded.
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		o.debounce = d
	}
}

// WithReloadHook calls f with every snapshot Watch loads, on the watching goroutine.
func WithReloadHook(f func(*Snapshot)) WatchOption {
	return func(o *watchOptions) {
		o.onReload = f
	}
}

// Watch loads path, then reloads it each time it is written, created, renamed or removed until
// ctx is done. The parent directory is watched so that editors replacing the file by rename are
// still followed. Watch returns nil when ctx ends and an error only if the watcher cannot start.
func (s *Set) Watch(ctx context.Context, path string, opts ...WatchOption) error {
	options := watchOptions{debounce: DefaultWatchDebounce}
	for _, opt := range opts {
		opt(&options)
	}

	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer goutils.UncheckedErrorFunc(watcher.Close)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "watching %s", filepath.Dir(path))
	}

	reload := func() {
		snap := s.Reload(ctx, path)
		if options.onReload != nil {
			options.onReload(snap)
		}
	}
	reload()

	pending := make(chan struct{}, 1)
	debounced := debounce.New(options.debounce)
	defer debounced(func() {})

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			s.logger.Debugw("pose source changed", "path", path, "op", event.Op.String())
			debounced(func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warnw("file watcher error", "path", path, "error", err)
		}
	}
}

// WatchInBackground runs Watch on its own goroutine. The returned channel receives Watch's result
// and is then closed.
func (s *Set) WatchInBackground(ctx context.Context, path string, opts ...WatchOption) <-chan error {
	done := make(chan error, 1)
	goutils.PanicCapturingGo(func() {
		defer close(done)
		done <- s.Watch(ctx, path, opts...)
	})
	return done
}
