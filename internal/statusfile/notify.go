package statusfile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// notifyWatcher reparses status files on filesystem change notifications.
type notifyWatcher struct {
	*loader
	fs *fsnotify.Watcher
}

func newNotifyWatcher(l *loader) (*notifyWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}
	if err := fs.Add(l.dir); err != nil {
		fs.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("watching %s: %w", l.dir, err)
	}
	return &notifyWatcher{loader: l, fs: fs}, nil
}

func (w *notifyWatcher) Strategy() string { return "notify" }

// Run processes change notifications until the context is cancelled.
func (w *notifyWatcher) Run(ctx context.Context) error {
	defer w.fs.Close() //nolint:errcheck // shutdown path

	w.logger.Info("watching status directory", "dir", w.dir, "strategy", "notify")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.matches(filepath.Base(event.Name)) {
				continue
			}
			w.loadFile(event.Name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			// Watch errors are transient (e.g. overflow); keep watching.
			w.logger.Warn("filesystem watch error", "error", err)
		}
	}
}
