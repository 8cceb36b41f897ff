package statusfile

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// pollWatcher re-stats every status file on a fixed interval and reparses
// those whose modification time changed. Used when filesystem
// notifications cannot be established.
type pollWatcher struct {
	*loader
	interval time.Duration
	modTimes map[string]time.Time
}

func newPollWatcher(l *loader, interval time.Duration) *pollWatcher {
	return &pollWatcher{
		loader:   l,
		interval: interval,
		modTimes: make(map[string]time.Time),
	}
}

func (w *pollWatcher) Strategy() string { return "poll" }

// Run polls until the context is cancelled.
func (w *pollWatcher) Run(ctx context.Context) error {
	w.logger.Info("watching status directory", "dir", w.dir, "strategy", "poll", "interval", w.interval)

	// Prime modification times so the initial scan done by New is not
	// immediately repeated.
	w.sweep(false)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.sweep(true)
		}
	}
}

// sweep stats every matching file; when reload is true, files with a new
// modification time are reparsed.
func (w *pollWatcher) sweep(reload bool) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("status directory scan failed", "dir", w.dir, "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !w.matches(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// File removed between ReadDir and Info; next sweep catches it.
			continue
		}

		path := filepath.Join(w.dir, entry.Name())
		last, seen := w.modTimes[path]
		w.modTimes[path] = info.ModTime()

		if !reload {
			continue
		}
		if !seen || info.ModTime().After(last) {
			w.loadFile(path)
		}
	}
}
