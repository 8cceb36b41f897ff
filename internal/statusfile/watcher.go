package statusfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
	"github.com/akropp/savant-relay/internal/state"
)

// Watcher observes the controller's status-file directory and feeds parsed
// component state into the cache. Callers are agnostic to which strategy
// (notification-based or polling) is active.
type Watcher interface {
	// Run watches until the context is cancelled. Per-file errors are
	// logged and never terminate the loop.
	Run(ctx context.Context) error

	// Strategy names the active implementation ("notify" or "poll").
	Strategy() string
}

// New creates a status-file watcher and performs the synchronous initial
// scan: every matching file in the directory is parsed into the cache
// before New returns, so HTTP snapshots are populated from the first
// request.
//
// The notification-based implementation is preferred; if it cannot be set
// up (platform limits, exhausted inotify watches), the polling fallback is
// selected and the failure logged.
func New(cfg config.StatusConfig, cache *state.Cache, logger *logging.Logger) Watcher {
	l := &loader{
		dir:    cfg.Dir,
		ext:    "." + strings.TrimPrefix(cfg.Extension, "."),
		cache:  cache,
		logger: logger.With("component", "statusfile"),
	}

	l.loadAll()

	nw, err := newNotifyWatcher(l)
	if err != nil {
		l.logger.Warn("filesystem notifications unavailable, falling back to polling",
			"error", err,
			"interval", cfg.PollInterval,
		)
		return newPollWatcher(l, time.Duration(cfg.PollInterval)*time.Second)
	}
	return nw
}

// loader holds what both watcher strategies share: the directory, the
// filename convention, and the parse-into-cache path.
type loader struct {
	dir    string
	ext    string
	cache  *state.Cache
	logger *logging.Logger
}

// matches reports whether a directory entry is a component status file.
func (l *loader) matches(name string) bool {
	return strings.HasSuffix(name, l.ext)
}

// component derives the component name from a status filename.
func (l *loader) component(name string) string {
	return strings.TrimSuffix(filepath.Base(name), l.ext)
}

// loadFile parses one status file into the cache. Parse failures are
// logged and swallowed; one bad file must not disturb the rest.
func (l *loader) loadFile(path string) {
	states, err := ParseComponentFile(path)
	if err != nil {
		l.logger.Warn("status file parse failed", "path", path, "error", err)
		return
	}
	component := l.component(path)
	l.cache.UpdateComponent(component, states)
	l.logger.Debug("component state updated", "component", component, "keys", len(states))
}

// loadAll scans the directory and parses every matching file.
func (l *loader) loadAll() {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		l.logger.Warn("status directory scan failed", "dir", l.dir, "error", err)
		return
	}
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !l.matches(entry.Name()) {
			continue
		}
		l.loadFile(filepath.Join(l.dir, entry.Name()))
		loaded++
	}
	l.logger.Info("initial status scan complete", "dir", l.dir, "files", loaded)
}
