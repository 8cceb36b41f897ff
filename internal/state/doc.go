// Package state holds the relay's concurrent cache of last-known
// controller state.
//
// Three independent regions are cached:
//
//   - component state maps parsed from the controller's status files
//   - per-zone live state (power, volume, mute, source) derived from
//     service events in the system log
//   - per-light levels fed by either the log tailer or the optional
//     Lutron session
//
// All live state is ephemeral: it is rebuilt from the filesystem and log
// on startup and never persisted. Zone/service/light directory data is
// deliberately NOT cached here; the directory package re-reads the
// controller's configuration database on every query so installer edits
// take effect without a restart.
package state
