// Package statusfile observes the controller's status-file directory.
//
// The controller persists each component's last-known property values to
// one file per component (<component>.statusfile) in a GNUstep-style
// property list format. This package parses those files into the state
// cache: a full synchronous scan at startup, then continuous watching via
// filesystem notifications, with a fixed-interval polling fallback when
// notifications cannot be established. Both strategies sit behind the
// Watcher interface; callers never know which is active.
package statusfile
