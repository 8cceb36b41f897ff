// Package syslogtail follows the controller's system log and converts the
// service-event lines it writes into zone and light state.
//
// The controller logs every service invocation (power, volume, mute,
// dimmer commands) as free text. The tailer seeks to the end of the log
// on startup, reads appended lines with a short idle sleep between polls,
// and applies recognised commands to the shared state cache, broadcasting
// each resulting snapshot to push subscribers.
//
// Log rotation is not handled: the tailer holds its original file handle
// and will miss events written to a rotated file until restart.
package syslogtail
