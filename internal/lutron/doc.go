// Package lutron talks the lighting processor's telnet integration
// protocol for real-time dimmer levels.
//
// The persistent Listener is disabled by default: the processor caps
// concurrent integration sessions and the Savant host holds one of them,
// so the relay must opt in deliberately. When disabled, QueryLevels runs
// a single login-query-close cycle at startup to seed initial levels,
// after which the log tailer keeps them current.
package lutron
