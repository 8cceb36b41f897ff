// Package tsdb records numeric state transitions to InfluxDB.
//
// The telemetry mirror is optional and disabled by default. When enabled,
// zone volume and power changes and dimmer level changes are written as
// tagged points through the non-blocking batched write API, so a slow or
// absent InfluxDB never backs up the relay's broadcast path.
package tsdb
