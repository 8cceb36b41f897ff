// Package directory reads zone, service, and light descriptions from the
// controller's configuration database.
//
// The database is an external, installer-owned artifact. Results are never
// cached: every query opens the file read-only and re-derives its answer,
// so configuration deployed by the installer is visible on the next HTTP
// request without restarting the relay. A database error degrades the
// affected endpoint to an empty collection; it never crashes the process.
//
// The package also owns the scale conversions between integration-facing
// units (0-255 brightness, 0.0-1.0 volume) and controller units (0-100
// dimmer levels, percent or dB volume).
package directory
