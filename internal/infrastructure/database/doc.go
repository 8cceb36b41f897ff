// Package database provides read-only access to the controller's SQLite
// configuration database.
//
// The database (serviceImplementation.sqlite) is produced by the Savant
// installer tooling and describes zones, services, and light entities. The
// relay treats it strictly as an external, read-only artifact: no schema,
// no migrations, no writes. Connections are opened with mode=ro so a relay
// bug can never corrupt installer state.
package database
