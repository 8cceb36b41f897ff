package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// createFixture writes a minimal sqlite database the read-only wrapper can open.
func createFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "serviceImplementation.sqlite")

	rw, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("opening fixture database: %v", err)
	}
	defer rw.Close()

	if _, err := rw.Exec(`CREATE TABLE Zones (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("creating fixture table: %v", err)
	}
	if _, err := rw.Exec(`INSERT INTO Zones (name) VALUES ('Family Room')`); err != nil {
		t.Fatalf("inserting fixture row: %v", err)
	}
	return path
}

func TestOpenReadOnly(t *testing.T) {
	path := createFixture(t)

	db, err := OpenReadOnly(Config{Path: path, BusyTimeout: 1})
	if err != nil {
		t.Fatalf("OpenReadOnly() error = %v", err)
	}
	defer db.Close()

	var name string
	if err := db.QueryRowContext(context.Background(), "SELECT name FROM Zones").Scan(&name); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if name != "Family Room" {
		t.Errorf("name = %q, want %q", name, "Family Room")
	}

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestOpenReadOnly_RejectsWrites(t *testing.T) {
	path := createFixture(t)

	db, err := OpenReadOnly(Config{Path: path, BusyTimeout: 1})
	if err != nil {
		t.Fatalf("OpenReadOnly() error = %v", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(context.Background(), `INSERT INTO Zones (name) VALUES ('Den')`); err == nil {
		t.Error("ExecContext() expected write to fail on read-only connection")
	}
}

func TestOpenReadOnly_MissingFile(t *testing.T) {
	_, err := OpenReadOnly(Config{Path: "/nonexistent/dir/missing.sqlite", BusyTimeout: 1})
	if err == nil {
		t.Error("OpenReadOnly() expected error for missing file, got nil")
	}
}
