package directory

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
)

// createFixture builds a configuration database with the tables and view
// shape the relay queries. The real file exposes
// ServiceImplementationZonedService as a view; a table is equivalent here.
func createFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "serviceImplementation.sqlite")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE ServiceImplementationZonedService (
			zone TEXT, alias TEXT, component TEXT, logicalComponent TEXT,
			serviceVariantID INTEGER, serviceType TEXT, service TEXT)`,
		`CREATE TABLE Zones (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE LightEntities (
			id INTEGER PRIMARY KEY, zoneID INTEGER, name TEXT, addresses TEXT,
			entityType TEXT, dimmerCommand TEXT, fadeTime INTEGER, delayTime INTEGER)`,

		`INSERT INTO ServiceImplementationZonedService VALUES
			('Family Room', 'Apple TV', 'AppleTV', 'Media_player', 1, 'SVC_AV_LIVEMEDIAQUERY', 'SVC_AV_LIVEMEDIAQUERY_1'),
			('Family Room', 'Listen', 'Audio Switch', 'Audio_switch', 1, 'SVC_AV_GENERALAUDIO', 'SVC_AV_GENERALAUDIO_1'),
			('Family Room', NULL, 'Hidden', 'Hidden', 1, 'SVC_AV_GENERALAUDIO', 'SVC_AV_GENERALAUDIO_2'),
			('Den', 'Radio', 'Receiver', 'Receiver_audio', 2, 'SVC_AV_GENERALAUDIO', 'SVC_AV_GENERALAUDIO_3'),
			('Family Room', 'Lights', 'Lutron RadioRA', 'Lighting_controller', 3, 'SVC_ENV_LIGHTING', 'SVC_ENV_LIGHTING_1')`,

		`INSERT INTO Zones (id, name) VALUES (1, 'Family Room'), (2, 'Den')`,
		`INSERT INTO LightEntities (zoneID, name, addresses, entityType, dimmerCommand, fadeTime, delayTime) VALUES
			(1, 'Island', '14,15', 'Dimmer', NULL, 2, 0),
			(1, 'Pendant', '22', 'Switch', 'DimmerSet', NULL, NULL),
			(2, 'Fan', '30', 'Fan', NULL, 0, 0)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("fixture statement failed: %v\n%s", err, stmt)
		}
	}
	return path
}

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	return New(config.DirectoryConfig{Path: createFixture(t), BusyTimeout: 1}, logging.Default())
}

func TestZones(t *testing.T) {
	d := newTestDirectory(t)

	zones, err := d.Zones(context.Background())
	if err != nil {
		t.Fatalf("Zones() error = %v", err)
	}

	if len(zones) != 2 {
		t.Fatalf("got %d zones, want 2", len(zones))
	}

	fr, ok := zones["Family Room"]
	if !ok {
		t.Fatal("Family Room missing")
	}
	// NULL-alias row is excluded, lighting service included
	if len(fr.Services) != 3 {
		t.Fatalf("Family Room services = %d, want 3", len(fr.Services))
	}
	// Sorted by alias: Apple TV, Lights, Listen
	if fr.Services[0].Alias != "Apple TV" || fr.Services[2].Alias != "Listen" {
		t.Errorf("service order = [%s %s %s]", fr.Services[0].Alias, fr.Services[1].Alias, fr.Services[2].Alias)
	}
	if fr.Services[0].ServiceVariantID != "1" {
		t.Errorf("ServiceVariantID = %q, want \"1\"", fr.Services[0].ServiceVariantID)
	}
}

func TestZones_VolumeControlDerivation(t *testing.T) {
	d := newTestDirectory(t)

	zones, err := d.Zones(context.Background())
	if err != nil {
		t.Fatalf("Zones() error = %v", err)
	}

	fr := zones["Family Room"].VolumeControl
	if fr == nil {
		t.Fatal("Family Room volumeControl missing")
	}
	if fr.Component != "Audio Switch" {
		t.Errorf("Component = %q, want Audio Switch", fr.Component)
	}
	if fr.VolumeScale != VolumeScaleDB {
		t.Errorf("VolumeScale = %q, want dB for an audio switch", fr.VolumeScale)
	}

	den := zones["Den"].VolumeControl
	if den == nil {
		t.Fatal("Den volumeControl missing")
	}
	if den.VolumeScale != VolumeScalePercent {
		t.Errorf("VolumeScale = %q, want percent for a receiver", den.VolumeScale)
	}
	if den.VolumeStateKey != "CurrentVolume" || den.MuteStateKey != "CurrentMuteState" {
		t.Errorf("state keys = %q/%q", den.VolumeStateKey, den.MuteStateKey)
	}
}

func TestLights(t *testing.T) {
	d := newTestDirectory(t)

	lights, err := d.Lights(context.Background())
	if err != nil {
		t.Fatalf("Lights() error = %v", err)
	}

	// Fan entity filtered out
	if len(lights) != 2 {
		t.Fatalf("got %d lights, want 2", len(lights))
	}

	island := lights[0]
	if island.Name != "Island" {
		t.Fatalf("first light = %q, want Island (ordered by zone, name)", island.Name)
	}
	if island.Address != "14" {
		t.Errorf("Address = %q, want first address 14", island.Address)
	}
	if !island.IsDimmer {
		t.Error("Island should be a dimmer")
	}
	if island.DimmerCommand != "DimmerSet" {
		t.Errorf("DimmerCommand = %q, want default DimmerSet", island.DimmerCommand)
	}
	// Lighting service info joined from the zone's SVC_ENV_LIGHTING row
	if island.Component != "Lutron RadioRA" {
		t.Errorf("Component = %q, want Lutron RadioRA", island.Component)
	}
	if island.ServiceVariantID != "3" {
		t.Errorf("ServiceVariantID = %q, want \"3\"", island.ServiceVariantID)
	}

	pendant := lights[1]
	if pendant.IsDimmer {
		t.Error("Pendant should not be a dimmer")
	}
	if pendant.FadeTime != 0 || pendant.DelayTime != 0 {
		t.Errorf("NULL timings should default to 0, got %d/%d", pendant.FadeTime, pendant.DelayTime)
	}
}

func TestZones_MissingDatabase(t *testing.T) {
	d := New(config.DirectoryConfig{Path: "/nonexistent/dir/x.sqlite", BusyTimeout: 1}, logging.Default())
	if _, err := d.Zones(context.Background()); err == nil {
		t.Error("Zones() expected error for missing database")
	}
}
