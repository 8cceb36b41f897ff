package directory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/database"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
)

// lightingServiceType tags the per-zone lighting service in the
// configuration database.
const lightingServiceType = "SVC_ENV_LIGHTING"

// Defaults applied when a zone has no lighting service row.
const (
	defaultLightComponent        = "Lutron"
	defaultLightLogicalComponent = "Lighting_controller"
	defaultDimmerCommand         = "DimmerSet"
)

// State keys the controller publishes volume and mute under in its
// status files.
const (
	volumeStateKey = "CurrentVolume"
	muteStateKey   = "CurrentMuteState"
)

// Directory answers zone/service/light queries from the controller's
// configuration database.
//
// Nothing is cached: every query opens the database read-only, derives
// fresh results, and closes it, so installer edits take effect without a
// relay restart. Live state has the opposite property and lives in the
// state package.
type Directory struct {
	cfg    config.DirectoryConfig
	logger *logging.Logger
}

// New creates a Directory for the configured database path.
func New(cfg config.DirectoryConfig, logger *logging.Logger) *Directory {
	return &Directory{
		cfg:    cfg,
		logger: logger.With("component", "directory"),
	}
}

// open opens a fresh read-only connection for one query.
func (d *Directory) open() (*database.DB, error) {
	return database.OpenReadOnly(database.Config{
		Path:        d.cfg.Path,
		BusyTimeout: d.cfg.BusyTimeout,
	})
}

// Zones returns every zone with its services and, where derivable, a
// volume-control descriptor. Zone names are the map keys.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - map[string]*Zone: Zones keyed by name
//   - error: If the database cannot be opened or queried
func (d *Directory) Zones(ctx context.Context) (map[string]*Zone, error) {
	db, err := d.open()
	if err != nil {
		return nil, fmt.Errorf("opening directory database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only connection

	const query = `
		SELECT zone, alias, component, logicalComponent, serviceVariantID, serviceType, service
		FROM ServiceImplementationZonedService
		WHERE alias IS NOT NULL`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying zoned services: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	zones := make(map[string]*Zone)
	for rows.Next() {
		var (
			zoneName, alias, component, logical, serviceType, service string
			variantID                                                 int64
		)
		if err := rows.Scan(&zoneName, &alias, &component, &logical, &variantID, &serviceType, &service); err != nil {
			return nil, fmt.Errorf("scanning zoned service row: %w", err)
		}

		zone, ok := zones[zoneName]
		if !ok {
			zone = &Zone{Name: zoneName}
			zones[zoneName] = zone
		}
		zone.Services = append(zone.Services, Service{
			Alias:            alias,
			Type:             serviceType,
			Component:        component,
			LogicalComponent: logical,
			ServiceVariantID: fmt.Sprintf("%d", variantID),
			Service:          service,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading zoned service rows: %w", err)
	}

	for _, zone := range zones {
		// Stable service order regardless of view row order.
		sort.Slice(zone.Services, func(i, j int) bool {
			return zone.Services[i].Alias < zone.Services[j].Alias
		})
		zone.VolumeControl = deriveVolumeControl(zone.Services)
	}

	return zones, nil
}

// deriveVolumeControl picks the service that carries a zone's volume.
//
// The first audio service (by alias order) wins. Audio switch matrices
// report volume in dB (-80..0); everything else reports percent (0..100).
func deriveVolumeControl(services []Service) *VolumeControl {
	for _, svc := range services {
		if !strings.Contains(svc.Type, "AUDIO") {
			continue
		}
		scale := VolumeScalePercent
		if strings.Contains(strings.ToLower(svc.Component), "switch") {
			scale = VolumeScaleDB
		}
		return &VolumeControl{
			Component:        svc.Component,
			ServiceType:      svc.Type,
			StateComponent:   svc.Component,
			LogicalComponent: svc.LogicalComponent,
			ServiceVariantID: svc.ServiceVariantID,
			VolumeStateKey:   volumeStateKey,
			MuteStateKey:     muteStateKey,
			VolumeScale:      scale,
		}
	}
	return nil
}

// Lights returns every dimmer and switch light entity, joined with its
// zone's lighting service information.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - []LightEntity: Light entities ordered by zone then name
//   - error: If the database cannot be opened or queried
func (d *Directory) Lights(ctx context.Context) ([]LightEntity, error) {
	db, err := d.open()
	if err != nil {
		return nil, fmt.Errorf("opening directory database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only connection

	const lightQuery = `
		SELECT z.name, le.name, le.addresses, le.entityType, le.dimmerCommand, le.fadeTime, le.delayTime
		FROM LightEntities le
		JOIN Zones z ON le.zoneID = z.id
		WHERE le.entityType IN ('Dimmer', 'Switch')
		ORDER BY z.name, le.name`

	rows, err := db.QueryContext(ctx, lightQuery)
	if err != nil {
		return nil, fmt.Errorf("querying light entities: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var lights []LightEntity
	for rows.Next() {
		var (
			zone, name, entityType string
			addresses, dimmerCmd   *string
			fadeTime, delayTime    *int
		)
		if err := rows.Scan(&zone, &name, &addresses, &entityType, &dimmerCmd, &fadeTime, &delayTime); err != nil {
			return nil, fmt.Errorf("scanning light entity row: %w", err)
		}

		light := LightEntity{
			Zone:             zone,
			Name:             name,
			EntityType:       entityType,
			IsDimmer:         entityType == "Dimmer",
			DimmerCommand:    defaultDimmerCommand,
			Component:        defaultLightComponent,
			LogicalComponent: defaultLightLogicalComponent,
			ServiceVariantID: "1",
			Service:          lightingServiceType,
		}
		// Only the first address (Address1) is controllable per entity.
		if addresses != nil && *addresses != "" {
			light.Address = strings.Split(*addresses, ",")[0]
		}
		if dimmerCmd != nil && *dimmerCmd != "" {
			light.DimmerCommand = *dimmerCmd
		}
		if fadeTime != nil {
			light.FadeTime = *fadeTime
		}
		if delayTime != nil {
			light.DelayTime = *delayTime
		}
		lights = append(lights, light)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading light entity rows: %w", err)
	}

	// Attach each zone's lighting service coordinates.
	services, err := d.lightingServices(ctx, db)
	if err != nil {
		// Lights are still usable with the defaults; log and continue.
		d.logger.Warn("loading lighting services failed, using defaults", "error", err)
		return lights, nil
	}
	for i := range lights {
		if svc, ok := services[lights[i].Zone]; ok {
			lights[i].Component = svc.Component
			lights[i].LogicalComponent = svc.LogicalComponent
			lights[i].ServiceVariantID = svc.ServiceVariantID
		}
	}

	return lights, nil
}

// lightingServices maps zone name to that zone's lighting service row.
func (d *Directory) lightingServices(ctx context.Context, db *database.DB) (map[string]Service, error) {
	const query = `
		SELECT zone, component, logicalComponent, serviceVariantID
		FROM ServiceImplementationZonedService
		WHERE serviceType = ?`

	rows, err := db.QueryContext(ctx, query, lightingServiceType)
	if err != nil {
		return nil, fmt.Errorf("querying lighting services: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	services := make(map[string]Service)
	for rows.Next() {
		var (
			zone, component, logical string
			variantID                int64
		)
		if err := rows.Scan(&zone, &component, &logical, &variantID); err != nil {
			return nil, fmt.Errorf("scanning lighting service row: %w", err)
		}
		services[zone] = Service{
			Component:        component,
			LogicalComponent: logical,
			ServiceVariantID: fmt.Sprintf("%d", variantID),
		}
	}
	return services, rows.Err()
}

// HealthCheck verifies the configuration database can be opened.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (d *Directory) HealthCheck(ctx context.Context) error {
	db, err := d.open()
	if err != nil {
		return fmt.Errorf("directory: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only connection
	return db.HealthCheck(ctx)
}
