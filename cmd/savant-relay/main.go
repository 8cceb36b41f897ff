// Savant Relay - REST and WebSocket gateway for a legacy Savant controller
//
// The relay sits on the Savant host and bridges its closed interfaces
// (status files, system-log service events, SOAP-over-UDP commands) to
// modern HTTP clients, primarily a Home Assistant integration.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/akropp/savant-relay/internal/api"
	"github.com/akropp/savant-relay/internal/directory"
	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
	"github.com/akropp/savant-relay/internal/infrastructure/mqtt"
	"github.com/akropp/savant-relay/internal/infrastructure/tsdb"
	"github.com/akropp/savant-relay/internal/lutron"
	"github.com/akropp/savant-relay/internal/push"
	"github.com/akropp/savant-relay/internal/state"
	"github.com/akropp/savant-relay/internal/statusfile"
	"github.com/akropp/savant-relay/internal/syslogtail"
	"github.com/akropp/savant-relay/internal/uis"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Savant Relay",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Zone directory and state cache
	dir := directory.New(cfg.Directory, log)
	cache := state.NewCache()
	seedLights(ctx, dir, cache, log)

	// Event fan-out: push server always, MQTT/InfluxDB mirrors when enabled
	fanout := &eventFanout{log: log}

	pushServer := push.NewServer(cfg.Push, log)
	if err := pushServer.Start(ctx); err != nil {
		return fmt.Errorf("starting push server: %w", err)
	}
	defer func() {
		log.Info("stopping push server")
		if closeErr := pushServer.Close(); closeErr != nil {
			log.Error("error closing push server", "error", closeErr)
		}
	}()
	fanout.push = pushServer

	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
		fanout.mqtt = mqttClient
	} else {
		log.Info("MQTT mirror disabled")
	}

	if cfg.InfluxDB.Enabled {
		tsdbClient, tsdbErr := tsdb.Connect(cfg.InfluxDB)
		if tsdbErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", tsdbErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := tsdbClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		tsdbClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		fanout.tsdb = tsdbClient
	} else {
		log.Info("InfluxDB mirror disabled")
	}

	// State sources: status files and the system log
	watcher := statusfile.New(cfg.Status, cache, log)
	log.Info("status watcher initialised", "dir", cfg.Status.Dir, "strategy", watcher.Strategy())

	tailer := syslogtail.New(cfg.Syslog, cache, fanout, log)

	// Command path: discover the UIS port, then build the dispatcher
	uisPort := uis.DiscoverPort(ctx, cfg.UIS, log)
	dispatcher := uis.NewDispatcher(cfg.UIS, uisPort, log)
	log.Info("command dispatcher ready", "target", dispatcher.Target())

	// REST surface
	apiServer, err := api.New(api.Deps{
		Config:     cfg.API,
		Logger:     log,
		Cache:      cache,
		Directory:  dir,
		Dispatcher: dispatcher,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Background workers
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return watcher.Run(groupCtx) })
	group.Go(func() error { return tailer.Run(groupCtx) })

	if cfg.Lutron.Enabled {
		listener := lutron.New(cfg.Lutron, cache, fanout, log)
		group.Go(func() error { return listener.Run(groupCtx) })
		log.Info("lutron listener enabled", "host", cfg.Lutron.Host)
	} else if cfg.Lutron.Host != "" {
		// One-shot level seed: the persistent session would hold one of
		// the processor's scarce connection slots.
		go func() {
			if queryErr := lutron.QueryLevels(groupCtx, cfg.Lutron, cache, log); queryErr != nil {
				log.Warn("initial light level query failed", "error", queryErr)
			}
		}()
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	if err := group.Wait(); err != nil {
		return fmt.Errorf("worker failed: %w", err)
	}

	log.Info("shutdown signal received, cleaning up")
	log.Info("Savant Relay stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SAVANT_RELAY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SAVANT_RELAY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// seedLights registers every light entity from the directory so level
// updates arriving by address can be resolved. A directory failure only
// delays seeding: lights appear once the database becomes readable and a
// client queries it, and level events for unknown addresses are dropped
// harmlessly until then.
func seedLights(ctx context.Context, dir *directory.Directory, cache *state.Cache, log *logging.Logger) {
	lights, err := dir.Lights(ctx)
	if err != nil {
		log.Warn("light directory unavailable at startup", "error", err)
		return
	}
	for _, entity := range lights {
		cache.RegisterLight(state.LightLevel{
			Zone:    entity.Zone,
			Name:    entity.Name,
			Address: entity.Address,
		})
	}
	log.Info("light entities registered", "count", len(lights))
}

// eventFanout delivers every broadcast event to the push server and, when
// enabled, mirrors it to MQTT and InfluxDB. Mirror failures are logged
// and never block the push path.
type eventFanout struct {
	push *push.Server
	mqtt *mqtt.Client
	tsdb *tsdb.Client
	log  *logging.Logger
}

// Broadcast implements the Broadcaster interface shared by the state
// sources.
func (f *eventFanout) Broadcast(ev state.Event) {
	f.push.Broadcast(ev)

	if f.mqtt != nil {
		payload, err := json.Marshal(ev)
		if err != nil {
			f.log.Error("marshalling event for MQTT mirror failed", "type", string(ev.Type), "error", err)
		} else if err := f.mqtt.PublishEvent(string(ev.Type), payload); err != nil {
			f.log.Warn("MQTT mirror publish failed", "type", string(ev.Type), "error", err)
		}
	}

	if f.tsdb != nil {
		f.record(ev)
	}
}

// record extracts the numeric series from an event.
func (f *eventFanout) record(ev state.Event) {
	switch data := ev.Data.(type) {
	case state.ZoneState:
		if data.Volume != nil {
			f.tsdb.WriteZoneVolume(data.Zone, *data.Volume)
		}
		if data.Power != "" {
			f.tsdb.WriteZonePower(data.Zone, data.Power == "ON")
		}
	case state.LightLevel:
		f.tsdb.WriteLightLevel(data.Zone, data.Name, data.Address, data.Level)
	}
}
