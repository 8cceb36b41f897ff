package main

import (
	"context"
	"testing"

	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
	"github.com/akropp/savant-relay/internal/push"
	"github.com/akropp/savant-relay/internal/state"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv("SAVANT_RELAY_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("SAVANT_RELAY_CONFIG", "/etc/savant-relay/config.yaml")
	if got := getConfigPath(); got != "/etc/savant-relay/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env override", got)
	}
}

func TestEventFanout_PushOnly(t *testing.T) {
	pushServer := push.NewServer(config.PushConfig{
		Host:         "127.0.0.1",
		Port:         0,
		PingInterval: 30,
		WriteTimeout: 2,
	}, logging.Default())
	if err := pushServer.Start(context.Background()); err != nil {
		t.Fatalf("starting push server: %v", err)
	}
	defer pushServer.Close() //nolint:errcheck // test teardown

	fanout := &eventFanout{push: pushServer, log: logging.Default()}

	// With no mirrors configured, broadcasting must not panic.
	volume := 45
	fanout.Broadcast(state.NewZoneStateEvent(state.ZoneState{Zone: "Den", Volume: &volume}))
	fanout.Broadcast(state.NewLightStateEvent(state.LightLevel{Zone: "Den", Name: "Ceiling", Level: 10}))
}
