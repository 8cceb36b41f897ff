package api

import (
	"encoding/json"
	"net/http"

	"github.com/akropp/savant-relay/internal/directory"
	"github.com/akropp/savant-relay/internal/uis"
)

// handleHealth returns the relay health status. The directory check hits
// the configuration database; everything else is in-process.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	directoryStatus := "ok"
	if err := s.directory.HealthCheck(r.Context()); err != nil {
		directoryStatus = err.Error()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"version":     s.version,
		"directory":   directoryStatus,
		"last_update": s.cache.LastUpdate().Unix(),
	})
}

// handleZones returns the zone/service directory keyed by zone name.
//
// A directory failure degrades to an empty collection: consumers poll
// this endpoint and a transient database error must not break them.
func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.directory.Zones(r.Context())
	if err != nil {
		s.logger.Error("zone directory query failed", "error", err)
		zones = map[string]*directory.Zone{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"zones": zones})
}

// handleZoneStates returns live per-zone {power, volume, mute, source}.
func (s *Server) handleZoneStates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"zones": s.cache.ZoneStates()})
}

// handleLights returns the light entity directory.
func (s *Server) handleLights(w http.ResponseWriter, r *http.Request) {
	lights, err := s.directory.Lights(r.Context())
	if err != nil {
		s.logger.Error("light directory query failed", "error", err)
		lights = []directory.LightEntity{}
	}
	if lights == nil {
		lights = []directory.LightEntity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"lights": lights})
}

// handleLightStatus returns live per-light {level, is_on} keyed by the
// light's zone/name composite key.
func (s *Server) handleLightStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"lights": s.cache.Lights()})
}

// handleComponentState returns the raw per-component state maps built
// from status files.
func (s *Server) handleComponentState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state":       s.cache.Components(),
		"last_update": s.cache.LastUpdate().Unix(),
	})
}

// handleCommand validates a command payload and forwards it to the
// controller over UDP.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd uis.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeBadRequest(w, "invalid JSON payload")
		return
	}

	if err := cmd.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.dispatcher.Send(r.Context(), cmd); err != nil {
		s.logger.Error("command dispatch failed",
			"zone", cmd.Zone,
			"command", cmd.Command,
			"error", err,
		)
		writeBadGateway(w, "command delivery failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
