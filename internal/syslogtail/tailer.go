package syslogtail

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
	"github.com/akropp/savant-relay/internal/state"
)

// reopenDelay is how long the tailer waits before retrying a failed open.
const reopenDelay = 5 * time.Second

// Commands the tailer turns into state updates. Anything else is ignored.
const (
	cmdSetVolume = "SetVolume"
	cmdPowerOn   = "PowerOn"
	cmdPowerOff  = "PowerOff"
	cmdMuteOn    = "MuteOn"
	cmdMuteOff   = "MuteOff"
	cmdDimmerSet = "DimmerSet"
)

// Argument names carried by the commands above.
const (
	argVolumeValue = "VolumeValue"
	argDimmerLevel = "DimmerLevel"
	argAddress1    = "Address1"
)

// Broadcaster receives the events the tailer derives from log lines.
// Satisfied by the push server (and the fan-out wrapper in main).
type Broadcaster interface {
	Broadcast(ev state.Event)
}

// Tailer incrementally reads the system log, extracts service events, and
// feeds zone and light state into the cache.
//
// The tailer is the relay's most real-time state source: the controller
// logs each service invocation as it executes, well before status files
// are rewritten.
type Tailer struct {
	path        string
	idle        time.Duration
	cache       *state.Cache
	broadcaster Broadcaster
	logger      *logging.Logger
}

// New creates a Tailer. It does not touch the filesystem until Run.
func New(cfg config.SyslogConfig, cache *state.Cache, b Broadcaster, logger *logging.Logger) *Tailer {
	return &Tailer{
		path:        cfg.Path,
		idle:        time.Duration(cfg.IdleIntervalMS) * time.Millisecond,
		cache:       cache,
		broadcaster: b,
		logger:      logger.With("component", "syslogtail"),
	}
}

// Run opens the log, seeks to the current end, and processes newly
// appended lines until the context is cancelled. Read errors and failed
// opens are logged and retried; the loop never terminates on its own.
//
// Known gap: a rotated or truncated log file is not detected. The tailer
// keeps reading its original file handle, so events logged after rotation
// are missed until restart.
func (t *Tailer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		file, err := os.Open(t.path)
		if err != nil {
			t.logger.Warn("opening system log failed, retrying", "path", t.path, "error", err)
			if !t.sleep(ctx, reopenDelay) {
				return nil
			}
			continue
		}

		if _, err := file.Seek(0, io.SeekEnd); err != nil {
			t.logger.Warn("seeking system log failed, retrying", "path", t.path, "error", err)
			file.Close() //nolint:errcheck // error path
			if !t.sleep(ctx, reopenDelay) {
				return nil
			}
			continue
		}

		t.logger.Info("tailing system log", "path", t.path)
		t.readLines(ctx, file)
		file.Close() //nolint:errcheck // shutdown path

		if ctx.Err() != nil {
			return nil
		}
	}
}

// readLines consumes appended lines until the context is cancelled,
// sleeping briefly whenever the reader reaches the current end of file.
// A line may arrive in several partial reads; fragments accumulate until
// the trailing newline shows up.
func (t *Tailer) readLines(ctx context.Context, file *os.File) {
	reader := bufio.NewReader(file)
	var pending strings.Builder

	for {
		if ctx.Err() != nil {
			return
		}

		chunk, err := reader.ReadString('\n')
		pending.WriteString(chunk)

		switch {
		case err == nil:
			line := strings.TrimRight(pending.String(), "\r\n")
			pending.Reset()
			t.handleLine(line)

		case err == io.EOF:
			if !t.sleep(ctx, t.idle) {
				return
			}

		default:
			t.logger.Warn("system log read error", "error", err)
			if !t.sleep(ctx, t.idle) {
				return
			}
		}
	}
}

// handleLine updates the cache and broadcasts for recognised commands.
func (t *Tailer) handleLine(line string) {
	ev, ok := parseLine(line)
	if !ok {
		return
	}

	switch ev.Command {
	case cmdSetVolume:
		value, ok := ev.Arguments[argVolumeValue]
		if !ok {
			t.logger.Debug("SetVolume event without VolumeValue", "zone", ev.Zone)
			return
		}
		t.updateZone(ev.Zone, state.KeyVolume, value)

	case cmdPowerOn:
		// The component that received PowerOn is the zone's active source.
		if _, err := t.cache.UpdateZoneState(ev.Zone, state.KeySource, ev.Component); err != nil {
			t.logger.Warn("zone source update failed", "zone", ev.Zone, "error", err)
		}
		t.updateZone(ev.Zone, state.KeyPower, "ON")

	case cmdPowerOff:
		t.updateZone(ev.Zone, state.KeyPower, "OFF")

	case cmdMuteOn:
		t.updateZone(ev.Zone, state.KeyMute, "ON")

	case cmdMuteOff:
		t.updateZone(ev.Zone, state.KeyMute, "OFF")

	case cmdDimmerSet:
		t.updateLight(ev)

	default:
		t.logger.Debug("ignoring service event", "zone", ev.Zone, "command", ev.Command)
	}
}

// updateZone applies one zone state key and broadcasts the result.
func (t *Tailer) updateZone(zone, key, value string) {
	zs, err := t.cache.UpdateZoneState(zone, key, value)
	if err != nil {
		t.logger.Warn("zone state update failed", "zone", zone, "key", key, "value", value, "error", err)
		return
	}
	t.broadcaster.Broadcast(state.NewZoneStateEvent(zs))
	t.logger.Debug("zone state updated", "zone", zone, "key", key, "value", value)
}

// updateLight resolves a DimmerSet event to a registered light by address.
func (t *Tailer) updateLight(ev ServiceEvent) {
	address, ok := ev.Arguments[argAddress1]
	if !ok {
		t.logger.Debug("DimmerSet event without Address1", "zone", ev.Zone)
		return
	}
	levelStr, ok := ev.Arguments[argDimmerLevel]
	if !ok {
		t.logger.Debug("DimmerSet event without DimmerLevel", "zone", ev.Zone)
		return
	}
	level, err := strconv.Atoi(levelStr)
	if err != nil {
		t.logger.Warn("DimmerSet with non-numeric level", "level", levelStr, "error", err)
		return
	}

	light, ok := t.cache.UpdateLightByAddress(address, level)
	if !ok {
		t.logger.Debug("DimmerSet for unknown address", "address", address)
		return
	}
	t.broadcaster.Broadcast(state.NewLightStateEvent(light))
	t.logger.Debug("light state updated", "address", address, "level", level)
}

// sleep waits for d or until the context is cancelled.
// Returns false when cancelled.
func (t *Tailer) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
