package lutron

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
	"github.com/akropp/savant-relay/internal/state"
)

const (
	dialTimeout  = 10 * time.Second
	loginTimeout = 10 * time.Second
)

// Broadcaster receives light events parsed from the processor stream.
type Broadcaster interface {
	Broadcast(ev state.Event)
}

// Listener maintains a persistent integration-protocol session to the
// lighting processor and applies asynchronous level reports to the cache.
//
// The listener is the real-time alternative to inferring dimmer levels
// from the system log: the processor reports every level change the
// moment it happens, including ones triggered from physical keypads that
// never pass through the Savant host.
type Listener struct {
	cfg         config.LutronConfig
	cache       *state.Cache
	broadcaster Broadcaster
	logger      *logging.Logger

	reconnectDelay time.Duration
	idleTimeout    time.Duration
}

// New creates a Listener. Call Run to start the session loop.
func New(cfg config.LutronConfig, cache *state.Cache, b Broadcaster, logger *logging.Logger) *Listener {
	return &Listener{
		cfg:            cfg,
		cache:          cache,
		broadcaster:    b,
		logger:         logger.With("component", "lutron"),
		reconnectDelay: time.Duration(cfg.ReconnectDelay) * time.Second,
		idleTimeout:    time.Duration(cfg.IdleTimeout) * time.Second,
	}
}

// Run connects, logs in, and consumes level reports until the context is
// cancelled. Every session error tears the connection down and triggers a
// reconnect after a fixed delay; the loop never gives up on its own.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := l.session(ctx); err != nil && ctx.Err() == nil {
			l.logger.Warn("processor session ended, reconnecting",
				"host", l.cfg.Host, "delay", l.reconnectDelay.String(), "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.reconnectDelay):
		}
	}
}

// session runs one connect-login-listen cycle.
func (l *Listener) session(ctx context.Context) error {
	conn, reader, err := l.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close() //nolint:errcheck // session teardown

	// Close the socket on cancellation so blocked reads unwind.
	stop := context.AfterFunc(ctx, func() { conn.Close() }) //nolint:errcheck // teardown
	defer stop()

	addresses := l.cache.LightAddresses()
	if err := queryAddresses(conn, addresses); err != nil {
		return fmt.Errorf("querying initial levels: %w", err)
	}
	l.logger.Info("processor session established", "host", l.cfg.Host, "lights", len(addresses))

	for {
		if err := conn.SetReadDeadline(time.Now().Add(l.idleTimeout)); err != nil {
			return err
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				// Idle: nudge the processor so a dead link surfaces as
				// a write or read error next time around.
				if err := l.keepalive(conn, addresses); err != nil {
					return fmt.Errorf("keepalive failed: %w", err)
				}
				continue
			}
			return fmt.Errorf("reading processor stream: %w", err)
		}

		l.handleLine(line)
	}
}

// connect dials the processor and performs the login exchange.
func (l *Listener) connect(ctx context.Context) (net.Conn, *bufio.Reader, error) {
	addr := net.JoinHostPort(l.cfg.Host, strconv.Itoa(l.cfg.Port))
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dialling processor %s: %w", addr, err)
	}

	reader := bufio.NewReader(conn)
	if err := login(conn, reader, l.cfg.Username, l.cfg.Password); err != nil {
		conn.Close() //nolint:errcheck // failed login teardown
		return nil, nil, fmt.Errorf("processor login: %w", err)
	}
	return conn, reader, nil
}

// login answers the processor's login and password prompts and discards
// the command prompt that follows.
func login(conn net.Conn, reader *bufio.Reader, username, password string) error {
	if err := conn.SetDeadline(time.Now().Add(loginTimeout)); err != nil {
		return err
	}

	for _, credential := range []string{username, password} {
		if _, err := reader.ReadString(' '); err != nil {
			return fmt.Errorf("reading prompt: %w", err)
		}
		if _, err := fmt.Fprintf(conn, "%s\r\n", credential); err != nil {
			return fmt.Errorf("sending credential: %w", err)
		}
	}
	if _, err := reader.ReadString(' '); err != nil {
		return fmt.Errorf("reading command prompt: %w", err)
	}

	return conn.SetDeadline(time.Time{})
}

// queryAddresses requests the current level of every known address.
func queryAddresses(conn net.Conn, addresses []string) error {
	for _, address := range addresses {
		if _, err := fmt.Fprintf(conn, "?OUTPUT,%s,1\r\n", address); err != nil {
			return err
		}
	}
	return nil
}

// keepalive issues one level query so the link carries traffic. With no
// known addresses a bare line break serves the same purpose.
func (l *Listener) keepalive(conn net.Conn, addresses []string) error {
	if len(addresses) > 0 {
		_, err := fmt.Fprintf(conn, "?OUTPUT,%s,1\r\n", addresses[0])
		return err
	}
	_, err := conn.Write([]byte("\r\n"))
	return err
}

// handleLine applies one processor report to the cache.
func (l *Listener) handleLine(line string) {
	address, level, ok := parseOutputLine(line)
	if !ok {
		return
	}

	light, known := l.cache.UpdateLightByAddress(address, level)
	if !known {
		l.logger.Debug("level report for unknown address", "address", address, "level", level)
		return
	}
	l.broadcaster.Broadcast(state.NewLightStateEvent(light))
	l.logger.Debug("light level reported", "address", address, "level", level)
}

// parseOutputLine decodes a `~OUTPUT,<address>,1,<level>` report. The
// processor sends fractional levels; they round to the nearest integer.
func parseOutputLine(line string) (address string, level int, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "~OUTPUT,") {
		return "", 0, false
	}

	parts := strings.Split(strings.TrimPrefix(line, "~OUTPUT,"), ",")
	if len(parts) < 3 || parts[1] != "1" {
		return "", 0, false
	}

	raw, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return "", 0, false
	}
	return parts[0], int(math.Round(raw)), true
}

// QueryLevels performs one login-query-close cycle, used at startup when
// the persistent listener is disabled. Replies arriving within the read
// window are applied to the cache; the session then ends so the
// processor's session slot frees up immediately.
func QueryLevels(ctx context.Context, cfg config.LutronConfig, cache *state.Cache, logger *logging.Logger) error {
	l := New(cfg, cache, nil, logger)

	conn, reader, err := l.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close() //nolint:errcheck // one-shot teardown

	addresses := cache.LightAddresses()
	if err := queryAddresses(conn, addresses); err != nil {
		return fmt.Errorf("querying levels: %w", err)
	}

	// Collect replies until a short quiet period; one reply per address
	// is the common case but the processor is free to interleave others.
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		return err
	}
	applied := 0
	for applied < len(addresses) {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if address, level, ok := parseOutputLine(line); ok {
			if _, known := cache.UpdateLightByAddress(address, level); known {
				applied++
			}
		}
	}

	l.logger.Info("one-shot level query complete", "queried", len(addresses), "applied", applied)
	return nil
}
