package uis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
)

// Dispatcher delivers service commands to the controller as single UDP
// datagrams. The protocol is fire-and-forget: the controller never
// acknowledges, so a nil return means only that the datagram left the
// socket.
type Dispatcher struct {
	host        string
	port        int
	sendTimeout time.Duration
	logger      *logging.Logger
}

// NewDispatcher creates a Dispatcher targeting host:port. The port
// normally comes from DiscoverPort.
func NewDispatcher(cfg config.UISConfig, port int, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		host:        cfg.Host,
		port:        port,
		sendTimeout: time.Duration(cfg.SendTimeout) * time.Second,
		logger:      logger.With("component", "uis"),
	}
}

// Send renders the command as a SOAP envelope and transmits it in one
// datagram. The envelope must fit a single datagram; the controller does
// not reassemble.
func (d *Dispatcher) Send(ctx context.Context, cmd Command) error {
	envelope, err := buildEnvelope(cmd)
	if err != nil {
		return fmt.Errorf("building command envelope: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", d.host, d.port)
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp", addr)
	if err != nil {
		return fmt.Errorf("dialling command interface %s: %w", addr, err)
	}
	defer conn.Close() //nolint:errcheck // datagram socket teardown

	deadline := time.Now().Add(d.sendTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("setting send deadline: %w", err)
	}

	if _, err := conn.Write([]byte(envelope)); err != nil {
		return fmt.Errorf("sending command datagram to %s: %w", addr, err)
	}

	d.logger.Info("command dispatched",
		"zone", cmd.Zone,
		"service", cmd.Service,
		"command", cmd.Command,
		"target", addr,
	)
	return nil
}

// Target returns the host:port commands are sent to.
func (d *Dispatcher) Target() string {
	return fmt.Sprintf("%s:%d", d.host, d.port)
}
