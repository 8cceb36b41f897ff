package uis

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
)

const mdnsAddress = "224.0.0.251:5353"

// DiscoverPort browses mDNS for the controller's command service and
// returns the advertised port. Discovery is best-effort: any failure or
// an empty browse window falls back to the configured port, never an
// error, because the relay must come up even when multicast is filtered.
func DiscoverPort(ctx context.Context, cfg config.UISConfig, logger *logging.Logger) int {
	log := logger.With("component", "uis")

	port, err := browsePort(ctx, cfg.ServiceName, time.Duration(cfg.DiscoveryTimeout)*time.Second)
	if err != nil {
		log.Warn("command port discovery failed, using fallback",
			"service", cfg.ServiceName, "fallback_port", cfg.FallbackPort, "error", err)
		return cfg.FallbackPort
	}

	log.Info("discovered command port", "service", cfg.ServiceName, "port", port)
	return port
}

// browsePort sends one multicast SRV query for the service and waits for
// a matching answer until the timeout elapses.
func browsePort(ctx context.Context, serviceName string, timeout time.Duration) (int, error) {
	mcastAddr, err := net.ResolveUDPAddr("udp4", mdnsAddress)
	if err != nil {
		return 0, fmt.Errorf("resolving mDNS address: %w", err)
	}

	conn, err := net.ListenMulticastUDP("udp4", nil, mcastAddr)
	if err != nil {
		return 0, fmt.Errorf("joining mDNS multicast group: %w", err)
	}
	defer conn.Close() //nolint:errcheck // read-only teardown

	queryName := serviceName + ".local."
	name, err := dnsmessage.NewName(queryName)
	if err != nil {
		return 0, fmt.Errorf("invalid service name %q: %w", serviceName, err)
	}

	var msg dnsmessage.Message
	msg.Header.RecursionDesired = false
	msg.Questions = []dnsmessage.Question{
		{Name: name, Type: dnsmessage.TypePTR, Class: dnsmessage.ClassINET},
		{Name: name, Type: dnsmessage.TypeSRV, Class: dnsmessage.ClassINET},
	}

	packed, err := msg.Pack()
	if err != nil {
		return 0, fmt.Errorf("packing mDNS query: %w", err)
	}
	if _, err := conn.WriteTo(packed, mcastAddr); err != nil {
		return 0, fmt.Errorf("sending mDNS query: %w", err)
	}

	deadline := time.Now().Add(timeout)
	buffer := make([]byte, 1500)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond)); err != nil {
			return 0, err
		}

		n, _, err := conn.ReadFrom(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			continue
		}

		var response dnsmessage.Message
		if err := response.Unpack(buffer[:n]); err != nil {
			continue
		}
		if port, ok := srvPort(&response, queryName); ok {
			return port, nil
		}
	}

	return 0, fmt.Errorf("no SRV answer for %s within %s", serviceName, timeout)
}

// srvPort extracts the port from the first SRV answer belonging to the
// queried service. Answers for other services on the segment are skipped.
func srvPort(response *dnsmessage.Message, queryName string) (int, bool) {
	records := make([]dnsmessage.Resource, 0, len(response.Answers)+len(response.Additionals))
	records = append(records, response.Answers...)
	records = append(records, response.Additionals...)

	for _, record := range records {
		if record.Header.Type != dnsmessage.TypeSRV {
			continue
		}
		// SRV owner names are instance-qualified: <instance>.<service>.local.
		owner := record.Header.Name.String()
		if !strings.HasSuffix(strings.ToLower(owner), strings.ToLower(queryName)) {
			continue
		}
		if srv, ok := record.Body.(*dnsmessage.SRVResource); ok && srv.Port > 0 {
			return int(srv.Port), true
		}
	}
	return 0, false
}
