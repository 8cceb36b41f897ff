package uis

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
)

func TestDispatcher_Send(t *testing.T) {
	// Stand-in controller: one UDP socket capturing the datagram.
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close() //nolint:errcheck // test teardown

	port := conn.LocalAddr().(*net.UDPAddr).Port
	d := NewDispatcher(config.UISConfig{Host: "127.0.0.1", SendTimeout: 2}, port, logging.Default())

	cmd := Command{
		Zone:             "Family Room",
		Component:        "AudioSwitch",
		LogicalComponent: "Audio_switch",
		Service:          "SVC_AV_GENERALAUDIO",
		ServiceVariantID: "1",
		Command:          "SetVolume",
		Arguments:        map[string]string{"VolumeValue": "45"},
	}
	if err := d.Send(context.Background(), cmd); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	buffer := make([]byte, 64*1024)
	n, _, err := conn.ReadFromUDP(buffer)
	if err != nil {
		t.Fatalf("reading datagram: %v", err)
	}
	payload := string(buffer[:n])

	if !strings.HasPrefix(payload, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("datagram does not start with XML declaration")
	}
	for _, want := range []string{
		"<zoneString>Family Room</zoneString>",
		"<commandString>SetVolume</commandString>",
		`<arg name="VolumeValue" value="45"/>`,
	} {
		if !strings.Contains(payload, want) {
			t.Errorf("datagram missing %q", want)
		}
	}
}

func TestDispatcher_SendInvalidCommand(t *testing.T) {
	d := NewDispatcher(config.UISConfig{Host: "127.0.0.1", SendTimeout: 1}, 45600, logging.Default())

	if err := d.Send(context.Background(), Command{}); err == nil {
		t.Error("Send() accepted empty command")
	}
}

func TestDispatcher_Target(t *testing.T) {
	d := NewDispatcher(config.UISConfig{Host: "127.0.0.1"}, 45600, logging.Default())
	if got := d.Target(); got != "127.0.0.1:45600" {
		t.Errorf("Target() = %q", got)
	}
}
