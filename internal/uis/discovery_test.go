package uis

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
)

func mustName(t *testing.T, name string) dnsmessage.Name {
	t.Helper()
	n, err := dnsmessage.NewName(name)
	if err != nil {
		t.Fatalf("building DNS name %q: %v", name, err)
	}
	return n
}

func TestSrvPort_MatchesInstanceQualifiedOwner(t *testing.T) {
	queryName := "_uis_Kropp_ssp._udp.local."

	response := &dnsmessage.Message{
		Answers: []dnsmessage.Resource{
			{
				Header: dnsmessage.ResourceHeader{
					Name:  mustName(t, "host._uis_Kropp_ssp._udp.local."),
					Type:  dnsmessage.TypeSRV,
					Class: dnsmessage.ClassINET,
				},
				Body: &dnsmessage.SRVResource{Port: 45601},
			},
		},
	}

	port, ok := srvPort(response, queryName)
	if !ok {
		t.Fatal("expected a matching SRV answer")
	}
	if port != 45601 {
		t.Errorf("port = %d, want 45601", port)
	}
}

func TestSrvPort_SkipsOtherServices(t *testing.T) {
	queryName := "_uis_Kropp_ssp._udp.local."

	response := &dnsmessage.Message{
		Answers: []dnsmessage.Resource{
			{
				Header: dnsmessage.ResourceHeader{
					Name:  mustName(t, "printer._ipp._tcp.local."),
					Type:  dnsmessage.TypeSRV,
					Class: dnsmessage.ClassINET,
				},
				Body: &dnsmessage.SRVResource{Port: 631},
			},
			{
				Header: dnsmessage.ResourceHeader{
					Name:  mustName(t, "host._uis_Kropp_ssp._udp.local."),
					Type:  dnsmessage.TypeA,
					Class: dnsmessage.ClassINET,
				},
				Body: &dnsmessage.AResource{A: [4]byte{192, 168, 1, 10}},
			},
		},
	}

	if _, ok := srvPort(response, queryName); ok {
		t.Error("expected no match for unrelated SRV and non-SRV records")
	}
}

func TestDiscoverPort_FallsBackOnFailure(t *testing.T) {
	// A label longer than 63 octets fails when the query is packed, so
	// the fallback path is exercised without waiting out the timeout.
	cfg := config.UISConfig{
		ServiceName:      strings.Repeat("x", 64),
		FallbackPort:     45600,
		DiscoveryTimeout: 1,
	}

	port := DiscoverPort(context.Background(), cfg, logging.Default())
	if port != cfg.FallbackPort {
		t.Errorf("port = %d, want fallback %d", port, cfg.FallbackPort)
	}
}
