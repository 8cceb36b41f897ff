// Package uis sends service commands to the controller's user interface
// service as SOAP envelopes over UDP.
//
// The command port is advertised over mDNS; DiscoverPort browses for it
// at startup and falls back to the well-known default when the network
// keeps multicast to itself. Each command is one datagram with no
// response channel, so delivery is observed only indirectly through the
// system log and status files.
package uis
