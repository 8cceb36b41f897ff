// Package push streams state events to WebSocket clients.
//
// The server runs directly on a TCP listener and implements the RFC 6455
// upgrade handshake and frame codec itself rather than routing through an
// HTTP mux: the endpoint speaks nothing but WebSocket, clients never send
// application data, and the frame surface needed (text broadcast plus
// ping/pong/close) is small enough to own outright.
//
// Every event broadcast is one JSON text frame delivered to all connected
// clients. Slow or dead clients are evicted on write failure or after two
// silent ping intervals, so a single stuck consumer cannot hold up the
// stream.
package push
