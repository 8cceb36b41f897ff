// Package mqtt mirrors relay state events to an MQTT broker.
//
// The mirror is optional and disabled by default. When enabled, every
// event broadcast to push clients is also published to
// <prefix>/events/<type>, and a retained status topic tracks whether the
// relay is online. The client publishes only; it holds no subscriptions.
//
// Connection loss is handled by paho's auto-reconnect with exponential
// backoff, and a Last Will marks the relay offline if it crashes.
package mqtt
