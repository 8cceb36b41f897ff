package state

import "time"

// EventType discriminates push events.
type EventType string

// Event variants. Each carries one payload type: EventZoneState a
// ZoneState, EventLightState a LightLevel.
const (
	EventZoneState  EventType = "zone_state"
	EventLightState EventType = "light_state"
)

// Event is the envelope every push channel delivers: the variant tag, its
// payload, and the emission time in epoch seconds. Construct events with
// NewZoneStateEvent or NewLightStateEvent so tag and payload always match.
type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp int64     `json:"timestamp"`
}

// NewZoneStateEvent wraps a zone state snapshot for broadcasting.
func NewZoneStateEvent(zs ZoneState) Event {
	return Event{
		Type:      EventZoneState,
		Data:      zs,
		Timestamp: time.Now().Unix(),
	}
}

// NewLightStateEvent wraps a light level snapshot for broadcasting.
func NewLightStateEvent(l LightLevel) Event {
	return Event{
		Type:      EventLightState,
		Data:      l,
		Timestamp: time.Now().Unix(),
	}
}
