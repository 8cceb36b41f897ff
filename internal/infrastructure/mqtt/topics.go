package mqtt

import "fmt"

// Topics builds the relay's topic names under one configurable prefix.
//
// Layout:
//
//	<prefix>/status          retained relay online/offline status
//	<prefix>/events/<type>   mirrored state events (zone_state, light_state)
type Topics struct {
	Prefix string
}

// Status returns the retained relay-status topic.
func (t Topics) Status() string {
	return t.Prefix + "/status"
}

// Event returns the mirror topic for one event type.
func (t Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/events/%s", t.Prefix, eventType)
}
