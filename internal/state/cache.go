package state

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Zone state keys accepted by UpdateZoneState.
const (
	KeyPower  = "power"
	KeyVolume = "volume"
	KeyMute   = "mute"
	KeySource = "source"
)

// ErrUnknownStateKey is returned when UpdateZoneState is called with a key
// other than power, volume, mute or source.
var ErrUnknownStateKey = fmt.Errorf("unknown zone state key")

// ZoneState is the live per-zone state derived from controller log events.
// Fields that have never been observed are omitted from JSON output.
type ZoneState struct {
	Zone   string `json:"zone"`
	Power  string `json:"power,omitempty"`
	Volume *int   `json:"volume,omitempty"`
	Mute   string `json:"mute,omitempty"`
	Source string `json:"source,omitempty"`
}

func (z *ZoneState) clone() ZoneState {
	c := *z
	if z.Volume != nil {
		v := *z.Volume
		c.Volume = &v
	}
	return c
}

// LightLevel is the last-known state of one lighting load, keyed by
// zone and name, addressed on the wire by its controller address.
type LightLevel struct {
	Zone    string `json:"zone"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Level   int    `json:"level"`
	IsOn    bool   `json:"is_on"`
}

// LightKey builds the composite cache key for a light.
func LightKey(zone, name string) string {
	return zone + "/" + name
}

// Cache is the relay's concurrent in-memory store of last-known state.
//
// It holds three independent regions: raw per-component state maps parsed
// from status files, per-zone live state derived from log events, and
// per-light levels. All regions share a single lock domain; every critical
// section is a plain map operation with no I/O, so lock hold time is bounded.
//
// Writers overwrite by key and no history is retained. Getters return
// defensive copies, never live references.
type Cache struct {
	mu         sync.RWMutex
	components map[string]map[string]string
	zones      map[string]*ZoneState
	lights     map[string]*LightLevel
	lastUpdate time.Time
}

// NewCache creates an empty state cache.
func NewCache() *Cache {
	return &Cache{
		components: make(map[string]map[string]string),
		zones:      make(map[string]*ZoneState),
		lights:     make(map[string]*LightLevel),
	}
}

// UpdateComponent replaces the state map for one component.
// The input map is copied; the caller keeps ownership of its argument.
func (c *Cache) UpdateComponent(name string, states map[string]string) {
	cp := make(map[string]string, len(states))
	for k, v := range states {
		cp[k] = v
	}

	c.mu.Lock()
	c.components[name] = cp
	c.lastUpdate = time.Now()
	c.mu.Unlock()
}

// Component returns a copy of one component's state map.
func (c *Cache) Component(name string) (map[string]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	states, ok := c.components[name]
	if !ok {
		return nil, false
	}
	cp := make(map[string]string, len(states))
	for k, v := range states {
		cp[k] = v
	}
	return cp, true
}

// Components returns a copy of every component state map.
func (c *Cache) Components() map[string]map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]map[string]string, len(c.components))
	for name, states := range c.components {
		cp := make(map[string]string, len(states))
		for k, v := range states {
			cp[k] = v
		}
		snapshot[name] = cp
	}
	return snapshot
}

// UpdateZoneState applies one key update to a zone's live state and returns
// a copy of the resulting state for broadcasting.
//
// Accepted keys: power, volume, mute, source. Volume values must parse as
// an integer.
func (c *Cache) UpdateZoneState(zone, key, value string) (ZoneState, error) {
	var volume int
	if key == KeyVolume {
		v, err := strconv.Atoi(value)
		if err != nil {
			return ZoneState{}, fmt.Errorf("parsing volume %q: %w", value, err)
		}
		volume = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	zs, ok := c.zones[zone]
	if !ok {
		zs = &ZoneState{Zone: zone}
		c.zones[zone] = zs
	}

	switch key {
	case KeyPower:
		zs.Power = value
	case KeyVolume:
		zs.Volume = &volume
	case KeyMute:
		zs.Mute = value
	case KeySource:
		zs.Source = value
	default:
		return ZoneState{}, fmt.Errorf("%w: %q", ErrUnknownStateKey, key)
	}

	c.lastUpdate = time.Now()
	return zs.clone(), nil
}

// ZoneState returns a copy of one zone's live state.
func (c *Cache) ZoneState(zone string) (ZoneState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	zs, ok := c.zones[zone]
	if !ok {
		return ZoneState{}, false
	}
	return zs.clone(), true
}

// ZoneStates returns a copy of every zone's live state, keyed by zone name.
func (c *Cache) ZoneStates() map[string]ZoneState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]ZoneState, len(c.zones))
	for name, zs := range c.zones {
		snapshot[name] = zs.clone()
	}
	return snapshot
}

// RegisterLight seeds a light entry so later address-keyed updates from the
// log tailer or the Lutron session can resolve it. An existing entry for
// the same key keeps its current level.
func (c *Cache) RegisterLight(l LightLevel) {
	key := LightKey(l.Zone, l.Name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.lights[key]; exists {
		return
	}
	cp := l
	c.lights[key] = &cp
	c.lastUpdate = time.Now()
}

// UpdateLight sets the level of the light with the given composite key and
// returns a copy of the updated entry.
func (c *Cache) UpdateLight(key string, level int) (LightLevel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lights[key]
	if !ok {
		return LightLevel{}, false
	}
	l.Level = level
	l.IsOn = level > 0
	c.lastUpdate = time.Now()
	return *l, true
}

// UpdateLightByAddress sets the level of the light whose controller address
// matches and returns a copy of the updated entry. Returns false when no
// registered light has that address.
func (c *Cache) UpdateLightByAddress(address string, level int) (LightLevel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range c.lights {
		if l.Address == address {
			l.Level = level
			l.IsOn = level > 0
			c.lastUpdate = time.Now()
			return *l, true
		}
	}
	return LightLevel{}, false
}

// Light returns a copy of one light entry.
func (c *Cache) Light(key string) (LightLevel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, ok := c.lights[key]
	if !ok {
		return LightLevel{}, false
	}
	return *l, true
}

// Lights returns a copy of every light entry, keyed by zone/name.
func (c *Cache) Lights() map[string]LightLevel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]LightLevel, len(c.lights))
	for key, l := range c.lights {
		snapshot[key] = *l
	}
	return snapshot
}

// LightAddresses returns the controller addresses of all registered lights.
func (c *Cache) LightAddresses() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	addrs := make([]string, 0, len(c.lights))
	seen := make(map[string]struct{}, len(c.lights))
	for _, l := range c.lights {
		if l.Address == "" {
			continue
		}
		if _, dup := seen[l.Address]; dup {
			continue
		}
		seen[l.Address] = struct{}{}
		addrs = append(addrs, l.Address)
	}
	return addrs
}

// LastUpdate returns the time of the most recent mutation.
func (c *Cache) LastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate
}
