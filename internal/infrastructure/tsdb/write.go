package tsdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteZoneVolume records one zone volume transition.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - zone: Zone name (tag)
//   - volume: Volume level 0-100
func (c *Client) WriteZoneVolume(zone string, volume int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"zone_volume",
		map[string]string{
			"zone": zone,
		},
		map[string]interface{}{
			"volume": volume,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteZonePower records a zone power transition as a 0/1 gauge.
//
// Parameters:
//   - zone: Zone name (tag)
//   - on: Whether the zone powered on
func (c *Client) WriteZonePower(zone string, on bool) {
	if !c.IsConnected() {
		return
	}

	value := 0
	if on {
		value = 1
	}

	point := write.NewPoint(
		"zone_power",
		map[string]string{
			"zone": zone,
		},
		map[string]interface{}{
			"on": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteLightLevel records one dimmer level transition.
//
// Parameters:
//   - zone: Zone the light belongs to (tag)
//   - name: Light name (tag)
//   - address: Device address on the lighting bus (tag)
//   - level: Dimmer level 0-100
func (c *Client) WriteLightLevel(zone, name, address string, level int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"light_level",
		map[string]string{
			"zone":    zone,
			"name":    name,
			"address": address,
		},
		map[string]interface{}{
			"level": level,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
