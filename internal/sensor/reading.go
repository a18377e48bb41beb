// Package sensor decodes environmental readings reported by BLE
// peripherals and accumulates them into a snapshot. Payloads are small
// JSON objects; a device sends whichever of the known fields it has, so
// every field is optional.
package sensor

import (
	"encoding/json"
	"fmt"
	"time"
)

// Reading is a single decoded notification payload. A nil field means
// the payload did not carry it.
type Reading struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// Empty reports whether the reading carries none of the known fields.
func (r Reading) Empty() bool {
	return r.Temperature == nil && r.Humidity == nil
}

// Decode parses a notification payload as a JSON reading. Payloads with
// unknown extra fields are accepted; a field of the wrong type fails the
// whole payload.
func Decode(data []byte) (Reading, error) {
	var r Reading
	if err := json.Unmarshal(data, &r); err != nil {
		return Reading{}, fmt.Errorf("sensor: decode payload: %w", err)
	}
	return r, nil
}

// Snapshot holds the most recent value of each field, merged across
// readings from one connection.
type Snapshot struct {
	Temperature *float64
	Humidity    *float64
	UpdatedAt   time.Time
}

// Apply merges a reading into the snapshot. Fields absent from the
// reading keep their previous values; an empty reading changes nothing.
func (s *Snapshot) Apply(r Reading, at time.Time) {
	if r.Empty() {
		return
	}
	if r.Temperature != nil {
		v := *r.Temperature
		s.Temperature = &v
	}
	if r.Humidity != nil {
		v := *r.Humidity
		s.Humidity = &v
	}
	s.UpdatedAt = at
}

// Clear resets the snapshot. Called when the connection that produced
// the readings goes away.
func (s *Snapshot) Clear() {
	*s = Snapshot{}
}

// HasData reports whether any field has been populated.
func (s Snapshot) HasData() bool {
	return s.Temperature != nil || s.Humidity != nil
}
