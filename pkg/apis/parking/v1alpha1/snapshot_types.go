package v1alpha1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NoObjectDistance is the sensor reading reported when nothing is in range.
// Any distance at or above it means "no object detected".
const NoObjectDistance = 999

// PlaceID identifies a parking space within a snapshot. Sensor firmware sends
// either a JSON number or a JSON string, so the canonical text form is kept
// together with the original kind.
type PlaceID struct {
	value   string
	numeric bool
}

// NewNumericPlaceID builds a PlaceID that marshals back to a JSON number.
func NewNumericPlaceID(n int64) PlaceID {
	return PlaceID{value: strconv.FormatInt(n, 10), numeric: true}
}

// NewStringPlaceID builds a PlaceID that marshals back to a JSON string.
func NewStringPlaceID(s string) PlaceID {
	return PlaceID{value: s}
}

// String returns the identifier as shown on the dashboard.
func (p PlaceID) String() string { return p.value }

// IsZero reports whether the id was never set.
func (p PlaceID) IsZero() bool { return p.value == "" && !p.numeric }

// MarshalJSON keeps the kind the id arrived with.
func (p PlaceID) MarshalJSON() ([]byte, error) {
	if p.numeric {
		return []byte(p.value), nil
	}
	return json.Marshal(p.value)
}

// UnmarshalJSON accepts a JSON number or a JSON string.
func (p *PlaceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("place id must be a number or a string")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PlaceID{value: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("place id must be a number or a string: %w", err)
	}
	*p = PlaceID{value: n.String(), numeric: true}
	return nil
}

// SpaceStatus is the reading for one parking space.
type SpaceStatus struct {
	Place    PlaceID `json:"place"`
	Occupied bool    `json:"occupied"`

	// Distance in centimeters from the sensor to the nearest object.
	Distance float64 `json:"distance"`
}

// NoObject reports whether the sensor saw nothing in range.
func (s SpaceStatus) NoObject() bool {
	return s.Distance >= NoObjectDistance
}

// OccupancySnapshot is one complete occupancy report for every monitored space.
// Values are treated as immutable once decoded.
type OccupancySnapshot struct {
	// Device identifies the reporting hardware unit.
	Device string `json:"device"`

	Free     int `json:"free"`
	Occupied int `json:"occupied"`

	// Availability is the free percentage as reported by the publisher.
	// It is never recomputed locally.
	Availability int `json:"availability"`

	// Places are in the publisher's canonical order.
	Places []SpaceStatus `json:"places"`
}

// Total returns the number of monitored spaces.
func (s *OccupancySnapshot) Total() int {
	return len(s.Places)
}

// DeepCopy returns a copy that shares no memory with s.
func (s *OccupancySnapshot) DeepCopy() *OccupancySnapshot {
	if s == nil {
		return nil
	}
	out := *s
	if s.Places != nil {
		out.Places = make([]SpaceStatus, len(s.Places))
		copy(out.Places, s.Places)
	}
	return &out
}
