// Package view projects the display state into a renderable page. Build is
// pure; the renderers in this package only format what Build produced.
package view

import (
	"strconv"

	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
)

const (
	Title    = "Smart Parking System"
	Subtitle = "Real-time Monitoring Dashboard"
	Footer   = "Smart Parking System v2.1 • Real-time MQTT Monitoring"

	ConnectingText   = "Connecting to MQTT broker..."
	WaitingText      = "Waiting for data from ESP32..."
	NoActivityText   = "No recent activity"
	NoObjectText     = "No object"
	StatusOccupied   = "OCCUPIED"
	StatusFree       = "FREE"
	ConnectedText    = "Connected"
	DisconnectedText = "Disconnected"

	// TimeLayout renders wall clock times in the header and activity list.
	TimeLayout = "15:04:05"
)

// IndicatorKind selects which placeholder is shown instead of data.
type IndicatorKind string

const (
	IndicatorConnecting IndicatorKind = "connecting"
	IndicatorWaiting    IndicatorKind = "waiting"
)

// Indicator replaces the data section while there is nothing to show.
type Indicator struct {
	Kind IndicatorKind
	Text string
}

// Tile is one summary counter.
type Tile struct {
	Label   string
	Value   string
	Caption string
}

// SpaceTile is the status of one parking space.
type SpaceTile struct {
	Name     string
	Status   string
	Occupied bool
	Distance string
}

// DevicePanel describes where the data comes from.
type DevicePanel struct {
	Device string
	Topic  string
}

// ActivityRow is one history entry.
type ActivityRow struct {
	Time         string
	Free         int
	Occupied     int
	Availability string
}

// Page is the complete projection of one DisplayState. Exactly one of
// Indicator and Data is set.
type Page struct {
	Connected  bool
	Status     string
	LastUpdate string

	Indicator *Indicator
	Data      *DataSection
}

// DataSection is rendered once connected and a snapshot is present.
type DataSection struct {
	Summary  []Tile
	Spaces   []SpaceTile
	Device   DevicePanel
	Activity []ActivityRow

	// EmptyActivity is set when there is no history to list.
	EmptyActivity string
}

// Build projects state into a Page. It has no side effects.
func Build(state parkingv1alpha1.DisplayState, topic string) Page {
	page := Page{
		Connected: state.Connected,
		Status:    DisconnectedText,
	}
	if state.Connected {
		page.Status = ConnectedText
	}
	if state.HasLastUpdate() {
		page.LastUpdate = state.LastUpdate.Format(TimeLayout)
	}

	switch {
	case !state.Connected:
		page.Indicator = &Indicator{Kind: IndicatorConnecting, Text: ConnectingText}
		return page
	case state.Current == nil:
		page.Indicator = &Indicator{Kind: IndicatorWaiting, Text: WaitingText}
		return page
	}

	snap := state.Current
	data := &DataSection{
		Summary: []Tile{
			{Label: "FREE SPACES", Value: strconv.Itoa(snap.Free), Caption: "Available now"},
			{Label: "OCCUPIED", Value: strconv.Itoa(snap.Occupied), Caption: "Currently parked"},
			{Label: "AVAILABILITY", Value: FormatPercent(snap.Availability), Caption: "Current rate"},
			{Label: "TOTAL SPACES", Value: strconv.Itoa(snap.Total()), Caption: "Parking capacity"},
		},
		Spaces: make([]SpaceTile, 0, len(snap.Places)),
		Device: DevicePanel{Device: snap.Device, Topic: topic},
	}

	for _, p := range snap.Places {
		data.Spaces = append(data.Spaces, SpaceTile{
			Name:     "Place " + p.Place.String(),
			Status:   StatusLabel(p.Occupied),
			Occupied: p.Occupied,
			Distance: FormatDistance(p.Distance),
		})
	}

	for _, h := range state.History {
		data.Activity = append(data.Activity, ActivityRow{
			Time:         h.Time.Format(TimeLayout),
			Free:         h.Snapshot.Free,
			Occupied:     h.Snapshot.Occupied,
			Availability: FormatPercent(h.Snapshot.Availability),
		})
	}
	if len(data.Activity) == 0 {
		data.EmptyActivity = NoActivityText
	}

	page.Data = data
	return page
}

// StatusLabel is the tile label for a space.
func StatusLabel(occupied bool) string {
	if occupied {
		return StatusOccupied
	}
	return StatusFree
}

// FormatDistance renders a sensor reading. Readings at or above the
// no-object sentinel are not distances.
func FormatDistance(cm float64) string {
	if cm >= parkingv1alpha1.NoObjectDistance {
		return NoObjectText
	}
	return strconv.FormatFloat(cm, 'f', -1, 64) + " cm"
}

func FormatPercent(n int) string {
	return strconv.Itoa(n) + "%"
}
