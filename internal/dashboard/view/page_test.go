package view

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
)

const testTopic = "smartparking/status"

func scenarioSnapshot() *parkingv1alpha1.OccupancySnapshot {
	return &parkingv1alpha1.OccupancySnapshot{
		Device:       "esp32-1",
		Free:         3,
		Occupied:     1,
		Availability: 75,
		Places: []parkingv1alpha1.SpaceStatus{
			{Place: parkingv1alpha1.NewNumericPlaceID(1), Occupied: false, Distance: 120},
			{Place: parkingv1alpha1.NewNumericPlaceID(2), Occupied: true, Distance: 15},
		},
	}
}

func TestBuildScenario(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 30, 15, 0, time.UTC)
	snap := scenarioSnapshot()
	state := parkingv1alpha1.DisplayState{
		Current:    snap,
		Connected:  true,
		LastUpdate: at,
		History:    []parkingv1alpha1.HistoryEntry{{Time: at, Snapshot: *snap}},
	}

	want := Page{
		Connected:  true,
		Status:     "Connected",
		LastUpdate: "09:30:15",
		Data: &DataSection{
			Summary: []Tile{
				{Label: "FREE SPACES", Value: "3", Caption: "Available now"},
				{Label: "OCCUPIED", Value: "1", Caption: "Currently parked"},
				{Label: "AVAILABILITY", Value: "75%", Caption: "Current rate"},
				{Label: "TOTAL SPACES", Value: "2", Caption: "Parking capacity"},
			},
			Spaces: []SpaceTile{
				{Name: "Place 1", Status: "FREE", Occupied: false, Distance: "120 cm"},
				{Name: "Place 2", Status: "OCCUPIED", Occupied: true, Distance: "15 cm"},
			},
			Device: DevicePanel{Device: "esp32-1", Topic: testTopic},
			Activity: []ActivityRow{
				{Time: "09:30:15", Free: 3, Occupied: 1, Availability: "75%"},
			},
		},
	}

	if diff := cmp.Diff(want, Build(state, testTopic)); diff != "" {
		t.Fatalf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIndicators(t *testing.T) {
	tests := []struct {
		name  string
		state parkingv1alpha1.DisplayState
		want  *Indicator
	}{
		{
			name:  "disconnected without data",
			state: parkingv1alpha1.DisplayState{},
			want:  &Indicator{Kind: IndicatorConnecting, Text: "Connecting to MQTT broker..."},
		},
		{
			name:  "disconnected with data",
			state: parkingv1alpha1.DisplayState{Current: scenarioSnapshot(), LastUpdate: time.Unix(0, 0)},
			want:  &Indicator{Kind: IndicatorConnecting, Text: "Connecting to MQTT broker..."},
		},
		{
			name:  "connected without data",
			state: parkingv1alpha1.DisplayState{Connected: true},
			want:  &Indicator{Kind: IndicatorWaiting, Text: "Waiting for data from ESP32..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Build(tt.state, testTopic)
			if diff := cmp.Diff(tt.want, page.Indicator); diff != "" {
				t.Fatalf("indicator mismatch (-want +got):\n%s", diff)
			}
			if page.Data != nil {
				t.Fatal("data section rendered together with an indicator")
			}
		})
	}
}

func TestBuildHeader(t *testing.T) {
	page := Build(parkingv1alpha1.DisplayState{}, testTopic)
	if page.Status != "Disconnected" || page.LastUpdate != "" {
		t.Fatalf("header = %q / %q", page.Status, page.LastUpdate)
	}
}

func TestBuildEmptyActivity(t *testing.T) {
	state := parkingv1alpha1.DisplayState{Connected: true, Current: scenarioSnapshot()}
	page := Build(state, testTopic)

	if page.Data == nil {
		t.Fatal("expected data section")
	}
	if len(page.Data.Activity) != 0 || page.Data.EmptyActivity != "No recent activity" {
		t.Fatalf("activity = %v, empty text = %q", page.Data.Activity, page.Data.EmptyActivity)
	}
}

func TestBuildActivityNewestFirst(t *testing.T) {
	older, newer := *scenarioSnapshot(), *scenarioSnapshot()
	newer.Free, newer.Availability = 2, 50

	state := parkingv1alpha1.DisplayState{
		Connected: true,
		Current:   &newer,
		History: []parkingv1alpha1.HistoryEntry{
			{Time: time.Date(2025, 1, 1, 10, 0, 5, 0, time.UTC), Snapshot: newer},
			{Time: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), Snapshot: older},
		},
	}

	got := Build(state, testTopic).Data.Activity
	want := []ActivityRow{
		{Time: "10:00:05", Free: 2, Occupied: 1, Availability: "50%"},
		{Time: "10:00:00", Free: 3, Occupied: 1, Availability: "75%"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("activity mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatDistance(t *testing.T) {
	tests := map[float64]string{
		0:      "0 cm",
		12.5:   "12.5 cm",
		120:    "120 cm",
		998:    "998 cm",
		998.99: "998.99 cm",
		999:    "No object",
		1000:   "No object",
	}

	for in, want := range tests {
		if got := FormatDistance(in); got != want {
			t.Errorf("FormatDistance(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildStringPlaceIDs(t *testing.T) {
	snap := scenarioSnapshot()
	snap.Places[0].Place = parkingv1alpha1.NewStringPlaceID("A1")

	page := Build(parkingv1alpha1.DisplayState{Connected: true, Current: snap}, testTopic)
	if got := page.Data.Spaces[0].Name; got != "Place A1" {
		t.Fatalf("name = %q, want Place A1", got)
	}
}
