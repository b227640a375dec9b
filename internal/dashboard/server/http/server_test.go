package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
	"github.com/autopeer-io/smartpark/pkg/options"
)

type staticSource struct {
	state parkingv1alpha1.DisplayState
}

func (s staticSource) State() parkingv1alpha1.DisplayState { return s.state }

func newTestServer(st parkingv1alpha1.DisplayState) *httptest.Server {
	phase := func() parkingv1alpha1.ConnectionPhase { return parkingv1alpha1.ConnectionPhaseConnected }
	s := NewServer(options.NewHttpOptions(), staticSource{state: st}, "smartparking/status", phase)
	return httptest.NewServer(s.Handler())
}

func connectedState() parkingv1alpha1.DisplayState {
	at := time.Date(2025, 3, 1, 9, 30, 15, 0, time.UTC)
	snap := parkingv1alpha1.OccupancySnapshot{
		Device: "esp32-1", Free: 3, Occupied: 1, Availability: 75,
		Places: []parkingv1alpha1.SpaceStatus{
			{Place: parkingv1alpha1.NewNumericPlaceID(1), Distance: 120},
			{Place: parkingv1alpha1.NewNumericPlaceID(2), Occupied: true, Distance: 15},
		},
	}
	return parkingv1alpha1.DisplayState{
		Current: &snap, Connected: true, LastUpdate: at,
		History: []parkingv1alpha1.HistoryEntry{{Time: at, Snapshot: snap}},
	}
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(parkingv1alpha1.DisplayState{})
	defer srv.Close()

	if resp, _ := get(t, srv, "/healthz"); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestReadyzFollowsConnection(t *testing.T) {
	down := newTestServer(parkingv1alpha1.DisplayState{})
	defer down.Close()
	if resp, _ := get(t, down, "/readyz"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("disconnected status = %d, want 503", resp.StatusCode)
	}

	up := newTestServer(parkingv1alpha1.DisplayState{Connected: true})
	defer up.Close()
	if resp, _ := get(t, up, "/readyz"); resp.StatusCode != http.StatusOK {
		t.Fatalf("connected status = %d, want 200", resp.StatusCode)
	}
}

func TestStateEndpoint(t *testing.T) {
	srv := newTestServer(connectedState())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var got struct {
		Connected  bool   `json:"connected"`
		Phase      string `json:"phase"`
		Topic      string `json:"topic"`
		LastUpdate string `json:"lastUpdate"`
		Current    struct {
			Device string `json:"device"`
			Places []struct {
				Place json.RawMessage `json:"place"`
			} `json:"places"`
		} `json:"current"`
		History []json.RawMessage `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !got.Connected || got.Phase != "connected" || got.Topic != "smartparking/status" {
		t.Fatalf("unexpected response: %+v", got)
	}
	if got.Current.Device != "esp32-1" || len(got.History) != 1 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if string(got.Current.Places[0].Place) != "1" {
		t.Fatalf("place id = %s, want numeric 1", got.Current.Places[0].Place)
	}
	if got.LastUpdate != "2025-03-01T09:30:15Z" {
		t.Fatalf("lastUpdate = %q", got.LastUpdate)
	}
}

func TestStateEndpointEmpty(t *testing.T) {
	srv := newTestServer(parkingv1alpha1.DisplayState{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var got map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := got["current"]; ok {
		t.Fatal("current should be omitted before the first snapshot")
	}
	if _, ok := got["lastUpdate"]; ok {
		t.Fatal("lastUpdate should be omitted before the first snapshot")
	}
	if string(got["history"]) != "[]" {
		t.Fatalf("history = %s, want []", got["history"])
	}
}

func TestDashboardPage(t *testing.T) {
	srv := newTestServer(connectedState())
	defer srv.Close()

	resp, body := get(t, srv, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("content type = %q", resp.Header.Get("Content-Type"))
	}
	for _, want := range []string{"Place 1", "120 cm", "OCCUPIED", "esp32-1"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(parkingv1alpha1.DisplayState{})
	defer srv.Close()

	resp, body := get(t, srv, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "smartpark_broker_connected") {
		t.Fatal("metrics missing smartpark_broker_connected")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(parkingv1alpha1.DisplayState{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/state", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}
