package v1alpha1

import (
	"time"
)

// ConnectionPhase is the observed phase of the broker connection.
type ConnectionPhase string

// These are the valid phases of the broker connection.
const (
	// ConnectionPhaseDisconnected means no connection is open and none is scheduled.
	ConnectionPhaseDisconnected ConnectionPhase = "disconnected"

	// ConnectionPhaseConnecting means a dial is in flight.
	ConnectionPhaseConnecting ConnectionPhase = "connecting"

	// ConnectionPhaseConnected means the handshake and subscription succeeded.
	ConnectionPhaseConnected ConnectionPhase = "connected"

	// ConnectionPhaseReconnectPending means a retry timer is armed.
	ConnectionPhaseReconnectPending ConnectionPhase = "reconnect_pending"
)

// DefaultHistoryLimit bounds the recent activity list.
const DefaultHistoryLimit = 10

// HistoryEntry is one applied snapshot and the local time it was applied.
type HistoryEntry struct {
	Time     time.Time         `json:"time"`
	Snapshot OccupancySnapshot `json:"snapshot"`
}

// DisplayState is everything the presentation layer needs.
type DisplayState struct {
	// Current is nil until the first valid snapshot arrives.
	// +optional
	Current *OccupancySnapshot `json:"current,omitempty"`

	Connected bool `json:"connected"`

	// LastUpdate is the zero time until the first valid snapshot arrives.
	// +optional
	LastUpdate time.Time `json:"lastUpdate,omitempty"`

	// History holds the most recent snapshots, newest first.
	History []HistoryEntry `json:"history"`
}

// HasLastUpdate reports whether any snapshot has been applied.
func (s *DisplayState) HasLastUpdate() bool {
	return !s.LastUpdate.IsZero()
}

// DeepCopy returns a copy that shares no memory with s.
func (s *DisplayState) DeepCopy() *DisplayState {
	if s == nil {
		return nil
	}
	out := &DisplayState{
		Current:    s.Current.DeepCopy(),
		Connected:  s.Connected,
		LastUpdate: s.LastUpdate,
	}
	if s.History != nil {
		out.History = make([]HistoryEntry, len(s.History))
		for i := range s.History {
			out.History[i] = HistoryEntry{
				Time:     s.History[i].Time,
				Snapshot: *s.History[i].Snapshot.DeepCopy(),
			}
		}
	}
	return out
}
