// Package store holds the single authoritative display state of a session.
package store

import (
	"sync"

	"k8s.io/utils/clock"

	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
)

// Listener receives a private copy of the state after every mutation.
type Listener func(parkingv1alpha1.DisplayState)

// Store owns the DisplayState. Mutations come from the connection manager;
// any goroutine may read.
type Store struct {
	clock clock.PassiveClock
	limit int

	mu    sync.RWMutex
	state parkingv1alpha1.DisplayState

	listenersMu sync.Mutex
	listeners   []Listener

	// notifyMu orders deliveries. Writers run on different goroutines, and
	// a state read by a slow notifier must not land after a newer one.
	notifyMu sync.Mutex
}

// NewStore creates an empty store. A non-positive limit uses the default
// history size.
func NewStore(c clock.PassiveClock, limit int) *Store {
	if c == nil {
		c = clock.RealClock{}
	}
	if limit <= 0 {
		limit = parkingv1alpha1.DefaultHistoryLimit
	}
	return &Store{
		clock: c,
		limit: limit,
		state: parkingv1alpha1.DisplayState{History: []parkingv1alpha1.HistoryEntry{}},
	}
}

// ApplySnapshot replaces the current snapshot and records it in history.
func (s *Store) ApplySnapshot(snap parkingv1alpha1.OccupancySnapshot) {
	now := s.clock.Now()
	owned := snap.DeepCopy()

	s.mu.Lock()
	s.state.Current = owned
	s.state.LastUpdate = now

	n := len(s.state.History) + 1
	if n > s.limit {
		n = s.limit
	}
	history := make([]parkingv1alpha1.HistoryEntry, 0, n)
	history = append(history, parkingv1alpha1.HistoryEntry{Time: now, Snapshot: *owned.DeepCopy()})
	history = append(history, s.state.History[:n-1]...)
	s.state.History = history
	s.mu.Unlock()

	s.notify()
}

// SetConnected updates only the connection flag. Listeners are not notified
// when the value does not change.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	changed := s.state.Connected != connected
	s.state.Connected = connected
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// State returns a deep copy of the current state.
func (s *Store) State() parkingv1alpha1.DisplayState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.state.DeepCopy()
}

// Subscribe registers l to be called after every mutation.
func (s *Store) Subscribe(l Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// notify delivers the current state to every listener. Listeners must not
// mutate the store.
func (s *Store) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.listenersMu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(s.State())
	}
}
