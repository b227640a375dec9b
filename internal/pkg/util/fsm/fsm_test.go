package fsm

import (
	"context"
	"errors"
	"testing"

	"github.com/looplab/fsm"
)

func newMachine(guard error) *fsm.FSM {
	return fsm.NewFSM(
		"idle",
		fsm.Events{
			{Name: "start", Src: []string{"idle"}, Dst: "running"},
			{Name: "reset", Src: []string{"idle", "running"}, Dst: "idle"},
		},
		fsm.Callbacks{
			"before_start": WrapEvent(func(_ context.Context, e *fsm.Event) error {
				return guard
			}),
		},
	)
}

func TestWrapEventSurfacesError(t *testing.T) {
	boom := errors.New("boom")
	m := newMachine(boom)

	err := m.Event(context.Background(), "start")
	if !errors.Is(err, boom) {
		t.Fatalf("Event error = %v, want %v", err, boom)
	}
}

func TestIgnoreNoTransition(t *testing.T) {
	m := newMachine(nil)

	err := m.Event(context.Background(), "reset")
	if err == nil {
		t.Fatal("expected NoTransitionError from a self transition")
	}
	if IgnoreNoTransition(err) != nil {
		t.Fatalf("IgnoreNoTransition(%v) should be nil", err)
	}
}

func TestIsRejected(t *testing.T) {
	m := newMachine(nil)
	if err := m.Event(context.Background(), "start"); err != nil {
		t.Fatalf("start: %v", err)
	}

	err := m.Event(context.Background(), "start")
	if !IsRejected(err) {
		t.Fatalf("IsRejected(%v) = false, want true", err)
	}
	if IsRejected(nil) {
		t.Fatal("IsRejected(nil) = true")
	}
}
