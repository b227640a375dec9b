package fsm

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// WrapEvent adapts an error returning callback to fsm.Callback. A returned
// error is stored on the event and surfaces from FSM.Event; it does not
// cancel the transition, use e.Cancel for that.
func WrapEvent(fn func(ctx context.Context, event *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, event *fsm.Event) {
		if err := fn(ctx, event); err != nil {
			event.Err = err
		}
	}
}

// IgnoreNoTransition drops the error looplab/fsm returns when an event
// leaves the machine in the state it was already in.
func IgnoreNoTransition(err error) error {
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}
	return err
}

// IsRejected reports whether err means the event is not allowed from the
// current state, or was canceled by a guard.
func IsRejected(err error) bool {
	var invalid fsm.InvalidEventError
	var canceled fsm.CanceledError
	return errors.As(err, &invalid) || errors.As(err, &canceled)
}
