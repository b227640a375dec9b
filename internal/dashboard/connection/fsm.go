package connection

import (
	"github.com/looplab/fsm"

	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
)

const (
	// EventConnect starts the first attempt.
	EventConnect = "connect"
	// EventConnected marks a successful handshake and subscription.
	EventConnected = "connected"
	// EventConnectFailed marks an attempt that never reached the broker session.
	EventConnectFailed = "connect_failed"
	// EventConnectionLost marks an unexpected drop of an established session.
	EventConnectionLost = "connection_lost"
	// EventRetry fires when the reconnect timer expires.
	EventRetry = "retry"
	// EventShutdown ends the session from any state.
	EventShutdown = "shutdown"
)

var (
	stateDisconnected     = string(parkingv1alpha1.ConnectionPhaseDisconnected)
	stateConnecting       = string(parkingv1alpha1.ConnectionPhaseConnecting)
	stateConnected        = string(parkingv1alpha1.ConnectionPhaseConnected)
	stateReconnectPending = string(parkingv1alpha1.ConnectionPhaseReconnectPending)

	allStates = []string{stateDisconnected, stateConnecting, stateConnected, stateReconnectPending}
)

// transitions is the complete table. Events fired from any other source
// state are rejected, so a second loss while a retry is pending cannot arm
// a second timer.
var transitions = fsm.Events{
	{Name: EventConnect, Src: []string{stateDisconnected}, Dst: stateConnecting},
	{Name: EventConnected, Src: []string{stateConnecting}, Dst: stateConnected},
	{Name: EventConnectFailed, Src: []string{stateConnecting}, Dst: stateReconnectPending},
	{Name: EventConnectionLost, Src: []string{stateConnected}, Dst: stateReconnectPending},
	{Name: EventRetry, Src: []string{stateReconnectPending}, Dst: stateConnecting},
	{Name: EventShutdown, Src: allStates, Dst: stateDisconnected},
}
