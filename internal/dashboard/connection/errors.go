package connection

import "errors"

var (
	// ErrConnectFailure means the broker handshake did not succeed.
	ErrConnectFailure = errors.New("connect failure")

	// ErrConnectionLost means an established session dropped unexpectedly.
	ErrConnectionLost = errors.New("connection lost")

	// ErrSetupFailure means the attempt failed before talking MQTT at all,
	// for example when the transport could not be opened.
	ErrSetupFailure = errors.New("connection setup failure")
)
