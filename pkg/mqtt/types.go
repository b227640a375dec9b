package mqtt

import (
	"context"
	"errors"
)

// ErrTransport is returned by Dial when the underlying network connection
// could not be opened, before any MQTT packet was exchanged.
var ErrTransport = errors.New("failed to open transport")

// ReasonNormal is the MQTT v5 "normal disconnection" reason code. Any other
// code on a lost connection means the loss was unexpected.
const ReasonNormal byte = 0x00

// ReasonTransportError marks a connection dropped by the network or the
// client itself rather than by a DISCONNECT packet (0x80, unspecified error).
const ReasonTransportError byte = 0x80

// MessageHandler defines the callback function for processing received MQTT messages.
type MessageHandler func(topic string, payload []byte)

// LostEvent describes why an established connection went away.
type LostEvent struct {
	ReasonCode byte
	Reason     string
	Err        error
}

// Normal reports whether the connection was closed on purpose.
func (e LostEvent) Normal() bool {
	return e.Err == nil && e.ReasonCode == ReasonNormal
}

// Handlers are invoked from the connection's reader goroutine.
type Handlers struct {
	// OnMessage receives every publish that matches a subscription.
	OnMessage MessageHandler

	// OnLost fires at most once per connection.
	OnLost func(LostEvent)
}

// Conn is one established broker session.
type Conn interface {
	// Subscribe sends a SUBSCRIBE for topic and waits for the SUBACK.
	Subscribe(ctx context.Context, topic string, qos int) error

	// Disconnect sends a normal DISCONNECT and closes the transport.
	// OnLost is not invoked for a local disconnect.
	Disconnect() error
}

// Dialer opens broker sessions. Each successful Dial returns a new Conn.
type Dialer interface {
	Dial(ctx context.Context, h Handlers) (Conn, error)
}
