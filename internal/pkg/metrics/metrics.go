package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Message results recorded by MessagesTotal.
const (
	ResultApplied   = "applied"
	ResultMalformed = "malformed"
)

// Registry is the dashboard's own registry, served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// BrokerConnected records the broker session status.
	// 1 = Connected, 0 = any other phase.
	BrokerConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartpark_broker_connected",
			Help: "The connectivity status to the MQTT broker (1=Connected, 0=NotConnected).",
		},
	)

	// ConnectionPhase is 1 for the current phase and 0 for the others.
	ConnectionPhase = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smartpark_connection_phase",
			Help: "Current phase of the broker connection state machine.",
		},
		[]string{"phase"},
	)

	// ConnectionTransitionsTotal counts state machine events that fired.
	ConnectionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartpark_connection_transitions_total",
			Help: "Total number of connection state machine transitions.",
		},
		[]string{"event"},
	)

	// ReconnectAttemptsTotal counts dials started by the retry timer.
	ReconnectAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "smartpark_reconnect_attempts_total",
			Help: "Total number of reconnect attempts after a failure or loss.",
		},
	)

	// MessagesTotal counts status messages by decode result.
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartpark_messages_total",
			Help: "Total number of status messages received.",
		},
		[]string{"result"}, // result: applied/malformed
	)

	// SpacesFree, SpacesOccupied and Availability mirror the latest snapshot.
	SpacesFree = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartpark_spaces_free",
			Help: "Free spaces in the latest snapshot.",
		},
	)
	SpacesOccupied = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartpark_spaces_occupied",
			Help: "Occupied spaces in the latest snapshot.",
		},
	)
	Availability = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartpark_availability_percent",
			Help: "Availability percentage reported by the latest snapshot.",
		},
	)

	// LastUpdateTimestamp is the unix time the latest snapshot was applied.
	LastUpdateTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartpark_last_update_timestamp_seconds",
			Help: "Unix time of the latest applied snapshot.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		BrokerConnected,
		ConnectionPhase,
		ConnectionTransitionsTotal,
		ReconnectAttemptsTotal,
		MessagesTotal,
		SpacesFree,
		SpacesOccupied,
		Availability,
		LastUpdateTimestamp,
	)
}

// SetPhase marks phase as the only active connection phase.
func SetPhase(phase string, all ...string) {
	for _, p := range all {
		ConnectionPhase.WithLabelValues(p).Set(0)
	}
	ConnectionPhase.WithLabelValues(phase).Set(1)
}
