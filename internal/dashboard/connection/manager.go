// Package connection keeps one live subscription to the broker and feeds
// decoded snapshots into the display state.
package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/smartpark/internal/dashboard/decoder"
	"github.com/autopeer-io/smartpark/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/smartpark/internal/pkg/util/fsm"
	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
	"github.com/autopeer-io/smartpark/pkg/log"
	"github.com/autopeer-io/smartpark/pkg/mqtt"
)

const (
	// DefaultReconnectDelay is the fixed wait between a failure and the next attempt.
	DefaultReconnectDelay = 5 * time.Second

	// DefaultSubscribeTimeout bounds the wait for a SUBACK.
	DefaultSubscribeTimeout = 10 * time.Second
)

// StateWriter is the part of the display state store the manager mutates.
type StateWriter interface {
	ApplySnapshot(parkingv1alpha1.OccupancySnapshot)
	SetConnected(bool)
}

// Config configures a Manager.
type Config struct {
	Topic          string
	QoS            int
	ReconnectDelay time.Duration

	// SubscribeTimeout turns a broker that never acknowledges the
	// subscription into a subscribe failure.
	SubscribeTimeout time.Duration
}

type dialResult struct {
	attempt uint64
	conn    mqtt.Conn
	err     error
	subErr  error
}

type lostEvent struct {
	attempt uint64
	mqtt.LostEvent
}

// Manager owns the connection state machine, the retry timer and the single
// live connection. All three are only touched by the Run goroutine.
type Manager struct {
	cfg    Config
	dialer mqtt.Dialer
	state  StateWriter
	clock  clock.Clock
	logger log.Logger

	fsm *fsm.FSM

	results chan dialResult
	lost    chan lostEvent
	done    chan struct{}

	runCtx  context.Context
	attempt uint64
	dialing bool
	conn    mqtt.Conn
	timer   clock.Timer

	// earlyLoss holds a loss reported by the attempt in flight before its
	// dial result was processed.
	earlyLoss *lostEvent
}

// NewManager creates a Manager. Nothing happens until Run is called.
func NewManager(cfg Config, dialer mqtt.Dialer, state StateWriter, c clock.Clock) *Manager {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.SubscribeTimeout <= 0 {
		cfg.SubscribeTimeout = DefaultSubscribeTimeout
	}
	if c == nil {
		c = clock.RealClock{}
	}

	m := &Manager{
		cfg:     cfg,
		dialer:  dialer,
		state:   state,
		clock:   c,
		logger:  log.WithName("connection").WithValues("topic", cfg.Topic),
		results: make(chan dialResult, 1),
		lost:    make(chan lostEvent, 4),
		done:    make(chan struct{}),
	}

	m.fsm = fsm.NewFSM(stateDisconnected, transitions, fsm.Callbacks{
		"enter_state": m.onEnterState,

		"enter_" + stateConnecting:       fsmutil.WrapEvent(m.actionDial),
		"enter_" + stateReconnectPending: fsmutil.WrapEvent(m.actionArmTimer),
		"leave_" + stateReconnectPending: fsmutil.WrapEvent(m.actionStopTimer),
		"enter_" + stateDisconnected:     fsmutil.WrapEvent(m.actionCloseConn),
	})
	metrics.SetPhase(stateDisconnected, allStates...)

	return m
}

// Phase returns the current connection phase. Safe for concurrent use.
func (m *Manager) Phase() parkingv1alpha1.ConnectionPhase {
	return parkingv1alpha1.ConnectionPhase(m.fsm.Current())
}

// Run connects and keeps the session alive until ctx is canceled. On return
// the retry timer is stopped and any open connection has been closed.
func (m *Manager) Run(ctx context.Context) error {
	m.runCtx = ctx
	defer close(m.done)

	// looplab/fsm drops transitions fired with a canceled context, and
	// teardown has to transition after ctx is done.
	fireCtx := context.WithoutCancel(ctx)

	m.fire(fireCtx, EventConnect)

	for {
		var timerC <-chan time.Time
		if m.timer != nil {
			timerC = m.timer.C()
		}

		select {
		case <-ctx.Done():
			m.teardown(fireCtx)
			return nil

		case r := <-m.results:
			m.handleDialResult(fireCtx, r)

		case ev := <-m.lost:
			m.handleLost(fireCtx, ev)

		case <-timerC:
			m.timer = nil
			metrics.ReconnectAttemptsTotal.Inc()
			m.fire(fireCtx, EventRetry)
		}
	}
}

func (m *Manager) handleDialResult(ctx context.Context, r dialResult) {
	m.dialing = false
	if m.earlyLoss != nil && (r.err != nil || r.subErr != nil) {
		m.earlyLoss = nil
	}

	if r.err != nil {
		m.logger.Warn("Failed to connect to broker", "error", r.err, "retryIn", m.cfg.ReconnectDelay)
		m.fire(ctx, EventConnectFailed, r.err)
		return
	}

	m.conn = r.conn
	m.fire(ctx, EventConnected)

	if r.subErr != nil {
		err := fmt.Errorf("%w: subscribe to %s: %w", ErrConnectionLost, m.cfg.Topic, r.subErr)
		m.logger.Warn("Subscription failed, dropping connection", "error", err)
		m.closeConn()
		m.fire(ctx, EventConnectionLost, err)
		return
	}

	m.logger.Info("Subscribed to status topic", "qos", m.cfg.QoS)

	if ev := m.earlyLoss; ev != nil {
		m.earlyLoss = nil
		m.handleLost(ctx, *ev)
	}
}

func (m *Manager) handleLost(ctx context.Context, ev lostEvent) {
	if ev.attempt != m.attempt {
		m.logger.Debug("Ignoring loss of a stale connection", "attempt", ev.attempt)
		return
	}
	if m.dialing {
		m.earlyLoss = &ev
		return
	}

	// The transport is already gone.
	m.conn = nil

	if ev.Normal() {
		m.logger.Info("Broker closed the connection normally, not reconnecting")
		m.fire(ctx, EventShutdown)
		return
	}

	err := fmt.Errorf("%w: reason 0x%02x %s", ErrConnectionLost, ev.ReasonCode, ev.Reason)
	if ev.Err != nil {
		err = fmt.Errorf("%w: %w", err, ev.Err)
	}
	m.logger.Warn("Connection to broker lost", "error", err, "retryIn", m.cfg.ReconnectDelay)
	m.fire(ctx, EventConnectionLost, err)
}

func (m *Manager) teardown(ctx context.Context) {
	if m.dialing {
		// The attempt was started with the canceled run context and
		// returns promptly. A connection it did open must be closed.
		r := <-m.results
		m.dialing = false
		if r.conn != nil {
			m.conn = r.conn
		}
	}

	m.fire(ctx, EventShutdown)
	m.logger.Info("Connection manager stopped")
}

// fire sends an event to the state machine. Rejected events are expected
// when losses race each other and are only logged.
func (m *Manager) fire(ctx context.Context, event string, args ...any) {
	err := fsmutil.IgnoreNoTransition(m.fsm.Event(ctx, event, args...))
	switch {
	case err == nil:
	case fsmutil.IsRejected(err):
		m.logger.Debug("Event rejected by connection state machine", "event", event, "state", m.fsm.Current())
	default:
		m.logger.Error(err, "Connection state transition failed", "event", event)
	}
}

func (m *Manager) onEnterState(_ context.Context, e *fsm.Event) {
	m.logger.Info("Connection state changed", "event", e.Event, "from", e.Src, "to", e.Dst)

	metrics.ConnectionTransitionsTotal.WithLabelValues(e.Event).Inc()
	metrics.SetPhase(e.Dst, allStates...)

	connected := e.Dst == stateConnected
	if connected {
		metrics.BrokerConnected.Set(1)
	} else {
		metrics.BrokerConnected.Set(0)
	}
	m.state.SetConnected(connected)
}

// actionDial starts one attempt in the background. The result comes back
// through m.results.
func (m *Manager) actionDial(_ context.Context, _ *fsm.Event) error {
	m.attempt++
	m.dialing = true
	go m.dial(m.runCtx, m.attempt)
	return nil
}

func (m *Manager) dial(ctx context.Context, attempt uint64) {
	r := dialResult{attempt: attempt}
	defer func() {
		if p := recover(); p != nil {
			r = dialResult{attempt: attempt, err: fmt.Errorf("%w: %v", ErrSetupFailure, p)}
		}
		m.results <- r
	}()

	conn, err := m.dialer.Dial(ctx, mqtt.Handlers{
		OnMessage: m.handleMessage,
		OnLost:    func(ev mqtt.LostEvent) { m.reportLost(attempt, ev) },
	})
	if err != nil {
		if errors.Is(err, mqtt.ErrTransport) {
			r.err = fmt.Errorf("%w: %w", ErrSetupFailure, err)
		} else {
			r.err = fmt.Errorf("%w: %w", ErrConnectFailure, err)
		}
		return
	}

	r.conn = conn

	subCtx, cancel := context.WithTimeout(ctx, m.cfg.SubscribeTimeout)
	defer cancel()
	r.subErr = conn.Subscribe(subCtx, m.cfg.Topic, m.cfg.QoS)
}

func (m *Manager) reportLost(attempt uint64, ev mqtt.LostEvent) {
	select {
	case m.lost <- lostEvent{attempt: attempt, LostEvent: ev}:
	case <-m.done:
	}
}

func (m *Manager) actionArmTimer(_ context.Context, e *fsm.Event) error {
	if len(e.Args) > 0 {
		if err, ok := e.Args[0].(error); ok {
			m.logger.Debug("Scheduling reconnect", "cause", err.Error(), "delay", m.cfg.ReconnectDelay)
		}
	}
	m.timer = m.clock.NewTimer(m.cfg.ReconnectDelay)
	return nil
}

func (m *Manager) actionStopTimer(_ context.Context, _ *fsm.Event) error {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	return nil
}

func (m *Manager) actionCloseConn(_ context.Context, _ *fsm.Event) error {
	m.closeConn()
	return nil
}

func (m *Manager) closeConn() {
	if m.conn == nil {
		return
	}
	if err := m.conn.Disconnect(); err != nil {
		m.logger.Debug("Disconnect returned an error", "error", err)
	}
	m.conn = nil
}

// handleMessage runs on the transport's reader goroutine. It is the only
// path that writes snapshots into the state.
func (m *Manager) handleMessage(topic string, payload []byte) {
	snap, err := decoder.Decode(payload)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues(metrics.ResultMalformed).Inc()
		m.logger.Warn("Dropping malformed status message", "topic", topic, "payload", string(payload), "error", err)
		return
	}

	m.state.ApplySnapshot(snap)

	metrics.MessagesTotal.WithLabelValues(metrics.ResultApplied).Inc()
	metrics.SpacesFree.Set(float64(snap.Free))
	metrics.SpacesOccupied.Set(float64(snap.Occupied))
	metrics.Availability.Set(float64(snap.Availability))
	metrics.LastUpdateTimestamp.Set(float64(m.clock.Now().Unix()))

	m.logger.Debug("Applied status snapshot", "device", snap.Device, "free", snap.Free, "occupied", snap.Occupied)
}
