package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"sync"

	"github.com/eclipse/paho.golang/paho"
	"github.com/eclipse/paho.golang/paho/session/state"
	"github.com/go-logr/logr"

	"github.com/autopeer-io/smartpark/pkg/log"
)

type pahoDialer struct {
	cfg    *ClientConfig
	broker *url.URL
	logger logr.Logger
}

var _ Dialer = (*pahoDialer)(nil)

// NewDialer creates a Dialer that speaks MQTT v5 through paho over TCP, TLS
// or WebSocket depending on the broker URL scheme.
func NewDialer(cfg *ClientConfig) (Dialer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mqtt config is required")
	}

	setDefaultConfig(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mqtt config: %w", err)
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("invalid mqtt config: client id is required")
	}

	broker, _ := url.Parse(cfg.BrokerURL) // Already validated

	return &pahoDialer{
		cfg:    cfg,
		broker: broker,
		logger: log.Logr().WithName("paho"),
	}, nil
}

func (d *pahoDialer) Dial(ctx context.Context, h Handlers) (Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.ConnectTimeout)
	defer cancel()

	transport, err := d.openTransport(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w to %s: %w", ErrTransport, d.broker.Host, err)
	}

	c := &pahoConn{handlers: h}
	c.client = paho.NewClient(paho.ClientConfig{
		ClientID: d.cfg.ClientID,
		Conn:     transport,
		Session:  state.NewInMemory(),
		OnPublishReceived: []func(paho.PublishReceived) (bool, error){
			c.router,
		},
		OnClientError:      c.onClientError,
		OnServerDisconnect: c.onServerDisconnect,
	})
	c.client.SetDebugLogger(pahoLogger{logger: d.logger.V(1)})
	c.client.SetErrorLogger(pahoLogger{logger: d.logger})

	connect := &paho.Connect{
		KeepAlive:    d.cfg.KeepAlive,
		ClientID:     d.cfg.ClientID,
		CleanStart:   d.cfg.CleanStart,
		Username:     d.cfg.Username,
		UsernameFlag: d.cfg.Username != "",
		Password:     []byte(d.cfg.Password),
		PasswordFlag: d.cfg.Password != "",
	}

	ack, err := c.client.Connect(ctx, connect)
	if err != nil {
		_ = transport.Close()
		if ack != nil {
			return nil, fmt.Errorf("broker refused connection (reason 0x%02x): %w", ack.ReasonCode, err)
		}
		return nil, fmt.Errorf("mqtt handshake failed: %w", err)
	}
	if ack.ReasonCode >= 0x80 {
		_ = transport.Close()
		return nil, fmt.Errorf("broker refused connection (reason 0x%02x)", ack.ReasonCode)
	}

	return c, nil
}

func (d *pahoDialer) openTransport(ctx context.Context) (net.Conn, error) {
	host := d.broker.Host
	if d.broker.Port() == "" {
		host = net.JoinHostPort(d.broker.Hostname(), supportedSchemes[d.broker.Scheme])
	}

	switch d.broker.Scheme {
	case "ws", "wss":
		return dialWebsocket(ctx, d.broker, d.tlsConfig())
	case "ssl", "tls", "mqtts":
		dialer := &tls.Dialer{Config: d.tlsConfig()}
		return dialer.DialContext(ctx, "tcp", host)
	default:
		var dialer net.Dialer
		return dialer.DialContext(ctx, "tcp", host)
	}
}

func (d *pahoDialer) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         d.broker.Hostname(),
		InsecureSkipVerify: d.cfg.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
}

type pahoConn struct {
	client   *paho.Client
	handlers Handlers

	mu      sync.Mutex
	filters []string
	closing bool
	lost    bool
}

// Subscribe registers topic with the router before sending SUBSCRIBE, so a
// retained message that follows the SUBACK is not dropped.
func (c *pahoConn) Subscribe(ctx context.Context, topic string, qos int) error {
	c.addFilter(topic)

	ack, err := c.client.Subscribe(ctx, &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{
			{Topic: topic, QoS: byte(qos)},
		},
	})
	if err != nil {
		c.removeFilter(topic)
		return fmt.Errorf("failed to send subscription packet: %w", err)
	}
	for _, reason := range ack.Reasons {
		if reason >= 0x80 {
			c.removeFilter(topic)
			return fmt.Errorf("subscription to %q refused (reason 0x%02x)", topic, reason)
		}
	}
	return nil
}

func (c *pahoConn) addFilter(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = append(c.filters, topic)
}

// removeFilter drops the most recent registration of topic.
func (c *pahoConn) removeFilter(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.filters) - 1; i >= 0; i-- {
		if c.filters[i] == topic {
			c.filters = append(c.filters[:i:i], c.filters[i+1:]...)
			return
		}
	}
}

func (c *pahoConn) Disconnect() error {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()

	return c.client.Disconnect(&paho.Disconnect{ReasonCode: ReasonNormal})
}

// router hands matching publishes to OnMessage. Messages on topics we did
// not subscribe to are acknowledged and dropped.
func (c *pahoConn) router(p paho.PublishReceived) (bool, error) {
	c.mu.Lock()
	filters := c.filters
	c.mu.Unlock()

	for _, filter := range filters {
		if topicsMatch(topicFilter(filter), p.Packet.Topic) {
			if c.handlers.OnMessage != nil {
				c.handlers.OnMessage(p.Packet.Topic, p.Packet.Payload)
			}
			return true, nil
		}
	}

	log.Debug("Received message on unhandled topic", "topic", p.Packet.Topic)
	return true, nil
}

func (c *pahoConn) onClientError(err error) {
	c.reportLost(LostEvent{ReasonCode: ReasonTransportError, Reason: err.Error(), Err: err})
}

func (c *pahoConn) onServerDisconnect(d *paho.Disconnect) {
	ev := LostEvent{ReasonCode: d.ReasonCode}
	if d.Properties != nil {
		ev.Reason = d.Properties.ReasonString
	}
	c.reportLost(ev)
}

func (c *pahoConn) reportLost(ev LostEvent) {
	c.mu.Lock()
	if c.closing || c.lost {
		c.mu.Unlock()
		return
	}
	c.lost = true
	c.mu.Unlock()

	if c.handlers.OnLost != nil {
		c.handlers.OnLost(ev)
	}
}
