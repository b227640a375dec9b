package dashboard

import (
	"fmt"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/smartpark/internal/dashboard/connection"
	httpserver "github.com/autopeer-io/smartpark/internal/dashboard/server/http"
	"github.com/autopeer-io/smartpark/internal/dashboard/store"
	"github.com/autopeer-io/smartpark/pkg/log"
	"github.com/autopeer-io/smartpark/pkg/mqtt"
	"github.com/autopeer-io/smartpark/pkg/options"
)

// UIConfig controls the terminal dashboard.
type UIConfig struct {
	Enabled   bool
	AltScreen bool
}

type Config struct {
	MqttOptions *options.MqttOptions
	HttpOptions *options.HttpOptions
	UI          UIConfig

	// HistorySize bounds the recent activity list.
	HistorySize int

	// Dialer and Clock replace the real transport and time source. Both
	// are optional.
	Dialer mqtt.Dialer
	Clock  clock.Clock
}

// NewSession wires a store, a connection manager and the enabled renderers.
// Nothing connects until Run.
func (cfg *Config) NewSession() (*Session, error) {
	c := cfg.Clock
	if c == nil {
		c = clock.RealClock{}
	}

	clientCfg := cfg.MqttOptions.ToClientConfig()
	if clientCfg.ClientID == "" {
		clientCfg.ClientID = mqtt.NewClientID(cfg.MqttOptions.ClientIDPrefix)
	}

	dialer := cfg.Dialer
	if dialer == nil {
		var err error
		dialer, err = mqtt.NewDialer(clientCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to init mqtt dialer: %w", err)
		}
	}

	st := store.NewStore(c, cfg.HistorySize)

	manager := connection.NewManager(connection.Config{
		Topic:            cfg.MqttOptions.Topic,
		QoS:              cfg.MqttOptions.QoS,
		ReconnectDelay:   cfg.MqttOptions.ReconnectDelay,
		SubscribeTimeout: cfg.MqttOptions.ConnectTimeout,
	}, dialer, st, c)

	s := &Session{
		clientID: clientCfg.ClientID,
		topic:    cfg.MqttOptions.Topic,
		ui:       cfg.UI,
		store:    st,
		manager:  manager,
	}

	if cfg.HttpOptions != nil && cfg.HttpOptions.Enabled {
		s.httpServer = httpserver.NewServer(cfg.HttpOptions, st, cfg.MqttOptions.Topic, manager.Phase)
	}

	log.Info("Dashboard session created", "clientID", s.clientID, "broker", cfg.MqttOptions.Broker, "topic", s.topic)
	return s, nil
}
