package options

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/smartpark/pkg/mqtt"
	"github.com/autopeer-io/smartpark/pkg/mqtt/topic"
)

var _ IOptions = (*MqttOptions)(nil)

// maxKeepAlive is the largest interval the CONNECT packet can carry.
const maxKeepAlive = math.MaxUint16 * time.Second

// MqttOptions contains configuration for the broker connection and the status topic.
type MqttOptions struct {
	Broker   string `json:"broker" mapstructure:"broker"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`

	// ClientID pins the client identifier. Empty means a random per-session
	// id is generated so several dashboards can share one account.
	ClientID       string `json:"client-id" mapstructure:"client-id"`
	ClientIDPrefix string `json:"client-id-prefix" mapstructure:"client-id-prefix"`

	// Client behavior
	KeepAlive      time.Duration `json:"keep-alive" mapstructure:"keep-alive"`
	ConnectTimeout time.Duration `json:"connect-timeout" mapstructure:"connect-timeout"`
	ReconnectDelay time.Duration `json:"reconnect-delay" mapstructure:"reconnect-delay"`

	// InsecureSkipVerify controls whether a client verifies the server's certificate chain and host name.
	// This should be used only for testing.
	InsecureSkipVerify bool `json:"insecure-skip-verify" mapstructure:"insecure-skip-verify"`

	// Topic is the status topic the sensor unit publishes snapshots to.
	Topic string `json:"topic" mapstructure:"topic"`
	QoS   int    `json:"qos" mapstructure:"qos"`
}

// NewMqttOptions creates a new MqttOptions with default values.
// Credentials have no default; supply them through flags, the config file or
// SMARTPARK_MQTT_USERNAME / SMARTPARK_MQTT_PASSWORD.
func NewMqttOptions() *MqttOptions {
	return &MqttOptions{
		Broker:         "wss://broker.example.com:8884/mqtt",
		ClientIDPrefix: "dashboard_",
		KeepAlive:      60 * time.Second,
		ConnectTimeout: 10 * time.Second,
		ReconnectDelay: 5 * time.Second,
		Topic:          topic.NewTopicBuilder(topic.DefaultRoot).Status(),
		QoS:            0,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *MqttOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if err := o.ToClientConfig().Validate(); err != nil {
		errors = append(errors, fmt.Errorf("--mqtt.broker: %w", err))
	}
	if o.Topic == "" {
		errors = append(errors, fmt.Errorf("--mqtt.topic: must not be empty"))
	}
	if o.QoS < 0 || o.QoS > 2 {
		errors = append(errors, fmt.Errorf("--mqtt.qos: must be 0, 1 or 2, got %d", o.QoS))
	}
	if o.ReconnectDelay <= 0 {
		errors = append(errors, fmt.Errorf("--mqtt.reconnect-delay: must be positive"))
	}
	if o.ConnectTimeout <= 0 {
		errors = append(errors, fmt.Errorf("--mqtt.connect-timeout: must be positive"))
	}
	if o.KeepAlive < 0 || o.KeepAlive > maxKeepAlive {
		errors = append(errors, fmt.Errorf("--mqtt.keep-alive: must be between 0 and %s, got %s", maxKeepAlive, o.KeepAlive))
	}
	if o.Password != "" && o.Username == "" {
		errors = append(errors, fmt.Errorf("--mqtt.password: set without --mqtt.username"))
	}

	return errors
}

// AddFlags adds flags for MqttOptions to the specified FlagSet.
func (o *MqttOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Broker, "mqtt.broker", o.Broker, "The URL of the MQTT broker (wss://host:port/path, ssl://host:port, tcp://host:port).")
	fs.StringVar(&o.Username, "mqtt.username", o.Username, "The username for MQTT authentication.")
	fs.StringVar(&o.Password, "mqtt.password", o.Password, "The password for MQTT authentication. Prefer SMARTPARK_MQTT_PASSWORD.")
	fs.StringVar(&o.ClientID, "mqtt.client-id", o.ClientID, "Explicit Client ID (optional, usually generated).")
	fs.StringVar(&o.ClientIDPrefix, "mqtt.client-id-prefix", o.ClientIDPrefix, "Prefix of generated client IDs.")

	fs.DurationVar(&o.KeepAlive, "mqtt.keep-alive", o.KeepAlive, "MQTT Keep Alive interval.")
	fs.DurationVar(&o.ConnectTimeout, "mqtt.connect-timeout", o.ConnectTimeout, "Timeout for establishing MQTT connection.")
	fs.DurationVar(&o.ReconnectDelay, "mqtt.reconnect-delay", o.ReconnectDelay, "Fixed delay before reconnecting after a failure.")
	fs.BoolVar(&o.InsecureSkipVerify, "mqtt.insecure-skip-verify", o.InsecureSkipVerify, "If true, skips the TLS certificate verification.")

	fs.StringVar(&o.Topic, "mqtt.topic", o.Topic, "Topic carrying parking status snapshots.")
	fs.IntVar(&o.QoS, "mqtt.qos", o.QoS, "Subscription QoS.")
}

func (o *MqttOptions) ToClientConfig() *mqtt.ClientConfig {
	return &mqtt.ClientConfig{
		BrokerURL:          o.Broker,
		Username:           o.Username,
		Password:           o.Password,
		ClientID:           o.ClientID,
		KeepAlive:          uint16(o.KeepAlive.Seconds()),
		ConnectTimeout:     o.ConnectTimeout,
		CleanStart:         true,
		InsecureSkipVerify: o.InsecureSkipVerify,
	}
}
