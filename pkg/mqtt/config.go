package mqtt

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

var supportedSchemes = map[string]string{
	"ws":    "80",
	"wss":   "443",
	"tcp":   "1883",
	"mqtt":  "1883",
	"ssl":   "8883",
	"tls":   "8883",
	"mqtts": "8883",
}

// ClientConfig holds the configuration for dialing a broker.
type ClientConfig struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string

	// KeepAlive in seconds. Default is 60.
	KeepAlive uint16

	// ConnectTimeout bounds transport setup plus the CONNECT/CONNACK exchange. Default is 10s.
	ConnectTimeout time.Duration

	// CleanStart indicates whether to start a clean session.
	CleanStart bool

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// setDefaultConfig applies safe default values to the configuration.
func setDefaultConfig(cfg *ClientConfig) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	if cfg.KeepAlive == 0 {
		cfg.KeepAlive = 60
	}
}

// Validate checks if the configuration is valid.
func (c *ClientConfig) Validate() error {
	if c.BrokerURL == "" {
		return errors.New("broker url is required")
	}
	u, err := url.Parse(c.BrokerURL)
	if err != nil {
		return err
	}
	if _, ok := supportedSchemes[u.Scheme]; !ok {
		return fmt.Errorf("unsupported broker scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return errors.New("broker url has no host")
	}
	return nil
}
