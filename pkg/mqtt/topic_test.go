package mqtt

import "testing"

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"smartparking/status", "smartparking/status", true},
		{"smartparking/status", "smartparking/control", false},
		{"smartparking/+", "smartparking/status", true},
		{"smartparking/+", "smartparking/status/extra", false},
		{"smartparking/#", "smartparking/status/extra", true},
		{"#", "anything/at/all", true},
		{"+/status", "lot-a/status", true},
		{"smartparking/status/+", "smartparking/status", false},
	}

	for _, tt := range tests {
		if got := topicsMatch(tt.filter, tt.topic); got != tt.want {
			t.Errorf("topicsMatch(%q, %q) = %v, want %v", tt.filter, tt.topic, got, tt.want)
		}
	}
}

func TestTopicFilterStripsSharedPrefix(t *testing.T) {
	if got := topicFilter("$share/dashboards/smartparking/status"); got != "smartparking/status" {
		t.Fatalf("topicFilter = %q", got)
	}
	if got := topicFilter("smartparking/status"); got != "smartparking/status" {
		t.Fatalf("topicFilter = %q", got)
	}
}

func TestClientConfigValidate(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"wss://broker.example.com:8884/mqtt", false},
		{"ws://localhost:8080/mqtt", false},
		{"tcp://localhost:1883", false},
		{"ssl://broker.example.com:8883", false},
		{"", true},
		{"http://broker.example.com", true},
		{"wss:///mqtt", true},
	}

	for _, tt := range tests {
		cfg := &ClientConfig{BrokerURL: tt.url}
		if err := cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestNewClientID(t *testing.T) {
	a := NewClientID("dashboard_")
	b := NewClientID("dashboard_")

	if len(a) != len("dashboard_")+8 {
		t.Fatalf("client id %q has wrong length", a)
	}
	if a == b {
		t.Fatalf("two generated ids collided: %q", a)
	}
	for _, r := range a[len("dashboard_"):] {
		if !('0' <= r && r <= '9' || 'a' <= r && r <= 'f') {
			t.Fatalf("client id %q has non-hex suffix", a)
		}
	}
}

func TestNewDialerRequiresClientID(t *testing.T) {
	if _, err := NewDialer(&ClientConfig{BrokerURL: "wss://broker.example.com/mqtt"}); err == nil {
		t.Fatal("expected error without client id")
	}
	if _, err := NewDialer(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg := &ClientConfig{BrokerURL: "wss://broker.example.com/mqtt", ClientID: "dashboard_0a1b2c3d"}
	if _, err := NewDialer(cfg); err != nil {
		t.Fatalf("NewDialer: %v", err)
	}
	if cfg.KeepAlive != 60 || cfg.ConnectTimeout == 0 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
