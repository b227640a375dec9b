package options

import (
	"testing"
)

func TestDashboardOptionsDefaultsValid(t *testing.T) {
	o := NewDashboardOptions()
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDashboardOptionsValidateAggregates(t *testing.T) {
	o := NewDashboardOptions()
	o.MqttOptions.Topic = ""
	o.UIOptions.Mode = "sometimes"
	o.HistorySize = 0
	o.Log.Format = "xml"

	err := o.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	type aggregate interface{ Errors() []error }
	agg, ok := err.(aggregate)
	if !ok {
		t.Fatalf("error %T is not an aggregate", err)
	}
	if n := len(agg.Errors()); n != 4 {
		t.Fatalf("got %d errors, want 4: %v", n, err)
	}
}

func TestCompleteMovesLogsOffStdout(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		terminal    bool
		wantEnabled bool
	}{
		{"auto on terminal", UIModeAuto, true, true},
		{"auto piped", UIModeAuto, false, false},
		{"forced on", UIModeOn, false, true},
		{"off", UIModeOff, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewDashboardOptions()
			o.UIOptions.Mode = tt.mode
			o.isTerminal = func() bool { return tt.terminal }

			if err := o.Complete(); err != nil {
				t.Fatalf("Complete: %v", err)
			}
			if o.UIOptions.Enabled() != tt.wantEnabled {
				t.Fatalf("enabled = %v, want %v", o.UIOptions.Enabled(), tt.wantEnabled)
			}
			if got := o.Log.WritesToStdout(); got == tt.wantEnabled {
				t.Fatalf("WritesToStdout = %v with ui enabled = %v", got, tt.wantEnabled)
			}

			cfg, err := o.Config()
			if err != nil {
				t.Fatalf("Config: %v", err)
			}
			if cfg.UI.Enabled != tt.wantEnabled {
				t.Fatalf("config ui enabled = %v", cfg.UI.Enabled)
			}
		})
	}
}
