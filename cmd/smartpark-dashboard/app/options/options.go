package options

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/smartpark/internal/dashboard"
	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
	"github.com/autopeer-io/smartpark/pkg/app"
	"github.com/autopeer-io/smartpark/pkg/log"
	"github.com/autopeer-io/smartpark/pkg/options"
)

// UI modes.
const (
	UIModeAuto = "auto"
	UIModeOn   = "on"
	UIModeOff  = "off"
)

// UIOptions controls the terminal dashboard.
type UIOptions struct {
	// Mode is auto, on or off. Auto shows the dashboard when stdin and
	// stdout are terminals.
	Mode      string `json:"mode" mapstructure:"mode"`
	AltScreen bool   `json:"alt-screen" mapstructure:"alt-screen"`

	// LogFile receives the logs that would otherwise be drawn over the
	// dashboard.
	LogFile string `json:"log-file" mapstructure:"log-file"`

	enabled bool
}

func NewUIOptions() *UIOptions {
	return &UIOptions{
		Mode:      UIModeAuto,
		AltScreen: true,
		LogFile:   "smartpark-dashboard.log",
	}
}

func (o *UIOptions) Validate() []error {
	switch o.Mode {
	case UIModeAuto, UIModeOn, UIModeOff:
		return nil
	default:
		return []error{fmt.Errorf("--ui.mode: must be auto, on or off, got %q", o.Mode)}
	}
}

func (o *UIOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Mode, "ui.mode", o.Mode, "Terminal dashboard: auto (when attached to a terminal), on or off.")
	fs.BoolVar(&o.AltScreen, "ui.alt-screen", o.AltScreen, "Use the terminal's alternate screen for the dashboard.")
	fs.StringVar(&o.LogFile, "ui.log-file", o.LogFile, "Where logs go while the dashboard owns stdout.")
}

// Enabled reports the decision made by Complete.
func (o *UIOptions) Enabled() bool { return o.enabled }

type DashboardOptions struct {
	MqttOptions *options.MqttOptions `json:"mqtt" mapstructure:"mqtt"`
	HttpOptions *options.HttpOptions `json:"http" mapstructure:"http"`
	UIOptions   *UIOptions           `json:"ui" mapstructure:"ui"`
	HistorySize int                  `json:"history-size" mapstructure:"history-size"`
	Log         *log.Options         `json:"log" mapstructure:"log"`

	// isTerminal is swapped in tests.
	isTerminal func() bool
}

var _ app.NamedFlagSetOptions = (*DashboardOptions)(nil)

func NewDashboardOptions() *DashboardOptions {
	o := &DashboardOptions{
		MqttOptions: options.NewMqttOptions(),
		HttpOptions: options.NewHttpOptions(),
		UIOptions:   NewUIOptions(),
		HistorySize: parkingv1alpha1.DefaultHistoryLimit,
		Log:         log.NewOptions(),
		isTerminal:  stdioIsTerminal,
	}

	return o
}

func (o *DashboardOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.UIOptions.AddFlags(fss.FlagSet("ui"))
	fss.FlagSet("dashboard").IntVar(&o.HistorySize, "history-size", o.HistorySize, "Number of recent snapshots kept for the activity list.")
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

// Complete decides whether the terminal dashboard runs and moves logs off
// stdout when it does.
func (o *DashboardOptions) Complete() error {
	switch o.UIOptions.Mode {
	case UIModeOn:
		o.UIOptions.enabled = true
	case UIModeAuto:
		o.UIOptions.enabled = o.isTerminal()
	default:
		o.UIOptions.enabled = false
	}

	if o.UIOptions.enabled && o.Log.WritesToStdout() {
		o.Log.OutputPaths = []string{o.UIOptions.LogFile}
		o.Log.EnableColor = false
	}
	return nil
}

func (o *DashboardOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.UIOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	if o.HistorySize <= 0 {
		errs = append(errs, fmt.Errorf("--history-size: must be positive, got %d", o.HistorySize))
	}
	return utilerrors.NewAggregate(errs)
}

func (o *DashboardOptions) Config() (*dashboard.Config, error) {
	return &dashboard.Config{
		MqttOptions: o.MqttOptions,
		HttpOptions: o.HttpOptions,
		HistorySize: o.HistorySize,
		UI: dashboard.UIConfig{
			Enabled:   o.UIOptions.enabled,
			AltScreen: o.UIOptions.AltScreen,
		},
	}, nil
}

func stdioIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
