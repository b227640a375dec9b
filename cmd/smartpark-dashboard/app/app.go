package app

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/smartpark/cmd/smartpark-dashboard/app/options"
	"github.com/autopeer-io/smartpark/pkg/app"
	"github.com/autopeer-io/smartpark/pkg/log"
)

const (
	commandName = "smartpark-dashboard"
	commandDesc = `The smartpark dashboard subscribes to the parking sensor unit's status
topic over MQTT and shows live occupancy for every monitored space, plus the
last snapshots received. It draws a terminal dashboard when attached to a
terminal and serves the same view, a JSON state API, probes and metrics over
HTTP.

Broker credentials are never built in. Pass them with --mqtt.username and
--mqtt.password, a config file, or SMARTPARK_MQTT_USERNAME and
SMARTPARK_MQTT_PASSWORD.`
)

func NewApp() *app.App {
	opts := options.NewDashboardOptions()
	application := app.NewApp(
		commandName,
		"Launch the smart parking occupancy dashboard",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithEnvPrefix("SMARTPARK"),
		app.WithConfigChangeFunc(onConfigChange),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.DashboardOptions) app.RunFunc {
	return func() error {
		ctx := genericapiserver.SetupSignalContext()

		log.Init(opts.Log)
		defer log.Sync()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		session, err := cfg.NewSession()
		if err != nil {
			return fmt.Errorf("failed to create dashboard session: %w", err)
		}

		return session.Run(ctx)
	}
}

// onConfigChange applies the settings that can change without a restart.
func onConfigChange(v *viper.Viper, e fsnotify.Event) {
	level := v.GetString("log.level")
	if err := log.SetLevel(level); err != nil {
		log.Error(err, "Ignoring invalid log level from config file", "file", e.Name)
		return
	}
	log.Info("Configuration file changed", "file", e.Name, "op", e.Op.String(), "log.level", level)
}
