package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	cliflag "k8s.io/component-base/cli/flag"
)

// RunFunc is the command body, called after options were loaded,
// completed and validated.
type RunFunc func() error

// ConfigChangeFunc is called from the config watcher after the watched file
// changed and was re-read into v.
type ConfigChangeFunc func(v *viper.Viper, e fsnotify.Event)

// App is a cobra command whose options come from flags, an optional config
// file and environment variables, in increasing order of precedence for
// flags explicitly set on the command line.
type App struct {
	name        string
	shortDesc   string
	description string

	options   NamedFlagSetOptions
	runFunc   RunFunc
	args      cobra.PositionalArgs
	envPrefix string
	noConfig  bool
	onChange  ConfigChangeFunc

	viper *viper.Viper
	cmd   *cobra.Command
}

// Option configures an App.
type Option func(*App)

func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

func WithOptions(opts NamedFlagSetOptions) Option {
	return func(a *App) { a.options = opts }
}

func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.runFunc = run }
}

// WithDefaultValidArgs rejects positional arguments.
func WithDefaultValidArgs() Option {
	return func(a *App) {
		a.args = func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if len(arg) > 0 {
					return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
				}
			}
			return nil
		}
	}
}

// WithEnvPrefix reads every option from PREFIX_SECTION_NAME environment
// variables, e.g. SMARTPARK_MQTT_PASSWORD for --mqtt.password.
func WithEnvPrefix(prefix string) Option {
	return func(a *App) { a.envPrefix = prefix }
}

// WithNoConfig drops the --config flag.
func WithNoConfig() Option {
	return func(a *App) { a.noConfig = true }
}

// WithConfigChangeFunc watches the config file and calls fn on change.
func WithConfigChangeFunc(fn ConfigChangeFunc) Option {
	return func(a *App) { a.onChange = fn }
}

// NewApp builds the command. Call Run or Command to use it.
func NewApp(name, shortDesc string, opts ...Option) *App {
	a := &App{
		name:      name,
		shortDesc: shortDesc,
		viper:     viper.New(),
	}
	for _, o := range opts {
		o(a)
	}

	a.buildCommand()
	return a
}

// Command returns the underlying cobra command.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run executes the command and exits the process with status 1 on error.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.shortDesc,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          a.args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCommand(cmd)
		},
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true
	cmd.Flags().SetNormalizeFunc(cliflag.WordSepNormalizeFunc)

	var fss cliflag.NamedFlagSets
	if a.options != nil {
		fss = a.options.Flags()
	}
	if !a.noConfig {
		addConfigFlag(a.name, fss.FlagSet("global"))
	}
	fss.FlagSet("global").BoolP("help", "h", false, fmt.Sprintf("help for %s", a.name))

	for _, f := range fss.FlagSets {
		cmd.Flags().AddFlagSet(f)
	}

	cols, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		cols = 0
	}
	cliflag.SetUsageAndHelpFunc(cmd, fss, cols)

	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command) error {
	if a.options != nil {
		if err := a.loadOptions(cmd); err != nil {
			return err
		}
		if err := a.options.Complete(); err != nil {
			return fmt.Errorf("failed to complete options: %w", err)
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
	}

	if a.runFunc == nil {
		return nil
	}
	return a.runFunc()
}

// loadOptions merges config file and environment into the options. Flags
// set explicitly on the command line win over both.
func (a *App) loadOptions(cmd *cobra.Command) error {
	v := a.viper

	if a.envPrefix != "" {
		v.SetEnvPrefix(a.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	usedConfig := false
	if !a.noConfig {
		if err := readConfig(v, a.name, configFile); err != nil {
			return err
		}
		usedConfig = v.ConfigFileUsed() != ""
	}

	if err := v.Unmarshal(a.options); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	if usedConfig && a.onChange != nil {
		v.OnConfigChange(func(e fsnotify.Event) {
			a.onChange(v, e)
		})
		v.WatchConfig()
	}
	return nil
}

func readConfig(v *viper.Viper, name, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(name)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.smartpark")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read configuration file: %w", err)
	}
	return nil
}
