package app

import (
	"fmt"

	"github.com/spf13/pflag"
)

const configFlagName = "config"

var configFile string

func addConfigFlag(basename string, fs *pflag.FlagSet) {
	fs.StringVarP(&configFile, configFlagName, "c", configFile,
		fmt.Sprintf("Read configuration from the specified file (YAML, JSON or TOML). "+
			"Defaults to ./%s.yaml or $HOME/.smartpark/%s.yaml when present.", basename, basename))
}
