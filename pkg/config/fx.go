package config

import (
	"os"

	"github.com/pseudomuto/bulkloader/pkg/consts"
	"go.uber.org/fx"
)

// Module provides the *Config read from bulkloader.yaml in the working
// directory, or Defaults() when there is no such file.
var Module = fx.Module("config", fx.Provide(
	func() (*Config, error) {
		if _, err := os.Stat(consts.ConfigFile); os.IsNotExist(err) {
			return Defaults(), nil
		}

		return LoadConfigFile(consts.ConfigFile)
	},
))
