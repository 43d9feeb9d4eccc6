package viper

import (
	"strings"

	"github.com/cognite/powerops/internal/meta"
	"github.com/cognite/powerops/internal/util"
	v "github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the CLI reads, e.g.
// POWEROPS_LOG_LEVEL or POWEROPS_CDF_PROJECT.
var EnvPrefix = meta.CLIName

// InitializeDefaultViper initializes a viper instance with default values and a path to a file
// If the file does not exist, it will be created with the default values
func InitializeDefaultViper(defaultValues map[string]any, path string) (*v.Viper, error) {
	var err error

	err = util.InitDir(path, 0o755)
	if err != nil {
		return nil, err
	}

	rv := NewViper(path)

	if len(rv.AllSettings()) == 0 {
		// the 'loaded' viper is empty, so we assume it's uninitialized and
		// set the default and the write back to the file
		err = rv.MergeConfigMap(defaultValues)
		if err != nil {
			return nil, err
		}
		err = rv.WriteConfig()
		if err != nil {
			return nil, err
		}
	}

	return rv, err
}

// ConfigureEnvVars makes rv resolve keys from the environment. Dots and dashes in
// keys map to underscores, so cdf.base-url reads <PREFIX>_CDF_BASE_URL.
func ConfigureEnvVars(rv *v.Viper, prefix string) {
	rv.SetEnvPrefix(prefix)
	rv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	rv.AutomaticEnv()
}

func NewViperE(path string) (*v.Viper, error) {
	rv := v.New()
	rv.SetConfigFile(path)
	ConfigureEnvVars(rv, EnvPrefix)
	err := rv.ReadInConfig()
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func NewViper(path string) *v.Viper {
	rv := v.New()
	rv.SetConfigFile(path)
	ConfigureEnvVars(rv, EnvPrefix)
	_ = rv.ReadInConfig()
	return rv
}
