package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/rustcap/pkg/errors"
)

// Environment variable prefix for rustcap configuration.
const envPrefix = "RUSTCAP"

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment bindings in place.
func NewLoader() *Loader {
	v := viper.New()
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The conventional token variable works too.
	_ = v.BindEnv("github.token", "RUSTCAP_GITHUB_TOKEN", "GITHUB_TOKEN")

	return &Loader{v: v}
}

// BindFlags makes flags override file and environment values. keys maps a
// config key to the flag name that sets it. Flags the user did not set do not
// override anything.
func (l *Loader) BindFlags(fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "bind flag --%s", name)
		}
	}
	return nil
}

// Load reads configFile (or the default location when empty) and returns the
// merged configuration. A missing file is not an error.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		configFile = DefaultConfigFile()
	}

	l.v.SetConfigFile(configFile)
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", configFile)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
	}
	return &cfg, nil
}

// ConfigFileUsed returns the file the last Load read, or "" if none was found.
func (l *Loader) ConfigFileUsed() string {
	if _, err := os.Stat(l.v.ConfigFileUsed()); err != nil {
		return ""
	}
	return l.v.ConfigFileUsed()
}

// DefaultConfigFile returns $RUSTCAP_CONFIG if set, otherwise
// rustcap/config.yaml under the user config directory.
func DefaultConfigFile() string {
	if p := os.Getenv("RUSTCAP_CONFIG"); p != "" {
		return p
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "rustcap.yaml"
	}
	return filepath.Join(base, "rustcap", "config.yaml")
}
