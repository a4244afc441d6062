// Package euphconfig loads the example bot's configuration, following the
// same viper-based, env-override-aware pattern the host agent uses to load
// its own config.
package euphconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is where the example bot looks for a config file
	// absent an explicit -config flag.
	DefaultConfigPath = "./euphbot.yaml"

	// DefaultDomain is the Euphoria instance the example bot joins absent
	// an override.
	DefaultDomain = "euphoria.leet.nu"
)

// Config holds the example bot's configuration.
type Config struct {
	// Domain is the Euphoria instance to connect to.
	Domain string `mapstructure:"domain" yaml:"domain"`

	// Rooms is the list of room names to join on startup.
	Rooms []string `mapstructure:"rooms" yaml:"rooms"`

	// Username is the nick the bot adopts in every room it joins.
	Username string `mapstructure:"username" yaml:"username"`

	// Password, if set, authenticates in rooms that require a passcode.
	Password string `mapstructure:"password" yaml:"password"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// StatusAddr, if non-empty, serves a debug/status HTTP endpoint at this
	// address (e.g. "127.0.0.1:8080").
	StatusAddr string `mapstructure:"status_addr" yaml:"status_addr"`
}

// Load reads configuration from the given file path, falling back to
// DefaultConfigPath if configPath is empty. Environment variables (prefixed
// EUPHBOT_, with "_" standing in for ".") override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("domain", DefaultDomain)
	v.SetDefault("log_level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(DefaultConfigPath)
	}

	v.SetEnvPrefix("euphbot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.Rooms) == 0 {
		return nil, fmt.Errorf("config must list at least one room")
	}

	return &cfg, nil
}
