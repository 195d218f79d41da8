// Package config loads server settings from defaults, an optional YAML file
// and PLAYLIST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable names, so log.path is read
// from PLAYLIST_LOG_PATH.
const EnvPrefix = "PLAYLIST"

type (
	Config struct {
		DBPath      string        `mapstructure:"db"`
		Addr        string        `mapstructure:"addr"`
		CoversDir   string        `mapstructure:"covers_dir"`
		TokenExpiry time.Duration `mapstructure:"token_expiry"`
		Log         LogConfig     `mapstructure:"log"`
	}

	LogConfig struct {
		Path       string `mapstructure:"path"`
		Level      string `mapstructure:"level"`
		Format     string `mapstructure:"format"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
		Compress   bool   `mapstructure:"compress"`
	}
)

var defaults = map[string]any{
	"db":               "playlist.sqlite3",
	"addr":             ":8080",
	"covers_dir":       "covers",
	"token_expiry":     "168h",
	"log.path":         "",
	"log.level":        "info",
	"log.format":       "text",
	"log.max_size_mb":  50,
	"log.max_backups":  3,
	"log.max_age_days": 28,
	"log.compress":     false,
}

// Load reads the configuration. An empty path looks for playlist.yaml in the
// working directory and uses the defaults if there is none; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("playlist")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be used as given.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: db path is required")
	}
	if c.Addr == "" {
		return errors.New("config: listen address is required")
	}
	if c.TokenExpiry <= 0 {
		return fmt.Errorf("config: token_expiry must be positive, got %s", c.TokenExpiry)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}
