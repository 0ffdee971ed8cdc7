// Package config loads runtime settings for the etiket server and CLI from
// ETIKET_* environment variables and an optional env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ETIKET"

// Config holds runtime settings.
type Config struct {
	// ServerAddr is the listen address of the preview server.
	ServerAddr string
	// GridTemplate is a template file (TOML or JSON). Empty means the built-in template.
	GridTemplate string
	// CacheDir is the directory of the file cache. Empty means the user cache dir.
	CacheDir string
	// RedisAddr selects the Redis cache when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Resolver      string
	URLBase       string
	Concurrency   int
	LogLevel      string
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env")
}

// Load loads the configuration with default options.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("GRID_TEMPLATE", "")
	v.SetDefault("CACHE_DIR", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RESOLVER", "qr")
	v.SetDefault("URL_BASE", "/qrcode/")
	v.SetDefault("CONCURRENCY", 4)
	v.SetDefault("LOG_LEVEL", "info")

	if opts.EnvFile != "" {
		v.SetConfigFile(opts.EnvFile)
		v.SetConfigType("env")

		if err := v.ReadInConfig(); err != nil {
			// It's okay if the env file doesn't exist
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		ServerAddr:    v.GetString("SERVER_ADDR"),
		GridTemplate:  v.GetString("GRID_TEMPLATE"),
		CacheDir:      v.GetString("CACHE_DIR"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		Resolver:      v.GetString("RESOLVER"),
		URLBase:       v.GetString("URL_BASE"),
		Concurrency:   v.GetInt("CONCURRENCY"),
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("%s_SERVER_ADDR must not be empty", EnvPrefix)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%s_CONCURRENCY must be at least 1, got %d", EnvPrefix, c.Concurrency)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s_LOG_LEVEL: %w", EnvPrefix, err)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// UsesRedis reports whether a Redis cache is configured.
func (c *Config) UsesRedis() bool {
	return c.RedisAddr != ""
}
