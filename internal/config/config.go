// ABOUTME: Configuration loading with viper: yaml file plus VELO_ env vars.
// ABOUTME: Produces an explicit Config struct passed to constructors.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"github.com/velolab/velo/internal/storage"
)

// Config holds all service settings. It is constructed once at startup and
// handed to whichever component needs it; there is no process-wide
// singleton.
type Config struct {
	ListenAddr  string        `mapstructure:"listen_addr"`
	DBPath      string        `mapstructure:"db_path"`
	RedisAddr   string        `mapstructure:"redis_addr"` // empty disables the stats cache
	RedisDB     int           `mapstructure:"redis_db"`
	RedisPass   string        `mapstructure:"redis_password"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	TokenSecret string        `mapstructure:"token_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	BcryptCost  int           `mapstructure:"bcrypt_cost"`
}

// ConfigDir returns the config directory following XDG spec.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "velo")
}

// Load reads configuration from the config file (if present) and the
// environment. Environment variables use the VELO_ prefix, e.g.
// VELO_LISTEN_ADDR.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("db_path", storage.DefaultDBPath())
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_password", "")
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("token_secret", "")
	v.SetDefault("token_ttl", 30*time.Minute)
	v.SetDefault("bcrypt_cost", 0) // 0 means bcrypt default

	v.SetEnvPrefix("VELO")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings the server cannot run without.
func (c *Config) Validate() error {
	if c.TokenSecret == "" {
		return errors.New("token_secret is required (set VELO_TOKEN_SECRET)")
	}
	return nil
}
