// Package config loads the optional habitgrid.yaml settings file. Every
// field has a working default so a fresh install runs with no config at
// all; environment variables override the file for deployments that
// would rather not write secrets to disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	Secret string `yaml:"secret"`
}

type SyncConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
	TimeoutMS  int `yaml:"timeout_ms"`
}

type Config struct {
	Redis RedisConfig `yaml:"redis"`
	Auth  AuthConfig  `yaml:"auth"`
	Sync  SyncConfig  `yaml:"sync"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Redis: RedisConfig{Addr: "localhost:6379"},
		Auth:  AuthConfig{Secret: "habitgrid-dev-secret"},
		Sync:  SyncConfig{DebounceMS: 500, TimeoutMS: 5000},
	}
}

// Load reads path, layers it over the defaults, and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	overrideFromEnv(&cfg)

	if cfg.Sync.DebounceMS <= 0 {
		cfg.Sync.DebounceMS = 500
	}
	if cfg.Sync.TimeoutMS <= 0 {
		cfg.Sync.TimeoutMS = 5000
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if addr := os.Getenv("HABITGRID_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("HABITGRID_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if db := os.Getenv("HABITGRID_REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.Redis.DB = n
		}
	}
	if secret := os.Getenv("HABITGRID_AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
}
