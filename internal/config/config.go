package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "CONFIG_FILE"

// Config defines monitor-api configuration. Values come from an optional
// YAML file (CONFIG_FILE) overridden by MONITOR_* env variables.
type Config struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`
	Demand struct {
		ThresholdKVA        float64 `yaml:"threshold_kva"`
		LiveIntervalSeconds int     `yaml:"live_interval_seconds"`
	} `yaml:"demand"`
}

// Load reads configuration and validates required fields.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "3001"
	cfg.Redis.TTLSeconds = 60
	// Sanctioned demand for the facility; minutes above it are flagged.
	cfg.Demand.ThresholdKVA = 558.75
	cfg.Demand.LiveIntervalSeconds = 15

	if path := os.Getenv(configPathEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	}

	overrideString(&cfg.HTTP.Port, "MONITOR_HTTP_PORT")
	overrideString(&cfg.Database.DSN, "MONITOR_POSTGRES_DSN")
	overrideString(&cfg.Redis.Addr, "MONITOR_REDIS_ADDR")
	overrideString(&cfg.Redis.Password, "MONITOR_REDIS_PASSWORD")
	if err := overrideInt(&cfg.Redis.TTLSeconds, "MONITOR_REDIS_TTL_SECONDS"); err != nil {
		return nil, err
	}
	if err := overrideFloat(&cfg.Demand.ThresholdKVA, "MONITOR_DEMAND_THRESHOLD_KVA"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.Demand.LiveIntervalSeconds, "MONITOR_LIVE_INTERVAL_SECONDS"); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if cfg.Demand.ThresholdKVA <= 0 {
		return nil, errors.New("config: demand threshold must be positive")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "3001"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

func overrideString(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*target = v
	}
}

func overrideInt(target *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*target = parsed
	return nil
}

func overrideFloat(target *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*target = parsed
	return nil
}
