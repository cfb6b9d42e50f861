package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "evcharge/backend/libs/config"
)

// Config defines catalog service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"CATALOG_HTTP_PORT" default:"8084"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"CATALOG_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr       string `yaml:"addr" env:"CATALOG_REDIS_ADDR"`
		Password   string `yaml:"password" env:"CATALOG_REDIS_PASSWORD"`
		DB         int    `yaml:"db" env:"CATALOG_REDIS_DB"`
		TTLSeconds int    `yaml:"ttlSeconds" env:"CATALOG_REDIS_TTL" default:"86400"`
	} `yaml:"redis"`
	Sync struct {
		RadiusMeters        float64 `yaml:"radiusMeters" env:"CATALOG_SYNC_RADIUS_METERS" default:"50"`
		FetchTimeoutSeconds int     `yaml:"fetchTimeoutSeconds" env:"CATALOG_SYNC_FETCH_TIMEOUT" default:"120"`
		SchedulerEnabled    bool    `yaml:"schedulerEnabled" env:"CATALOG_SYNC_SCHEDULER_ENABLED" default:"true"`
	} `yaml:"sync"`
	Sources struct {
		OpenChargeMap struct {
			Enabled       bool    `yaml:"enabled" env:"CATALOG_OCM_ENABLED" default:"true"`
			APIKey        string  `yaml:"apiKey" env:"CATALOG_OCM_API_KEY"`
			BaseURL       string  `yaml:"baseUrl" env:"CATALOG_OCM_BASE_URL"`
			Latitude      float64 `yaml:"latitude" env:"CATALOG_OCM_LATITUDE" default:"12.9716"`
			Longitude     float64 `yaml:"longitude" env:"CATALOG_OCM_LONGITUDE" default:"77.5946"`
			DistanceKM    float64 `yaml:"distanceKm" env:"CATALOG_OCM_DISTANCE_KM" default:"50"`
			MaxResults    int     `yaml:"maxResults" env:"CATALOG_OCM_MAX_RESULTS" default:"500"`
			IntervalHours int     `yaml:"intervalHours" env:"CATALOG_OCM_INTERVAL_HOURS" default:"6"`
		} `yaml:"openChargeMap"`
		Overpass struct {
			Enabled       bool    `yaml:"enabled" env:"CATALOG_OVERPASS_ENABLED" default:"true"`
			BaseURL       string  `yaml:"baseUrl" env:"CATALOG_OVERPASS_BASE_URL"`
			South         float64 `yaml:"south" env:"CATALOG_OVERPASS_SOUTH" default:"12.8"`
			West          float64 `yaml:"west" env:"CATALOG_OVERPASS_WEST" default:"77.4"`
			North         float64 `yaml:"north" env:"CATALOG_OVERPASS_NORTH" default:"13.2"`
			East          float64 `yaml:"east" env:"CATALOG_OVERPASS_EAST" default:"77.8"`
			IntervalHours int     `yaml:"intervalHours" env:"CATALOG_OVERPASS_INTERVAL_HOURS" default:"24"`
		} `yaml:"overpass"`
	} `yaml:"sources"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8084"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// StatusTTL returns the redis cache ttl as duration.
func (c *Config) StatusTTL() time.Duration {
	if c.Redis.TTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

// FetchTimeout bounds a single source fetch.
func (c *Config) FetchTimeout() time.Duration {
	if c.Sync.FetchTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.Sync.FetchTimeoutSeconds) * time.Second
}
