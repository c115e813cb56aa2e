package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration, loaded from TOML and overridden by CLI flags.
type Config struct {
	Server    ServerConfig    `toml:"server"`    // HTTP server settings
	Location  LocationConfig  `toml:"location"`  // Default location until the user picks one
	Refresh   RefreshConfig   `toml:"refresh"`   // Periodic forecast refresh
	Endpoints EndpointsConfig `toml:"endpoints"` // Upstream API base URLs
	Geocode   GeocodeConfig   `toml:"geocode"`   // Nominatim client settings
	Storage   StorageConfig   `toml:"storage"`   // Preference database
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
	Images    ImagesConfig    `toml:"images"`    // Banner and OG image settings
}

type ServerConfig struct {
	Host            string `toml:"host"`             // Host address to bind to
	Port            int    `toml:"port"`             // HTTP port
	ShutdownTimeout int    `toml:"shutdown_timeout"` // Seconds to wait for in-flight requests on shutdown
}

type LocationConfig struct {
	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
	Name      string  `toml:"name"`
}

type RefreshConfig struct {
	IntervalMinutes int `toml:"interval_minutes"` // How often the forecast is re-fetched
	TimeoutSeconds  int `toml:"timeout_seconds"`  // Per-request HTTP timeout
}

type EndpointsConfig struct {
	ForecastURL   string `toml:"forecast_url"`
	AirQualityURL string `toml:"air_quality_url"`
	GeocodeURL    string `toml:"geocode_url"` // Base URL; /search and /reverse are appended
}

type GeocodeConfig struct {
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn" or "error"
	Format string `toml:"format"` // "json" or "console"
}

type ImagesConfig struct {
	CacheDir          string `toml:"cache_dir"`
	BannerMaxAgeHours int    `toml:"banner_max_age_hours"` // Banners are regenerated after this age; 0 keeps them forever
	OGCacheMinutes    int    `toml:"og_cache_minutes"`
}

// Default returns the built-in configuration: Berlin, ten minute refresh.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            8080,
			ShutdownTimeout: 5,
		},
		Location: LocationConfig{
			Latitude:  52.52,
			Longitude: 13.41,
			Name:      "Berlin, Germany",
		},
		Refresh: RefreshConfig{
			IntervalMinutes: 10,
			TimeoutSeconds:  30,
		},
		Endpoints: EndpointsConfig{
			ForecastURL:   "https://api.open-meteo.com/v1/forecast",
			AirQualityURL: "https://air-quality-api.open-meteo.com/v1/air-quality",
			GeocodeURL:    "https://nominatim.openstreetmap.org",
		},
		Geocode: GeocodeConfig{
			UserAgent:         "skyglass/1.0",
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Storage: StorageConfig{
			DBPath: "data/skyglass.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Images: ImagesConfig{
			CacheDir:          "data/images",
			BannerMaxAgeHours: 24,
			OGCacheMinutes:    5,
		},
	}
}

// Load reads the TOML file at path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		errs = append(errs, fmt.Errorf("location.latitude %v out of range", c.Location.Latitude))
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		errs = append(errs, fmt.Errorf("location.longitude %v out of range", c.Location.Longitude))
	}
	if c.Refresh.IntervalMinutes <= 0 {
		errs = append(errs, errors.New("refresh.interval_minutes must be positive"))
	}
	if c.Refresh.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("refresh.timeout_seconds must be positive"))
	}
	if c.Endpoints.ForecastURL == "" || c.Endpoints.AirQualityURL == "" || c.Endpoints.GeocodeURL == "" {
		errs = append(errs, errors.New("endpoints: all URLs are required"))
	}
	if c.Geocode.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("geocode.requests_per_second must be positive"))
	}
	if c.Geocode.Burst < 1 {
		errs = append(errs, errors.New("geocode.burst must be at least 1"))
	}
	if c.Images.BannerMaxAgeHours < 0 {
		errs = append(errs, errors.New("images.banner_max_age_hours must not be negative"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// RefreshInterval is the refresh period as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalMinutes) * time.Minute
}

// RequestTimeout is the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Refresh.TimeoutSeconds) * time.Second
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
