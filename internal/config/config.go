// Package config loads the service configuration from defaults, an optional
// YAML file and ALMANAC_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"go.ngs.io/almanac-api/internal/logging"
	"go.ngs.io/almanac-api/internal/usecase"
)

// EnvPrefix prefixes every environment override, e.g. ALMANAC_SERVER_PORT.
const EnvPrefix = "ALMANAC"

// DefaultPath is read when CONFIG_PATH is unset and the file exists.
const DefaultPath = "configs/config.yaml"

// No-event policies accepted by the almanac section.
const (
	PolicyFallbackTime   = usecase.PolicyFallbackTime
	PolicyClassification = usecase.PolicyClassification
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	Server  ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Data    DataConfig     `yaml:"data" envconfig:"DATA"`
	Almanac AlmanacConfig  `yaml:"almanac" envconfig:"ALMANAC"`
	Log     logging.Config `yaml:"log" envconfig:"LOG"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port               string        `yaml:"port" envconfig:"PORT"`
	GinMode            string        `yaml:"ginMode" envconfig:"GIN_MODE"`
	CORSAllowedOrigins []string      `yaml:"corsAllowedOrigins" envconfig:"CORS_ALLOWED_ORIGINS"`
	ReadTimeout        time.Duration `yaml:"readTimeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout       time.Duration `yaml:"writeTimeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout    time.Duration `yaml:"shutdownTimeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// DataConfig points at the station catalogue.
type DataConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR"`
}

// AlmanacConfig controls event computation and reporting.
type AlmanacConfig struct {
	RoundToNearestMinute bool   `yaml:"roundToNearestMinute" envconfig:"ROUND_TO_NEAREST_MINUTE"`
	NoEventPolicy        string `yaml:"noEventPolicy" envconfig:"NO_EVENT_POLICY"`
	// RiseFallback and SetFallback are HH:MM standard-time clock readings
	// reported when a rise or set does not occur.
	RiseFallback string `yaml:"riseFallback" envconfig:"RISE_FALLBACK"`
	SetFallback  string `yaml:"setFallback" envconfig:"SET_FALLBACK"`
	MaxRangeDays int    `yaml:"maxRangeDays" envconfig:"MAX_RANGE_DAYS"`
	Workers      int    `yaml:"workers" envconfig:"WORKERS"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "8080",
			GinMode:            "release",
			CORSAllowedOrigins: []string{"*"},
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
		},
		Data: DataConfig{
			Dir: "./data",
		},
		Almanac: AlmanacConfig{
			RoundToNearestMinute: false,
			NoEventPolicy:        PolicyFallbackTime,
			RiseFallback:         "06:00",
			SetFallback:          "18:00",
			MaxRangeDays:         366,
			Workers:              4,
		},
		Log: logging.Config{
			Encoding: "console",
			Level:    "info",
		},
	}
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(DefaultPath); err == nil {
		if err := hydrateFromFile(cfg, DefaultPath); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	//nolint:gosec // G304: path comes from the operator.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Data.Dir == "" {
		errs = append(errs, errors.New("data.dir is required"))
	}

	switch c.Almanac.NoEventPolicy {
	case PolicyFallbackTime, PolicyClassification:
	default:
		errs = append(errs, fmt.Errorf("almanac.noEventPolicy must be %q or %q, got %q",
			PolicyFallbackTime, PolicyClassification, c.Almanac.NoEventPolicy))
	}
	if _, err := ParseClock(c.Almanac.RiseFallback); err != nil {
		errs = append(errs, fmt.Errorf("almanac.riseFallback: %w", err))
	}
	if _, err := ParseClock(c.Almanac.SetFallback); err != nil {
		errs = append(errs, fmt.Errorf("almanac.setFallback: %w", err))
	}
	if c.Almanac.MaxRangeDays < 1 {
		errs = append(errs, errors.New("almanac.maxRangeDays must be positive"))
	}
	if c.Almanac.Workers < 1 {
		errs = append(errs, errors.New("almanac.workers must be positive"))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Encoding) {
	case "json", "console", "text":
	default:
		errs = append(errs, fmt.Errorf("log.encoding %q is not supported", c.Log.Encoding))
	}

	return errors.Join(errs...)
}

// ParseClock parses an HH:MM clock reading into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q, expected HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
