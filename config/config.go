package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Dataset drivers accepted by load.driver.
const (
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultSource = "./data/resale_transactions.csv"

// Config holds all application configuration.
type Config struct {
	Load     LoadConfig     `mapstructure:"load" yaml:"load"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Snapshot SnapshotConfig `mapstructure:"snapshot" yaml:"snapshot"`
	Verbose  bool           `mapstructure:"verbose" yaml:"verbose"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
	// DotEnv is true when a .env file was found and loaded.
	DotEnv bool `mapstructure:"-" yaml:"-"`
}

type LoadConfig struct {
	Driver         string `mapstructure:"driver" yaml:"driver"`
	Source         string `mapstructure:"source" yaml:"source"`
	Table          string `mapstructure:"table" yaml:"table"`
	Malformed      string `mapstructure:"malformed" yaml:"malformed"`
	ConnectRetries int    `mapstructure:"connect_retries" yaml:"connect_retries"`
}

type PipelineConfig struct {
	TopN              int      `mapstructure:"top_n" yaml:"top_n"`
	MonthWindow       int      `mapstructure:"month_window" yaml:"month_window"`
	DefaultTown       string   `mapstructure:"default_town" yaml:"default_town"`
	DefaultFlatType   string   `mapstructure:"default_flat_type" yaml:"default_flat_type"`
	DefaultFlatModels []string `mapstructure:"default_flat_models" yaml:"default_flat_models"`
}

type ServerConfig struct {
	Addr      string        `mapstructure:"addr" yaml:"addr"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst" yaml:"rate_burst"`
}

type SnapshotConfig struct {
	ChromeBin   string        `mapstructure:"chrome_bin" yaml:"chrome_bin"`
	Output      string        `mapstructure:"output" yaml:"output"`
	Width       int           `mapstructure:"width" yaml:"width"`
	Height      int           `mapstructure:"height" yaml:"height"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Retries     int           `mapstructure:"retries" yaml:"retries"`
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	Interval    time.Duration `mapstructure:"interval" yaml:"interval"`
}

// Defaults returns the built-in configuration.
func Defaults() map[string]any {
	return map[string]any{
		"load.driver":          DriverCSV,
		"load.source":          defaultSource,
		"load.table":           "resale_transactions",
		"load.malformed":       "drop",
		"load.connect_retries": 5,

		"pipeline.top_n":             20,
		"pipeline.month_window":      12,
		"pipeline.default_town":      "BUKIT MERAH",
		"pipeline.default_flat_type": "4 ROOM",
		"pipeline.default_flat_models": []string{
			"Improved", "DBSS", "Standard", "S1", "S2", "Model A", "Model A2", "Simplified",
		},

		"server.addr":       ":8080",
		"server.cache_ttl":  "5m",
		"server.rate_limit": 20.0,
		"server.rate_burst": 40,

		"snapshot.chrome_bin":  "",
		"snapshot.output":      "./output/dashboard.png",
		"snapshot.width":       1400,
		"snapshot.height":      900,
		"snapshot.timeout":     "60s",
		"snapshot.retries":     3,
		"snapshot.concurrency": 2,
		"snapshot.interval":    "500ms",

		"verbose": false,
	}
}

// Load builds the configuration from, lowest priority first: defaults, the
// YAML file at path (or ./resale-explorer.yaml when path is empty), RESALE_*
// environment variables and changed command-line flags. flags maps config
// keys such as "load.source" to the flag that overrides them.
func Load(path string, flags map[string]*pflag.Flag) (*Config, error) {
	cfg := &Config{}
	if err := godotenv.Load(); err == nil {
		cfg.DotEnv = true
	}

	v := viper.New()
	for key, val := range Defaults() {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix("RESALE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("config: bind flag %s: %w", flag.Name, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("resale-explorer")
		v.SetConfigType("yaml")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	cfg.File = v.ConfigFileUsed()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	// postgres without an explicit source falls back to the POSTGRES_* variables
	if cfg.Load.Driver == DriverPostgres && cfg.Load.Source == defaultSource {
		cfg.Load.Source = PostgresDSNFromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail much later.
func (c *Config) Validate() error {
	switch c.Load.Driver {
	case DriverCSV, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: load.driver %q: want csv, postgres or sqlite", c.Load.Driver)
	}
	if c.Load.Source == "" {
		return errors.New("config: load.source is empty")
	}
	if c.Load.Driver == DriverSQLite && strings.EqualFold(filepath.Ext(c.Load.Source), ".csv") {
		return fmt.Errorf("config: load.driver sqlite needs load.source set to a database file, got %q", c.Load.Source)
	}
	if c.Pipeline.TopN <= 0 {
		return fmt.Errorf("config: pipeline.top_n must be positive, got %d", c.Pipeline.TopN)
	}
	if c.Pipeline.MonthWindow <= 0 {
		return fmt.Errorf("config: pipeline.month_window must be positive, got %d", c.Pipeline.MonthWindow)
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return errors.New("config: server.rate_limit and server.rate_burst must be positive")
	}
	if c.Snapshot.Width <= 0 || c.Snapshot.Height <= 0 {
		return errors.New("config: snapshot.width and snapshot.height must be positive")
	}
	return nil
}

// PostgresDSNFromEnv builds a connection string from the POSTGRES_* variables
// commonly set by docker compose.
func PostgresDSNFromEnv() string {
	return "host=" + getEnv("POSTGRES_HOST", "localhost") +
		" port=" + getEnv("POSTGRES_PORT", "5432") +
		" user=" + getEnv("POSTGRES_USER", "resale") +
		" password=" + getEnv("POSTGRES_PASSWORD", "") +
		" dbname=" + getEnv("POSTGRES_DB", "resale") +
		" sslmode=" + getEnv("POSTGRES_SSLMODE", "disable")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// MarshalYAML writes the cache TTL in the same form the config file accepts.
func (s ServerConfig) MarshalYAML() (any, error) {
	return map[string]any{
		"addr":       s.Addr,
		"cache_ttl":  s.CacheTTL.String(),
		"rate_limit": s.RateLimit,
		"rate_burst": s.RateBurst,
	}, nil
}

// MarshalYAML writes durations in the same form the config file accepts.
func (s SnapshotConfig) MarshalYAML() (any, error) {
	return map[string]any{
		"chrome_bin":  s.ChromeBin,
		"output":      s.Output,
		"width":       s.Width,
		"height":      s.Height,
		"timeout":     s.Timeout.String(),
		"retries":     s.Retries,
		"concurrency": s.Concurrency,
		"interval":    s.Interval.String(),
	}, nil
}
