package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets from the YAML file.
const (
	EnvDiscordToken = "WOWTOOLS_DISCORD_TOKEN"
	EnvLogsToken    = "WOWTOOLS_LOGS_TOKEN"
	EnvDBPassword   = "WOWTOOLS_DB_PASSWORD"
)

// Config represents the application configuration.
type Config struct {
	Discord        DiscordConfig        `yaml:"discord"`
	Database       DatabaseConfig       `yaml:"database"`
	Server         ServerConfig         `yaml:"server"`
	Telemetry      TelemetryConfig      `yaml:"telemetry"`
	LeaderElection LeaderElectionConfig `yaml:"leader_election"`
	Market         MarketConfig         `yaml:"market"`
	Logs           LogsConfig           `yaml:"logs"`
	Data           DataConfig           `yaml:"data"`
	Roster         RosterConfig         `yaml:"roster"`
}

// DiscordConfig holds Discord bot settings. The bot is disabled when Token is empty.
type DiscordConfig struct {
	Token   string `yaml:"token"`
	GuildID string `yaml:"guild_id"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Driver   string `yaml:"driver"` // "postgres" or "memory"
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// TelemetryConfig holds OpenTelemetry settings.
// Export is disabled when OTLPEndpoint is empty.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	Insecure       bool   `yaml:"insecure"`
	LogLevel       string `yaml:"log_level"`
}

// LeaderElectionConfig holds Kubernetes leader election settings.
type LeaderElectionConfig struct {
	Enabled        bool          `yaml:"enabled"`
	LeaseName      string        `yaml:"lease_name"`
	LeaseNamespace string        `yaml:"lease_namespace"`
	LeaseDuration  time.Duration `yaml:"lease_duration"`
	RenewDeadline  time.Duration `yaml:"renew_deadline"`
	RetryPeriod    time.Duration `yaml:"retry_period"`
}

// MarketConfig configures the auction price API client.
type MarketConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	PrimaryServer   ServerRef     `yaml:"primary_server"`
	SecondaryServer ServerRef     `yaml:"secondary_server"`
	CacheSize       int           `yaml:"cache_size"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	RateLimit       float64       `yaml:"rate_limit"`
	Burst           int           `yaml:"burst"`
	SearchWait      time.Duration `yaml:"search_wait"`
	SearchMaxWait   time.Duration `yaml:"search_max_wait"`
	MinQueryLength  int           `yaml:"min_query_length"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// ServerRef names a game server slug and the short label shown next to its prices.
type ServerRef struct {
	Slug  string `yaml:"slug"`
	Label string `yaml:"label"`
}

// LogsConfig configures where combat-log reports come from.
type LogsConfig struct {
	Mode        string        `yaml:"mode"` // "fixture" or "graphql"
	FixturePath string        `yaml:"fixture_path"`
	Endpoint    string        `yaml:"endpoint"`
	Token       string        `yaml:"token"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DataConfig points at the static JSON databases.
type DataConfig struct {
	GearPath      string `yaml:"gear_path"`
	GemsPath      string `yaml:"gems_path"`
	GearNamesPath string `yaml:"gear_names_path"`
}

// RosterConfig holds raid planner defaults. Width and Height are the
// planner coordinate space drop points are given in.
type RosterConfig struct {
	DefaultSize int     `yaml:"default_size"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
}

// Defaults returns a Config populated with default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
			Driver:  "postgres",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "wowtools",
			ServiceVersion: "0.1.0",
			LogLevel:       "info",
		},
		LeaderElection: LeaderElectionConfig{
			Enabled:        false,
			LeaseName:      "wowtools-leader",
			LeaseNamespace: "default",
			LeaseDuration:  15 * time.Second,
			RenewDeadline:  10 * time.Second,
			RetryPeriod:    2 * time.Second,
		},
		Market: MarketConfig{
			BaseURL:         "https://api.nexushub.co/wow-classic/v1",
			Timeout:         time.Second,
			PrimaryServer:   ServerRef{Slug: "nethergarde-keep-alliance", Label: "NGK"},
			SecondaryServer: ServerRef{Slug: "pyrewood-village-alliance", Label: "PWV"},
			CacheSize:       512,
			CacheTTL:        5 * time.Minute,
			RateLimit:       5,
			Burst:           5,
			SearchWait:      time.Second,
			SearchMaxWait:   1500 * time.Millisecond,
			MinQueryLength:  3,
			RefreshInterval: 10 * time.Minute,
		},
		Logs: LogsConfig{
			Mode:        "fixture",
			FixturePath: "data/report.json",
			Endpoint:    "https://classic.warcraftlogs.com/api/v2/client",
			Timeout:     10 * time.Second,
		},
		Data: DataConfig{
			GearPath:      "data/itemDB.json",
			GemsPath:      "data/gems.json",
			GearNamesPath: "data/gear.json",
		},
		Roster: RosterConfig{
			DefaultSize: 10,
			Width:       1200,
			Height:      900,
		},
	}
}

// Load reads a YAML configuration file from the given path.
// A .env file next to the working directory is loaded first, if present,
// so secrets can be kept out of the YAML.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDiscordToken); v != "" {
		c.Discord.Token = v
	}
	if v := os.Getenv(EnvLogsToken); v != "" {
		c.Logs.Token = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Database.Password = v
	}
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
		// valid
	default:
		return fmt.Errorf("unsupported database driver %q: must be \"postgres\" or \"memory\"", c.Database.Driver)
	}

	switch c.Logs.Mode {
	case "fixture":
		if c.Logs.FixturePath == "" {
			return errors.New("logs.fixture_path is required in fixture mode")
		}
	case "graphql":
		if c.Logs.Endpoint == "" {
			return errors.New("logs.endpoint is required in graphql mode")
		}
	default:
		return fmt.Errorf("unsupported logs mode %q: must be \"fixture\" or \"graphql\"", c.Logs.Mode)
	}

	if c.Market.BaseURL == "" {
		return errors.New("market.base_url is required")
	}
	if c.Market.PrimaryServer.Slug == "" || c.Market.SecondaryServer.Slug == "" {
		return errors.New("market.primary_server and market.secondary_server are required")
	}
	if c.Market.CacheSize <= 0 {
		return fmt.Errorf("market.cache_size must be positive, got %d", c.Market.CacheSize)
	}
	if c.Market.RateLimit <= 0 || c.Market.Burst <= 0 {
		return errors.New("market.rate_limit and market.burst must be positive")
	}
	if c.Market.RefreshInterval <= 0 {
		return fmt.Errorf("market.refresh_interval must be positive, got %s", c.Market.RefreshInterval)
	}
	if c.Market.SearchMaxWait < c.Market.SearchWait {
		return fmt.Errorf("market.search_max_wait (%s) must not be shorter than market.search_wait (%s)",
			c.Market.SearchMaxWait, c.Market.SearchWait)
	}

	if c.Roster.DefaultSize != 10 && c.Roster.DefaultSize != 25 {
		return fmt.Errorf("roster.default_size must be 10 or 25, got %d", c.Roster.DefaultSize)
	}
	if c.Roster.Width <= 0 || c.Roster.Height <= 0 {
		return errors.New("roster.width and roster.height must be positive")
	}
	return nil
}
