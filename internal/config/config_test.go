package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jensholdgaard/wowtools/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "valid full config",
			yaml: `
discord:
  token: "test-token"
  guild_id: "123456"
database:
  host: "db.example.com"
  port: 5433
  user: "wowtools"
  password: "secret"
  dbname: "wowtools"
  sslmode: "require"
  driver: "postgres"
server:
  port: 9090
telemetry:
  service_name: "tools"
  otlp_endpoint: "localhost:4318"
market:
  base_url: "http://prices.local/v1"
  primary_server:
    slug: "firemaw-alliance"
    label: "FM"
  search_wait: 200ms
  search_max_wait: 400ms
logs:
  mode: graphql
  token: "abc"
roster:
  default_size: 25
`,
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				if cfg.Discord.Token != "test-token" {
					t.Errorf("got token %q, want %q", cfg.Discord.Token, "test-token")
				}
				if cfg.Database.Port != 5433 {
					t.Errorf("got db port %d, want %d", cfg.Database.Port, 5433)
				}
				if cfg.Server.Port != 9090 {
					t.Errorf("got server port %d, want %d", cfg.Server.Port, 9090)
				}
				if cfg.Market.PrimaryServer.Label != "FM" {
					t.Errorf("got primary label %q, want %q", cfg.Market.PrimaryServer.Label, "FM")
				}
				if cfg.Market.SecondaryServer.Slug != "pyrewood-village-alliance" {
					t.Errorf("secondary server should keep its default, got %q", cfg.Market.SecondaryServer.Slug)
				}
				if cfg.Market.SearchWait != 200*time.Millisecond {
					t.Errorf("got search wait %s, want 200ms", cfg.Market.SearchWait)
				}
				if cfg.Logs.Mode != "graphql" {
					t.Errorf("got logs mode %q, want graphql", cfg.Logs.Mode)
				}
				if cfg.Roster.DefaultSize != 25 {
					t.Errorf("got raid size %d, want 25", cfg.Roster.DefaultSize)
				}
			},
		},
		{
			name: "defaults applied",
			yaml: `
discord:
  token: "tok"
`,
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				if cfg.Database.Driver != "postgres" {
					t.Errorf("got driver %q, want %q", cfg.Database.Driver, "postgres")
				}
				if cfg.Market.BaseURL != "https://api.nexushub.co/wow-classic/v1" {
					t.Errorf("got base url %q", cfg.Market.BaseURL)
				}
				if cfg.Market.Timeout != time.Second {
					t.Errorf("got timeout %s, want 1s", cfg.Market.Timeout)
				}
				if cfg.Market.PrimaryServer.Slug != "nethergarde-keep-alliance" {
					t.Errorf("got primary server %q", cfg.Market.PrimaryServer.Slug)
				}
				if cfg.Market.SearchWait != time.Second || cfg.Market.SearchMaxWait != 1500*time.Millisecond {
					t.Errorf("got debounce %s/%s, want 1s/1.5s", cfg.Market.SearchWait, cfg.Market.SearchMaxWait)
				}
				if cfg.Market.MinQueryLength != 3 {
					t.Errorf("got min query length %d, want 3", cfg.Market.MinQueryLength)
				}
				if cfg.Logs.Mode != "fixture" {
					t.Errorf("got logs mode %q, want fixture", cfg.Logs.Mode)
				}
				if cfg.Roster.DefaultSize != 10 {
					t.Errorf("got raid size %d, want 10", cfg.Roster.DefaultSize)
				}
				if cfg.Roster.Width != 1200 || cfg.Roster.Height != 900 {
					t.Errorf("got planner %gx%g, want 1200x900", cfg.Roster.Width, cfg.Roster.Height)
				}
				if cfg.Telemetry.ServiceName != "wowtools" {
					t.Errorf("got service name %q, want %q", cfg.Telemetry.ServiceName, "wowtools")
				}
			},
		},
		{
			name:    "invalid yaml",
			yaml:    `{{{invalid`,
			wantErr: true,
		},
		{
			name: "memory driver accepted",
			yaml: `
database:
  driver: "memory"
`,
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				if cfg.Database.Driver != "memory" {
					t.Errorf("got driver %q, want %q", cfg.Database.Driver, "memory")
				}
			},
		},
		{
			name: "invalid driver rejected",
			yaml: `
database:
  driver: "mongodb"
`,
			wantErr: true,
		},
		{
			name: "unknown logs mode rejected",
			yaml: `
logs:
  mode: "carrier-pigeon"
`,
			wantErr: true,
		},
		{
			name: "max wait shorter than wait rejected",
			yaml: `
market:
  search_wait: 2s
  search_max_wait: 1s
`,
			wantErr: true,
		},
		{
			name: "zero refresh interval rejected",
			yaml: `
market:
  refresh_interval: 0s
`,
			wantErr: true,
		},
		{
			name: "zero cache size rejected",
			yaml: `
market:
  cache_size: 0
`,
			wantErr: true,
		},
		{
			name: "raid size must be 10 or 25",
			yaml: `
roster:
  default_size: 20
`,
			wantErr: true,
		},
		{
			name: "zero planner height rejected",
			yaml: `
roster:
  height: 0
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeConfig(t, tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && cfg != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv(config.EnvDiscordToken, "env-discord")
	t.Setenv(config.EnvLogsToken, "env-logs")
	t.Setenv(config.EnvDBPassword, "env-db")

	cfg, err := config.Load(writeConfig(t, `
discord:
  token: "file-discord"
database:
  password: "file-db"
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Discord.Token != "env-discord" {
		t.Errorf("discord token = %q, want env-discord", cfg.Discord.Token)
	}
	if cfg.Logs.Token != "env-logs" {
		t.Errorf("logs token = %q, want env-logs", cfg.Logs.Token)
	}
	if cfg.Database.Password != "env-db" {
		t.Errorf("db password = %q, want env-db", cfg.Database.Password)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := config.Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "pass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}
	want := "host=localhost port=5432 user=user password=pass dbname=testdb sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
