package store_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/jensholdgaard/wowtools/internal/clock"
	"github.com/jensholdgaard/wowtools/internal/config"
	"github.com/jensholdgaard/wowtools/internal/store"

	// Import drivers so their init() functions register them.
	_ "github.com/jensholdgaard/wowtools/internal/store/memstore"
	_ "github.com/jensholdgaard/wowtools/internal/store/postgres"
)

// fakeDriver is a store.Driver that always succeeds without connecting to a DB.
func fakeDriver(_ context.Context, _ config.DatabaseConfig, _ clock.Clock) (*store.Repositories, error) {
	return &store.Repositories{}, nil
}

func TestOpen(t *testing.T) {
	store.Register("test-driver", fakeDriver)

	tests := []struct {
		name    string
		driver  string
		wantErr bool
	}{
		{
			name:   "registered driver succeeds",
			driver: "test-driver",
		},
		{
			name:   "memory driver succeeds without a database",
			driver: "memory",
		},
		{
			name:    "unknown driver fails",
			driver:  "nonexistent",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DatabaseConfig{Driver: tt.driver}
			_, err := store.Open(context.Background(), cfg, clock.Real{})
			if (err != nil) != tt.wantErr {
				t.Errorf("Open(driver=%q) error = %v, wantErr %v", tt.driver, err, tt.wantErr)
			}
		})
	}
}

func TestDrivers(t *testing.T) {
	names := store.Drivers()
	for _, want := range []string{"memory", "postgres"} {
		if !slices.Contains(names, want) {
			t.Errorf("Drivers() = %v, missing %q", names, want)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("Drivers() = %v, want sorted", names)
	}
}

func TestOpen_PostgresRegistered(t *testing.T) {
	// Nothing listens on port 1, so the driver fails to connect rather than
	// reporting an unknown driver.
	cfg := config.DatabaseConfig{Driver: "postgres", Host: "127.0.0.1", Port: 1, SSLMode: "disable"}
	_, err := store.Open(context.Background(), cfg, clock.Real{})
	if err == nil {
		t.Fatal("expected error (no DB running), got nil")
	}
	if strings.Contains(err.Error(), "unknown store driver") {
		t.Errorf("expected connection error, got unknown driver error: %v", err)
	}
}

func TestCloserFunc(t *testing.T) {
	want := errors.New("closed")
	var c store.CloserFunc = func() error { return want }
	if err := c.Close(); !errors.Is(err, want) {
		t.Errorf("Close() = %v, want %v", err, want)
	}
}
