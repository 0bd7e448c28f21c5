package bot_test

import (
	"errors"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jensholdgaard/wowtools/internal/bot"
	"github.com/jensholdgaard/wowtools/internal/bot/commands"
	"github.com/jensholdgaard/wowtools/internal/config"
)

func TestNew(t *testing.T) {
	_, err := bot.New(config.DiscordConfig{}, commands.Deps{}, slog.Default(), noop.NewTracerProvider())
	if !errors.Is(err, bot.ErrDisabled) {
		t.Fatalf("New() without token error = %v, want ErrDisabled", err)
	}

	b, err := bot.New(config.DiscordConfig{Token: "token"}, commands.Deps{}, slog.Default(), noop.NewTracerProvider())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b == nil {
		t.Fatal("New() returned nil bot")
	}
}
