package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jensholdgaard/wowtools/internal/api"
	"github.com/jensholdgaard/wowtools/internal/bot"
	"github.com/jensholdgaard/wowtools/internal/bot/commands"
	"github.com/jensholdgaard/wowtools/internal/clock"
	"github.com/jensholdgaard/wowtools/internal/combatlog"
	"github.com/jensholdgaard/wowtools/internal/config"
	"github.com/jensholdgaard/wowtools/internal/gear"
	"github.com/jensholdgaard/wowtools/internal/gems"
	"github.com/jensholdgaard/wowtools/internal/health"
	"github.com/jensholdgaard/wowtools/internal/leader"
	"github.com/jensholdgaard/wowtools/internal/market"
	"github.com/jensholdgaard/wowtools/internal/roster"
	"github.com/jensholdgaard/wowtools/internal/store"
	"github.com/jensholdgaard/wowtools/internal/telemetry"

	// Register store drivers so they are available via store.Open.
	_ "github.com/jensholdgaard/wowtools/internal/store/memstore"
	_ "github.com/jensholdgaard/wowtools/internal/store/postgres"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		slog.Error("fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	tp, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without OTEL export", slog.Any("error", err))
		tp = telemetry.NewNopProvider()
	}
	defer func() {
		if shutdownErr := tp.Shutdown(context.Background()); shutdownErr != nil {
			slog.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	logger := tp.Logger
	clk := clock.Real{}

	repos, err := store.Open(ctx, cfg.Database, clk)
	if err != nil {
		return fmt.Errorf("opening store (driver=%s): %w", cfg.Database.Driver, err)
	}
	defer repos.Closer.Close()

	logger.InfoContext(ctx, "connected to database", slog.String("driver", cfg.Database.Driver))

	// Static databases.
	gearDB, err := gear.Load(cfg.Data.GearPath)
	if err != nil {
		return err
	}
	catalog, err := gems.LoadCatalog(cfg.Data.GemsPath, cfg.Data.GearNamesPath)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "static data loaded",
		slog.Int("gear_pieces", gearDB.Len()),
		slog.Int("gems", len(catalog.Gems())),
	)

	weights := gear.DefaultWeights()

	// Services.
	priceClient := market.NewClient(cfg.Market, tp.TracerProvider)
	marketSvc := market.NewService(priceClient, repos.Watchlist, repos.Events, cfg.Market, logger, tp.TracerProvider)
	refresher := market.NewRefresher(priceClient, repos.Watchlist, repos.Events, cfg.Market, logger, tp.TracerProvider, clk)
	logSvc := combatlog.NewService(combatlog.NewSourceFromConfig(cfg.Logs), logger, tp.TracerProvider)
	rosterMgr := roster.NewManager(repos.Events, repos.Characters,
		roster.DefaultLayout(cfg.Roster.Width, cfg.Roster.Height), cfg.Roster.DefaultSize,
		logger, tp.TracerProvider)

	if n, seedErr := rosterMgr.SeedGuild(ctx); seedErr != nil {
		return fmt.Errorf("seeding guild: %w", seedErr)
	} else if n > 0 {
		logger.InfoContext(ctx, "seeded default guild", slog.Int("characters", n))
	}
	if _, recoverErr := rosterMgr.RecoverPlans(ctx); recoverErr != nil {
		logger.ErrorContext(ctx, "roster recovery failed", slog.Any("error", recoverErr))
	}

	healthHandler := health.NewHandler(clk,
		health.Checker{Name: "database", Check: repos.Ping},
		health.Checker{Name: "market_api", Check: priceClient.Ping, Optional: true},
	)

	router := api.NewRouter(api.Services{
		Market:  marketSvc,
		Gear:    gearDB,
		Weights: weights,
		Gems:    catalog,
		Logs:    logSvc,
		Roster:  rosterMgr,
	}, healthHandler, logger, cfg.Server.MaxBodyBytes)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoContext(ctx, "starting http server", slog.Int("port", cfg.Server.Port))
		if listenErr := httpServer.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "http server error", slog.Any("error", listenErr))
			cancel()
		}
	}()

	discordBot, err := bot.New(cfg.Discord, commands.Deps{
		Market:  marketSvc,
		Gear:    gearDB,
		Weights: weights,
		Gems:    catalog,
		Logs:    logSvc,
	}, logger, tp.TracerProvider)
	switch {
	case errors.Is(err, bot.ErrDisabled):
		logger.InfoContext(ctx, "discord bot disabled")
		discordBot = nil
	case err != nil:
		return fmt.Errorf("creating bot: %w", err)
	default:
		if err := discordBot.Start(ctx); err != nil {
			return fmt.Errorf("starting bot: %w", err)
		}
	}

	// The refresher writes price events, so only the leader runs it.
	go func() {
		if leaderErr := leader.RunSingleton(ctx, cfg.LeaderElection, logger, refresher.Run); leaderErr != nil {
			logger.ErrorContext(ctx, "leader election failed", slog.Any("error", leaderErr))
		}
	}()

	healthHandler.SetReady(true)
	logger.InfoContext(ctx, "wowtools is running", slog.String("version", version))

	<-ctx.Done()
	logger.Info("shutting down...")
	healthHandler.SetReady(false)

	if discordBot != nil {
		if stopErr := discordBot.Stop(); stopErr != nil {
			logger.Error("bot shutdown error", slog.Any("error", stopErr))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}
