// Package api exposes the tools over a JSON HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jensholdgaard/wowtools/internal/combatlog"
	"github.com/jensholdgaard/wowtools/internal/config"
	"github.com/jensholdgaard/wowtools/internal/gear"
	"github.com/jensholdgaard/wowtools/internal/gems"
	"github.com/jensholdgaard/wowtools/internal/health"
	"github.com/jensholdgaard/wowtools/internal/market"
	"github.com/jensholdgaard/wowtools/internal/metrics"
	"github.com/jensholdgaard/wowtools/internal/roster"
	"github.com/jensholdgaard/wowtools/internal/store"
)

// MarketService is the part of market.Service the API serves.
type MarketService interface {
	Servers() (primary, secondary config.ServerRef)
	Listing(ctx context.Context, server string, itemID int) (market.Listing, error)
	Compare(ctx context.Context, itemID int) (*market.Comparison, error)
	Search(ctx context.Context, session, query string) ([]market.SearchItem, error)
	Watch(ctx context.Context, owner string, itemID int) error
	Unwatch(ctx context.Context, owner string, itemID int) error
	Watchlist(ctx context.Context, owner string) ([]store.WatchEntry, error)
	RestoreWatchlist(ctx context.Context, owner string) ([]market.Listing, error)
}

// LogService tallies consumable use of a combat-log report.
type LogService interface {
	Usage(ctx context.Context, code string) (*combatlog.UsageTable, error)
}

// RosterService is the raid planner.
type RosterService interface {
	Layout() roster.Layout
	List() []roster.Snapshot
	Create(ctx context.Context, name, createdBy string, size int) (roster.Snapshot, error)
	Get(ctx context.Context, id string) (roster.Snapshot, error)
	Drop(ctx context.Context, id, characterName string, pt roster.Point) (roster.Snapshot, []roster.Region, error)
	Next(ctx context.Context, id string) (roster.Snapshot, error)
	Back(ctx context.Context, id string) (roster.Snapshot, error)
	Reset(ctx context.Context, id string) (roster.Snapshot, error)
	Resize(ctx context.Context, id string, size int) (roster.Snapshot, error)
	Statistics(ctx context.Context, id string) (roster.Statistics, error)
	Characters(ctx context.Context) ([]roster.Character, error)
	RegisterCharacter(ctx context.Context, c roster.Character) error
}

// Services are the backends behind the routes.
type Services struct {
	Market  MarketService
	Gear    *gear.Database
	Weights gear.Weights
	Gems    *gems.Catalog
	Logs    LogService
	Roster  RosterService
}

// Handler holds the route handlers.
type Handler struct {
	svc    Services
	logger *slog.Logger
}

// NewRouter builds the HTTP router. Health endpoints are only mounted when
// h is non-nil.
func NewRouter(svc Services, h *health.Handler, logger *slog.Logger, maxBodyBytes int64) http.Handler {
	if svc.Weights == nil {
		svc.Weights = gear.DefaultWeights()
	}
	hd := &Handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestSizeLimitMiddleware(maxBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware(logger))

	if h != nil {
		r.Get("/healthz", h.LivenessHandler())
		r.Get("/readyz", h.ReadinessHandler())
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/market", func(r chi.Router) {
			r.Get("/servers", hd.handleServers)
			r.Get("/search", hd.handleSearch)
			r.Get("/items/{server}/{itemID}", hd.handleListing)
			r.Get("/compare/{itemID}", hd.handleCompare)
			r.Route("/watchlist/{owner}", func(r chi.Router) {
				r.Get("/", hd.handleWatchlist)
				r.Post("/", hd.handleWatch)
				r.Get("/listings", hd.handleWatchlistListings)
				r.Delete("/{itemID}", hd.handleUnwatch)
			})
		})

		r.Route("/gear", func(r chi.Router) {
			r.Get("/", hd.handleGearSearch)
			r.Get("/slots", hd.handleGearSlots)
			r.Get("/{id}", hd.handleGearPiece)
		})

		r.Route("/gems", func(r chi.Router) {
			r.Get("/", hd.handleGemSearch)
			r.Get("/gear", hd.handleGemGear)
			r.Post("/request", hd.handleGemRequest)
		})

		r.Get("/logs/{code}/consumables", hd.handleConsumables)
		r.Get("/logs/{code}/consumables.xlsx", hd.handleConsumablesXLSX)

		r.Get("/characters", hd.handleCharacters)
		r.Post("/characters", hd.handleRegisterCharacter)

		r.Route("/rosters", func(r chi.Router) {
			r.Get("/", hd.handleRosters)
			r.Post("/", hd.handleCreateRoster)
			r.Get("/layout", hd.handleLayout)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", hd.handleRoster)
				r.Post("/drop", hd.handleDrop)
				r.Post("/next", hd.handleNext)
				r.Post("/back", hd.handleBack)
				r.Post("/reset", hd.handleReset)
				r.Post("/size", hd.handleResize)
				r.Get("/stats", hd.handleStats)
				r.Get("/stats.xlsx", hd.handleStatsXLSX)
			})
		})

		r.Get("/money/format", hd.handleMoneyFormat)
	})

	return r
}

// RequestSizeLimitMiddleware caps request bodies at maxBytes.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Probes and scrapes would drown everything else.
			if strings.HasPrefix(r.URL.Path, "/healthz") ||
				strings.HasPrefix(r.URL.Path, "/readyz") ||
				strings.HasPrefix(r.URL.Path, "/metrics") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			logger.InfoContext(r.Context(), "request completed",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
