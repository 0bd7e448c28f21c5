package market

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/wowtools/internal/clock"
	"github.com/jensholdgaard/wowtools/internal/config"
	"github.com/jensholdgaard/wowtools/internal/event"
	"github.com/jensholdgaard/wowtools/internal/metrics"
	"github.com/jensholdgaard/wowtools/internal/store"
)

// Refresher periodically re-fetches every watched item so the cache stays
// warm, and records the newest price of each as an event. Only one
// replica should run it.
type Refresher struct {
	api       PriceAPI
	watchlist store.WatchlistRepository
	events    event.Store
	servers   []string
	interval  time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer
	clock     clock.Clock

	mu       sync.Mutex
	versions map[string]int
}

// NewRefresher creates a Refresher for the configured servers.
func NewRefresher(api PriceAPI, watchlist store.WatchlistRepository, events event.Store, cfg config.MarketConfig, logger *slog.Logger, tp trace.TracerProvider, clk clock.Clock) *Refresher {
	return &Refresher{
		api:       api,
		watchlist: watchlist,
		events:    events,
		servers:   []string{cfg.PrimaryServer.Slug, cfg.SecondaryServer.Slug},
		interval:  cfg.RefreshInterval,
		logger:    logger,
		tracer:    tp.Tracer("github.com/jensholdgaard/wowtools/internal/market"),
		clock:     clk,
		versions:  make(map[string]int),
	}
}

// Run refreshes immediately and then every interval until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	r.logger.InfoContext(ctx, "price refresher started", slog.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if n, err := r.RefreshOnce(ctx); err != nil {
			r.logger.ErrorContext(ctx, "refreshing watched prices", slog.Any("error", err))
		} else {
			r.logger.DebugContext(ctx, "watched prices refreshed", slog.Int("observed", n))
		}

		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "price refresher stopped")
			return
		case <-ticker.C:
		}
	}
}

func priceAggregate(server string, itemID int) string {
	return fmt.Sprintf("price-%s-%d", server, itemID)
}

// RefreshOnce re-fetches every watched item on every server and returns
// the number of prices recorded. A failing item is logged and skipped.
func (r *Refresher) RefreshOnce(ctx context.Context) (int, error) {
	ctx, span := r.tracer.Start(ctx, "Refresher.RefreshOnce")
	defer span.End()

	ids, err := r.watchlist.ItemIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing watched items: %w", err)
	}
	span.SetAttributes(attribute.Int("items", len(ids)))

	observed := 0
	for _, id := range ids {
		for _, server := range r.servers {
			if ctx.Err() != nil {
				return observed, ctx.Err()
			}
			recorded, err := r.refresh(ctx, server, id)
			if err != nil {
				r.logger.WarnContext(ctx, "refreshing item failed",
					slog.String("server", server),
					slog.Int("item_id", id),
					slog.Any("error", err),
				)
				continue
			}
			if recorded {
				observed++
			}
		}
	}
	return observed, nil
}

func (r *Refresher) refresh(ctx context.Context, server string, itemID int) (bool, error) {
	r.api.Invalidate(server, itemID)
	if _, err := r.api.Item(ctx, server, itemID); err != nil {
		return false, err
	}
	h, err := r.api.Prices(ctx, server, itemID)
	if err != nil {
		return false, err
	}

	p, ok := h.Last()
	if !ok {
		return false, nil
	}
	scanned := p.ScannedAt
	if scanned.IsZero() {
		scanned = r.clock.Now()
	}

	aggID := priceAggregate(server, itemID)
	version, err := r.nextVersion(ctx, aggID)
	if err != nil {
		return false, err
	}
	evt, err := event.New(aggID, event.MarketPriceObserved, version, event.PriceObservedData{
		Server:      server,
		ItemID:      itemID,
		MinBuyout:   p.MinBuyout,
		MarketValue: p.MarketValue,
		Quantity:    p.Quantity,
		ScannedAt:   scanned,
	})
	if err != nil {
		return false, err
	}
	if err := r.events.Append(ctx, evt); err != nil {
		r.forget(aggID)
		return false, fmt.Errorf("persisting price observation: %w", err)
	}
	metrics.PricesObservedTotal.Inc()
	return true, nil
}

// nextVersion hands out the next event version of an aggregate, loading
// the current one from the store the first time.
func (r *Refresher) nextVersion(ctx context.Context, aggID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.versions[aggID]
	if !ok {
		existing, err := r.events.Load(ctx, aggID)
		if err != nil {
			return 0, fmt.Errorf("loading price events: %w", err)
		}
		if n := len(existing); n > 0 {
			v = existing[n-1].Version
		}
	}
	v++
	r.versions[aggID] = v
	return v, nil
}

func (r *Refresher) forget(aggID string) {
	r.mu.Lock()
	delete(r.versions, aggID)
	r.mu.Unlock()
}
