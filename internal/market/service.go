package market

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jensholdgaard/wowtools/internal/config"
	"github.com/jensholdgaard/wowtools/internal/event"
	"github.com/jensholdgaard/wowtools/internal/store"
)

// PriceAPI is the subset of the auction API the service needs.
type PriceAPI interface {
	Item(ctx context.Context, server string, itemID int) (GameItem, error)
	Prices(ctx context.Context, server string, itemID int) (PriceHistory, error)
	Search(ctx context.Context, query string) ([]SearchItem, error)
	Invalidate(server string, itemID int)
}

// Service serves listings, server comparisons, debounced search and the
// per-user watchlist.
type Service struct {
	api       PriceAPI
	watchlist store.WatchlistRepository
	events    event.Store
	search    *Debouncer[[]SearchItem]
	cfg       config.MarketConfig
	logger    *slog.Logger
	tracer    trace.Tracer

	// serializes watchlist event versions
	watchMu sync.Mutex
}

// NewService creates a market Service.
func NewService(api PriceAPI, watchlist store.WatchlistRepository, events event.Store, cfg config.MarketConfig, logger *slog.Logger, tp trace.TracerProvider) *Service {
	return &Service{
		api:       api,
		watchlist: watchlist,
		events:    events,
		search:    NewDebouncer[[]SearchItem](cfg.SearchWait, cfg.SearchMaxWait),
		cfg:       cfg,
		logger:    logger,
		tracer:    tp.Tracer("github.com/jensholdgaard/wowtools/internal/market"),
	}
}

// Servers returns the primary and secondary server.
func (s *Service) Servers() (primary, secondary config.ServerRef) {
	return s.cfg.PrimaryServer, s.cfg.SecondaryServer
}

// Listing fetches the item record and price history concurrently and
// merges them.
func (s *Service) Listing(ctx context.Context, server string, itemID int) (Listing, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Listing",
		trace.WithAttributes(
			attribute.String("server", server),
			attribute.Int("item_id", itemID),
		),
	)
	defer span.End()

	var (
		item    GameItem
		history PriceHistory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		item, err = s.api.Item(gctx, server, itemID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.api.Prices(gctx, server, itemID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Listing{}, fmt.Errorf("fetching item %d on %s: %w", itemID, server, err)
	}
	return NewListing(item, history), nil
}

// Compare fetches itemID from both servers and builds the comparison.
func (s *Service) Compare(ctx context.Context, itemID int) (*Comparison, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Compare",
		trace.WithAttributes(attribute.Int("item_id", itemID)),
	)
	defer span.End()

	var primary, secondary Listing
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		primary, err = s.Listing(gctx, s.cfg.PrimaryServer.Slug, itemID)
		return err
	})
	g.Go(func() error {
		var err error
		secondary, err = s.Listing(gctx, s.cfg.SecondaryServer.Slug, itemID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "comparing item failed",
			slog.Int("item_id", itemID),
			slog.Any("error", err),
		)
		return nil, err
	}

	return Compare(
		Side{Label: s.cfg.PrimaryServer.Label, Listing: primary},
		Side{Label: s.cfg.SecondaryServer.Label, Listing: secondary},
	), nil
}

// Search returns suggestions for query. Calls with the same session key
// are debounced so a user typing only reaches the API once per burst.
func (s *Service) Search(ctx context.Context, session, query string) ([]SearchItem, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < s.cfg.MinQueryLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrQueryTooShort, s.cfg.MinQueryLength)
	}

	ctx, span := s.tracer.Start(ctx, "Service.Search",
		trace.WithAttributes(
			attribute.String("session", session),
			attribute.String("query", query),
		),
	)
	defer span.End()

	return s.search.Do(ctx, session, func(ctx context.Context) ([]SearchItem, error) {
		return s.api.Search(ctx, query)
	})
}

func watchlistAggregate(owner string) string { return "watchlist-" + owner }

// Watch adds itemID to owner's watchlist after checking the item exists
// on the primary server.
func (s *Service) Watch(ctx context.Context, owner string, itemID int) error {
	ctx, span := s.tracer.Start(ctx, "Service.Watch",
		trace.WithAttributes(
			attribute.String("owner", owner),
			attribute.Int("item_id", itemID),
		),
	)
	defer span.End()

	if _, err := s.api.Item(ctx, s.cfg.PrimaryServer.Slug, itemID); err != nil {
		return fmt.Errorf("looking up item %d: %w", itemID, err)
	}
	added, err := s.watchlist.Add(ctx, owner, itemID)
	if err != nil {
		return fmt.Errorf("adding item %d to watchlist: %w", itemID, err)
	}
	if !added {
		return nil
	}
	s.recordWatchEvent(ctx, event.WatchlistItemAdded, owner, itemID)

	s.logger.InfoContext(ctx, "item watched",
		slog.String("owner", owner),
		slog.Int("item_id", itemID),
	)
	return nil
}

// Unwatch removes itemID from owner's watchlist.
func (s *Service) Unwatch(ctx context.Context, owner string, itemID int) error {
	ctx, span := s.tracer.Start(ctx, "Service.Unwatch",
		trace.WithAttributes(
			attribute.String("owner", owner),
			attribute.Int("item_id", itemID),
		),
	)
	defer span.End()

	if err := s.watchlist.Remove(ctx, owner, itemID); err != nil {
		return fmt.Errorf("removing item %d from watchlist: %w", itemID, err)
	}
	s.recordWatchEvent(ctx, event.WatchlistItemRemoved, owner, itemID)
	return nil
}

// Watchlist returns owner's entries in the order they were added.
func (s *Service) Watchlist(ctx context.Context, owner string) ([]store.WatchEntry, error) {
	entries, err := s.watchlist.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing watchlist: %w", err)
	}
	return entries, nil
}

// RestoreWatchlist fetches the primary-server listing of every watched
// item. Items that fail are logged and skipped.
func (s *Service) RestoreWatchlist(ctx context.Context, owner string) ([]Listing, error) {
	ctx, span := s.tracer.Start(ctx, "Service.RestoreWatchlist",
		trace.WithAttributes(attribute.String("owner", owner)),
	)
	defer span.End()

	entries, err := s.Watchlist(ctx, owner)
	if err != nil {
		return nil, err
	}

	listings := make([]Listing, 0, len(entries))
	for _, e := range entries {
		l, err := s.Listing(ctx, s.cfg.PrimaryServer.Slug, e.ItemID)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping watched item",
				slog.String("owner", owner),
				slog.Int("item_id", e.ItemID),
				slog.Any("error", err),
			)
			continue
		}
		listings = append(listings, l)
	}
	span.SetAttributes(attribute.Int("listings", len(listings)))
	return listings, nil
}

// recordWatchEvent appends a watchlist event. The watchlist table is the
// source of truth, so failures are only logged.
func (s *Service) recordWatchEvent(ctx context.Context, t event.Type, owner string, itemID int) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	aggID := watchlistAggregate(owner)
	existing, err := s.events.Load(ctx, aggID)
	if err != nil {
		s.logger.ErrorContext(ctx, "loading watchlist events", slog.Any("error", err))
		return
	}
	evt, err := event.New(aggID, t, len(existing)+1, event.WatchlistChangeData{Owner: owner, ItemID: itemID})
	if err == nil {
		err = s.events.Append(ctx, evt)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "persisting watchlist event",
			slog.String("type", string(t)),
			slog.Any("error", err),
		)
	}
}
