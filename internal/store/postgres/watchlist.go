package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jensholdgaard/wowtools/internal/clock"
	"github.com/jensholdgaard/wowtools/internal/store"
)

// WatchlistRepo implements store.WatchlistRepository with sqlx.
type WatchlistRepo struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewWatchlistRepo returns a new WatchlistRepo.
func NewWatchlistRepo(db *sqlx.DB, clk clock.Clock) *WatchlistRepo {
	return &WatchlistRepo{db: db, clock: clk}
}

func (r *WatchlistRepo) Add(ctx context.Context, owner string, itemID int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO watchlist (owner, item_id, added_at) VALUES ($1, $2, $3)
		 ON CONFLICT (owner, item_id) DO NOTHING`,
		owner, itemID, r.clock.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("adding item %d to %q watchlist: %w", itemID, owner, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("adding item %d to %q watchlist: %w", itemID, owner, err)
	}
	return n > 0, nil
}

func (r *WatchlistRepo) Remove(ctx context.Context, owner string, itemID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE owner = $1 AND item_id = $2`, owner, itemID)
	if err != nil {
		return fmt.Errorf("removing item %d from %q watchlist: %w", itemID, owner, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("item %d on %q watchlist: %w", itemID, owner, store.ErrNotFound)
	}
	return nil
}

func (r *WatchlistRepo) List(ctx context.Context, owner string) ([]store.WatchEntry, error) {
	var entries []store.WatchEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT owner, item_id, added_at FROM watchlist
		 WHERE owner = $1 ORDER BY added_at ASC, item_id ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("listing %q watchlist: %w", owner, err)
	}
	return entries, nil
}

func (r *WatchlistRepo) ItemIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := r.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT item_id FROM watchlist ORDER BY item_id`); err != nil {
		return nil, fmt.Errorf("listing watched item ids: %w", err)
	}
	return ids, nil
}
