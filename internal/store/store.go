package store

import (
	"context"
	"errors"
	"time"
)

// Errors returned by repository implementations.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Character is a guild member available to the raid planner.
type Character struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Race      string    `db:"race" json:"race"`
	Gender    string    `db:"gender" json:"gender"`
	Class     string    `db:"class" json:"class"`
	Spec      string    `db:"spec" json:"spec"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WatchEntry is an item id a user has viewed and wants restored later.
type WatchEntry struct {
	Owner   string    `db:"owner" json:"owner"`
	ItemID  int       `db:"item_id" json:"item_id"`
	AddedAt time.Time `db:"added_at" json:"added_at"`
}

// CharacterRepository defines guild member persistence operations.
type CharacterRepository interface {
	Create(ctx context.Context, c *Character) error
	GetByName(ctx context.Context, name string) (*Character, error)
	List(ctx context.Context) ([]Character, error)
	Delete(ctx context.Context, name string) error
}

// WatchlistRepository defines persistence of viewed item ids per owner.
// Entries are returned in the order they were first added.
type WatchlistRepository interface {
	// Add reports whether the entry was inserted; re-adding is a no-op.
	Add(ctx context.Context, owner string, itemID int) (bool, error)
	Remove(ctx context.Context, owner string, itemID int) error
	List(ctx context.Context, owner string) ([]WatchEntry, error)
	// ItemIDs returns every distinct watched item id across all owners.
	ItemIDs(ctx context.Context) ([]int, error)
}
