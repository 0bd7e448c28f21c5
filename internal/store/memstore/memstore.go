// Package memstore provides a store.Driver that keeps everything in process
// memory. It backs local runs without Postgres and the service-level tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jensholdgaard/wowtools/internal/clock"
	"github.com/jensholdgaard/wowtools/internal/config"
	"github.com/jensholdgaard/wowtools/internal/event"
	"github.com/jensholdgaard/wowtools/internal/store"
)

func init() {
	store.Register("memory", openMemory)
}

func openMemory(_ context.Context, _ config.DatabaseConfig, clk clock.Clock) (*store.Repositories, error) {
	return New(clk), nil
}

// New returns Repositories backed by fresh in-memory maps.
func New(clk clock.Clock) *store.Repositories {
	return &store.Repositories{
		Characters: NewCharacterRepo(clk),
		Watchlist:  NewWatchlistRepo(clk),
		Events:     NewEventStore(clk),
		Closer:     store.CloserFunc(func() error { return nil }),
		Ping:       func(context.Context) error { return nil },
	}
}

// CharacterRepo implements store.CharacterRepository in memory.
type CharacterRepo struct {
	mu     sync.RWMutex
	byName map[string]store.Character
	clock  clock.Clock
}

// NewCharacterRepo returns an empty CharacterRepo.
func NewCharacterRepo(clk clock.Clock) *CharacterRepo {
	return &CharacterRepo{byName: make(map[string]store.Character), clock: clk}
}

func key(name string) string { return strings.ToLower(name) }

func (r *CharacterRepo) Create(_ context.Context, c *store.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[key(c.Name)]; ok {
		return fmt.Errorf("character %q: %w", c.Name, store.ErrDuplicate)
	}
	c.ID = uuid.NewString()
	c.CreatedAt = r.clock.Now()
	r.byName[key(c.Name)] = *c
	return nil
}

func (r *CharacterRepo) GetByName(_ context.Context, name string) (*store.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[key(name)]
	if !ok {
		return nil, fmt.Errorf("character %q: %w", name, store.ErrNotFound)
	}
	return &c, nil
}

func (r *CharacterRepo) List(_ context.Context) ([]store.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]store.Character, 0, len(r.byName))
	for _, c := range r.byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *CharacterRepo) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[key(name)]; !ok {
		return fmt.Errorf("character %q: %w", name, store.ErrNotFound)
	}
	delete(r.byName, key(name))
	return nil
}

// WatchlistRepo implements store.WatchlistRepository in memory.
type WatchlistRepo struct {
	mu      sync.RWMutex
	byOwner map[string][]store.WatchEntry
	clock   clock.Clock
}

// NewWatchlistRepo returns an empty WatchlistRepo.
func NewWatchlistRepo(clk clock.Clock) *WatchlistRepo {
	return &WatchlistRepo{byOwner: make(map[string][]store.WatchEntry), clock: clk}
}

// Add is idempotent; re-adding an item keeps its original position.
func (r *WatchlistRepo) Add(_ context.Context, owner string, itemID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byOwner[owner] {
		if e.ItemID == itemID {
			return false, nil
		}
	}
	r.byOwner[owner] = append(r.byOwner[owner], store.WatchEntry{
		Owner:   owner,
		ItemID:  itemID,
		AddedAt: r.clock.Now(),
	})
	return true, nil
}

func (r *WatchlistRepo) Remove(_ context.Context, owner string, itemID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.byOwner[owner]
	for i, e := range entries {
		if e.ItemID == itemID {
			r.byOwner[owner] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item %d on %q watchlist: %w", itemID, owner, store.ErrNotFound)
}

func (r *WatchlistRepo) List(_ context.Context, owner string) ([]store.WatchEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]store.WatchEntry(nil), r.byOwner[owner]...), nil
}

func (r *WatchlistRepo) ItemIDs(_ context.Context) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[int]struct{})
	var ids []int
	for _, entries := range r.byOwner {
		for _, e := range entries {
			if _, ok := seen[e.ItemID]; !ok {
				seen[e.ItemID] = struct{}{}
				ids = append(ids, e.ItemID)
			}
		}
	}
	sort.Ints(ids)
	return ids, nil
}

// EventStore implements event.Store in memory. Like the Postgres schema it
// rejects a second event with the same aggregate id and version.
type EventStore struct {
	mu     sync.RWMutex
	events []event.Event
	clock  clock.Clock
}

// NewEventStore returns an empty EventStore.
func NewEventStore(clk clock.Clock) *EventStore {
	return &EventStore{clock: clk}
}

func (s *EventStore) Append(_ context.Context, events ...event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type av struct {
		agg string
		ver int
	}
	taken := make(map[av]struct{}, len(s.events)+len(events))
	for _, e := range s.events {
		taken[av{e.AggregateID, e.Version}] = struct{}{}
	}

	staged := make([]event.Event, 0, len(events))
	for _, e := range events {
		k := av{e.AggregateID, e.Version}
		if _, ok := taken[k]; ok {
			return fmt.Errorf("inserting event (aggregate=%s, version=%d): %w", e.AggregateID, e.Version, store.ErrDuplicate)
		}
		taken[k] = struct{}{}
		e.ID = uuid.NewString()
		e.CreatedAt = s.clock.Now()
		staged = append(staged, e)
	}
	s.events = append(s.events, staged...)
	return nil
}

func (s *EventStore) Load(_ context.Context, aggregateID string) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []event.Event
	for _, e := range s.events {
		if e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (s *EventStore) LoadByType(_ context.Context, eventType event.Type) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []event.Event
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out, nil
}
