package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jensholdgaard/wowtools/internal/clock"
	"github.com/jensholdgaard/wowtools/internal/event"
	"github.com/jensholdgaard/wowtools/internal/store"
	"github.com/jensholdgaard/wowtools/internal/store/memstore"
)

var testClk = clock.Mock{T: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}

func TestCharacterRepo(t *testing.T) {
	ctx := context.Background()
	repo := memstore.NewCharacterRepo(testClk)

	c := &store.Character{Name: "Sumire", Race: "draenei", Gender: "female", Class: "paladin", Spec: "holy"}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if !c.CreatedAt.Equal(testClk.T) {
		t.Errorf("CreatedAt = %v, want %v", c.CreatedAt, testClk.T)
	}

	if err := repo.Create(ctx, &store.Character{Name: "sumire"}); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicate", err)
	}

	got, err := repo.GetByName(ctx, "SUMIRE")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.Class != "paladin" {
		t.Errorf("Class = %q, want paladin", got.Class)
	}

	if _, err := repo.GetByName(ctx, "Nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByName() missing error = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, "Sumire"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	list, _ := repo.List(ctx)
	if len(list) != 0 {
		t.Errorf("List() after delete = %v, want empty", list)
	}
	if err := repo.Delete(ctx, "Sumire"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func TestWatchlistRepo(t *testing.T) {
	ctx := context.Background()
	repo := memstore.NewWatchlistRepo(testClk)

	for _, tt := range []struct {
		id        int
		wantAdded bool
	}{{22861, true}, {13444, true}, {22861, false}} {
		added, err := repo.Add(ctx, "alice", tt.id)
		if err != nil {
			t.Fatalf("Add(%d) error = %v", tt.id, err)
		}
		if added != tt.wantAdded {
			t.Errorf("Add(%d) added = %v, want %v", tt.id, added, tt.wantAdded)
		}
	}
	_, _ = repo.Add(ctx, "bob", 13446)

	entries, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 || entries[0].ItemID != 22861 || entries[1].ItemID != 13444 {
		t.Errorf("List(alice) = %+v, want [22861 13444]", entries)
	}

	ids, _ := repo.ItemIDs(ctx)
	if len(ids) != 3 {
		t.Errorf("ItemIDs() = %v, want 3 distinct ids", ids)
	}

	if err := repo.Remove(ctx, "alice", 22861); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := repo.Remove(ctx, "alice", 22861); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Remove() twice error = %v, want ErrNotFound", err)
	}
	entries, _ = repo.List(ctx, "alice")
	if len(entries) != 1 || entries[0].ItemID != 13444 {
		t.Errorf("List(alice) after remove = %+v", entries)
	}
}

func TestEventStore(t *testing.T) {
	ctx := context.Background()
	es := memstore.NewEventStore(testClk)

	err := es.Append(ctx,
		event.Event{AggregateID: "r1", Type: event.RosterCreated, Data: []byte(`{}`), Version: 1},
		event.Event{AggregateID: "r1", Type: event.RosterResized, Data: []byte(`{"size":25}`), Version: 2},
		event.Event{AggregateID: "r2", Type: event.RosterCreated, Data: []byte(`{}`), Version: 1},
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	loaded, _ := es.Load(ctx, "r1")
	if len(loaded) != 2 || loaded[0].Version != 1 || loaded[1].Version != 2 {
		t.Fatalf("Load(r1) = %+v", loaded)
	}
	if loaded[0].ID == "" || !loaded[0].CreatedAt.Equal(testClk.T) {
		t.Errorf("Append() should stamp ID and CreatedAt, got %+v", loaded[0])
	}

	created, _ := es.LoadByType(ctx, event.RosterCreated)
	if len(created) != 2 {
		t.Errorf("LoadByType(created) = %d events, want 2", len(created))
	}

	err = es.Append(ctx,
		event.Event{AggregateID: "r1", Type: event.RosterReset, Data: []byte(`{}`), Version: 3},
		event.Event{AggregateID: "r1", Type: event.RosterReset, Data: []byte(`{}`), Version: 2},
	)
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("Append() conflicting version error = %v, want ErrDuplicate", err)
	}
	loaded, _ = es.Load(ctx, "r1")
	if len(loaded) != 2 {
		t.Errorf("a rejected batch must not be partially applied, got %d events", len(loaded))
	}
}
