package roster_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jensholdgaard/wowtools/internal/clock"
	"github.com/jensholdgaard/wowtools/internal/event"
	"github.com/jensholdgaard/wowtools/internal/roster"
	"github.com/jensholdgaard/wowtools/internal/store"
	"github.com/jensholdgaard/wowtools/internal/store/memstore"
)

// failingEventStore rejects appends while fail is set.
type failingEventStore struct {
	event.Store
	fail bool
}

func (s *failingEventStore) Append(ctx context.Context, events ...event.Event) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.Store.Append(ctx, events...)
}

func newTestManager(t *testing.T) (*roster.Manager, *store.Repositories) {
	t.Helper()
	repos := memstore.New(clock.Mock{T: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	m := roster.NewManager(repos.Events, repos.Characters, testLayout, roster.SizeTen, slog.Default(), noop.NewTracerProvider())
	if _, err := m.SeedGuild(context.Background()); err != nil {
		t.Fatalf("SeedGuild() error = %v", err)
	}
	return m, repos
}

func TestManager_SeedGuild(t *testing.T) {
	ctx := context.Background()
	m, repos := newTestManager(t)

	chars, err := m.Characters(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(chars) != 3 {
		t.Fatalf("got %d characters, want 3", len(chars))
	}

	n, err := m.SeedGuild(ctx)
	if err != nil || n != 0 {
		t.Errorf("second SeedGuild() = %d, %v, want 0, nil", n, err)
	}

	registered, err := repos.Events.LoadByType(ctx, event.CharacterRegistered)
	if err != nil {
		t.Fatal(err)
	}
	if len(registered) != 3 {
		t.Errorf("got %d registered events, want 3", len(registered))
	}
}

func TestManager_RegisterCharacter(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	if err := m.RegisterCharacter(ctx, roster.Character{Name: "  "}); err == nil {
		t.Error("blank name should be rejected")
	}
	err := m.RegisterCharacter(ctx, roster.Character{Name: "Sumire", Class: "paladin"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate error = %v, want ErrDuplicate", err)
	}
	if err := m.RegisterCharacter(ctx, roster.Character{Name: "Absentia", Race: "human", Gender: "male", Class: "mage", Spec: "fire"}); err != nil {
		t.Fatal(err)
	}
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m, repos := newTestManager(t)

	plan, err := m.Create(ctx, "Karazhan", "tester", 0)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if plan.Size != roster.SizeTen {
		t.Errorf("size = %d, want default 10", plan.Size)
	}

	if _, err := m.Create(ctx, "Bad", "tester", 40); !errors.Is(err, roster.ErrInvalidSize) {
		t.Errorf("Create(40) error = %v, want ErrInvalidSize", err)
	}

	snap, hits, err := m.Drop(ctx, plan.ID, "sumire", raidPt)
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if len(hits) != 1 || hits[0] != roster.Raid {
		t.Errorf("hits = %v, want [raid]", hits)
	}
	if len(snap.Members) != 1 || snap.Members[0].Class != "paladin" {
		t.Errorf("members = %+v, want the stored paladin", snap.Members)
	}

	if _, _, err := m.Drop(ctx, plan.ID, "Nobody", raidPt); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown character error = %v, want store.ErrNotFound", err)
	}
	if _, _, err := m.Drop(ctx, "missing", "Sumire", raidPt); !errors.Is(err, roster.ErrNotFound) {
		t.Errorf("unknown plan error = %v, want roster.ErrNotFound", err)
	}

	if _, _, err := m.Drop(ctx, plan.ID, "Iskii", raidPt); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Next(ctx, plan.ID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.Drop(ctx, plan.ID, "Iskii", healerPt); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Resize(ctx, plan.ID, roster.SizeTwentyFive); err != nil {
		t.Fatal(err)
	}
	snap, err = m.Back(ctx, plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Phase != roster.PhaseSelect || snap.PhaseName != "select" {
		t.Errorf("phase = %d (%s), want select", snap.Phase, snap.PhaseName)
	}

	stats, err := m.Statistics(ctx, plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Members != 2 || stats.Healers != 1 || stats.Size != 25 {
		t.Errorf("stats = %+v", stats)
	}

	snap, err = m.Reset(ctx, plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Members) != 0 || len(snap.Healers) != 1 {
		t.Errorf("after select reset members = %d healers = %d, want 0 and 1", len(snap.Members), len(snap.Healers))
	}

	stored, err := repos.Events.Load(ctx, plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != snap.Version {
		t.Errorf("stored %d events, plan version %d", len(stored), snap.Version)
	}
}

func TestManager_RecoverPlans(t *testing.T) {
	ctx := context.Background()
	m, repos := newTestManager(t)

	a, _ := m.Create(ctx, "Gruul", "tester", roster.SizeTwentyFive)
	b, _ := m.Create(ctx, "Karazhan", "tester", roster.SizeTen)
	_, _, _ = m.Drop(ctx, a.ID, "Takforkaffe", raidPt)
	_, _ = m.Next(ctx, b.ID)

	fresh := roster.NewManager(repos.Events, repos.Characters, testLayout, roster.SizeTen, slog.Default(), noop.NewTracerProvider())
	n, err := fresh.RecoverPlans(ctx)
	if err != nil {
		t.Fatalf("RecoverPlans() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("recovered %d plans, want 2", n)
	}

	list := fresh.List()
	if len(list) != 2 || list[0].Name != "Gruul" || list[1].Name != "Karazhan" {
		t.Fatalf("List() = %+v, want Gruul then Karazhan", list)
	}
	if len(list[0].Members) != 1 || list[0].Size != 25 {
		t.Errorf("Gruul = %+v", list[0])
	}
	if list[1].Phase != roster.PhaseRoles {
		t.Errorf("Karazhan phase = %s, want roles", list[1].Phase)
	}

	got, err := fresh.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 2 {
		t.Errorf("version = %d, want 2", got.Version)
	}
}

func TestManager_PersistFailure(t *testing.T) {
	ctx := context.Background()
	repos := memstore.New(clock.Real{})
	events := &failingEventStore{Store: repos.Events, fail: true}
	m := roster.NewManager(events, repos.Characters, testLayout, roster.SizeTen, slog.Default(), noop.NewTracerProvider())

	if _, err := m.Create(ctx, "Karazhan", "tester", 0); err == nil {
		t.Fatal("Create() should fail when events cannot be stored")
	}
	if len(m.List()) != 0 {
		t.Error("a plan whose creation was not stored must not be live")
	}
}

func TestManager_FailedDropIsRolledBack(t *testing.T) {
	ctx := context.Background()
	repos := memstore.New(clock.Real{})
	events := &failingEventStore{Store: repos.Events}
	m := roster.NewManager(events, repos.Characters, testLayout, roster.SizeTen, slog.Default(), noop.NewTracerProvider())
	if _, err := m.SeedGuild(ctx); err != nil {
		t.Fatal(err)
	}

	plan, err := m.Create(ctx, "Karazhan", "tester", 0)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	events.fail = true
	if _, _, err := m.Drop(ctx, plan.ID, "Sumire", raidPt); err == nil {
		t.Fatal("Drop() should fail when events cannot be stored")
	}
	if _, err := m.Next(ctx, plan.ID); err == nil {
		t.Fatal("Next() should fail when events cannot be stored")
	}

	live, err := m.Get(ctx, plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(live.Members) != 0 || live.Phase != roster.PhaseSelect || live.Version != 1 {
		t.Errorf("after failed writes live = %+v, want the created plan unchanged", live)
	}

	events.fail = false
	live, _, err = m.Drop(ctx, plan.ID, "Iskii", raidPt)
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}

	replayed, err := m.ReplayPlan(ctx, plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	stored := replayed.Snapshot()
	if live.Version != 2 || stored.Version != 2 {
		t.Errorf("versions live=%d stored=%d, want 2", live.Version, stored.Version)
	}
	if len(live.Members) != 1 || live.Members[0].Name != "Iskii" {
		t.Errorf("live members = %+v, want [Iskii]", live.Members)
	}
	if len(stored.Members) != 1 || stored.Members[0].Name != "Iskii" {
		t.Errorf("stored members = %+v, want [Iskii]", stored.Members)
	}
}

func TestManager_GetReplaysEvictedPlan(t *testing.T) {
	ctx := context.Background()
	m, repos := newTestManager(t)

	plan, err := m.Create(ctx, "Gruul", "tester", roster.SizeTwentyFive)
	if err != nil {
		t.Fatal(err)
	}

	other := roster.NewManager(repos.Events, repos.Characters, testLayout, roster.SizeTen, slog.Default(), noop.NewTracerProvider())
	got, err := other.Get(ctx, plan.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Gruul" || got.Size != 25 {
		t.Errorf("Get() = %+v, want the stored Gruul plan", got)
	}
	if _, err := other.Get(ctx, "missing"); !errors.Is(err, roster.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}
