package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/wowtools/internal/event"
	"github.com/jensholdgaard/wowtools/internal/metrics"
	"github.com/jensholdgaard/wowtools/internal/store"
	"github.com/jensholdgaard/wowtools/internal/telemetry"
)

// Manager keeps live plans in memory and persists their events.
type Manager struct {
	mu    sync.RWMutex
	plans map[string]*Plan

	events      event.Store
	characters  store.CharacterRepository
	layout      Layout
	defaultSize int
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewManager creates a roster Manager. Plans created without a size get
// defaultSize.
func NewManager(events event.Store, characters store.CharacterRepository, layout Layout, defaultSize int, logger *slog.Logger, tp trace.TracerProvider) *Manager {
	return &Manager{
		plans:       make(map[string]*Plan),
		events:      events,
		characters:  characters,
		layout:      layout,
		defaultSize: defaultSize,
		logger:      logger,
		tracer:      tp.Tracer("github.com/jensholdgaard/wowtools/internal/roster"),
	}
}

// Layout returns the layout drop points are resolved against.
func (m *Manager) Layout() Layout { return m.layout }

// Create starts a new plan.
func (m *Manager) Create(ctx context.Context, name, createdBy string, size int) (Snapshot, error) {
	ctx, span := m.tracer.Start(ctx, "Manager.Create",
		trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("created_by", createdBy),
		),
	)
	defer span.End()

	if size == 0 {
		size = m.defaultSize
	}
	p, err := New(uuid.NewString(), name, createdBy, size, m.layout)
	if err != nil {
		return Snapshot{}, err
	}
	if err := m.events.Append(ctx, p.PendingEvents()...); err != nil {
		return Snapshot{}, fmt.Errorf("persisting roster created event: %w", err)
	}

	m.mu.Lock()
	m.plans[p.ID] = p
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "roster created",
		slog.String("roster_id", p.ID),
		slog.String("name", name),
		slog.Int("size", size),
	)
	return p.Snapshot(), nil
}

// plan returns the live plan, replaying it from the store when it is not
// in memory.
func (m *Manager) plan(ctx context.Context, id string) (*Plan, error) {
	m.mu.RLock()
	p, ok := m.plans[id]
	m.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := m.ReplayPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if live, ok := m.plans[id]; ok {
		return live, nil
	}
	m.plans[id] = p
	return p, nil
}

// Get returns a plan's state.
func (m *Manager) Get(ctx context.Context, id string) (Snapshot, error) {
	p, err := m.plan(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return p.Snapshot(), nil
}

// List returns every live plan ordered by name.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	out := make([]Snapshot, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, p.Snapshot())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Drop moves a guild member to the regions under pt.
func (m *Manager) Drop(ctx context.Context, id, characterName string, pt Point) (Snapshot, []Region, error) {
	ctx, span := m.tracer.Start(ctx, "Manager.Drop",
		trace.WithAttributes(
			attribute.String("roster_id", id),
			attribute.String("character", characterName),
		),
	)
	defer span.End()

	p, err := m.plan(ctx, id)
	if err != nil {
		return Snapshot{}, nil, err
	}
	stored, err := m.characters.GetByName(ctx, characterName)
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("looking up character %q: %w", characterName, err)
	}

	hits, err := p.Drop(ctx, FromStore(*stored), pt)
	if err != nil {
		return Snapshot{}, nil, err
	}
	for _, r := range hits {
		metrics.RosterDropsTotal.WithLabelValues(string(r)).Inc()
	}
	if err := m.persist(ctx, p); err != nil {
		return Snapshot{}, nil, err
	}
	return p.Snapshot(), hits, nil
}

// Next advances a plan to its next phase.
func (m *Manager) Next(ctx context.Context, id string) (Snapshot, error) {
	return m.update(ctx, "Manager.Next", id, (*Plan).Next)
}

// Back returns a plan to its previous phase.
func (m *Manager) Back(ctx context.Context, id string) (Snapshot, error) {
	return m.update(ctx, "Manager.Back", id, (*Plan).Back)
}

// Reset clears what the plan's current phase edits.
func (m *Manager) Reset(ctx context.Context, id string) (Snapshot, error) {
	return m.update(ctx, "Manager.Reset", id, func(p *Plan) error {
		_, err := p.Reset()
		return err
	})
}

// Resize sets the raid size.
func (m *Manager) Resize(ctx context.Context, id string, size int) (Snapshot, error) {
	return m.update(ctx, "Manager.Resize", id, func(p *Plan) error { return p.SetSize(size) })
}

func (m *Manager) update(ctx context.Context, op, id string, fn func(*Plan) error) (Snapshot, error) {
	ctx, span := m.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("roster_id", id)))
	defer span.End()

	p, err := m.plan(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := fn(p); err != nil {
		return Snapshot{}, err
	}
	if err := m.persist(ctx, p); err != nil {
		return Snapshot{}, err
	}
	return p.Snapshot(), nil
}

// Statistics returns the member table of a plan.
func (m *Manager) Statistics(ctx context.Context, id string) (Statistics, error) {
	p, err := m.plan(ctx, id)
	if err != nil {
		return Statistics{}, err
	}
	return p.Statistics(), nil
}

func (m *Manager) persist(ctx context.Context, p *Plan) error {
	pending := p.PendingEvents()
	if len(pending) == 0 {
		return nil
	}
	if err := m.events.Append(ctx, pending...); err != nil {
		telemetry.LogWithTrace(ctx, m.logger).ErrorContext(ctx, "failed to persist roster events",
			slog.String("roster_id", p.ID),
			slog.Any("error", err),
		)
		m.restore(ctx, p.ID)
		return fmt.Errorf("persisting roster events: %w", err)
	}
	return nil
}

// restore discards unpersisted changes to a plan by replaying it from the
// store. If the store cannot be read either, the plan is evicted and
// replayed on its next lookup.
func (m *Manager) restore(ctx context.Context, id string) {
	p, err := m.ReplayPlan(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.logger.WarnContext(ctx, "evicting roster after failed restore",
			slog.String("roster_id", id),
			slog.Any("error", err),
		)
		delete(m.plans, id)
		return
	}
	m.plans[id] = p
}

// ReplayPlan reconstructs a plan from stored events.
func (m *Manager) ReplayPlan(ctx context.Context, id string) (*Plan, error) {
	events, err := m.events.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("roster %s: %w", id, ErrNotFound)
	}
	return Replay(events, m.layout)
}

// RecoverPlans replays every plan from the event store into memory.
func (m *Manager) RecoverPlans(ctx context.Context) (int, error) {
	ctx, span := m.tracer.Start(ctx, "Manager.RecoverPlans")
	defer span.End()

	created, err := m.events.LoadByType(ctx, event.RosterCreated)
	if err != nil {
		return 0, fmt.Errorf("loading roster created events: %w", err)
	}

	recovered := 0
	for _, e := range created {
		p, err := m.ReplayPlan(ctx, e.AggregateID)
		if err != nil {
			m.logger.WarnContext(ctx, "failed to replay roster during recovery",
				slog.String("roster_id", e.AggregateID),
				slog.Any("error", err),
			)
			continue
		}
		m.mu.Lock()
		m.plans[p.ID] = p
		m.mu.Unlock()
		recovered++
	}

	m.logger.InfoContext(ctx, "roster recovery complete", slog.Int("recovered", recovered))
	return recovered, nil
}

// Characters lists the guild members.
func (m *Manager) Characters(ctx context.Context) ([]Character, error) {
	stored, err := m.characters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	out := make([]Character, len(stored))
	for i, c := range stored {
		out[i] = FromStore(c)
	}
	return out, nil
}

// RegisterCharacter adds a guild member.
func (m *Manager) RegisterCharacter(ctx context.Context, c Character) error {
	ctx, span := m.tracer.Start(ctx, "Manager.RegisterCharacter",
		trace.WithAttributes(attribute.String("character", c.Name)),
	)
	defer span.End()

	if strings.TrimSpace(c.Name) == "" {
		return errors.New("character name is required")
	}
	if err := m.characters.Create(ctx, c.ToStore()); err != nil {
		return fmt.Errorf("registering character %q: %w", c.Name, err)
	}

	evt, err := event.New("character-"+strings.ToLower(c.Name), event.CharacterRegistered, 1,
		event.CharacterRegisteredData{Name: c.Name, Class: c.Class, Spec: c.Spec})
	if err == nil {
		err = m.events.Append(ctx, evt)
	}
	if err != nil {
		m.logger.WarnContext(ctx, "failed to persist character registered event", slog.Any("error", err))
	}

	m.logger.InfoContext(ctx, "character registered",
		slog.String("name", c.Name),
		slog.String("class", c.Class),
	)
	return nil
}

// SeedGuild registers the default guild when no character exists yet.
func (m *Manager) SeedGuild(ctx context.Context) (int, error) {
	existing, err := m.characters.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing characters: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	seeded := 0
	for _, c := range DefaultGuild() {
		if err := m.RegisterCharacter(ctx, c); err != nil && !errors.Is(err, store.ErrDuplicate) {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}
