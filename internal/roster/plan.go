package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/wowtools/internal/event"
)

var tracer = otel.Tracer("github.com/jensholdgaard/wowtools/internal/roster")

// Errors returned by plan operations.
var (
	ErrNotFound    = errors.New("roster not found")
	ErrNoRegion    = errors.New("drop point is outside every region")
	ErrPhaseBounds = errors.New("no phase in that direction")
	ErrInvalidSize = errors.New("raid size must be 10 or 25")
)

// Phase is a planning step.
type Phase int

const (
	PhaseSelect Phase = iota // pick raid members
	PhaseRoles               // assign roles
	PhaseReview
)

func (p Phase) String() string {
	switch p {
	case PhaseSelect:
		return "select"
	case PhaseRoles:
		return "roles"
	case PhaseReview:
		return "review"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Raid sizes.
const (
	SizeTen        = 10
	SizeTwentyFive = 25
)

// ValidSize reports whether n is a raid size.
func ValidSize(n int) bool { return n == SizeTen || n == SizeTwentyFive }

// Plan is the aggregate root of one raid roster. It is safe for concurrent use.
type Plan struct {
	mu sync.RWMutex

	ID        string
	Name      string
	CreatedBy string
	Size      int
	Phase     Phase
	Members   []Character
	Tanks     []Character
	Healers   []Character
	DPS       []Character
	Flex      []Character
	Version   int

	// Layout resolves drop points. It is not persisted; dropped events
	// carry the regions that were hit.
	Layout Layout

	events []event.Event
}

// New creates a plan in the select phase and records a created event.
func New(id, name, createdBy string, size int, layout Layout) (*Plan, error) {
	if !ValidSize(size) {
		return nil, ErrInvalidSize
	}
	p := &Plan{ID: id, Name: name, CreatedBy: createdBy, Size: size, Layout: layout}
	if err := p.recordEvent(event.RosterCreated, event.RosterCreatedData{Name: name, CreatedBy: createdBy, Size: size}); err != nil {
		return nil, err
	}
	return p, nil
}

// Drop applies a character dropped at pt to every region it hit and
// returns those regions.
func (p *Plan) Drop(ctx context.Context, c Character, pt Point) ([]Region, error) {
	_, span := tracer.Start(ctx, "Plan.Drop",
		trace.WithAttributes(
			attribute.String("roster.id", p.ID),
			attribute.String("character", c.Name),
			attribute.Float64("x", pt.X),
			attribute.Float64("y", pt.Y),
		),
	)
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()

	hits := p.Layout.Hit(pt)
	if len(hits) == 0 {
		return nil, ErrNoRegion
	}
	p.apply(c, hits)

	names := make([]string, len(hits))
	for i, r := range hits {
		names[i] = string(r)
	}
	err := p.recordEvent(event.RosterCharacterDropped, event.CharacterDroppedData{
		Name: c.Name, Race: c.Race, Gender: c.Gender, Class: c.Class, Spec: c.Spec,
		X: pt.X, Y: pt.Y, Regions: names,
	})
	return hits, err
}

// apply updates the buckets for each region in order. The guild list
// removes from the raid; the raid appends; a role bucket appends and
// takes the character out of the other three.
func (p *Plan) apply(c Character, regions []Region) {
	for _, r := range regions {
		switch r {
		case Guild:
			p.Members = without(p.Members, c.Name)
		case Raid:
			p.Members = append(without(p.Members, c.Name), c)
		case Tank, Healer, DPS, Flex:
			for _, role := range RoleRegions {
				b := p.bucket(role)
				*b = without(*b, c.Name)
			}
			b := p.bucket(r)
			*b = append(*b, c)
		}
	}
}

func (p *Plan) bucket(r Region) *[]Character {
	switch r {
	case Tank:
		return &p.Tanks
	case Healer:
		return &p.Healers
	case DPS:
		return &p.DPS
	default:
		return &p.Flex
	}
}

// Next advances to the next phase.
func (p *Plan) Next() error { return p.move(1) }

// Back returns to the previous phase.
func (p *Plan) Back() error { return p.move(-1) }

func (p *Plan) move(delta int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	to := p.Phase + Phase(delta)
	if to < PhaseSelect || to > PhaseReview {
		return fmt.Errorf("%w: at %s", ErrPhaseBounds, p.Phase)
	}
	from := p.Phase
	p.Phase = to
	return p.recordEvent(event.RosterPhaseChanged, event.PhaseChangedData{From: int(from), To: int(to)})
}

// Reset clears what the current phase edits: the raid members while
// selecting, the role buckets while assigning roles. Review has nothing
// to reset. It reports whether anything was recorded.
func (p *Plan) Reset() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Phase == PhaseReview {
		return false, nil
	}
	p.reset(p.Phase)
	return true, p.recordEvent(event.RosterReset, event.RosterResetData{Phase: int(p.Phase)})
}

func (p *Plan) reset(phase Phase) {
	switch phase {
	case PhaseSelect:
		p.Members = nil
	case PhaseRoles:
		p.Tanks, p.Healers, p.DPS, p.Flex = nil, nil, nil, nil
	}
}

// SetSize changes the raid size.
func (p *Plan) SetSize(size int) error {
	if !ValidSize(size) {
		return ErrInvalidSize
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Size == size {
		return nil
	}
	p.Size = size
	return p.recordEvent(event.RosterResized, event.RosterResizedData{Size: size})
}

// Snapshot is a copy of the plan state safe to hand out.
type Snapshot struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	CreatedBy string      `json:"created_by"`
	Size      int         `json:"size"`
	Phase     Phase       `json:"phase"`
	PhaseName string      `json:"phase_name"`
	Members   []Character `json:"members"`
	Tanks     []Character `json:"tanks"`
	Healers   []Character `json:"healers"`
	DPS       []Character `json:"dps"`
	Flex      []Character `json:"flex"`
	Version   int         `json:"version"`
}

// Snapshot returns a copy of the plan state.
func (p *Plan) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cp := func(l []Character) []Character { return append([]Character{}, l...) }
	return Snapshot{
		ID: p.ID, Name: p.Name, CreatedBy: p.CreatedBy, Size: p.Size,
		Phase: p.Phase, PhaseName: p.Phase.String(),
		Members: cp(p.Members), Tanks: cp(p.Tanks), Healers: cp(p.Healers),
		DPS: cp(p.DPS), Flex: cp(p.Flex), Version: p.Version,
	}
}

// PendingEvents returns uncommitted events and clears the buffer.
func (p *Plan) PendingEvents() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	events := p.events
	p.events = nil
	return events
}

func (p *Plan) recordEvent(t event.Type, payload any) error {
	e, err := event.New(p.ID, t, p.Version+1, payload)
	if err != nil {
		return err
	}
	p.Version++
	p.events = append(p.events, e)
	return nil
}

// Replay reconstructs a plan from its event history.
func Replay(events []event.Event, layout Layout) (*Plan, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("no events to replay")
	}

	p := &Plan{Layout: layout}
	for _, e := range events {
		switch e.Type {
		case event.RosterCreated:
			var d event.RosterCreatedData
			if err := e.Decode(&d); err != nil {
				return nil, err
			}
			p.ID = e.AggregateID
			p.Name = d.Name
			p.CreatedBy = d.CreatedBy
			p.Size = d.Size

		case event.RosterCharacterDropped:
			var d event.CharacterDroppedData
			if err := e.Decode(&d); err != nil {
				return nil, err
			}
			regions := make([]Region, len(d.Regions))
			for i, r := range d.Regions {
				regions[i] = Region(r)
			}
			p.apply(Character{Name: d.Name, Race: d.Race, Gender: d.Gender, Class: d.Class, Spec: d.Spec}, regions)

		case event.RosterPhaseChanged:
			var d event.PhaseChangedData
			if err := e.Decode(&d); err != nil {
				return nil, err
			}
			p.Phase = Phase(d.To)

		case event.RosterReset:
			var d event.RosterResetData
			if err := e.Decode(&d); err != nil {
				return nil, err
			}
			p.reset(Phase(d.Phase))

		case event.RosterResized:
			var d event.RosterResizedData
			if err := e.Decode(&d); err != nil {
				return nil, err
			}
			p.Size = d.Size
		}
		p.Version = e.Version
	}
	return p, nil
}
