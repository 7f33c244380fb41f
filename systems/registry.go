package systems

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
)

var (
	// ErrUnknownBody is returned when an id is not in the registry.
	ErrUnknownBody = errors.New("unknown body")
	// ErrDuplicateBody is returned when an id is already registered.
	ErrDuplicateBody = errors.New("duplicate body id")
	// ErrPowerUpPresent is returned when a second power-up would be registered.
	ErrPowerUpPresent = errors.New("power-up already present")
	// ErrWellPresent is returned when a second well would be registered.
	ErrWellPresent = errors.New("well already present")
)

// BodyState is a plain-data copy of one body, used for host input and output.
type BodyState struct {
	ID       components.BodyID
	Category components.Category
	Pos      r2.Vec
	Vel      r2.Vec
	Radius   float64
	Mass     float64

	// Consumable fields
	Class          components.ClassID
	Points         int
	IsMergedResult bool

	// PowerUp fields
	Kind     components.EffectKind
	Duration float64

	// Well fields
	TargetClass components.ClassID
}

// Diameter returns 2 × Radius.
func (b BodyState) Diameter() float64 {
	return b.Radius * 2
}

// Ref holds live component pointers for one body.
// Pointers are only valid until the next entity creation or removal.
type Ref struct {
	Entity     ecs.Entity
	ID         components.BodyID
	Pos        *components.Position
	Vel        *components.Velocity
	Body       *components.Body
	Well       *components.Well       // nil unless Category == CategoryWell
	Consumable *components.Consumable // nil unless Category == CategoryConsumable
	PowerUp    *components.PowerUp    // nil unless Category == CategoryPowerUp
}

// State copies the referenced body into a BodyState.
func (r Ref) State() BodyState {
	s := BodyState{
		ID:       r.ID,
		Category: r.Body.Category,
		Pos:      r.Pos.Vec,
		Vel:      r.Vel.Vec,
		Radius:   r.Body.Radius,
		Mass:     r.Body.Mass,
	}
	switch {
	case r.Consumable != nil:
		s.Class = r.Consumable.Class
		s.Points = r.Consumable.Points
		s.IsMergedResult = r.Consumable.IsMergedResult
	case r.PowerUp != nil:
		s.Kind = r.PowerUp.Kind
		s.Duration = r.PowerUp.Duration
	case r.Well != nil:
		s.TargetClass = r.Well.TargetClass
	}
	return s
}

// Registry owns every simulated body, keyed by stable id.
type Registry struct {
	world *ecs.World

	wells       *ecs.Map5[components.Identity, components.Position, components.Velocity, components.Body, components.Well]
	consumables *ecs.Map5[components.Identity, components.Position, components.Velocity, components.Body, components.Consumable]
	powerUps    *ecs.Map5[components.Identity, components.Position, components.Velocity, components.Body, components.PowerUp]

	bodyFilter *ecs.Filter4[components.Identity, components.Position, components.Velocity, components.Body]

	idMap   *ecs.Map[components.Identity]
	posMap  *ecs.Map[components.Position]
	velMap  *ecs.Map[components.Velocity]
	bodyMap *ecs.Map[components.Body]
	wellMap *ecs.Map[components.Well]
	consMap *ecs.Map[components.Consumable]
	puMap   *ecs.Map[components.PowerUp]

	byID    map[components.BodyID]ecs.Entity
	well    ecs.Entity
	hasWell bool
	powerUp ecs.Entity
	nextID  components.BodyID

	consumableCount int
	powerUpCount    int
}

// NewRegistry creates an empty registry backed by its own ECS world.
func NewRegistry() *Registry {
	world := ecs.NewWorld()
	return &Registry{
		world:       world,
		wells:       ecs.NewMap5[components.Identity, components.Position, components.Velocity, components.Body, components.Well](world),
		consumables: ecs.NewMap5[components.Identity, components.Position, components.Velocity, components.Body, components.Consumable](world),
		powerUps:    ecs.NewMap5[components.Identity, components.Position, components.Velocity, components.Body, components.PowerUp](world),
		bodyFilter:  ecs.NewFilter4[components.Identity, components.Position, components.Velocity, components.Body](world),
		idMap:       ecs.NewMap[components.Identity](world),
		posMap:      ecs.NewMap[components.Position](world),
		velMap:      ecs.NewMap[components.Velocity](world),
		bodyMap:     ecs.NewMap[components.Body](world),
		wellMap:     ecs.NewMap[components.Well](world),
		consMap:     ecs.NewMap[components.Consumable](world),
		puMap:       ecs.NewMap[components.PowerUp](world),
		byID:        make(map[components.BodyID]ecs.Entity),
		nextID:      1,
	}
}

// NextID returns an id no registered body has used.
func (r *Registry) NextID() components.BodyID {
	id := r.nextID
	r.nextID++
	return id
}

// claim reserves id, keeping NextID ahead of every id seen.
func (r *Registry) claim(id components.BodyID) error {
	if _, ok := r.byID[id]; ok {
		return fmt.Errorf("registering %d: %w", id, ErrDuplicateBody)
	}
	if id >= r.nextID {
		r.nextID = id + 1
	}
	return nil
}

// AddWell registers the singleton well.
func (r *Registry) AddWell(id components.BodyID, pos r2.Vec, diameter float64, well components.Well) error {
	if r.hasWell {
		return fmt.Errorf("registering well %d: %w", id, ErrWellPresent)
	}
	if err := r.claim(id); err != nil {
		return err
	}
	body := components.NewBody(components.CategoryWell, diameter/2, 1)
	e := r.wells.NewEntity(
		&components.Identity{ID: id},
		&components.Position{Vec: pos},
		&components.Velocity{},
		&body,
		&well,
	)
	r.byID[id] = e
	r.well = e
	r.hasWell = true
	return nil
}

// AddConsumable registers a consumable body.
func (r *Registry) AddConsumable(id components.BodyID, pos, vel r2.Vec, radius, massMultiplier float64, cons components.Consumable) error {
	if err := r.claim(id); err != nil {
		return err
	}
	body := components.NewBody(components.CategoryConsumable, radius, massMultiplier)
	e := r.consumables.NewEntity(
		&components.Identity{ID: id},
		&components.Position{Vec: pos},
		&components.Velocity{Vec: vel},
		&body,
		&cons,
	)
	r.byID[id] = e
	r.consumableCount++
	return nil
}

// AddPowerUp registers the power-up body. At most one may exist.
func (r *Registry) AddPowerUp(id components.BodyID, pos, vel r2.Vec, radius float64, pu components.PowerUp) error {
	if r.powerUpCount > 0 {
		return ErrPowerUpPresent
	}
	if err := r.claim(id); err != nil {
		return err
	}
	body := components.NewBody(components.CategoryPowerUp, radius, 1)
	e := r.powerUps.NewEntity(
		&components.Identity{ID: id},
		&components.Position{Vec: pos},
		&components.Velocity{Vec: vel},
		&body,
		&pu,
	)
	r.byID[id] = e
	r.powerUp = e
	r.powerUpCount++
	return nil
}

// Get returns live pointers for id. Dead-marked bodies are still returned.
func (r *Registry) Get(id components.BodyID) (Ref, bool) {
	e, ok := r.byID[id]
	if !ok || !r.world.Alive(e) {
		return Ref{}, false
	}
	return r.ref(e), true
}

func (r *Registry) ref(e ecs.Entity) Ref {
	ref := Ref{
		Entity: e,
		ID:     r.idMap.Get(e).ID,
		Pos:    r.posMap.Get(e),
		Vel:    r.velMap.Get(e),
		Body:   r.bodyMap.Get(e),
	}
	switch ref.Body.Category {
	case components.CategoryWell:
		ref.Well = r.wellMap.Get(e)
	case components.CategoryConsumable:
		ref.Consumable = r.consMap.Get(e)
	case components.CategoryPowerUp:
		ref.PowerUp = r.puMap.Get(e)
	}
	return ref
}

// Well returns the singleton well.
func (r *Registry) Well() (Ref, bool) {
	if !r.hasWell {
		return Ref{}, false
	}
	return r.ref(r.well), true
}

// MarkDead flags a body for removal at the next Sweep.
func (r *Registry) MarkDead(id components.BodyID) bool {
	ref, ok := r.Get(id)
	if !ok {
		return false
	}
	ref.Body.Dead = true
	return true
}

// Remove deletes a body immediately and returns its final state.
func (r *Registry) Remove(id components.BodyID) (BodyState, error) {
	ref, ok := r.Get(id)
	if !ok {
		return BodyState{}, fmt.Errorf("removing %d: %w", id, ErrUnknownBody)
	}
	state := ref.State()
	r.removeEntity(ref.Entity, state)
	return state, nil
}

func (r *Registry) removeEntity(e ecs.Entity, state BodyState) {
	r.world.RemoveEntity(e)
	delete(r.byID, state.ID)
	switch state.Category {
	case components.CategoryWell:
		r.hasWell = false
	case components.CategoryConsumable:
		r.consumableCount--
	case components.CategoryPowerUp:
		r.powerUpCount--
	}
}

// Sweep removes all dead-marked bodies and returns them in id order.
func (r *Registry) Sweep() []BodyState {
	// First pass: collect dead entities (must complete before modifying)
	type deadInfo struct {
		entity ecs.Entity
		state  BodyState
	}
	var toRemove []deadInfo

	query := r.bodyFilter.Query()
	for query.Next() {
		_, _, _, body := query.Get()
		if body.Dead {
			e := query.Entity()
			toRemove = append(toRemove, deadInfo{entity: e, state: r.ref(e).State()})
		}
	}

	sort.Slice(toRemove, func(i, j int) bool { return toRemove[i].state.ID < toRemove[j].state.ID })

	// Second pass: remove entities (query iteration complete)
	removed := make([]BodyState, 0, len(toRemove))
	for _, dead := range toRemove {
		r.removeEntity(dead.entity, dead.state)
		removed = append(removed, dead.state)
	}
	return removed
}

// Snapshot returns every live (not dead-marked) body in id order.
func (r *Registry) Snapshot() []BodyState {
	out := make([]BodyState, 0, len(r.byID))
	query := r.bodyFilter.Query()
	for query.Next() {
		_, _, _, body := query.Get()
		if body.Dead {
			continue
		}
		out = append(out, r.ref(query.Entity()).State())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered bodies, dead-marked included.
func (r *Registry) Len() int {
	return len(r.byID)
}

// ConsumableCount returns the number of registered consumables.
func (r *Registry) ConsumableCount() int {
	return r.consumableCount
}

// HasPowerUp reports whether a power-up body is registered.
func (r *Registry) HasPowerUp() bool {
	return r.powerUpCount > 0
}

// PowerUp returns the registered power-up, if any.
func (r *Registry) PowerUp() (Ref, bool) {
	if r.powerUpCount == 0 {
		return Ref{}, false
	}
	return r.ref(r.powerUp), true
}
