package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
)

// PhysicsSystem applies gravity deltas and integrates body positions.
// The well's position is host-driven and is never integrated here.
type PhysicsSystem struct {
	consFilter *ecs.Filter3[components.Position, components.Velocity, components.Consumable]
	puFilter   *ecs.Filter3[components.Position, components.Velocity, components.PowerUp]
}

// NewPhysicsSystem creates a new physics system over the registry's world.
func NewPhysicsSystem(r *Registry) *PhysicsSystem {
	return &PhysicsSystem{
		consFilter: ecs.NewFilter3[components.Position, components.Velocity, components.Consumable](r.world),
		puFilter:   ecs.NewFilter3[components.Position, components.Velocity, components.PowerUp](r.world),
	}
}

// ApplyVelocityDeltas adds gravity deltas to body velocities.
// When frozen is set, consumables keep their velocity untouched.
func (s *PhysicsSystem) ApplyVelocityDeltas(r *Registry, deltas []VelocityDelta, frozen bool) []components.BodyID {
	if frozen {
		return nil
	}
	touched := make([]components.BodyID, 0, len(deltas))
	for _, d := range deltas {
		ref, ok := r.Get(d.ID)
		if !ok || ref.Body.Dead {
			continue
		}
		ref.Vel.Vec = r2.Add(ref.Vel.Vec, d.DV)
		touched = append(touched, d.ID)
	}
	return touched
}

// Integrate advances positions by velocity × dt.
// Frozen consumables stay put; power-ups always follow their trajectory.
func (s *PhysicsSystem) Integrate(dt float64, frozen bool) {
	if dt <= 0 {
		return
	}
	if !frozen {
		query := s.consFilter.Query()
		for query.Next() {
			pos, vel, _ := query.Get()
			pos.Vec = r2.Add(pos.Vec, r2.Scale(dt, vel.Vec))
		}
	}

	query := s.puFilter.Query()
	for query.Next() {
		pos, vel, _ := query.Get()
		pos.Vec = r2.Add(pos.Vec, r2.Scale(dt, vel.Vec))
	}
}
