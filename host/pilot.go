package host

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/systems"
)

// Pilot steers the well in headless runs.
// It chases the nearest body that is safe and profitable to eat: a power-up,
// or a consumable of the target class smaller than the well.
type Pilot struct {
	speed float64
}

// NewPilot creates a pilot moving the well at speed world units per second.
func NewPilot(speed float64) *Pilot {
	return &Pilot{speed: speed}
}

// Steer returns the well's next position after dt seconds.
// bypass widens the menu to every class while a RangeBypass effect runs.
func (p *Pilot) Steer(well systems.BodyState, bodies []systems.BodyState, bypass bool, dt float64) r2.Vec {
	target, ok := p.pick(well, bodies, bypass)
	if !ok {
		return well.Pos
	}
	return moveToward(well.Pos, target, p.speed*dt)
}

// moveToward returns from advanced by at most step toward to.
func moveToward(from, to r2.Vec, step float64) r2.Vec {
	if step <= 0 {
		return from
	}
	d := r2.Sub(to, from)
	dist := r2.Norm(d)
	if dist <= step {
		return to
	}
	return r2.Add(from, r2.Scale(step/dist, d))
}

func (p *Pilot) pick(well systems.BodyState, bodies []systems.BodyState, bypass bool) (r2.Vec, bool) {
	best := math.Inf(1)
	var target r2.Vec
	found := false

	for _, b := range bodies {
		switch b.Category {
		case components.CategoryPowerUp:
		case components.CategoryConsumable:
			if b.Diameter() >= well.Diameter() {
				continue
			}
			if !bypass && b.Class != well.TargetClass {
				continue
			}
		default:
			continue
		}
		d := r2.Sub(b.Pos, well.Pos)
		if distSq := r2.Dot(d, d); distSq < best {
			best = distSq
			target = b.Pos
			found = true
		}
	}
	return target, found
}
