package host

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/game"
	"github.com/pthm-cable/gravwell/systems"
)

// Culler reports bodies that drifted too far from the well.
type Culler struct {
	distance float64
}

// NewCuller creates a culler. A non-positive distance disables culling.
func NewCuller(distance float64) *Culler {
	return &Culler{distance: distance}
}

// Cull returns a removal for every consumable or power-up farther than the
// cull distance from wellPos. Power-ups are reported as having left the world.
func (c *Culler) Cull(bodies []systems.BodyState, wellPos r2.Vec) []game.HostRemoval {
	if c.distance <= 0 {
		return nil
	}
	limitSq := c.distance * c.distance

	var out []game.HostRemoval
	for _, b := range bodies {
		d := r2.Sub(b.Pos, wellPos)
		if r2.Dot(d, d) <= limitSq {
			continue
		}
		switch b.Category {
		case components.CategoryConsumable:
			out = append(out, game.HostRemoval{ID: b.ID, Reason: game.HostCulled})
		case components.CategoryPowerUp:
			out = append(out, game.HostRemoval{ID: b.ID, Reason: game.HostOffWorld})
		}
	}
	return out
}
