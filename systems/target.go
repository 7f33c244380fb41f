package systems

import (
	"math/rand"

	"github.com/pthm-cable/gravwell/components"
)

// TargetCycler rotates the well's target class on the simulation clock.
type TargetCycler struct {
	period     float64
	next       float64
	numClasses int
	rng        *rand.Rand
}

// NewTargetCycler creates a cycler. A non-positive period disables cycling.
func NewTargetCycler(period float64, numClasses int, rng *rand.Rand, start float64) *TargetCycler {
	return &TargetCycler{
		period:     period,
		next:       start + period,
		numClasses: numClasses,
		rng:        rng,
	}
}

// Update returns a new target different from current once the period elapses.
func (c *TargetCycler) Update(now float64, current components.ClassID) (components.ClassID, bool) {
	if c.period <= 0 || c.numClasses < 2 || now < c.next {
		return current, false
	}
	// Catch up without drifting if the host skipped time
	for c.next <= now {
		c.next += c.period
	}
	// Draw among the other classes so the target always changes
	pick := c.rng.Intn(c.numClasses - 1)
	if pick >= int(current) {
		pick++
	}
	return components.ClassID(pick), true
}
