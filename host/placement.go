package host

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/config"
	"github.com/pthm-cable/gravwell/systems"
)

// Placement draws spawn descriptors around the well.
type Placement struct {
	cfg         *config.Config
	rng         *rand.Rand
	totalWeight float64
}

// NewPlacement creates a placement collaborator with its own RNG stream.
func NewPlacement(cfg *config.Config, rng *rand.Rand) *Placement {
	p := &Placement{cfg: cfg, rng: rng}
	for _, cl := range cfg.Classes {
		p.totalWeight += cl.SpawnWeight
	}
	return p
}

// pickClass draws a class index weighted by SpawnWeight.
func (p *Placement) pickClass() components.ClassID {
	if p.totalWeight <= 0 {
		return components.ClassID(p.rng.Intn(len(p.cfg.Classes)))
	}
	r := p.rng.Float64() * p.totalWeight
	for i, cl := range p.cfg.Classes {
		r -= cl.SpawnWeight
		if r < 0 {
			return components.ClassID(i)
		}
	}
	return components.ClassID(len(p.cfg.Classes) - 1)
}

// ringPoint returns a uniformly drawn point on the spawn ring around center.
func (p *Placement) ringPoint(center r2.Vec) r2.Vec {
	w := p.cfg.World
	dist := w.SpawnRingMin + p.rng.Float64()*(w.SpawnRingMax-w.SpawnRingMin)
	angle := p.rng.Float64() * 2 * math.Pi
	return r2.Add(center, r2.Vec{X: math.Cos(angle) * dist, Y: math.Sin(angle) * dist})
}

// Consumable draws a consumable descriptor near the well.
// Diameter is uniform in the class range; velocity is a small random drift.
func (p *Placement) Consumable(id components.BodyID, wellPos r2.Vec) systems.BodyState {
	class := p.pickClass()
	cl := p.cfg.Classes[class]
	diameter := cl.MinDiameter + p.rng.Float64()*(cl.MaxDiameter-cl.MinDiameter)

	angle := p.rng.Float64() * 2 * math.Pi
	speed := p.rng.Float64() * p.cfg.World.DriftSpeed

	return systems.BodyState{
		ID:       id,
		Category: components.CategoryConsumable,
		Pos:      p.ringPoint(wellPos),
		Vel:      r2.Vec{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed},
		Radius:   diameter / 2,
		Class:    class,
		Points:   cl.BasePoints,
	}
}

// PowerUp draws a power-up descriptor on the outer ring whose straight
// trajectory passes within the inner ring distance of the well.
func (p *Placement) PowerUp(id components.BodyID, kind components.EffectKind, wellPos r2.Vec) systems.BodyState {
	kc := p.kindConfig(kind)
	w := p.cfg.World

	angle := p.rng.Float64() * 2 * math.Pi
	start := r2.Add(wellPos, r2.Vec{X: math.Cos(angle) * w.SpawnRingMax, Y: math.Sin(angle) * w.SpawnRingMax})

	// Aim at a point beside the well so the pass is a near miss the player can chase
	offset := (p.rng.Float64()*2 - 1) * w.SpawnRingMin
	aim := r2.Add(wellPos, r2.Vec{X: -math.Sin(angle) * offset, Y: math.Cos(angle) * offset})
	dir := r2.Unit(r2.Sub(aim, start))

	return systems.BodyState{
		ID:       id,
		Category: components.CategoryPowerUp,
		Pos:      start,
		Vel:      r2.Scale(kc.Speed, dir),
		Radius:   p.cfg.PowerUps.Radius,
		Kind:     kind,
		Duration: kc.Duration,
	}
}

func (p *Placement) kindConfig(kind components.EffectKind) config.PowerUpKindConfig {
	if kind == components.EffectImmobilize {
		return p.cfg.PowerUps.Immobilize
	}
	return p.cfg.PowerUps.RangeBypass
}
