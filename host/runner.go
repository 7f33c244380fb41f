package host

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/config"
	"github.com/pthm-cable/gravwell/game"
	"github.com/pthm-cable/gravwell/systems"
)

// Runner plays the host role for a session: it owns the clock, detects
// contacts, keeps the consumable population topped up, fulfils power-up spawn
// requests, culls distant bodies and moves the well.
type Runner struct {
	session   *game.Session
	cfg       *config.Config
	placement *Placement
	culler    *Culler
	pilot     *Pilot
	detector  *ContactDetector

	dt          float64
	now         float64
	spawnCredit float64
	requested   []components.EffectKind // Power-ups the session asked for, not yet placed

	manual     bool
	wellTarget r2.Vec
}

// NewRunner creates a runner for session. rng drives placement only; the
// session keeps its own stream.
func NewRunner(session *game.Session, cfg *config.Config, rng *rand.Rand) *Runner {
	cell := cfg.Physics.GridCellSize
	if cell <= 0 {
		cell = 200
	}
	return &Runner{
		session:   session,
		cfg:       cfg,
		placement: NewPlacement(cfg, rng),
		culler:    NewCuller(cfg.World.CullDistance),
		pilot:     NewPilot(cfg.World.PilotSpeed),
		detector:  NewContactDetector(cell),
		dt:        cfg.Physics.DT,
		now:       session.Now(),
	}
}

// Session returns the driven session.
func (r *Runner) Session() *game.Session {
	return r.session
}

// Now returns the host clock.
func (r *Runner) Now() float64 {
	return r.now
}

// SetWellTarget switches to manual steering: the well moves toward p at pilot speed.
func (r *Runner) SetWellTarget(p r2.Vec) {
	r.manual = true
	r.wellTarget = p
}

// ReleaseWell returns steering to the scripted pilot.
func (r *Runner) ReleaseWell() {
	r.manual = false
}

// Step advances the host clock by one dt and runs one session tick.
func (r *Runner) Step() game.TickOutput {
	if r.session.Ended() {
		return r.session.Step(game.TickInput{Now: r.now})
	}
	r.now += r.dt

	bodies := r.session.Registry().Snapshot()
	well, _ := r.session.Well()

	var wellPos r2.Vec
	if r.manual {
		wellPos = moveToward(well.Pos, r.wellTarget, r.cfg.World.PilotSpeed*r.dt)
	} else {
		wellPos = r.pilot.Steer(well, bodies, r.session.Effect().RangeBypass(), r.dt)
	}
	for i := range bodies {
		if bodies[i].Category == components.CategoryWell {
			bodies[i].Pos = wellPos
		}
	}

	removed := r.culler.Cull(bodies, wellPos)
	gone := make(map[components.BodyID]bool, len(removed))
	culledConsumables := 0
	for _, rm := range removed {
		gone[rm.ID] = true
		if rm.Reason == game.HostCulled {
			culledConsumables++
		}
	}

	in := game.TickInput{
		Now:          r.now,
		WellPosition: &wellPos,
		Contacts:     filterContacts(r.detector.Detect(bodies), gone),
		Removed:      removed,
		Spawned:      r.spawns(wellPos, r.session.Registry().ConsumableCount()-culledConsumables),
	}

	out := r.session.Step(in)
	for _, pu := range out.PowerUps {
		if pu.Type == game.PowerUpSpawnRequested {
			r.requested = append(r.requested, pu.Kind)
		}
	}
	return out
}

// spawns fulfils pending power-up requests and tops up consumables at the
// configured rate until the population target is reached.
func (r *Runner) spawns(wellPos r2.Vec, consumables int) []systems.BodyState {
	var out []systems.BodyState
	for _, kind := range r.requested {
		out = append(out, r.placement.PowerUp(r.session.NextID(), kind, wellPos))
	}
	r.requested = r.requested[:0]

	target := r.cfg.Population.Target
	r.spawnCredit += r.cfg.Population.SpawnPerSec * r.dt
	r.spawnCredit = min(r.spawnCredit, float64(target))
	for consumables < target && r.spawnCredit >= 1 {
		out = append(out, r.placement.Consumable(r.session.NextID(), wellPos))
		consumables++
		r.spawnCredit--
	}
	return out
}
