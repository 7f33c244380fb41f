package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/config"
)

// SpawnState is a power-up kind's position in its spawn cycle.
type SpawnState uint8

const (
	SpawnIdle      SpawnState = iota // Waiting for the shared cooldown to clear before rescheduling
	SpawnScheduled                   // Has a next-spawn time
	SpawnSpawned                     // Requested or in the world; awaiting collection or exit
)

// String returns the display name for a SpawnState.
func (s SpawnState) String() string {
	switch s {
	case SpawnIdle:
		return "idle"
	case SpawnScheduled:
		return "scheduled"
	case SpawnSpawned:
		return "spawned"
	}
	return "unknown"
}

type kindSchedule struct {
	state       SpawnState
	nextSpawn   float64
	requestedAt float64
	inWorld     bool // Spawned and delivered, not just requested
	intervalMin float64
	intervalMax float64
}

// PowerUpScheduler decides when power-up bodies spawn.
// All waiting is a comparison against the host clock; nothing sleeps.
type PowerUpScheduler struct {
	kinds              [components.EffectKindCount]kindSchedule
	collectionCooldown float64
	requestTimeout     float64
	lastCollection     float64 // -Inf until the first collection
	rng                *rand.Rand
}

// NewPowerUpScheduler creates a scheduler and schedules every kind from start.
func NewPowerUpScheduler(cfg *config.Config, rng *rand.Rand, start float64) *PowerUpScheduler {
	s := &PowerUpScheduler{
		collectionCooldown: cfg.PowerUps.CollectionCooldown,
		requestTimeout:     cfg.PowerUps.RequestTimeout,
		lastCollection:     math.Inf(-1),
		rng:                rng,
	}
	s.kinds[components.EffectRangeBypass] = kindSchedule{
		intervalMin: cfg.PowerUps.RangeBypass.IntervalMin,
		intervalMax: cfg.PowerUps.RangeBypass.IntervalMax,
	}
	s.kinds[components.EffectImmobilize] = kindSchedule{
		intervalMin: cfg.PowerUps.Immobilize.IntervalMin,
		intervalMax: cfg.PowerUps.Immobilize.IntervalMax,
	}
	for i := range s.kinds {
		k := &s.kinds[i]
		k.state = SpawnScheduled
		k.nextSpawn = start + cfg.PowerUps.InitialDelay + s.interval(k)
	}
	return s
}

// interval draws uniformly from the kind's interval range.
func (s *PowerUpScheduler) interval(k *kindSchedule) float64 {
	return k.intervalMin + s.rng.Float64()*(k.intervalMax-k.intervalMin)
}

// reschedule returns k to Scheduled with a fresh interval from now.
func (s *PowerUpScheduler) reschedule(k *kindSchedule, now float64) {
	k.state = SpawnScheduled
	k.inWorld = false
	k.nextSpawn = now + s.interval(k)
}

// cooling reports whether now is inside the shared collection cooldown.
func (s *PowerUpScheduler) cooling(now float64) bool {
	return now-s.lastCollection < s.collectionCooldown
}

// Update advances the state machine and returns the kinds whose spawn is
// requested this tick (at most one). present is whether a power-up body is in
// the registry; effectActive blocks spawning while an effect runs.
func (s *PowerUpScheduler) Update(now float64, present, effectActive bool) []components.EffectKind {
	if s.cooling(now) {
		return nil
	}

	outstanding := false
	for i := range s.kinds {
		k := &s.kinds[i]
		switch k.state {
		case SpawnIdle:
			// Cooldown has cleared: draw a fresh interval
			k.state = SpawnScheduled
			k.nextSpawn = now + s.interval(k)
		case SpawnSpawned:
			// A request the host never fulfilled must not block spawning forever
			if !k.inWorld && s.requestTimeout > 0 && now-k.requestedAt >= s.requestTimeout {
				s.reschedule(k, now)
				continue
			}
			outstanding = true
		}
	}

	if present || outstanding || effectActive {
		return nil
	}

	for i := range s.kinds {
		k := &s.kinds[i]
		if k.state == SpawnScheduled && now >= k.nextSpawn {
			k.state = SpawnSpawned
			k.inWorld = false
			k.requestedAt = now
			return []components.EffectKind{components.EffectKind(i)}
		}
	}
	return nil
}

// OnSpawned records a host-fulfilled power-up body of kind. A body the
// scheduler never requested is still tracked so it cannot double-spawn, and
// any other kind left waiting on a request is released, since only one
// power-up can be in the world.
func (s *PowerUpScheduler) OnSpawned(kind components.EffectKind, now float64) {
	for i := range s.kinds {
		k := &s.kinds[i]
		if components.EffectKind(i) != kind && k.state == SpawnSpawned && !k.inWorld {
			s.reschedule(k, now)
		}
	}
	k := &s.kinds[kind]
	k.state = SpawnSpawned
	k.inWorld = true
}

// OnLeftWorld returns kind to Scheduled with a fresh interval. No cooldown
// applies. Any other kind still marked spawned is stale and rescheduled too.
func (s *PowerUpScheduler) OnLeftWorld(kind components.EffectKind, now float64) {
	for i := range s.kinds {
		k := &s.kinds[i]
		if components.EffectKind(i) == kind || k.state == SpawnSpawned {
			s.reschedule(k, now)
		}
	}
}

// OnCollected starts the shared cooldown. Every kind, including any stale
// request, waits Idle until it clears.
func (s *PowerUpScheduler) OnCollected(kind components.EffectKind, now float64) {
	s.lastCollection = now
	for i := range s.kinds {
		s.kinds[i].state = SpawnIdle
		s.kinds[i].inWorld = false
	}
}

// State returns the spawn state of kind.
func (s *PowerUpScheduler) State(kind components.EffectKind) SpawnState {
	return s.kinds[kind].state
}

// NextSpawn returns the scheduled spawn time of kind. Meaningful only when Scheduled.
func (s *PowerUpScheduler) NextSpawn(kind components.EffectKind) float64 {
	return s.kinds[kind].nextSpawn
}

// LastCollection returns the time of the last collection, or -Inf.
func (s *PowerUpScheduler) LastCollection() float64 {
	return s.lastCollection
}
