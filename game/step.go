package game

import (
	"fmt"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/systems"
	"github.com/pthm-cable/gravwell/telemetry"
)

// Step runs one simulation tick against the host-supplied clock.
//
// Phase order is fixed: host input, gravity, integration, contact routing,
// effect expiry, target cycling, power-up scheduling, score, sweep. A fatal
// consumption skips everything after routing except score and sweep, and
// every later Step returns Halted without touching state.
func (s *Session) Step(in TickInput) TickOutput {
	if s.ended {
		return TickOutput{Tick: s.tick, Now: s.now, Halted: true}
	}

	s.startTick()
	out := TickOutput{Tick: s.tick}
	s.pendingScore = s.pendingScore[:0]
	clear(s.removal)

	// Clock
	now := in.Now
	if now < s.now {
		s.anomaly(&out, AnomalyClockRewind, fmt.Errorf("clock went from %g to %g", s.now, in.Now))
		now = s.now
	}
	dt := now - s.now
	// No previous tick to measure from, even if the host started late
	if !s.stepped {
		dt = 0
		s.stepped = true
	}
	s.now = now
	out.Now = now

	// 1. Host input
	s.startPhase(telemetry.PhaseHostInput)
	s.applyHostInput(in, now, &out)

	frozen := s.effect.Immobilized()

	// 2. Gravity
	s.startPhase(telemetry.PhaseGravity)
	well, hasWell := s.Well()
	deltas := s.gravity.Compute(well, hasWell, s.registry.Snapshot(), dt)
	s.physics.ApplyVelocityDeltas(s.registry, deltas, frozen)

	// 3. Integration
	s.startPhase(telemetry.PhaseIntegrate)
	if s.cfg.Physics.Integrate {
		s.physics.Integrate(dt, frozen)
	}

	// 4. Contacts
	s.startPhase(telemetry.PhaseContacts)
	if fatal := s.routeContacts(in.Contacts, now, &out); fatal != systems.EndNone {
		s.startPhase(telemetry.PhaseScore)
		s.applyScores(&out)
		s.startPhase(telemetry.PhaseSweep)
		s.sweep(&out)
		s.end(fatal, &out)
		s.finishTick(&out)
		return out
	}

	// 5. Effect expiry and target cycling
	s.startPhase(telemetry.PhaseEffects)
	s.updateEffect(now, &out)
	s.updateTarget(now, &out)

	// 6. Power-up scheduling
	s.startPhase(telemetry.PhaseScheduler)
	_, effectActive := s.effect.Active()
	for _, kind := range s.scheduler.Update(now, s.registry.HasPowerUp(), effectActive) {
		out.PowerUps = append(out.PowerUps, PowerUpEvent{Type: PowerUpSpawnRequested, Kind: kind})
		s.log.Debug("power-up spawn requested", "kind", kind, "now", now)
	}

	// 7. Score
	s.startPhase(telemetry.PhaseScore)
	s.applyScores(&out)

	// 8. Sweep
	s.startPhase(telemetry.PhaseSweep)
	s.sweep(&out)

	s.finishTick(&out)
	return out
}

// updateEffect expires the active effect once its time is up.
func (s *Session) updateEffect(now float64, out *TickOutput) {
	kind, expired := s.effect.CheckExpiration(now)
	if !expired {
		return
	}
	out.PowerUps = append(out.PowerUps, PowerUpEvent{Type: PowerUpDeactivated, Kind: kind})
	if kind == components.EffectImmobilize {
		out.PowerUps = append(out.PowerUps, PowerUpEvent{Type: PowerUpUnfreezeConsumables, Kind: kind})
	}
	s.log.Info("power-up expired", "kind", kind, "now", now)
}

// updateTarget advances the well's target class on its cycle.
func (s *Session) updateTarget(now float64, out *TickOutput) {
	ref, ok := s.registry.Well()
	if !ok {
		return
	}
	next, changed := s.target.Update(now, ref.Well.TargetClass)
	if !changed {
		return
	}
	ref.Well.TargetClass = next
	out.TargetChanged = &next
	s.log.Debug("target changed", "class", s.cfg.Classes[next].Name, "now", now)
}

// applyScores applies this tick's queued deltas in the order they were produced.
func (s *Session) applyScores(out *TickOutput) {
	for _, d := range s.pendingScore {
		applied := s.score.AddPoints(d.delta)
		out.Scores = append(out.Scores, ScoreEvent{Source: d.source, Delta: applied, Total: s.score.Total()})
	}
	s.pendingScore = s.pendingScore[:0]
}

// end freezes the session with a terminal event.
func (s *Session) end(reason systems.EndReason, out *TickOutput) {
	s.ended = true
	s.endReason = reason
	out.Ended = &SessionEnded{
		Reason:    reason,
		Time:      s.now,
		Score:     s.score.Total(),
		HighScore: s.score.High(),
	}
	if well, ok := s.Well(); ok {
		out.Changes = append(out.Changes, BodyChange{Reason: ChangeFatal, Body: well})
	}
	s.log.Info("session ended",
		"reason", reason,
		"score", s.score.Total(),
		"high_score", s.score.High(),
		"sim_time", s.now-s.start,
	)
}

// finishTick emits body mutations, records telemetry and advances the tick counter.
func (s *Session) finishTick(out *TickOutput) {
	s.emitMutations(out)
	s.tick++
	s.startPhase(telemetry.PhaseTelemetry)
	s.recordTelemetry(out)
	s.endTick()
}

// emitMutations reports every live body whose state differs from what the
// host last saw, in id order.
func (s *Session) emitMutations(out *TickOutput) {
	live := s.registry.Snapshot()
	present := make(map[components.BodyID]bool, len(live))
	for _, b := range live {
		present[b.ID] = true
		m := BodyMutation{ID: b.ID, Pos: b.Pos, Vel: b.Vel, Radius: b.Radius, Mass: b.Mass}
		if prev, ok := s.lastSent[b.ID]; ok && prev == m {
			continue
		}
		s.lastSent[b.ID] = m
		out.Mutations = append(out.Mutations, m)
	}
	for id := range s.lastSent {
		if !present[id] {
			delete(s.lastSent, id)
		}
	}
}
