package game

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/systems"
)

var (
	errWellRemoval   = errors.New("the well cannot be removed by the host")
	errBadCategory   = errors.New("spawned body has an unspawnable category")
	errBadClass      = errors.New("spawned consumable has an unknown class")
	errBadRadius     = errors.New("spawned body has a non-positive radius")
	errBadEffectKind = errors.New("spawned power-up has an unknown effect kind")
)

// applyHostInput moves the well, then applies host removals and fulfilled spawns.
func (s *Session) applyHostInput(in TickInput, now float64, out *TickOutput) {
	if in.WellPosition != nil {
		if ref, ok := s.registry.Well(); ok {
			ref.Pos.Vec = *in.WellPosition
		}
	}
	for _, rm := range in.Removed {
		s.removeForHost(rm, now, out)
	}
	for _, b := range in.Spawned {
		s.spawnFromHost(b, now, out)
	}
}

// removeForHost drops a body the host culled or lost. Counters that track the
// body are released exactly as if the core had removed it.
func (s *Session) removeForHost(rm HostRemoval, now float64, out *TickOutput) {
	if rm.ID == WellID {
		s.anomaly(out, AnomalyUnknownBody, errWellRemoval, rm.ID)
		return
	}
	state, err := s.registry.Remove(rm.ID)
	if err != nil {
		s.anomaly(out, AnomalyUnknownBody, err, rm.ID)
		return
	}

	switch state.Category {
	case components.CategoryConsumable:
		if state.IsMergedResult {
			s.merge.OnMergedResultRemoved()
		}
	case components.CategoryPowerUp:
		s.scheduler.OnLeftWorld(state.Kind, now)
	}

	out.Changes = append(out.Changes, BodyChange{Reason: ChangeHostRemoved, Body: state})
	s.log.Debug("host removed body", "id", rm.ID, "category", state.Category, "reason", rm.Reason)
}

// spawnFromHost registers a fulfilled spawn request after validating it.
// An id of zero asks the core to assign one.
func (s *Session) spawnFromHost(b systems.BodyState, now float64, out *TickOutput) {
	if b.ID == 0 {
		b.ID = s.registry.NextID()
	}
	if b.Radius <= 0 {
		s.anomaly(out, AnomalyMalformedSpawn, errBadRadius, b.ID)
		return
	}

	var err error
	switch b.Category {
	case components.CategoryConsumable:
		if int(b.Class) >= len(s.cfg.Classes) {
			s.anomaly(out, AnomalyMalformedSpawn, errBadClass, b.ID)
			return
		}
		class := s.cfg.Classes[b.Class]
		if b.Points == 0 {
			b.Points = class.BasePoints
		}
		// Only the merge subsystem creates merge results
		err = s.registry.AddConsumable(b.ID, b.Pos, b.Vel, b.Radius, class.MassMultiplier, components.Consumable{
			Class:  b.Class,
			Points: b.Points,
		})
	case components.CategoryPowerUp:
		if int(b.Kind) >= components.EffectKindCount {
			s.anomaly(out, AnomalyMalformedSpawn, errBadEffectKind, b.ID)
			return
		}
		if b.Duration == 0 {
			b.Duration = s.effect.Duration(b.Kind)
		}
		err = s.registry.AddPowerUp(b.ID, b.Pos, b.Vel, b.Radius, components.PowerUp{Kind: b.Kind, Duration: b.Duration})
		if err == nil {
			s.scheduler.OnSpawned(b.Kind, now)
		}
	default:
		err = fmt.Errorf("%s: %w", b.Category, errBadCategory)
	}
	if err != nil {
		s.anomaly(out, AnomalyMalformedSpawn, err, b.ID)
		return
	}

	ref, _ := s.registry.Get(b.ID)
	out.Changes = append(out.Changes, BodyChange{Reason: ChangeSpawned, Body: ref.State()})
}

// sweep removes every body marked dead this tick and reports why it left.
func (s *Session) sweep(out *TickOutput) {
	for _, state := range s.registry.Sweep() {
		if state.IsMergedResult {
			s.merge.OnMergedResultRemoved()
		}
		reason, ok := s.removal[state.ID]
		if !ok {
			reason = ChangeConsumed
		}
		out.Changes = append(out.Changes, BodyChange{Reason: reason, Body: state})
	}
}

// markRemoved flags id for the sweep and remembers the reason it is leaving.
func (s *Session) markRemoved(id components.BodyID, reason ChangeReason) {
	s.registry.MarkDead(id)
	s.removal[id] = reason
}

// anomaly records a soft anomaly. Nothing about it interrupts the tick.
func (s *Session) anomaly(out *TickOutput, kind AnomalyKind, err error, ids ...components.BodyID) {
	out.Anomalies = append(out.Anomalies, Anomaly{Kind: kind, IDs: ids, Err: err})
	if kind == AnomalyMergeRejected {
		s.log.Debug("merge rejected", "ids", ids, "reason", err)
		return
	}
	s.log.Warn("anomaly", "kind", kind, "ids", ids, "error", err)
}
