package game

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/systems"
)

var (
	errSelfContact = errors.New("body in contact with itself")
	errPairKinds   = errors.New("no rule for this category pair")
)

// routed is a validated contact. a is the body its rule acts on.
type routed struct {
	a, b components.BodyID
}

// contactBuckets holds the validated pairs of one tick, one bucket per rule.
type contactBuckets struct {
	powerUpWell    []routed // a = power-up, b = well
	consumablePair []routed // a < b
	consumableWell []routed // a = consumable, b = well
}

// classifyContacts dedupes pairs, re-validates both ids and files each pair
// under the rule that owns its category combination. Each bucket is sorted by
// id so routing does not depend on the order the host reported contacts in.
func (s *Session) classifyContacts(pairs []ContactPair, out *TickOutput) contactBuckets {
	var buckets contactBuckets
	seen := make(map[routed]bool, len(pairs))

	for _, p := range pairs {
		if p.A == p.B {
			s.anomaly(out, AnomalyUnknownPair, errSelfContact, p.A)
			continue
		}
		key := routed{a: min(p.A, p.B), b: max(p.A, p.B)}
		if seen[key] {
			continue
		}
		seen[key] = true

		refA, okA := s.registry.Get(key.a)
		refB, okB := s.registry.Get(key.b)
		if !okA || !okB {
			s.anomaly(out, AnomalyUnknownBody, systems.ErrUnknownBody, key.a, key.b)
			continue
		}

		ca, cb := refA.Body.Category, refB.Body.Category
		switch {
		case ca == components.CategoryPowerUp && cb == components.CategoryWell:
			buckets.powerUpWell = append(buckets.powerUpWell, routed{a: key.a, b: key.b})
		case ca == components.CategoryWell && cb == components.CategoryPowerUp:
			buckets.powerUpWell = append(buckets.powerUpWell, routed{a: key.b, b: key.a})
		case ca == components.CategoryConsumable && cb == components.CategoryConsumable:
			buckets.consumablePair = append(buckets.consumablePair, key)
		case ca == components.CategoryConsumable && cb == components.CategoryWell:
			buckets.consumableWell = append(buckets.consumableWell, routed{a: key.a, b: key.b})
		case ca == components.CategoryWell && cb == components.CategoryConsumable:
			buckets.consumableWell = append(buckets.consumableWell, routed{a: key.b, b: key.a})
		default:
			s.anomaly(out, AnomalyUnknownPair, errPairKinds, key.a, key.b)
		}
	}

	for _, bucket := range [][]routed{buckets.powerUpWell, buckets.consumablePair, buckets.consumableWell} {
		sort.Slice(bucket, func(i, j int) bool {
			if bucket[i].a != bucket[j].a {
				return bucket[i].a < bucket[j].a
			}
			return bucket[i].b < bucket[j].b
		})
	}
	return buckets
}

// routeContacts dispatches this tick's contacts in priority order:
// power-up collection, then merges, then well consumption. A body removed by
// an earlier rule is skipped by every later one. It returns the fatal reason
// if a consumption ended the session; routing stops at that contact.
func (s *Session) routeContacts(pairs []ContactPair, now float64, out *TickOutput) systems.EndReason {
	buckets := s.classifyContacts(pairs, out)

	for _, p := range buckets.powerUpWell {
		s.collectPowerUp(p.a, now, out)
	}

	wellPos := s.wellPosition()
	for _, p := range buckets.consumablePair {
		s.offerMerge(p.a, p.b, wellPos, now, out)
	}

	for _, p := range buckets.consumableWell {
		if fatal := s.offerConsumption(p.a, out); fatal != systems.EndNone {
			return fatal
		}
	}
	return systems.EndNone
}

// collectPowerUp consumes a power-up touching the well. Collection always
// succeeds; a second effect while one runs is an anomaly, not a failure.
func (s *Session) collectPowerUp(id components.BodyID, now float64, out *TickOutput) {
	ref, ok := s.registry.Get(id)
	if !ok || ref.Body.Dead {
		return
	}
	kind := ref.PowerUp.Kind
	s.markRemoved(id, ChangeConsumed)
	s.scheduler.OnCollected(kind, now)

	if err := s.effect.Activate(kind, now); err != nil {
		s.anomaly(out, AnomalyDuplicateActivation, err, id)
		return
	}

	out.PowerUps = append(out.PowerUps, PowerUpEvent{Type: PowerUpActivated, Kind: kind, Expiry: s.effect.Expiry()})
	if kind == components.EffectImmobilize {
		out.PowerUps = append(out.PowerUps, PowerUpEvent{Type: PowerUpFreezeConsumables, Kind: kind})
	}
	s.log.Info("power-up activated", "id", id, "kind", kind, "expiry", s.effect.Expiry())
}

// offerMerge hands a consumable pair to the merge subsystem.
// The router only forwards pairs the host saw touching, so contact is given.
func (s *Session) offerMerge(idA, idB components.BodyID, wellPos r2.Vec, now float64, out *TickOutput) {
	refA, okA := s.registry.Get(idA)
	refB, okB := s.registry.Get(idB)
	if !okA || !okB || refA.Body.Dead || refB.Body.Dead {
		return
	}

	m, err := s.merge.TryMerge(s.registry, idA, idB, wellPos, true, now)
	if err != nil {
		s.anomaly(out, AnomalyMergeRejected, err, idA, idB)
		return
	}

	s.removal[idA] = ChangeMergedAway
	s.removal[idB] = ChangeMergedAway
	out.Changes = append(out.Changes, BodyChange{Reason: ChangeMergedResultCreated, Body: m.Result})
	out.Merges = append(out.Merges, MergeEvent{
		A:        idA,
		B:        idB,
		ResultID: m.Result.ID,
		Diameter: m.Result.Diameter(),
		Class:    m.Result.Class,
		Points:   m.Result.Points,
	})
	s.log.Debug("merged", "a", idA, "b", idB, "result", m.Result.ID, "diameter", m.Result.Diameter())
}

// offerConsumption resolves a consumable touching the well.
func (s *Session) offerConsumption(id components.BodyID, out *TickOutput) systems.EndReason {
	ref, ok := s.registry.Get(id)
	if !ok || ref.Body.Dead {
		return systems.EndNone
	}
	well, ok := s.registry.Well()
	if !ok {
		return systems.EndNone
	}

	class := ref.Consumable.Class
	res := systems.ResolveConsumption(s.consume, well.Body, well.Well, ref.Body, ref.Consumable, s.effect.RangeBypass())
	out.Consumptions = append(out.Consumptions, ConsumeEvent{ConsumableID: id, Class: class, Result: res})

	if res.Points != 0 {
		s.pendingScore = append(s.pendingScore, scoreDelta{source: id, delta: res.Points})
	}
	if res.Fatal != systems.EndNone {
		// A fatal contact never removes the consumable
		return res.Fatal
	}
	s.markRemoved(id, ChangeConsumed)
	return systems.EndNone
}

// wellPosition returns the well centre used by the merge safe-zone guard.
func (s *Session) wellPosition() r2.Vec {
	well, _ := s.Well()
	return well.Pos
}
