package game

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/config"
	"github.com/pthm-cable/gravwell/systems"
)

func TestContactsDeduped(t *testing.T) {
	s := newTestSession(t, nil)
	out := s.Step(TickInput{
		Spawned:  []systems.BodyState{consumable(10, 30, 20, 0)},
		Contacts: []ContactPair{{A: WellID, B: 10}, {A: 10, B: WellID}, {A: WellID, B: 10}},
	})
	if len(out.Consumptions) != 1 || s.Score() != 100 {
		t.Errorf("Consumptions = %d score = %d, want 1/100", len(out.Consumptions), s.Score())
	}
}

func TestContactAnomalies(t *testing.T) {
	s := newTestSession(t, nil)
	out := s.Step(TickInput{
		Spawned: []systems.BodyState{
			consumable(10, 30, 20, 0),
			powerUp(20, 500, components.EffectRangeBypass),
		},
		Contacts: []ContactPair{
			{A: WellID, B: 999},
			{A: 10, B: 10},
			{A: 20, B: 10},
		},
	})

	if got := anomalies(out, AnomalyUnknownBody); len(got) != 1 || !errors.Is(got[0].Err, systems.ErrUnknownBody) {
		t.Errorf("unknown body anomalies = %+v", got)
	}
	got := anomalies(out, AnomalyUnknownPair)
	if len(got) != 2 {
		t.Fatalf("unknown pair anomalies = %+v, want 2", got)
	}
	if !errors.Is(got[0].Err, errSelfContact) || !errors.Is(got[1].Err, errPairKinds) {
		t.Errorf("unknown pair reasons = %v, %v", got[0].Err, got[1].Err)
	}
	// Soft anomalies leave the bodies alone
	if s.Registry().Len() != 3 || s.Ended() {
		t.Errorf("Len=%d Ended=%v after anomalies", s.Registry().Len(), s.Ended())
	}
}

func TestMergeBeforeConsumption(t *testing.T) {
	s := newTestSession(t, nil)
	out := s.Step(TickInput{
		Spawned: []systems.BodyState{consumable(10, 300, 30, 0), consumable(11, 335, 40, 1)},
		// Well contact listed first; merge still wins
		Contacts: []ContactPair{{A: WellID, B: 10}, {A: 10, B: 11}},
	})

	if len(out.Merges) != 1 || len(out.Consumptions) != 0 {
		t.Fatalf("Merges=%d Consumptions=%d, want 1/0", len(out.Merges), len(out.Consumptions))
	}
	m := out.Merges[0]
	if math.Abs(m.Diameter-50) > 1e-9 {
		t.Errorf("merged diameter = %f, want 50", m.Diameter)
	}
	if !hasChange(out, 10, ChangeMergedAway) || !hasChange(out, 11, ChangeMergedAway) || !hasChange(out, m.ResultID, ChangeMergedResultCreated) {
		t.Errorf("Changes = %+v", out.Changes)
	}
	if s.MergeCounter().Live != 1 {
		t.Errorf("merge counter = %d, want 1", s.MergeCounter().Live)
	}

	res, ok := s.Registry().Get(m.ResultID)
	if !ok || !res.Consumable.IsMergedResult {
		t.Fatal("merge result missing")
	}
}

func TestContactOrderIndependent(t *testing.T) {
	spawns := []systems.BodyState{
		consumable(10, 30, 20, 0),
		consumable(11, -30, 20, 1),
		consumable(12, 0, 20, 0),
	}
	orders := [][]ContactPair{
		{{A: WellID, B: 10}, {A: WellID, B: 11}, {A: WellID, B: 12}},
		{{A: 12, B: WellID}, {A: 11, B: WellID}, {A: 10, B: WellID}},
	}

	var scores []int
	var diameters []float64
	for _, contacts := range orders {
		s := newTestSession(t, nil)
		out := s.Step(TickInput{Spawned: spawns, Contacts: contacts})
		for i, want := range []components.BodyID{10, 11, 12} {
			if out.Consumptions[i].ConsumableID != want {
				t.Errorf("consumption %d is %d, want %d", i, out.Consumptions[i].ConsumableID, want)
			}
		}
		scores = append(scores, s.Score())
		diameters = append(diameters, wellDiameter(t, s))
	}
	if scores[0] != scores[1] || diameters[0] != diameters[1] {
		t.Errorf("order changed the result: scores %v diameters %v", scores, diameters)
	}
}

func TestMergeCapacity(t *testing.T) {
	s := newTestSession(t, nil)

	var results []components.BodyID
	// Ids step by ten so merge results never collide with later spawns
	id := components.BodyID(100)
	for i := range 5 {
		now := float64(i) * 2
		out := s.Step(TickInput{
			Now:      now,
			Spawned:  []systems.BodyState{consumable(id, 500, 30, 0), consumable(id+1, 530, 30, 0)},
			Contacts: []ContactPair{{A: id, B: id + 1}},
		})
		if i < 4 {
			if len(out.Merges) != 1 {
				t.Fatalf("merge %d rejected: %+v", i, out.Anomalies)
			}
			results = append(results, out.Merges[0].ResultID)
		} else {
			rej := anomalies(out, AnomalyMergeRejected)
			if len(rej) != 1 || !errors.Is(rej[0].Err, systems.ErrMergeCapacity) {
				t.Fatalf("fifth merge: anomalies %+v, want capacity rejection", out.Anomalies)
			}
		}
		if live := s.MergeCounter().Live; live > 4 {
			t.Fatalf("merge counter %d exceeds 4", live)
		}
		id += 10
	}

	// Culling a merged result frees one slot
	out := s.Step(TickInput{Now: 10, Removed: []HostRemoval{{ID: results[0], Reason: HostCulled}}})
	if !hasChange(out, results[0], ChangeHostRemoved) {
		t.Fatal("host removal not reported")
	}
	if s.MergeCounter().Live != 3 {
		t.Fatalf("merge counter = %d, want 3", s.MergeCounter().Live)
	}
	out = s.Step(TickInput{Now: 12, Contacts: []ContactPair{{A: id - 10, B: id - 9}}})
	if len(out.Merges) != 1 {
		t.Errorf("merge after freeing a slot rejected: %+v", out.Anomalies)
	}
}

func TestMergeResultConsumedFreesSlot(t *testing.T) {
	s := newTestSession(t, func(cfg *config.Config) { cfg.Well.InitialDiameter = 200 })
	out := s.Step(TickInput{
		Spawned:  []systems.BodyState{consumable(10, 500, 30, 0), consumable(11, 530, 30, 0)},
		Contacts: []ContactPair{{A: 10, B: 11}},
	})
	result := out.Merges[0].ResultID

	s.Step(TickInput{Now: 1, Contacts: []ContactPair{{A: WellID, B: result}}})
	if s.MergeCounter().Live != 0 {
		t.Errorf("merge counter = %d after the result was eaten, want 0", s.MergeCounter().Live)
	}
}

func TestMergeCooldown(t *testing.T) {
	s := newTestSession(t, nil)
	s.Step(TickInput{
		Now:      0,
		Spawned:  []systems.BodyState{consumable(10, 500, 30, 0), consumable(11, 530, 30, 0)},
		Contacts: []ContactPair{{A: 10, B: 11}},
	})

	spawns := []systems.BodyState{consumable(20, -500, 30, 0), consumable(21, -530, 30, 0)}
	out := s.Step(TickInput{Now: 1.5, Spawned: spawns, Contacts: []ContactPair{{A: 20, B: 21}}})
	rej := anomalies(out, AnomalyMergeRejected)
	if len(rej) != 1 || !errors.Is(rej[0].Err, systems.ErrMergeCooldown) {
		t.Fatalf("anomalies = %+v, want cooldown rejection", out.Anomalies)
	}

	out = s.Step(TickInput{Now: 1.6, Contacts: []ContactPair{{A: 20, B: 21}}})
	if len(out.Merges) != 1 {
		t.Errorf("merge after cooldown rejected: %+v", out.Anomalies)
	}
}

func TestMergedResultNotReused(t *testing.T) {
	s := newTestSession(t, nil)
	out := s.Step(TickInput{
		Spawned:  []systems.BodyState{consumable(10, 500, 30, 0), consumable(11, 530, 30, 0), consumable(12, 560, 30, 0)},
		Contacts: []ContactPair{{A: 10, B: 11}},
	})
	result := out.Merges[0].ResultID

	out = s.Step(TickInput{Now: 5, Contacts: []ContactPair{{A: result, B: 12}}})
	rej := anomalies(out, AnomalyMergeRejected)
	if len(rej) != 1 || !errors.Is(rej[0].Err, systems.ErrMergeResultReused) {
		t.Errorf("anomalies = %+v, want reuse rejection", out.Anomalies)
	}
}
