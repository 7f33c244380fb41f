package game

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/config"
	"github.com/pthm-cable/gravwell/systems"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestSession builds a session on the default config with positions held
// still, target cycling off and power-up scheduling pushed out of the way.
// mutate runs before the session copies the config.
func newTestSession(t *testing.T, mutate func(cfg *config.Config)) *Session {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Physics.Integrate = false
	cfg.Well.TargetCycle = 0
	cfg.PowerUps.InitialDelay = 1e6
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewSession(cfg, Options{Seed: 1, Logger: discard})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func consumable(id components.BodyID, x, diameter float64, class components.ClassID) systems.BodyState {
	return systems.BodyState{
		ID:       id,
		Category: components.CategoryConsumable,
		Pos:      r2.Vec{X: x},
		Radius:   diameter / 2,
		Class:    class,
	}
}

func powerUp(id components.BodyID, x float64, kind components.EffectKind) systems.BodyState {
	return systems.BodyState{
		ID:       id,
		Category: components.CategoryPowerUp,
		Pos:      r2.Vec{X: x},
		Radius:   14,
		Kind:     kind,
	}
}

func hasChange(out TickOutput, id components.BodyID, reason ChangeReason) bool {
	for _, ch := range out.Changes {
		if ch.Body.ID == id && ch.Reason == reason {
			return true
		}
	}
	return false
}

func anomalies(out TickOutput, kind AnomalyKind) []Anomaly {
	var found []Anomaly
	for _, a := range out.Anomalies {
		if a.Kind == kind {
			found = append(found, a)
		}
	}
	return found
}

func wellDiameter(t *testing.T, s *Session) float64 {
	t.Helper()
	well, ok := s.Well()
	if !ok {
		t.Fatal("well missing")
	}
	return well.Diameter()
}

func TestNewSession(t *testing.T) {
	s := newTestSession(t, func(cfg *config.Config) { cfg.Well.InitialTarget = "white" })

	well, ok := s.Well()
	if !ok {
		t.Fatal("well missing")
	}
	if well.ID != WellID || well.Diameter() != 40 || well.TargetClass != 2 {
		t.Errorf("well = %+v", well)
	}
	if s.Registry().Len() != 1 || s.Score() != 0 || s.Ended() {
		t.Errorf("Len=%d Score=%d Ended=%v", s.Registry().Len(), s.Score(), s.Ended())
	}
	for _, kind := range []components.EffectKind{components.EffectRangeBypass, components.EffectImmobilize} {
		if s.Scheduler().State(kind) != systems.SpawnScheduled {
			t.Errorf("%s not scheduled at start", kind)
		}
	}
}

func TestSessionConfigIsolated(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSession(cfg, Options{Logger: discard})
	if err != nil {
		t.Fatal(err)
	}
	cfg.Classes[0].BasePoints = 1
	if s.Config().Classes[0].BasePoints == 1 {
		t.Error("caller edit reached the running session")
	}
}

func TestScenarioGrow(t *testing.T) {
	s := newTestSession(t, nil)

	out := s.Step(TickInput{
		Now:      0,
		Spawned:  []systems.BodyState{consumable(10, 30, 38, 0)},
		Contacts: []ContactPair{{A: WellID, B: 10}},
	})

	if len(out.Consumptions) != 1 || out.Consumptions[0].Result.Kind != systems.ConsumeGrow {
		t.Fatalf("Consumptions = %+v, want one grow", out.Consumptions)
	}
	// 100 × max(1, floor(40/60))
	if s.Score() != 100 {
		t.Errorf("score = %d, want 100", s.Score())
	}
	if len(out.Scores) != 1 || out.Scores[0] != (ScoreEvent{Source: 10, Delta: 100, Total: 100}) {
		t.Errorf("Scores = %+v", out.Scores)
	}
	if d := wellDiameter(t, s); math.Abs(d-42) > 1e-9 {
		t.Errorf("well diameter = %f, want 42", d)
	}
	if !hasChange(out, 10, ChangeSpawned) || !hasChange(out, 10, ChangeConsumed) {
		t.Errorf("Changes = %+v, want spawned then consumed for 10", out.Changes)
	}
	if _, ok := s.Registry().Get(10); ok {
		t.Error("consumed body still registered")
	}
}

func TestScenarioMultiplier(t *testing.T) {
	s := newTestSession(t, func(cfg *config.Config) {
		cfg.Well.InitialDiameter = 240
		cfg.Well.InitialTarget = "red"
	})

	s.Step(TickInput{
		Spawned:  []systems.BodyState{consumable(10, 100, 100, 4)},
		Contacts: []ContactPair{{A: 10, B: WellID}},
	})
	if s.Score() != 4000 {
		t.Errorf("score = %d, want 4000", s.Score())
	}
}

func TestScenarioOversizeEndsSession(t *testing.T) {
	s := newTestSession(t, func(cfg *config.Config) {
		cfg.Well.InitialDiameter = 45
	})

	// Matching class does not help: size is checked first
	out := s.Step(TickInput{
		Now:      1,
		Spawned:  []systems.BodyState{consumable(10, 40, 50, 0)},
		Contacts: []ContactPair{{A: WellID, B: 10}},
	})

	if out.Ended == nil || out.Ended.Reason != systems.EndOversizeCollision {
		t.Fatalf("Ended = %+v, want oversize collision", out.Ended)
	}
	if !s.Ended() || s.EndReason() != systems.EndOversizeCollision {
		t.Errorf("session Ended=%v reason=%v", s.Ended(), s.EndReason())
	}
	if !hasChange(out, WellID, ChangeFatal) {
		t.Error("missing fatal change for the well")
	}
	if _, ok := s.Registry().Get(10); !ok {
		t.Error("fatal contact removed the consumable")
	}
	if s.Score() != 0 || wellDiameter(t, s) != 45 {
		t.Errorf("score=%d diameter=%f, want 0/45", s.Score(), wellDiameter(t, s))
	}

	tick := s.Tick()
	halted := s.Step(TickInput{
		Now:      2,
		Spawned:  []systems.BodyState{consumable(11, 300, 10, 0)},
		Contacts: []ContactPair{{A: WellID, B: 10}},
	})
	if !halted.Halted || halted.Ended != nil || len(halted.Changes) != 0 {
		t.Errorf("post-end Step = %+v, want bare halt", halted)
	}
	if s.Tick() != tick || s.Now() != 1 {
		t.Errorf("post-end Step advanced state: tick %d now %f", s.Tick(), s.Now())
	}
	if _, ok := s.Registry().Get(11); ok {
		t.Error("post-end Step accepted a spawn")
	}
}

func TestShrinkPenaltyFlooredAtZero(t *testing.T) {
	s := newTestSession(t, nil)

	out := s.Step(TickInput{
		Spawned:  []systems.BodyState{consumable(10, 30, 20, 1)},
		Contacts: []ContactPair{{A: WellID, B: 10}},
	})
	if out.Consumptions[0].Result.Kind != systems.ConsumeShrink {
		t.Fatalf("kind = %v, want shrink", out.Consumptions[0].Result.Kind)
	}
	if out.Consumptions[0].Result.Points != -50 {
		t.Errorf("requested points = %d, want -50", out.Consumptions[0].Result.Points)
	}
	if len(out.Scores) != 1 || out.Scores[0].Delta != 0 || s.Score() != 0 {
		t.Errorf("Scores = %+v score = %d, want a zero applied delta", out.Scores, s.Score())
	}
	if d := wellDiameter(t, s); math.Abs(d-36) > 1e-9 {
		t.Errorf("well diameter = %f, want 36", d)
	}
}

func TestUndersizeShrinkEndsSession(t *testing.T) {
	s := newTestSession(t, func(cfg *config.Config) {
		cfg.Well.InitialDiameter = 21
	})

	out := s.Step(TickInput{
		Spawned:  []systems.BodyState{consumable(10, 30, 10, 3)},
		Contacts: []ContactPair{{A: WellID, B: 10}},
	})
	if out.Ended == nil || out.Ended.Reason != systems.EndUndersizeShrink {
		t.Fatalf("Ended = %+v, want undersize shrink", out.Ended)
	}
	if len(out.Scores) != 1 {
		t.Errorf("pending score not applied before end: %+v", out.Scores)
	}
}

func TestBypassGrowsButKeepsSizeGate(t *testing.T) {
	s := newTestSession(t, nil)

	out := s.Step(TickInput{
		Now:     0,
		Spawned: []systems.BodyState{powerUp(10, 25, components.EffectRangeBypass), consumable(11, -30, 20, 3)},
		Contacts: []ContactPair{
			{A: 11, B: WellID},
			{A: WellID, B: 10},
		},
	})
	// Power-up collection runs first, so the consumable resolves under bypass
	if !s.Effect().RangeBypass() {
		t.Fatal("range bypass not active")
	}
	if out.Consumptions[0].Result.Kind != systems.ConsumeGrow {
		t.Errorf("kind = %v, want grow under bypass", out.Consumptions[0].Result.Kind)
	}
	if s.Score() != 600 {
		t.Errorf("score = %d, want 600", s.Score())
	}

	out = s.Step(TickInput{
		Now:      1,
		Spawned:  []systems.BodyState{consumable(12, 30, 60, 0)},
		Contacts: []ContactPair{{A: WellID, B: 12}},
	})
	if out.Ended == nil || out.Ended.Reason != systems.EndOversizeCollision {
		t.Errorf("Ended = %+v, want oversize despite bypass", out.Ended)
	}
}

func TestImmobilizeLifecycle(t *testing.T) {
	s := newTestSession(t, func(cfg *config.Config) {
		cfg.PowerUps.Immobilize.Duration = 6
	})

	out := s.Step(TickInput{
		Now:      100,
		Spawned:  []systems.BodyState{powerUp(10, 25, components.EffectImmobilize)},
		Contacts: []ContactPair{{A: 10, B: WellID}},
	})
	var types []PowerUpEventType
	for _, pu := range out.PowerUps {
		types = append(types, pu.Type)
	}
	if len(types) != 2 || types[0] != PowerUpActivated || types[1] != PowerUpFreezeConsumables {
		t.Fatalf("power-up events = %v, want activated, freeze", types)
	}
	if out.PowerUps[0].Expiry != 106 {
		t.Errorf("expiry = %f, want 106", out.PowerUps[0].Expiry)
	}
	if !hasChange(out, 10, ChangeConsumed) {
		t.Error("power-up not removed on collection")
	}
	if s.Scheduler().State(components.EffectImmobilize) != systems.SpawnIdle {
		t.Error("collection did not start the scheduler cooldown")
	}

	if out := s.Step(TickInput{Now: 105.9}); len(out.PowerUps) != 0 {
		t.Errorf("events before expiry: %+v", out.PowerUps)
	}

	out = s.Step(TickInput{Now: 106})
	if len(out.PowerUps) != 2 || out.PowerUps[0].Type != PowerUpDeactivated || out.PowerUps[1].Type != PowerUpUnfreezeConsumables {
		t.Errorf("events at expiry = %+v, want deactivated, unfreeze", out.PowerUps)
	}
	if s.Effect().Immobilized() {
		t.Error("still immobilized after expiry")
	}
}

func TestImmobilizeFreezesConsumables(t *testing.T) {
	s := newTestSession(t, func(cfg *config.Config) {
		cfg.Physics.Integrate = true
		cfg.PowerUps.Immobilize.Duration = 6
	})

	drifting := consumable(11, 2000, 10, 0)
	drifting.Vel = r2.Vec{X: 10}
	s.Step(TickInput{
		Now:      0,
		Spawned:  []systems.BodyState{powerUp(10, 25, components.EffectImmobilize), drifting},
		Contacts: []ContactPair{{A: 10, B: WellID}},
	})
	s.Step(TickInput{Now: 1})

	ref, _ := s.Registry().Get(11)
	if ref.Pos.X != 2000 {
		t.Errorf("frozen consumable moved to %f", ref.Pos.X)
	}

	s.Step(TickInput{Now: 6})
	s.Step(TickInput{Now: 7})
	ref, _ = s.Registry().Get(11)
	if math.Abs(ref.Pos.X-2010) > 1e-9 {
		t.Errorf("unfrozen consumable at %f, want 2010", ref.Pos.X)
	}
}

func TestDuplicateActivation(t *testing.T) {
	s := newTestSession(t, nil)

	s.Step(TickInput{
		Now:      0,
		Spawned:  []systems.BodyState{powerUp(10, 25, components.EffectRangeBypass)},
		Contacts: []ContactPair{{A: 10, B: WellID}},
	})
	out := s.Step(TickInput{
		Now:      1,
		Spawned:  []systems.BodyState{powerUp(11, 25, components.EffectImmobilize)},
		Contacts: []ContactPair{{A: 11, B: WellID}},
	})

	if got := anomalies(out, AnomalyDuplicateActivation); len(got) != 1 {
		t.Fatalf("duplicate activation anomalies = %+v", out.Anomalies)
	}
	if !s.Effect().RangeBypass() || s.Effect().Immobilized() {
		t.Error("running effect replaced")
	}
	if !hasChange(out, 11, ChangeConsumed) {
		t.Error("second power-up not removed")
	}
}

func TestTargetCycles(t *testing.T) {
	s := newTestSession(t, func(cfg *config.Config) { cfg.Well.TargetCycle = 12 })
	before, _ := s.Well()

	if out := s.Step(TickInput{Now: 11}); out.TargetChanged != nil {
		t.Fatal("target changed early")
	}
	out := s.Step(TickInput{Now: 12})
	if out.TargetChanged == nil {
		t.Fatal("target did not change")
	}
	after, _ := s.Well()
	if after.TargetClass != *out.TargetChanged || after.TargetClass == before.TargetClass {
		t.Errorf("target %d -> %d, event %d", before.TargetClass, after.TargetClass, *out.TargetChanged)
	}
}

func TestClockRewind(t *testing.T) {
	s := newTestSession(t, nil)
	s.Step(TickInput{Now: 5})
	out := s.Step(TickInput{Now: 3})

	if got := anomalies(out, AnomalyClockRewind); len(got) != 1 {
		t.Fatalf("Anomalies = %+v, want one clock rewind", out.Anomalies)
	}
	if s.Now() != 5 || out.Now != 5 {
		t.Errorf("Now = %f (out %f), want 5", s.Now(), out.Now)
	}
}

func TestMutationsOnlyForChangedBodies(t *testing.T) {
	s := newTestSession(t, nil)

	out := s.Step(TickInput{Spawned: []systems.BodyState{consumable(10, 3000, 10, 0)}})
	if len(out.Mutations) != 2 {
		t.Fatalf("first tick mutations = %d, want 2", len(out.Mutations))
	}

	if out := s.Step(TickInput{Now: 1}); len(out.Mutations) != 0 {
		t.Errorf("idle tick mutations = %+v, want none", out.Mutations)
	}

	pos := r2.Vec{X: 50, Y: -20}
	out = s.Step(TickInput{Now: 2, WellPosition: &pos})
	if len(out.Mutations) != 1 || out.Mutations[0].ID != WellID || out.Mutations[0].Pos != pos {
		t.Errorf("mutations after well move = %+v", out.Mutations)
	}
}

func TestHighScoreSeeded(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSession(cfg, Options{HighScore: 5000, Logger: discard})
	if err != nil {
		t.Fatal(err)
	}
	s.Step(TickInput{
		Spawned:  []systems.BodyState{consumable(10, 30, 20, 0)},
		Contacts: []ContactPair{{A: WellID, B: 10}},
	})
	if s.Score() != 100 || s.HighScore() != 5000 {
		t.Errorf("score=%d high=%d, want 100/5000", s.Score(), s.HighScore())
	}
}

func TestFirstTickAppliesNoMotion(t *testing.T) {
	s := newTestSession(t, func(cfg *config.Config) { cfg.Physics.Integrate = true })
	body := func() systems.BodyState {
		t.Helper()
		ref, ok := s.Registry().Get(10)
		if !ok {
			t.Fatal("consumable missing")
		}
		return ref.State()
	}

	// The host starts late; the gap before the first tick is not simulated
	s.Step(TickInput{Now: 5, Spawned: []systems.BodyState{consumable(10, 200, 10, 0)}})
	if b := body(); b.Vel != (r2.Vec{}) || b.Pos != (r2.Vec{X: 200}) {
		t.Fatalf("after first tick pos=%v vel=%v, want untouched", b.Pos, b.Vel)
	}

	s.Step(TickInput{Now: 5.1})
	if b := body(); b.Vel.X >= 0 || b.Pos.X >= 200 {
		t.Errorf("after second tick pos=%v vel=%v, want pulled toward the well", b.Pos, b.Vel)
	}
}
