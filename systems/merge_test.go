package systems

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
)

func mergeBody(id components.BodyID, x, diameter float64) BodyState {
	r := diameter / 2
	return BodyState{
		ID:       id,
		Category: components.CategoryConsumable,
		Pos:      r2.Vec{X: x},
		Radius:   r,
		Mass:     r * r,
		Points:   100,
	}
}

func TestMergeScenario(t *testing.T) {
	cfg := testConfig(t)
	m := NewMergeSystem(cfg)
	m.counter.Live = 2

	r := NewRegistry()
	if err := r.AddWell(1, r2.Vec{}, 40, components.Well{}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddConsumable(2, r2.Vec{X: 300}, r2.Vec{X: 10}, 15, 1, components.Consumable{Class: 0, Points: 100}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddConsumable(3, r2.Vec{X: 335}, r2.Vec{X: -10, Y: 4}, 20, 1.2, components.Consumable{Class: 1, Points: 200}); err != nil {
		t.Fatal(err)
	}

	got, err := m.TryMerge(r, 2, 3, r2.Vec{}, true, 50)
	if err != nil {
		t.Fatalf("TryMerge: %v", err)
	}

	// 2 × sqrt(15² + 20²)
	if math.Abs(got.Result.Diameter()-50) > 1e-9 {
		t.Errorf("result diameter = %f, want 50", got.Result.Diameter())
	}
	if want := components.ClassID(cfg.BandClass(50)); got.Result.Class != want {
		t.Errorf("result class = %d, want %d", got.Result.Class, want)
	}
	if got.Result.Points != 450 {
		t.Errorf("result points = %d, want 450", got.Result.Points)
	}
	if c := m.Counter(); c.Live != 3 || c.LastMerge != 50 {
		t.Errorf("counter = %+v, want Live 3 LastMerge 50", c)
	}

	for _, id := range []components.BodyID{2, 3} {
		ref, _ := r.Get(id)
		if !ref.Body.Dead || !ref.Consumable.HasBeenMerged {
			t.Errorf("input %d not retired: dead=%v merged=%v", id, ref.Body.Dead, ref.Consumable.HasBeenMerged)
		}
	}
	res, ok := r.Get(got.Result.ID)
	if !ok || !res.Consumable.IsMergedResult {
		t.Fatal("merge result not registered as a merged result")
	}
	// Velocity is the damped mean
	wantVel := r2.Scale(0.5*cfg.Merge.VelocityDamping, r2.Vec{X: 0, Y: 4})
	if math.Abs(res.Vel.X-wantVel.X) > 1e-9 || math.Abs(res.Vel.Y-wantVel.Y) > 1e-9 {
		t.Errorf("result velocity = %v, want %v", res.Vel.Vec, wantVel)
	}
}

func TestMergeGuards(t *testing.T) {
	cfg := testConfig(t)

	far := 500.0
	tests := []struct {
		name      string
		setup     func(m *MergeSystem)
		a, b      BodyState
		inContact bool
		now       float64
		want      error
	}{
		{
			name:  "disabled",
			setup: func(m *MergeSystem) { m.rules.Enabled = false; m.counter.Live = 4 },
			a:     mergeBody(2, far, 30), b: mergeBody(3, far+30, 30),
			inContact: true, now: 100, want: ErrMergeDisabled,
		},
		{
			name:  "capacity before cooldown",
			setup: func(m *MergeSystem) { m.counter.Live = 4; m.counter.LastMerge = 99.9 },
			a:     mergeBody(2, far, 30), b: mergeBody(3, far+30, 30),
			inContact: true, now: 100, want: ErrMergeCapacity,
		},
		{
			name:  "cooldown boundary is exclusive",
			setup: func(m *MergeSystem) { m.counter.LastMerge = 98.5 },
			a:     mergeBody(2, far, 30), b: mergeBody(3, far+30, 30),
			inContact: true, now: 100, want: ErrMergeCooldown,
		},
		{
			name:  "too small",
			setup: func(m *MergeSystem) {},
			a:     mergeBody(2, far, 19.9), b: mergeBody(3, far+30, 30),
			inContact: true, now: 100, want: ErrMergeTooSmall,
		},
		{
			name:  "merged result cannot merge again",
			setup: func(m *MergeSystem) {},
			a:     mergeBody(2, far, 30),
			b: func() BodyState {
				b := mergeBody(3, far+30, 30)
				b.IsMergedResult = true
				return b
			}(),
			inContact: true, now: 100, want: ErrMergeResultReused,
		},
		{
			name:  "safe zone",
			setup: func(m *MergeSystem) {},
			a:     mergeBody(2, 100, 30), b: mergeBody(3, 130, 30),
			inContact: true, now: 100, want: ErrMergeInSafeZone,
		},
		{
			name:  "no contact",
			setup: func(m *MergeSystem) {},
			a:     mergeBody(2, far, 30), b: mergeBody(3, far+30, 30),
			inContact: false, now: 100, want: ErrMergeNoContact,
		},
		{
			name:  "all guards pass",
			setup: func(m *MergeSystem) { m.counter.Live = 3; m.counter.LastMerge = 98.4 },
			a:     mergeBody(2, far, 30), b: mergeBody(3, far+30, 30),
			inContact: true, now: 100, want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMergeSystem(cfg)
			tt.setup(m)
			err := m.Check(tt.a, tt.b, r2.Vec{}, tt.inContact, tt.now)
			if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
				t.Errorf("Check() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTryMergeRejectsIneligible(t *testing.T) {
	cfg := testConfig(t)
	m := NewMergeSystem(cfg)
	r := NewRegistry()
	addConsumable(t, r, 2, r2.Vec{X: 500}, 30, 0)
	if err := r.AddPowerUp(3, r2.Vec{X: 520}, r2.Vec{}, 14, components.PowerUp{}); err != nil {
		t.Fatal(err)
	}

	if _, err := m.TryMerge(r, 2, 3, r2.Vec{}, true, 10); !errors.Is(err, ErrMergeNotEligible) {
		t.Errorf("consumable + power-up: got %v, want ErrMergeNotEligible", err)
	}
	if _, err := m.TryMerge(r, 2, 99, r2.Vec{}, true, 10); !errors.Is(err, ErrMergeNotEligible) {
		t.Errorf("unknown id: got %v, want ErrMergeNotEligible", err)
	}
	if m.Counter().Live != 0 {
		t.Errorf("counter moved on rejection: %d", m.Counter().Live)
	}
}

func TestMergeCounterFloor(t *testing.T) {
	m := NewMergeSystem(testConfig(t))
	m.OnMergedResultRemoved()
	if m.Counter().Live != 0 {
		t.Errorf("Live = %d, want 0", m.Counter().Live)
	}
	if !math.IsInf(m.Counter().LastMerge, -1) {
		t.Errorf("LastMerge = %f, want -Inf", m.Counter().LastMerge)
	}
}

func TestCombineCentroid(t *testing.T) {
	m := NewMergeSystem(testConfig(t))
	a := mergeBody(2, 0, 20)  // mass 100
	b := mergeBody(3, 40, 40) // mass 400
	got := m.Combine(a, b)
	// (100×0 + 400×40) / 500
	if math.Abs(got.Pos.X-32) > 1e-9 {
		t.Errorf("centroid x = %f, want 32", got.Pos.X)
	}
	if !got.IsMergedResult {
		t.Error("result not flagged as merged")
	}
}
