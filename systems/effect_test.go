package systems

import (
	"errors"
	"testing"

	"github.com/pthm-cable/gravwell/components"
)

func TestActiveEffectExpiry(t *testing.T) {
	cfg := testConfig(t)
	cfg.PowerUps.Immobilize.Duration = 6
	e := NewActiveEffect(cfg)

	if err := e.Activate(components.EffectImmobilize, 100); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !e.Immobilized() || e.RangeBypass() {
		t.Errorf("Immobilized=%v RangeBypass=%v", e.Immobilized(), e.RangeBypass())
	}

	for _, now := range []float64{100, 103, 105.999} {
		if _, expired := e.CheckExpiration(now); expired {
			t.Fatalf("CheckExpiration(%f) expired early", now)
		}
	}
	kind, expired := e.CheckExpiration(106)
	if !expired || kind != components.EffectImmobilize {
		t.Fatalf("CheckExpiration(106) = %v, %v, want immobilize, true", kind, expired)
	}
	if _, expired := e.CheckExpiration(107); expired {
		t.Error("expired twice")
	}
	if _, active := e.Active(); active {
		t.Error("slot still active after expiry")
	}
}

func TestActiveEffectSingleSlot(t *testing.T) {
	e := NewActiveEffect(testConfig(t))

	if err := e.Activate(components.EffectRangeBypass, 10); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	expiry := e.Expiry()

	err := e.Activate(components.EffectImmobilize, 11)
	if !errors.Is(err, ErrEffectActive) {
		t.Fatalf("second Activate: got %v, want ErrEffectActive", err)
	}
	kind, active := e.Active()
	if !active || kind != components.EffectRangeBypass || e.Expiry() != expiry {
		t.Errorf("failed activation changed the slot: kind=%v active=%v expiry=%f", kind, active, e.Expiry())
	}
	if !e.RangeBypass() {
		t.Error("RangeBypass() = false while bypass runs")
	}
}
