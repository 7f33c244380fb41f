package systems

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/config"
)

// ErrEffectActive is returned when activating while another effect runs.
var ErrEffectActive = errors.New("effect already active")

// ActiveEffect is the single slot holding the current power-up effect.
type ActiveEffect struct {
	durations [components.EffectKindCount]float64

	active bool
	kind   components.EffectKind
	expiry float64
}

// NewActiveEffect creates an empty effect slot with per-kind durations from cfg.
func NewActiveEffect(cfg *config.Config) *ActiveEffect {
	e := &ActiveEffect{}
	e.durations[components.EffectRangeBypass] = cfg.PowerUps.RangeBypass.Duration
	e.durations[components.EffectImmobilize] = cfg.PowerUps.Immobilize.Duration
	return e
}

// Activate starts kind at now. It fails without side effects if an effect is running.
func (e *ActiveEffect) Activate(kind components.EffectKind, now float64) error {
	if e.active {
		return fmt.Errorf("activating %s while %s runs: %w", kind, e.kind, ErrEffectActive)
	}
	e.active = true
	e.kind = kind
	e.expiry = now + e.durations[kind]
	return nil
}

// CheckExpiration returns true exactly once, on the first call with now >= expiry,
// and clears the slot. The expired kind is returned alongside.
func (e *ActiveEffect) CheckExpiration(now float64) (components.EffectKind, bool) {
	if !e.active || now < e.expiry {
		return 0, false
	}
	e.active = false
	return e.kind, true
}

// Duration returns the configured duration of kind.
func (e *ActiveEffect) Duration(kind components.EffectKind) float64 {
	return e.durations[kind]
}

// Active returns the running effect kind, if any.
func (e *ActiveEffect) Active() (components.EffectKind, bool) {
	return e.kind, e.active
}

// Expiry returns when the running effect ends. Meaningless when inactive.
func (e *ActiveEffect) Expiry() float64 {
	return e.expiry
}

// RangeBypass reports whether the class gate is currently bypassed.
func (e *ActiveEffect) RangeBypass() bool {
	return e.active && e.kind == components.EffectRangeBypass
}

// Immobilized reports whether consumables are currently frozen.
func (e *ActiveEffect) Immobilized() bool {
	return e.active && e.kind == components.EffectImmobilize
}
