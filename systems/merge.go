package systems

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/config"
)

// Merge rejection reasons, in guard order.
var (
	ErrMergeDisabled     = errors.New("merging disabled")
	ErrMergeCapacity     = errors.New("merge capacity reached")
	ErrMergeCooldown     = errors.New("merge cooldown active")
	ErrMergeTooSmall     = errors.New("body below minimum merge diameter")
	ErrMergeResultReused = errors.New("body is already a merge result")
	ErrMergeInSafeZone   = errors.New("body inside well safe zone")
	ErrMergeNoContact    = errors.New("bodies not in contact")
	ErrMergeNotEligible  = errors.New("body is not a live consumable")
)

// MergeCounter tracks live merged bodies and the global merge cooldown.
type MergeCounter struct {
	Live      int
	LastMerge float64 // -Inf until the first merge
}

// MergeRules holds merge guard thresholds and result shaping.
type MergeRules struct {
	Enabled         bool
	MaxConcurrent   int
	Cooldown        float64
	MinDiameter     float64
	SafeZone        float64
	PointsFactor    float64
	VelocityDamping float64
}

// MergeRulesFromConfig extracts merge constants from cfg.
func MergeRulesFromConfig(cfg *config.Config) MergeRules {
	return MergeRules{
		Enabled:         cfg.Merge.Enabled,
		MaxConcurrent:   cfg.Merge.MaxConcurrent,
		Cooldown:        cfg.Merge.Cooldown,
		MinDiameter:     cfg.Merge.MinDiameter,
		SafeZone:        cfg.Merge.SafeZone,
		PointsFactor:    cfg.Merge.PointsFactor,
		VelocityDamping: cfg.Merge.VelocityDamping,
	}
}

// Merge describes a completed merge.
type Merge struct {
	A, B   BodyState // Inputs as they were just before the merge
	Result BodyState // The created body
}

// MergeSystem validates and executes consumable merges.
type MergeSystem struct {
	rules   MergeRules
	cfg     *config.Config
	counter MergeCounter
}

// NewMergeSystem creates a merge system with an empty counter.
func NewMergeSystem(cfg *config.Config) *MergeSystem {
	return &MergeSystem{
		rules:   MergeRulesFromConfig(cfg),
		cfg:     cfg,
		counter: MergeCounter{LastMerge: math.Inf(-1)},
	}
}

// Counter returns a copy of the merge counter.
func (m *MergeSystem) Counter() MergeCounter {
	return m.counter
}

// Check runs the seven guards in order and returns the first failure.
func (m *MergeSystem) Check(a, b BodyState, wellPos r2.Vec, inContact bool, now float64) error {
	if !m.rules.Enabled {
		return ErrMergeDisabled
	}
	if m.counter.Live >= m.rules.MaxConcurrent {
		return ErrMergeCapacity
	}
	if !(now-m.counter.LastMerge > m.rules.Cooldown) {
		return ErrMergeCooldown
	}
	if a.Diameter() < m.rules.MinDiameter || b.Diameter() < m.rules.MinDiameter {
		return ErrMergeTooSmall
	}
	if a.IsMergedResult || b.IsMergedResult {
		return ErrMergeResultReused
	}
	if r2.Norm(r2.Sub(a.Pos, wellPos)) <= m.rules.SafeZone || r2.Norm(r2.Sub(b.Pos, wellPos)) <= m.rules.SafeZone {
		return ErrMergeInSafeZone
	}
	if !inContact {
		return ErrMergeNoContact
	}
	return nil
}

// Combine computes the merged body from two inputs without touching any state.
func (m *MergeSystem) Combine(a, b BodyState) BodyState {
	// Equal-area combination: r² = r1² + r2²
	radius := math.Sqrt(a.Radius*a.Radius + b.Radius*b.Radius)
	class := m.cfg.BandClass(radius * 2)
	mult := m.cfg.Classes[class].MassMultiplier

	// Mass-weighted centroid keeps the result where the pair's mass was
	total := a.Mass + b.Mass
	pos := r2.Scale(0.5, r2.Add(a.Pos, b.Pos))
	if total > 0 {
		pos = r2.Scale(1/total, r2.Add(r2.Scale(a.Mass, a.Pos), r2.Scale(b.Mass, b.Pos)))
	}

	vel := r2.Scale(0.5*m.rules.VelocityDamping, r2.Add(a.Vel, b.Vel))

	return BodyState{
		Category:       components.CategoryConsumable,
		Pos:            pos,
		Vel:            vel,
		Radius:         radius,
		Mass:           radius * radius * mult,
		Class:          components.ClassID(class),
		Points:         int(math.Round(float64(a.Points+b.Points) * m.rules.PointsFactor)),
		IsMergedResult: true,
	}
}

// TryMerge validates a contacting pair and, on success, marks both inputs dead
// and registers the result in the same call. The returned error is a guard
// rejection; registry errors are wrapped.
func (m *MergeSystem) TryMerge(r *Registry, idA, idB components.BodyID, wellPos r2.Vec, inContact bool, now float64) (Merge, error) {
	refA, okA := r.Get(idA)
	refB, okB := r.Get(idB)
	if !okA || !okB || refA.Consumable == nil || refB.Consumable == nil || refA.Body.Dead || refB.Body.Dead {
		return Merge{}, ErrMergeNotEligible
	}

	a, b := refA.State(), refB.State()
	if err := m.Check(a, b, wellPos, inContact, now); err != nil {
		return Merge{}, err
	}

	result := m.Combine(a, b)
	result.ID = r.NextID()

	// Inputs are flagged before the output exists; pointers go stale once it is created
	refA.Consumable.HasBeenMerged = true
	refB.Consumable.HasBeenMerged = true
	refA.Body.Dead = true
	refB.Body.Dead = true

	err := r.AddConsumable(result.ID, result.Pos, result.Vel, result.Radius,
		m.cfg.Classes[result.Class].MassMultiplier,
		components.Consumable{
			Class:          result.Class,
			Points:         result.Points,
			IsMergedResult: true,
		})
	if err != nil {
		// Roll back so neither input is lost without an output
		if ra, ok := r.Get(idA); ok {
			ra.Body.Dead = false
			ra.Consumable.HasBeenMerged = false
		}
		if rb, ok := r.Get(idB); ok {
			rb.Body.Dead = false
			rb.Consumable.HasBeenMerged = false
		}
		return Merge{}, fmt.Errorf("registering merge result: %w", err)
	}

	m.counter.Live++
	m.counter.LastMerge = now

	return Merge{A: a, B: b, Result: result}, nil
}

// OnMergedResultRemoved frees one unit of merge capacity, floored at zero.
func (m *MergeSystem) OnMergedResultRemoved() {
	if m.counter.Live > 0 {
		m.counter.Live--
	}
}
