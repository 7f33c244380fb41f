// Package components defines ECS components for the simulation.
//
// Every simulated body carries Identity, Position, Velocity and Body.
// Exactly one variant component (Well, Consumable or PowerUp) selects the
// body's category; subsystems query by variant instead of switching on type.
package components

import "math"

// BodyID is the stable, host-visible identity of a body.
type BodyID uint32

// Identity holds the stable id of a body.
type Identity struct {
	ID BodyID
}

// Body holds the physical substrate shared by all variants.
// Mass is always Radius² × MassMultiplier; use SetRadius to keep them in step.
type Body struct {
	Radius         float64
	Mass           float64
	MassMultiplier float64
	Category       Category
	Dead           bool // Marked for removal at the end of the tick
}

// NewBody returns a body with mass derived from radius.
func NewBody(cat Category, radius, massMultiplier float64) Body {
	b := Body{Category: cat, MassMultiplier: massMultiplier}
	b.SetRadius(radius)
	return b
}

// SetRadius updates radius and re-derives mass.
func (b *Body) SetRadius(r float64) {
	b.Radius = r
	b.Mass = r * r * b.MassMultiplier
}

// Diameter returns 2 × Radius.
func (b *Body) Diameter() float64 {
	return b.Radius * 2
}

// Area returns the disc area, used for equal-area merges.
func (b *Body) Area() float64 {
	return math.Pi * b.Radius * b.Radius
}

// Well is the player-controlled gravity well.
type Well struct {
	TargetClass ClassID
	MinDiameter float64
}

// Consumable is a body the well can grow or shrink from.
type Consumable struct {
	Class          ClassID
	Points         int  // Base points; class base, or the merged sum for merge results
	HasBeenMerged  bool // Set on inputs when they are consumed by a merge
	IsMergedResult bool // Output of a merge; never a merge input again
}

// PowerUp is a transient body granting a timed effect on collection.
type PowerUp struct {
	Kind     EffectKind
	Duration float64
}
