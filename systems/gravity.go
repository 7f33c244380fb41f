package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/config"
)

// GravityParams holds the constants of the attraction model.
type GravityParams struct {
	G          float64 // well -> consumable
	WellCutoff float64 // R_well
	BodyG      float64 // consumable <-> consumable, G × 0.15
	BodyCutoff float64 // R_body, half of R_well
}

// GravityParamsFromConfig extracts gravity constants from cfg.
func GravityParamsFromConfig(cfg *config.Config) GravityParams {
	return GravityParams{
		G:          cfg.Physics.Gravity,
		WellCutoff: cfg.Physics.WellCutoff,
		BodyG:      cfg.Derived.BodyGravity,
		BodyCutoff: cfg.Derived.BodyCutoff,
	}
}

// VelocityDelta is the velocity change gravity produced for one body this tick.
type VelocityDelta struct {
	ID components.BodyID
	DV r2.Vec
}

// GravitySystem computes per-tick attraction between the well and consumables.
// The well does not move under simulated gravity; power-ups neither feel nor exert it.
type GravitySystem struct {
	params GravityParams
	grid   *SpatialGrid

	// Scratch buffers reused across ticks
	positions []r2.Vec
	forces    []r2.Vec
	neighbors []Neighbor
}

// NewGravitySystem creates a gravity system. cellSize sizes the pair-search grid.
func NewGravitySystem(params GravityParams, cellSize float64) *GravitySystem {
	if cellSize <= 0 {
		cellSize = params.BodyCutoff
	}
	return &GravitySystem{
		params: params,
		grid:   NewSpatialGrid(cellSize),
	}
}

// Compute returns a velocity delta for every consumable that felt a force.
// bodies must be in id order (Registry.Snapshot); deltas come back in the same order.
func (s *GravitySystem) Compute(well BodyState, hasWell bool, bodies []BodyState, dt float64) []VelocityDelta {
	cons := make([]BodyState, 0, len(bodies))
	for _, b := range bodies {
		if b.Category == components.CategoryConsumable {
			cons = append(cons, b)
		}
	}
	if len(cons) == 0 || dt <= 0 {
		return nil
	}

	s.forces = resize(s.forces, len(cons))
	s.positions = resize(s.positions, len(cons))
	for i := range cons {
		s.forces[i] = r2.Vec{}
		s.positions[i] = cons[i].Pos
	}

	if hasWell {
		s.accumulateWell(well, cons)
	}
	s.accumulatePairs(cons)

	var out []VelocityDelta
	for i, c := range cons {
		f := s.forces[i]
		if f.X == 0 && f.Y == 0 {
			continue
		}
		// Δv = (F / m) × Δt
		out = append(out, VelocityDelta{ID: c.ID, DV: r2.Scale(dt/c.Mass, f)})
	}
	return out
}

// accumulateWell adds G × M × m / d² toward the well for consumables within R_well.
func (s *GravitySystem) accumulateWell(well BodyState, cons []BodyState) {
	cutoffSq := s.params.WellCutoff * s.params.WellCutoff
	for i, c := range cons {
		d := r2.Sub(well.Pos, c.Pos)
		distSq := r2.Dot(d, d)
		if distSq == 0 || distSq > cutoffSq {
			continue
		}
		mag := s.params.G * well.Mass * c.Mass / distSq
		s.forces[i] = r2.Add(s.forces[i], r2.Scale(mag, r2.Unit(d)))
	}
}

// accumulatePairs applies consumable <-> consumable attraction within R_body.
// Only the lighter body of a pair is pulled, toward the heavier one. With equal
// masses the higher-id body is pulled.
func (s *GravitySystem) accumulatePairs(cons []BodyState) {
	if s.params.BodyCutoff <= 0 || s.params.BodyG == 0 {
		return
	}
	s.grid.Build(s.positions)

	for i := range cons {
		s.neighbors = s.grid.QueryRadiusInto(s.neighbors[:0], s.positions[i], s.params.BodyCutoff, i, s.positions)
		for _, n := range s.neighbors {
			j := n.Index
			// Visit each unordered pair once
			if j < i || n.DistSq == 0 {
				continue
			}
			a, b := &cons[i], &cons[j]
			mag := s.params.BodyG * a.Mass * b.Mass / n.DistSq
			dir := r2.Unit(n.Delta) // from i toward j

			if a.Mass < b.Mass {
				s.forces[i] = r2.Add(s.forces[i], r2.Scale(mag, dir))
			} else {
				s.forces[j] = r2.Add(s.forces[j], r2.Scale(-mag, dir))
			}
		}
	}
}

func resize(v []r2.Vec, n int) []r2.Vec {
	if cap(v) < n {
		return make([]r2.Vec, n)
	}
	return v[:n]
}
