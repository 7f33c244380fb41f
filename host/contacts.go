// Package host provides reference host collaborators for the simulation:
// contact detection, spawn placement, distance culling, a scripted well pilot
// and a Runner that wires them to a game.Session.
package host

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/game"
	"github.com/pthm-cable/gravwell/systems"
)

// ContactDetector finds overlapping circles using the shared spatial grid.
type ContactDetector struct {
	grid      *systems.SpatialGrid
	positions []r2.Vec
	neighbors []systems.Neighbor
}

// NewContactDetector creates a detector. cellSize should be at least the
// largest body diameter the host expects, or pairs are still found but
// through more buckets.
func NewContactDetector(cellSize float64) *ContactDetector {
	return &ContactDetector{grid: systems.NewSpatialGrid(cellSize)}
}

// Detect returns every pair of bodies whose circles touch, each pair once with
// A < B, sorted by (A, B). bodies is usually Registry.Snapshot().
func (d *ContactDetector) Detect(bodies []systems.BodyState) []game.ContactPair {
	if len(bodies) < 2 {
		return nil
	}

	d.positions = d.positions[:0]
	maxRadius := 0.0
	for _, b := range bodies {
		d.positions = append(d.positions, b.Pos)
		if b.Radius > maxRadius {
			maxRadius = b.Radius
		}
	}
	d.grid.Build(d.positions)

	var pairs []game.ContactPair
	for i, b := range bodies {
		// Any partner touching b is within b.Radius + the largest radius
		d.neighbors = d.grid.QueryRadiusInto(d.neighbors[:0], b.Pos, b.Radius+maxRadius, i, d.positions)
		for _, n := range d.neighbors {
			o := bodies[n.Index]
			if o.ID <= b.ID {
				continue
			}
			reach := b.Radius + o.Radius
			if n.DistSq <= reach*reach {
				pairs = append(pairs, game.ContactPair{A: b.ID, B: o.ID})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// filterContacts drops pairs that touch any id in gone.
func filterContacts(pairs []game.ContactPair, gone map[components.BodyID]bool) []game.ContactPair {
	if len(gone) == 0 {
		return pairs
	}
	kept := pairs[:0]
	for _, p := range pairs {
		if gone[p.A] || gone[p.B] {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
