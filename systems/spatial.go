// Package systems contains the simulation subsystems driven by the session tick.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Neighbor holds a nearby item with precomputed spatial data.
type Neighbor struct {
	Index  int    // Index into the positions slice the grid was built from
	Delta  r2.Vec // From query origin to the neighbor
	DistSq float64
}

type cellKey struct {
	col, row int
}

// SpatialGrid provides cell-bucketed neighbor lookups over an unbounded plane.
// Cells are hashed, so only occupied cells cost memory.
type SpatialGrid struct {
	cellSize float64
	cells    map[cellKey][]int
}

// NewSpatialGrid creates a spatial grid with the given cell size.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
}

// Clear removes all items from the grid, keeping bucket capacity.
func (g *SpatialGrid) Clear() {
	for k, v := range g.cells {
		if len(v) == 0 {
			// Bucket stayed empty for a whole rebuild; drop it so the map tracks the occupied region
			delete(g.cells, k)
			continue
		}
		g.cells[k] = v[:0]
	}
}

// Insert adds item index at position p.
func (g *SpatialGrid) Insert(index int, p r2.Vec) {
	k := g.key(p)
	g.cells[k] = append(g.cells[k], index)
}

// Build clears the grid and inserts every position by index.
func (g *SpatialGrid) Build(positions []r2.Vec) {
	g.Clear()
	for i, p := range positions {
		g.Insert(i, p)
	}
}

// QueryRadiusInto finds items within radius of p and appends them to dst.
// positions must be the slice the grid was built from. Pass exclude < 0 to keep all.
// Results are ordered by cell then insertion, so identical inputs give identical output.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, p r2.Vec, radius float64, exclude int, positions []r2.Vec) []Neighbor {
	cellRadius := int(math.Ceil(radius / g.cellSize))
	center := g.key(p)
	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			bucket, ok := g.cells[cellKey{col: center.col + dc, row: center.row + dr}]
			if !ok {
				continue
			}
			for _, idx := range bucket {
				if idx == exclude {
					continue
				}
				d := r2.Sub(positions[idx], p)
				distSq := r2.Dot(d, d)
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Index: idx, Delta: d, DistSq: distSq})
				}
			}
		}
	}

	return dst
}

// key returns the cell holding p.
func (g *SpatialGrid) key(p r2.Vec) cellKey {
	return cellKey{
		col: int(math.Floor(p.X / g.cellSize)),
		row: int(math.Floor(p.Y / g.cellSize)),
	}
}
