package components

import "gonum.org/v1/gonum/spatial/r2"

// Position represents a body's world position.
type Position struct {
	r2.Vec
}

// Velocity represents a body's velocity in world units per second.
type Velocity struct {
	r2.Vec
}
