// Package camera provides a 2D follow camera for viewport control.
package camera

import "math"

// Camera controls the viewport into the simulation world.
// The world is unbounded, so the camera follows a target instead of wrapping.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Zoom constraints
	MinZoom, MaxZoom float32

	// Follow smoothing: fraction of the remaining distance closed per second
	Stiffness float32
}

// New creates a camera centered on the world origin with 1:1 zoom.
func New(viewportW, viewportH float32) *Camera {
	return &Camera{
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   0.2,
		MaxZoom:   4.0,
		Stiffness: 6.0,
	}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Follow eases the camera toward (tx, ty). dt is the frame time in seconds.
// The easing is frame-rate independent: the same elapsed time closes the same
// fraction of the gap however it is split into frames.
func (c *Camera) Follow(tx, ty, dt float32) {
	if dt <= 0 {
		return
	}
	t := 1 - float32(math.Exp(float64(-c.Stiffness*dt)))
	c.X += (tx - c.X) * t
	c.Y += (ty - c.Y) * t
}

// FitDiameter eases zoom so a body of the given diameter spans roughly
// fraction of the shorter viewport side.
func (c *Camera) FitDiameter(diameter, fraction, dt float32) {
	if diameter <= 0 || fraction <= 0 || dt <= 0 {
		return
	}
	side := c.ViewportW
	if c.ViewportH < side {
		side = c.ViewportH
	}
	want := clamp(side*fraction/diameter, c.MinZoom, c.MaxZoom)
	t := 1 - float32(math.Exp(float64(-c.Stiffness*dt/4)))
	c.SetZoom(c.Zoom + (want-c.Zoom)*t)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
// Returns (minX, minY, maxX, maxY) in world coordinates.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = c.X - halfW
	maxX = c.X + halfW
	minY = c.Y - halfH
	maxY = c.Y + halfH
	return
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
