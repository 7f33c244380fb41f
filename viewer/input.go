package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.state.Paused = !g.state.Paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.state.Restart = true
	}
	if rl.IsKeyPressed(rl.KeyM) {
		g.state.Muted = !g.state.Muted
	}

	// Speed control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.state.Speed = max(g.state.Speed/2, 0.25)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.state.Speed = min(g.state.Speed*2, 8)
	}

	g.overlays.HandleKeys()
	g.handleSteering()
	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.camera.Resize(w, h)
	g.controls.SetPosition(int32(w)-230, 10)
}

// handleSteering lets the mouse drive the well. Right click or Tab toggles
// between mouse steering and the autopilot.
func (g *Game) handleSteering() {
	if rl.IsKeyPressed(rl.KeyTab) || rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		g.state.Manual = !g.state.Manual
	}
	if !g.state.Manual {
		g.runner.ReleaseWell()
		return
	}
	g.steer()
}

// steer points the well at the cursor unless the cursor is over the controls.
func (g *Game) steer() {
	mouse := rl.GetMousePosition()
	if g.controls.Contains(g.overlays, mouse.X, mouse.Y) {
		return
	}
	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	g.runner.SetWellTarget(r2.Vec{X: float64(wx), Y: float64(wy)})
}

// handleCameraInput adjusts how much of the screen the well fills.
func (g *Game) handleCameraInput() {
	wheel := rl.GetMouseWheelMove()
	if wheel != 0 {
		g.fitFraction = min(max(g.fitFraction*(1+0.1*wheel), 0.04), 0.5)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.fitFraction = 0.12
	}
}
