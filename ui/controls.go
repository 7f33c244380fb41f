package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is what the controls panel edits. The viewer owns it and
// reads it back every frame.
type ControlsState struct {
	Paused  bool
	Speed   float32 // Simulation ticks per rendered tick
	Muted   bool
	Restart bool // Set for one frame when the restart button is pressed
	Manual  bool // Mouse steering instead of the autopilot
}

// ControlsPanel renders the right-side panel of raygui controls and the
// overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Contains reports whether a screen point is over the panel, so clicks on
// it are not taken as steering input.
func (c *ControlsPanel) Contains(overlays *OverlayRegistry, px, py float32) bool {
	if !overlays.IsEnabled(OverlayControls) {
		return false
	}
	h := c.height(overlays)
	return px >= float32(c.x) && px <= float32(c.x+c.width) && py >= float32(c.y) && py <= float32(c.y+h)
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	r := c.renderer
	items := 0
	for _, cat := range overlays.Categories() {
		items += len(overlays.ByCategory(cat)) + 1
	}
	return 30 + 4*36 + int32(items)*r.Theme.LineHeight + r.Theme.Padding*3
}

// Draw renders the panel and applies widget changes to state.
func (c *ControlsPanel) Draw(state *ControlsState, overlays *OverlayRegistry) {
	if !overlays.IsEnabled(OverlayControls) {
		return
	}
	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height(overlays))

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	w := float32(c.width - padding*2)

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += 26

	half := (w - 8) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 28}, toggleText(state.Paused, "Resume", "Pause")) {
		state.Paused = !state.Paused
	}
	if gui.Button(rl.Rectangle{X: x + half + 8, Y: y, Width: half, Height: 28}, "Restart") {
		state.Restart = true
	}
	y += 36

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 28}, toggleText(state.Manual, "Autopilot", "Steer")) {
		state.Manual = !state.Manual
	}
	if gui.Button(rl.Rectangle{X: x + half + 8, Y: y, Width: half, Height: 28}, toggleText(state.Muted, "Unmute", "Mute")) {
		state.Muted = !state.Muted
	}
	y += 36

	rl.DrawText(fmt.Sprintf("Speed %.1fx", state.Speed), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	state.Speed = gui.SliderBar(rl.Rectangle{X: x + 24, Y: y, Width: w - 56, Height: 16}, "0.2", "8", state.Speed, 0.2, 8)
	y += 36

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), int32(x), int32(y), r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += float32(r.Theme.LineHeight)
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(int32(x), int32(y), desc, overlays.IsEnabled(desc.ID), int32(w))
			y += float32(r.Theme.LineHeight)
		}
	}
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+3, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
