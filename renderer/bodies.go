package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gravwell/camera"
	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/systems"
)

// classPalette maps class names to fill colors. Unknown names fall back to grey.
var classPalette = map[string]rl.Color{
	"yellow": {R: 240, G: 210, B: 60, A: 255},
	"blue":   {R: 70, G: 140, B: 240, A: 255},
	"white":  {R: 235, G: 235, B: 240, A: 255},
	"orange": {R: 245, G: 140, B: 40, A: 255},
	"red":    {R: 225, G: 60, B: 55, A: 255},
}

var (
	wellFill     = rl.Color{R: 8, G: 6, B: 14, A: 255}
	frozenTint   = rl.Color{R: 150, G: 210, B: 255, A: 255}
	dangerRing   = rl.Color{R: 255, G: 60, B: 60, A: 200}
	bypassColor  = rl.Color{R: 120, G: 255, B: 160, A: 255}
	freezeColor  = rl.Color{R: 120, G: 200, B: 255, A: 255}
	cutoffColor = rl.Color{R: 255, G: 255, B: 255, A: 18}
)

// ClassColor returns the fill color for a class name.
func ClassColor(name string) rl.Color {
	if c, ok := classPalette[name]; ok {
		return c
	}
	return rl.Gray
}

// EffectColor returns the color used for a power-up kind.
func EffectColor(kind components.EffectKind) rl.Color {
	if kind == components.EffectImmobilize {
		return freezeColor
	}
	return bypassColor
}

// BodyView is the per-frame state the body renderer needs beyond the bodies.
type BodyView struct {
	TargetClass components.ClassID
	Bypass      bool
	Frozen      bool
	WellCutoff  float32 // Radius of the well's gravity reach; 0 hides it
	Time        float32
}

// BodyRenderer draws wells, consumables and power-ups.
type BodyRenderer struct {
	colors []rl.Color
}

// NewBodyRenderer creates a renderer with one color per class, in rank order.
func NewBodyRenderer(classNames []string) *BodyRenderer {
	colors := make([]rl.Color, len(classNames))
	for i, name := range classNames {
		colors[i] = ClassColor(name)
	}
	return &BodyRenderer{colors: colors}
}

// Color returns the color of class id.
func (r *BodyRenderer) Color(id components.ClassID) rl.Color {
	if int(id) < len(r.colors) {
		return r.colors[id]
	}
	return rl.Gray
}

// Draw renders bodies in snapshot order with the well last, so it sits on top.
func (r *BodyRenderer) Draw(cam *camera.Camera, bodies []systems.BodyState, view BodyView) {
	var well *systems.BodyState
	for i := range bodies {
		b := &bodies[i]
		if b.Category == components.CategoryWell {
			well = b
		}
	}
	wellDiameter := math.Inf(1)
	if well != nil {
		wellDiameter = well.Diameter()
		if view.WellCutoff > 0 {
			sx, sy := cam.WorldToScreen(float32(well.Pos.X), float32(well.Pos.Y))
			rl.DrawCircleLines(int32(sx), int32(sy), view.WellCutoff*cam.Zoom, cutoffColor)
		}
	}

	for i := range bodies {
		b := &bodies[i]
		x, y, rad := float32(b.Pos.X), float32(b.Pos.Y), float32(b.Radius)
		if b.Category == components.CategoryWell || !cam.IsVisible(x, y, rad) {
			continue
		}
		sx, sy := cam.WorldToScreen(x, y)
		sr := max(rad*cam.Zoom, 1)
		center := rl.Vector2{X: sx, Y: sy}

		switch b.Category {
		case components.CategoryConsumable:
			fill := r.Color(b.Class)
			if view.Frozen {
				fill = lerpColor(fill, frozenTint, 0.5)
			}
			rl.DrawCircleV(center, sr, fill)
			if b.IsMergedResult {
				rl.DrawCircleLinesV(center, sr+2, rl.Fade(rl.White, 0.8))
			}
			// Anything the well cannot swallow gets a warning ring
			if b.Diameter() >= wellDiameter {
				rl.DrawCircleLinesV(center, sr+4, dangerRing)
			}
		case components.CategoryPowerUp:
			pulse := 1 + 0.15*float32(math.Sin(float64(view.Time*6)))
			c := EffectColor(b.Kind)
			rl.DrawCircleV(center, sr*pulse*1.6, rl.Fade(c, 0.2))
			rl.DrawCircleV(center, sr, c)
			label := "B"
			if b.Kind == components.EffectImmobilize {
				label = "I"
			}
			fs := int32(max(sr, 10))
			rl.DrawText(label, int32(sx)-rl.MeasureText(label, fs)/2, int32(sy)-fs/2, fs, wellFill)
		}
	}

	if well != nil {
		r.drawWell(cam, well, view)
	}
}

func (r *BodyRenderer) drawWell(cam *camera.Camera, well *systems.BodyState, view BodyView) {
	sx, sy := cam.WorldToScreen(float32(well.Pos.X), float32(well.Pos.Y))
	sr := max(float32(well.Radius)*cam.Zoom, 2)
	center := rl.Vector2{X: sx, Y: sy}

	// Accretion glow in the target color
	target := r.Color(view.TargetClass)
	for i := 3; i >= 1; i-- {
		rl.DrawCircleV(center, sr*(1+0.18*float32(i)), rl.Fade(target, 0.08*float32(4-i)))
	}
	rl.DrawCircleV(center, sr, wellFill)
	rl.DrawRing(center, sr-3, sr, 0, 360, 48, target)
	if view.Bypass {
		rl.DrawCircleLinesV(center, sr+6, bypassColor)
	}
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t)
	}
	return rl.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
