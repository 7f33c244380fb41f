package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gravwell/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Score       int
	HighScore   int
	Multiplier  int
	Elapsed     float64
	Tick        int64
	Diameter    float64
	MinDiameter float64
	TargetName  string
	TargetColor rl.Color
	Consumables int
	MergesLive  int
	MergesMax   int

	EffectName      string // Empty when no effect is active
	EffectColor     rl.Color
	EffectRemaining float64
	EffectDuration  float64

	Speed        float32
	FPS          int32
	Paused       bool
	Ended        bool
	EndReason    string
	ScreenWidth  int32
	ScreenHeight int32
}

func hud(d any) *HUDData { return d.(*HUDData) }

// statusPanel lays out the always-on status panel.
var statusPanel = PanelDescriptor{
	Title: "Gravity Well",
	Width: 250,
	Sections: []SectionDescriptor{
		{
			Title: "Score",
			Fields: []FieldDescriptor{
				{Label: "Score", Widget: WidgetText, TextGetter: func(d any) string { return fmt.Sprintf("%d", hud(d).Score) }},
				{Label: "High", Widget: WidgetText, TextGetter: func(d any) string { return fmt.Sprintf("%d", hud(d).HighScore) }},
				{Label: "Multiplier", Widget: WidgetText, TextGetter: func(d any) string { return fmt.Sprintf("x%d", hud(d).Multiplier) }},
				{Label: "Time", Widget: WidgetText, TextGetter: func(d any) string { return formatClock(hud(d).Elapsed) }},
			},
		},
		{
			Title: "Well",
			Fields: []FieldDescriptor{
				{
					Label: "Target", Widget: WidgetColorSwatch,
					ColorGetter: func(d any) rl.Color { return hud(d).TargetColor },
					TextGetter:  func(d any) string { return hud(d).TargetName },
				},
				{
					Label: "Diameter", Widget: WidgetText, Format: "%.1f",
					Getter: func(d any) float32 { return float32(hud(d).Diameter) },
					// Red once one more shrink would end the run
					ColorOf: func(d any) rl.Color {
						h := hud(d)
						if h.Diameter < h.MinDiameter*1.12 {
							return DefaultTheme().AlertColor
						}
						return DefaultTheme().ValueColor
					},
				},
				{Label: "Bodies", Widget: WidgetText, TextGetter: func(d any) string { return fmt.Sprintf("%d", hud(d).Consumables) }},
				{Label: "Merges", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("%d / %d", hud(d).MergesLive, hud(d).MergesMax)
				}},
			},
		},
		{
			Title:   "Effect",
			Visible: func(d any) bool { return hud(d).EffectName != "" },
			Fields: []FieldDescriptor{
				{
					Label: "Active", Widget: WidgetColorSwatch,
					ColorGetter: func(d any) rl.Color { return hud(d).EffectColor },
					TextGetter: func(d any) string {
						return fmt.Sprintf("%s  %.1fs", hud(d).EffectName, hud(d).EffectRemaining)
					},
				},
				{
					Label: "Left", Widget: WidgetBar,
					Getter: func(d any) float32 {
						h := hud(d)
						if h.EffectDuration <= 0 {
							return 0
						}
						return float32(h.EffectRemaining / h.EffectDuration)
					},
				},
			},
		},
	},
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the status panel and the status line.
func (h *HUD) Draw(data HUDData) {
	h.renderer.DrawPanelDescriptor(10, 10, statusPanel, &data)

	status := fmt.Sprintf("Tick: %d | Speed: %.1fx | FPS: %d", data.Tick, data.Speed, data.FPS)
	rl.DrawText(status, 10, data.ScreenHeight-45, 14, rl.Gray)
	if data.Paused {
		rl.DrawText("PAUSED", data.ScreenWidth/2-rl.MeasureText("PAUSED", 30)/2, 20, 30, rl.Yellow)
	}
	if data.Ended {
		h.drawGameOver(data)
	}
}

// drawGameOver dims the screen and shows the final score.
func (h *HUD) drawGameOver(data HUDData) {
	rl.DrawRectangle(0, 0, data.ScreenWidth, data.ScreenHeight, rl.Color{R: 0, G: 0, B: 0, A: 150})

	lines := []struct {
		text  string
		size  int32
		color rl.Color
	}{
		{"GAME OVER", 48, h.renderer.Theme.AlertColor},
		{data.EndReason, 20, rl.LightGray},
		{fmt.Sprintf("Score %d   High %d", data.Score, data.HighScore), 26, rl.White},
		{"R to restart", 16, rl.Gray},
	}
	y := data.ScreenHeight/2 - 80
	for _, l := range lines {
		rl.DrawText(l.text, data.ScreenWidth/2-rl.MeasureText(l.text, l.size)/2, y, l.size, l.color)
		y += l.size + 14
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// formatClock renders seconds as m:ss.
func formatClock(sec float64) string {
	d := time.Duration(sec * float64(time.Second))
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// PerfPanel renders the per-phase tick timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel in step order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	const width = 260
	r := p.renderer
	height := int32(len(telemetry.Phases))*14 + 74
	r.DrawPanel(p.x, p.y, width, height)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Avg: %s  (%.0f tps)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16
	rl.DrawText(fmt.Sprintf("p95: %s  max: %s", stats.P95TickDuration.Round(time.Microsecond), stats.MaxTickDuration.Round(time.Microsecond)), x, y, 12, rl.LightGray)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
