package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gravwell/renderer"
	"github.com/pthm-cable/gravwell/systems"
	"github.com/pthm-cable/gravwell/ui"
)

const controlsLegend = "[Space] Pause  [R] Restart  [Tab/RMB] Steer  [</>] Speed  [Wheel] Zoom  [M] Mute  [F11] Fullscreen"

// Draw renders the world and the UI for one frame.
func (g *Game) Draw() {
	rl.BeginDrawing()

	if g.overlays.IsEnabled(ui.OverlayStarfield) {
		g.background.Draw(g.camera, g.time)
	} else {
		rl.ClearBackground(rl.Black)
	}

	session := g.runner.Session()
	bodies := session.Registry().Snapshot()
	effect := session.Effect()

	view := renderer.BodyView{
		Bypass: effect.RangeBypass(),
		Frozen: effect.Immobilized(),
		Time:   g.time,
	}
	if well, ok := session.Well(); ok {
		view.TargetClass = well.TargetClass
	}
	if g.overlays.IsEnabled(ui.OverlayGravityReach) {
		view.WellCutoff = float32(g.cfg.Physics.WellCutoff)
	}
	g.bodies.Draw(g.camera, bodies, view)

	if g.overlays.IsEnabled(ui.OverlayParticles) {
		g.particles.Draw(g.camera)
	}

	g.drawUI()
	rl.EndDrawing()
}

// drawUI renders the HUD, panels and legend in screen space.
func (g *Game) drawUI() {
	session := g.runner.Session()
	cfg := g.cfg

	data := ui.HUDData{
		Score:        session.Score(),
		HighScore:    session.HighScore(),
		Elapsed:      session.Elapsed(),
		Tick:         session.Tick(),
		MinDiameter:  cfg.Well.MinDiameter,
		Consumables:  session.Registry().ConsumableCount(),
		MergesLive:   session.MergeCounter().Live,
		MergesMax:    cfg.Merge.MaxConcurrent,
		Speed:        g.state.Speed,
		FPS:          rl.GetFPS(),
		Paused:       g.state.Paused,
		Ended:        session.Ended(),
		ScreenWidth:  int32(g.screenWidth),
		ScreenHeight: int32(g.screenHeight),
	}
	if well, ok := session.Well(); ok {
		data.Diameter = well.Diameter()
		data.Multiplier = systems.ConsumptionRulesFromConfig(cfg).Multiplier(data.Diameter)
		if int(well.TargetClass) < len(cfg.Classes) {
			data.TargetName = cfg.Classes[well.TargetClass].Name
		}
		data.TargetColor = g.bodies.Color(well.TargetClass)
	}
	if kind, ok := session.Effect().Active(); ok {
		data.EffectName = kind.String()
		data.EffectColor = renderer.EffectColor(kind)
		data.EffectRemaining = max(session.Effect().Expiry()-session.Now(), 0)
		data.EffectDuration = session.Effect().Duration(kind)
	}
	if data.Ended {
		data.EndReason = session.EndReason().String()
	}

	g.hud.Draw(data)
	if g.overlays.IsEnabled(ui.OverlayPerf) && g.opts.Perf != nil {
		g.perfPanel.Draw(g.opts.Perf.Stats())
	}
	g.controls.Draw(&g.state, g.overlays)
	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)
}
