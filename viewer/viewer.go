// Package viewer is the interactive raylib front end. It plays the host
// role through host.Runner and only ever reads session state back.
package viewer

import (
	"fmt"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gravwell/audio"
	"github.com/pthm-cable/gravwell/camera"
	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/config"
	"github.com/pthm-cable/gravwell/game"
	"github.com/pthm-cable/gravwell/host"
	"github.com/pthm-cable/gravwell/renderer"
	"github.com/pthm-cable/gravwell/telemetry"
	"github.com/pthm-cable/gravwell/ui"
)

// maxStepsPerFrame bounds catch-up after a stall.
const maxStepsPerFrame = 32

// Options configures a viewer.
type Options struct {
	Seed int64
	// Session builds the options for each new session; the viewer fills in
	// Seed and HighScore itself.
	Session func() game.Options
	Audio   *audio.Player
	Perf    *telemetry.PerfCollector
	Logger  *slog.Logger
}

// Game is the interactive viewer. Create it after the raylib window exists.
type Game struct {
	cfg  *config.Config
	opts Options
	log  *slog.Logger

	runner *host.Runner
	seed   int64
	last   game.TickOutput

	camera     *camera.Camera
	background *renderer.BackgroundRenderer
	bodies     *renderer.BodyRenderer
	particles  *renderer.ParticleSystem

	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	controls  *ui.ControlsPanel
	overlays  *ui.OverlayRegistry
	state     ui.ControlsState

	screenWidth  float32
	screenHeight float32
	accumulator  float64
	fitFraction  float32
	time         float32
}

// NewGame creates the viewer and its first session.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Audio == nil {
		opts.Audio = audio.NewPlayer(config.AudioConfig{})
	}

	w := float32(cfg.Screen.Width)
	h := float32(cfg.Screen.Height)
	names := make([]string, len(cfg.Classes))
	for i, cl := range cfg.Classes {
		names[i] = cl.Name
	}

	g := &Game{
		cfg:          cfg,
		opts:         opts,
		log:          logger.With("component", "viewer"),
		seed:         opts.Seed,
		camera:       camera.New(w, h),
		background:   renderer.NewBackgroundRenderer(6, 7, 16, opts.Seed),
		bodies:       renderer.NewBodyRenderer(names),
		particles:    renderer.NewParticleSystem(2048, opts.Seed),
		hud:          ui.NewHUD(),
		perfPanel:    ui.NewPerfPanel(10, 260),
		controls:     ui.NewControlsPanel(int32(w)-230, 10, 220),
		overlays:     ui.NewOverlayRegistry(),
		state:        ui.ControlsState{Speed: 1},
		screenWidth:  w,
		screenHeight: h,
		fitFraction:  0.12,
	}
	if err := g.newSession(0); err != nil {
		return nil, err
	}
	return g, nil
}

// newSession replaces the running session, carrying the high score over.
func (g *Game) newSession(highScore int) error {
	var so game.Options
	if g.opts.Session != nil {
		so = g.opts.Session()
	}
	so.Seed = g.seed
	so.HighScore = highScore
	if so.Logger == nil {
		so.Logger = g.log
	}

	session, err := game.NewSession(g.cfg, so)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	// Placement gets its own stream so viewer runs replay like headless ones
	g.runner = host.NewRunner(session, g.cfg, rand.New(rand.NewSource(g.seed+1)))
	g.last = game.TickOutput{}
	g.accumulator = 0
	if g.state.Manual {
		g.steer()
	}

	well, _ := session.Well()
	g.camera.X, g.camera.Y = float32(well.Pos.X), float32(well.Pos.Y)
	return nil
}

// restart begins a new session with the next seed.
func (g *Game) restart() {
	high := g.runner.Session().HighScore()
	g.seed++
	if err := g.newSession(high); err != nil {
		g.log.Error("restart failed", "error", err)
		return
	}
	g.log.Info("session restarted", "seed", g.seed, "high_score", high)
}

// Update advances the simulation by the frame time scaled by the speed slider.
func (g *Game) Update() {
	dt := rl.GetFrameTime()
	g.time += dt
	if g.opts.Perf != nil {
		g.opts.Perf.RecordFrame()
	}

	g.handleInput()
	if g.state.Restart {
		g.state.Restart = false
		g.restart()
	}

	session := g.runner.Session()
	if !g.state.Paused && !session.Ended() {
		g.accumulator += float64(dt * g.state.Speed)
		steps := 0
		for g.accumulator >= g.cfg.Physics.DT && steps < maxStepsPerFrame {
			g.accumulator -= g.cfg.Physics.DT
			g.react(g.runner.Step())
			steps++
			if session.Ended() {
				break
			}
		}
		if steps == maxStepsPerFrame {
			g.accumulator = 0
		}
	}

	g.particles.Update(dt)
	if well, ok := session.Well(); ok {
		g.camera.Follow(float32(well.Pos.X), float32(well.Pos.Y), dt)
		g.camera.FitDiameter(float32(well.Diameter()), g.fitFraction, dt)
	}
}

// react turns one tick's output into particles and sound.
func (g *Game) react(out game.TickOutput) {
	g.last = out

	for _, ch := range out.Changes {
		x, y := float32(ch.Body.Pos.X), float32(ch.Body.Pos.Y)
		size := float32(ch.Body.Radius) * 0.3
		switch ch.Reason {
		case game.ChangeConsumed:
			color := g.bodies.Color(ch.Body.Class)
			if ch.Body.Category == components.CategoryPowerUp {
				color = renderer.EffectColor(ch.Body.Kind)
			}
			g.particles.Burst(x, y, 14, 120, size, color)
		case game.ChangeMergedResultCreated:
			g.particles.Burst(x, y, 24, 160, size, rl.White)
		case game.ChangeFatal:
			g.particles.Burst(x, y, 60, 260, size, rl.Red)
		}
	}

	if !g.state.Muted {
		g.opts.Audio.Play(audio.CuesFor(out)...)
	}
}

// Unload releases viewer resources. The window itself belongs to main.
func (g *Game) Unload() {
	g.opts.Audio.Close()
}

// Session returns the running session.
func (g *Game) Session() *game.Session {
	return g.runner.Session()
}
