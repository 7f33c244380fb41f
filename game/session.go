// Package game runs the deterministic simulation session: one Step per host tick.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/config"
	"github.com/pthm-cable/gravwell/systems"
	"github.com/pthm-cable/gravwell/telemetry"
)

// WellID is the id the session gives the singleton well.
const WellID components.BodyID = 1

// Options configures a new session.
type Options struct {
	Seed         int64   // RNG seed for scheduling and target cycling
	Start        float64 // Simulation time of session start
	WellPosition r2.Vec
	HighScore    int // Previously persisted high score

	Logger    *slog.Logger             // nil uses slog.Default()
	Collector *telemetry.Collector     // optional window stats
	Perf      *telemetry.PerfCollector // optional phase timing
	Output    *telemetry.OutputManager // optional CSV output
	LogStats  bool                     // log each flushed window

	// StatsCallback receives every flushed window; used by the tuner
	StatsCallback func(telemetry.WindowStats)
}

// scoreDelta is a score change waiting for the score phase of the tick.
type scoreDelta struct {
	source components.BodyID
	delta  int
}

// Session holds the complete simulation state. It is owned by the goroutine
// calling Step; nothing in it is safe for concurrent use.
type Session struct {
	cfg *config.Config
	log *slog.Logger
	rng *rand.Rand

	registry  *systems.Registry
	gravity   *systems.GravitySystem
	physics   *systems.PhysicsSystem
	consume   systems.ConsumptionRules
	merge     *systems.MergeSystem
	scheduler *systems.PowerUpScheduler
	effect    *systems.ActiveEffect
	score     *systems.ScoreEngine
	target    *systems.TargetCycler

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool
	onStats   func(telemetry.WindowStats)

	tick      int64
	start     float64
	now       float64
	stepped   bool
	ended     bool
	endReason systems.EndReason

	// Per-tick scratch, reset at the start of every Step
	pendingScore []scoreDelta
	removal      map[components.BodyID]ChangeReason

	lastSent map[components.BodyID]BodyMutation
}

// NewSession creates a session, spawns the well and schedules both power-up kinds.
func NewSession(cfg *config.Config, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Private copy: later edits to the caller's config must not reach a running session
	own := *cfg
	own.Classes = append([]config.ClassConfig(nil), cfg.Classes...)
	cfg = &own

	rng := rand.New(rand.NewSource(opts.Seed))

	reg := systems.NewRegistry()
	target, ok := cfg.Derived.ClassIndex[cfg.Well.InitialTarget]
	if !ok {
		target = 0
	}
	err := reg.AddWell(WellID, opts.WellPosition, cfg.Well.InitialDiameter, components.Well{
		TargetClass: components.ClassID(target),
		MinDiameter: cfg.Well.MinDiameter,
	})
	if err != nil {
		return nil, fmt.Errorf("spawning well: %w", err)
	}

	s := &Session{
		cfg:       cfg,
		log:       logger.With("component", "session"),
		rng:       rng,
		registry:  reg,
		gravity:   systems.NewGravitySystem(systems.GravityParamsFromConfig(cfg), cfg.Physics.GridCellSize),
		physics:   systems.NewPhysicsSystem(reg),
		consume:   systems.ConsumptionRulesFromConfig(cfg),
		merge:     systems.NewMergeSystem(cfg),
		scheduler: systems.NewPowerUpScheduler(cfg, rng, opts.Start),
		effect:    systems.NewActiveEffect(cfg),
		score:     systems.NewScoreEngine(opts.HighScore),
		target:    systems.NewTargetCycler(cfg.Well.TargetCycle, len(cfg.Classes), rng, opts.Start),
		collector: opts.Collector,
		perf:      opts.Perf,
		output:    opts.Output,
		logStats:  opts.LogStats,
		onStats:   opts.StatsCallback,
		start:     opts.Start,
		now:       opts.Start,
		removal:   make(map[components.BodyID]ChangeReason),
		lastSent:  make(map[components.BodyID]BodyMutation),
	}

	s.log.Info("session started",
		"seed", opts.Seed,
		"start", opts.Start,
		"target", cfg.Classes[target].Name,
		"high_score", s.score.High(),
	)
	return s, nil
}

// Config returns the configuration the session was created with.
func (s *Session) Config() *config.Config {
	return s.cfg
}

// Registry exposes the body registry for read-only host use (contact detection, drawing).
func (s *Session) Registry() *systems.Registry {
	return s.registry
}

// NextID reserves a fresh body id for a host spawn.
func (s *Session) NextID() components.BodyID {
	return s.registry.NextID()
}

// Now returns the simulation time of the last processed tick.
func (s *Session) Now() float64 {
	return s.now
}

// Elapsed returns seconds since session start.
func (s *Session) Elapsed() float64 {
	return s.now - s.start
}

// Tick returns the number of processed ticks.
func (s *Session) Tick() int64 {
	return s.tick
}

// Ended reports whether a fatal result has ended the session.
func (s *Session) Ended() bool {
	return s.ended
}

// EndReason returns why the session ended, or EndNone.
func (s *Session) EndReason() systems.EndReason {
	return s.endReason
}

// Score returns the current score.
func (s *Session) Score() int {
	return s.score.Total()
}

// HighScore returns the high-water mark for the host to persist.
func (s *Session) HighScore() int {
	return s.score.High()
}

// Effect returns the active effect slot.
func (s *Session) Effect() *systems.ActiveEffect {
	return s.effect
}

// MergeCounter returns the current merge counter.
func (s *Session) MergeCounter() systems.MergeCounter {
	return s.merge.Counter()
}

// Scheduler returns the power-up scheduler for inspection.
func (s *Session) Scheduler() *systems.PowerUpScheduler {
	return s.scheduler
}

// Well returns a copy of the well's state.
func (s *Session) Well() (systems.BodyState, bool) {
	ref, ok := s.registry.Well()
	if !ok {
		return systems.BodyState{}, false
	}
	return ref.State(), true
}
