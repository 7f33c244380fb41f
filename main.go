package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gravwell/audio"
	"github.com/pthm-cable/gravwell/config"
	"github.com/pthm-cable/gravwell/game"
	"github.com/pthm-cable/gravwell/host"
	"github.com/pthm-cable/gravwell/telemetry"
	"github.com/pthm-cable/gravwell/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics under the scripted pilot")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	highScore := flag.Int("high-score", 0, "Starting high score")
	withAudio := flag.Bool("audio", false, "Enable audio cues (overrides config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *withAudio {
		cfg.Audio.Enabled = true
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to open output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	sessionOptions := func() game.Options {
		return game.Options{
			Logger:    logger,
			Collector: telemetry.NewCollector(statsWindowSec, 0),
			Perf:      perf,
			Output:    output,
			LogStats:  *logStats,
		}
	}

	if *headless {
		runHeadless(cfg, sessionOptions(), rngSeed, *highScore, *maxTicks)
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Gravity Well")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	player := audio.NewPlayer(cfg.Audio)
	if err := player.Start(); err != nil {
		slog.Warn("audio disabled", "error", err)
	}

	g, err := viewer.NewGame(cfg, viewer.Options{
		Seed:    rngSeed,
		Session: sessionOptions,
		Audio:   player,
		Perf:    perf,
		Logger:  logger,
	})
	if err != nil {
		slog.Error("failed to start viewer", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && int(g.Session().Tick()) >= *maxTicks {
			break
		}
	}
}

// runHeadless drives one session under the scripted pilot until it ends or
// maxTicks is reached.
func runHeadless(cfg *config.Config, opts game.Options, seed int64, highScore, maxTicks int) {
	opts.Seed = seed
	opts.HighScore = highScore
	session, err := game.NewSession(cfg, opts)
	if err != nil {
		slog.Error("failed to start session", "error", err)
		return
	}
	runner := host.NewRunner(session, cfg, rand.New(rand.NewSource(seed+1)))

	slog.Info("starting headless simulation",
		"seed", seed,
		"stats_window", cfg.Telemetry.StatsWindow,
		"max_ticks", maxTicks,
	)

	start := time.Now()
	for !session.Ended() {
		runner.Step()
		if maxTicks > 0 && int(session.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", session.Tick())
			break
		}
	}

	slog.Info("headless run finished",
		"ticks", session.Tick(),
		"sim_seconds", session.Elapsed(),
		"wall", time.Since(start).Round(time.Millisecond),
		"score", session.Score(),
		"high_score", session.HighScore(),
		"end_reason", session.EndReason().String(),
	)
	if opts.Perf != nil {
		opts.Perf.Stats().LogStats()
	}
}
