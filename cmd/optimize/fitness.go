package main

import (
	"io"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/gravwell/config"
	"github.com/pthm-cable/gravwell/game"
	"github.com/pthm-cable/gravwell/host"
	"github.com/pthm-cable/gravwell/telemetry"
)

// FitnessEvaluator runs headless sessions under the scripted pilot and
// scores how close they come to the target session length.
type FitnessEvaluator struct {
	params         *ParamVector
	maxTicks       int64
	seeds          []int64
	baseConfig     *config.Config
	targetSurvival float64 // Sim-seconds a good run should last
	statsWindow    float64

	mu          sync.Mutex
	lastSummary evalSummary
}

// evalSummary aggregates one Evaluate call across seeds.
type evalSummary struct {
	SurvivalMean float64
	SurvivalStd  float64
	Quality      float64
	ScoreMean    float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config, targetSurvival float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:         params,
		maxTicks:       maxTicks,
		seeds:          seeds,
		baseConfig:     baseCfg,
		targetSurvival: targetSurvival,
		statsWindow:    10.0,
	}
}

// LastSummary returns the aggregate of the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() evalSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// runResult holds the results from a single session run.
type runResult struct {
	survivalSec float64
	score       int
	ended       bool
	windowStats []telemetry.WindowStats
}

// quietLogger discards session logs; a tuning run starts thousands of sessions.
var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		// Out-of-domain configs are never better than the worst valid one
		return math.Inf(1)
	}

	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSession(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	survival := make([]float64, len(results))
	quality := make([]float64, len(results))
	scores := make([]float64, len(results))
	for i, r := range results {
		survival[i] = r.survivalSec
		quality[i] = computeQuality(r.windowStats)
		scores[i] = float64(r.score)
	}

	summary := evalSummary{
		Quality:   stat.Mean(quality, nil),
		ScoreMean: stat.Mean(scores, nil),
	}
	summary.SurvivalMean, summary.SurvivalStd = stat.MeanStdDev(survival, nil)
	if len(survival) < 2 {
		summary.SurvivalStd = 0
	}

	fe.mu.Lock()
	fe.lastSummary = summary
	fe.mu.Unlock()

	return computeFitness(summary, fe.targetSurvival)
}

// runSession plays one session until it ends or maxTicks is reached.
// cfg is shared read-only; the session takes its own copy.
func (fe *FitnessEvaluator) runSession(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}

	session, err := game.NewSession(cfg, game.Options{
		Seed:      seed,
		Logger:    quietLogger,
		Collector: telemetry.NewCollector(fe.statsWindow, 0),
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return result
	}
	runner := host.NewRunner(session, cfg, rand.New(rand.NewSource(seed+1)))

	for !session.Ended() && session.Tick() < fe.maxTicks {
		runner.Step()
	}

	result.survivalSec = session.Elapsed()
	result.score = session.Score()
	result.ended = session.Ended()
	return result
}

// copyConfig creates a copy of the base config that parameters can be applied to.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Classes = append([]config.ClassConfig(nil), fe.baseConfig.Classes...)
	cfg.Derived.ClassIndex = nil
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: relErr² + 0.25×spread² + 0.2×(1 - quality)
// Matching the target length dominates; spread across seeds penalises
// configs that are only right on average.
func computeFitness(s evalSummary, target float64) float64 {
	if target <= 0 {
		return -s.SurvivalMean * (1 + 0.2*s.Quality)
	}
	relErr := (s.SurvivalMean - target) / target
	spread := s.SurvivalStd / target
	return relErr*relErr + 0.25*spread*spread + 0.2*(1-s.Quality)
}

// Quality component weights.
const (
	qualityWeightChallenge = 0.40
	qualityWeightMerges    = 0.30
	qualityWeightPowerUps  = 0.30

	qualityWarmupWindows = 1 // skip the opening window
	qualityShrinkShare   = 0.25
)

// computeQuality scores how eventful a run was, in [0, 1]: some shrinks
// rather than none, merges that are accepted, and power-ups that get used.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var grows, shrinks, merges, rejections, spawned, collected int
	for _, w := range valid {
		grows += w.Grows
		shrinks += w.Shrinks
		merges += w.Merges
		rejections += w.MergeRejections
		spawned += w.PowerUpSpawns
		collected += w.PowerUpCollected
	}

	// 1. Challenge: shrink share near qualityShrinkShare
	challenge := 0.0
	if total := grows + shrinks; total > 0 {
		share := float64(shrinks) / float64(total)
		d := (share - qualityShrinkShare) / 0.15
		challenge = math.Exp(-d * d)
	}

	// 2. Merges happen and are mostly accepted
	mergeScore := 0.0
	if merges > 0 {
		rate := float64(merges) / float64(merges+rejections)
		perWindow := float64(merges) / float64(len(valid))
		mergeScore = rate * (1 - math.Exp(-perWindow))
	}

	// 3. Power-ups are collected at all
	powerScore := 0.0
	if spawned > 0 {
		powerScore = clamp01(float64(collected) / float64(spawned))
	}

	return clamp01(qualityWeightChallenge*challenge +
		qualityWeightMerges*mergeScore +
		qualityWeightPowerUps*powerScore)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
