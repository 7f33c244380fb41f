package telemetry

import "github.com/pthm-cable/gravwell/components"

// Collector accumulates events within time windows and produces WindowStats.
// Windows are measured on the simulation clock, not in ticks, because the
// host decides tick spacing.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartTick int64
	windowStartTime float64

	// Event counters for current window
	grows            int
	shrinks          int
	pointsWon        int
	pointsLost       int
	merges           int
	mergeRejections  int
	powerUpSpawns    int
	powerUpCollected [components.EffectKindCount]int
	hostRemovals     int
	anomalies        int

	wellDiameters []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// start: simulation time the first window opens at
func NewCollector(windowDurationSec, start float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 10
	}
	return &Collector{
		windowDurationSec: windowDurationSec,
		windowStartTime:   start,
	}
}

// RecordGrow records a class-matched (or bypassed) consumption.
func (c *Collector) RecordGrow() {
	c.grows++
}

// RecordShrink records a mismatched consumption.
func (c *Collector) RecordShrink() {
	c.shrinks++
}

// RecordPoints records an applied score delta.
func (c *Collector) RecordPoints(delta int) {
	if delta >= 0 {
		c.pointsWon += delta
	} else {
		c.pointsLost -= delta
	}
}

// RecordMerge records a completed merge.
func (c *Collector) RecordMerge() {
	c.merges++
}

// RecordMergeRejected records a merge refused by a guard.
func (c *Collector) RecordMergeRejected() {
	c.mergeRejections++
}

// RecordPowerUpSpawn records a power-up spawn request.
func (c *Collector) RecordPowerUpSpawn() {
	c.powerUpSpawns++
}

// RecordPowerUpCollected records a power-up collected by the well.
func (c *Collector) RecordPowerUpCollected(kind components.EffectKind) {
	if int(kind) < len(c.powerUpCollected) {
		c.powerUpCollected[kind]++
	}
}

// RecordHostRemoval records a body culled or lost by the host.
func (c *Collector) RecordHostRemoval() {
	c.hostRemovals++
}

// RecordAnomaly records a soft anomaly.
func (c *Collector) RecordAnomaly() {
	c.anomalies++
}

// SampleWell records the well diameter for the window distribution.
func (c *Collector) SampleWell(diameter float64) {
	c.wellDiameters = append(c.wellDiameters, diameter)
}

// ShouldFlush returns true if the window has elapsed at simulation time now.
func (c *Collector) ShouldFlush(now float64) bool {
	return now-c.windowStartTime >= c.windowDurationSec
}

// Snapshot holds the world state the caller samples at flush time.
type Snapshot struct {
	Tick        int64
	Now         float64
	Consumables int
	Score       int
	HighScore   int
	MergeLive   int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(snap Snapshot) WindowStats {
	var mergeRate float64
	if attempts := c.merges + c.mergeRejections; attempts > 0 {
		mergeRate = float64(c.merges) / float64(attempts)
	}

	mean, std, p10, p50, p90 := ComputeDistribution(c.wellDiameters)

	collected := 0
	for _, n := range c.powerUpCollected {
		collected += n
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   snap.Tick,
		SimTimeSec:      snap.Now,

		Consumables: snap.Consumables,
		Score:       snap.Score,
		HighScore:   snap.HighScore,
		MergeLive:   snap.MergeLive,

		Grows:      c.grows,
		Shrinks:    c.shrinks,
		PointsWon:  c.pointsWon,
		PointsLost: c.pointsLost,

		Merges:          c.merges,
		MergeRejections: c.mergeRejections,
		MergeRate:       mergeRate,

		PowerUpSpawns:        c.powerUpSpawns,
		PowerUpCollected:     collected,
		RangeBypassCollected: c.powerUpCollected[components.EffectRangeBypass],
		ImmobilizeCollected:  c.powerUpCollected[components.EffectImmobilize],

		HostRemovals: c.hostRemovals,
		Anomalies:    c.anomalies,

		WellDiameterMean: mean,
		WellDiameterStd:  std,
		WellDiameterP10:  p10,
		WellDiameterP50:  p50,
		WellDiameterP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = snap.Tick
	c.windowStartTime = snap.Now
	c.grows = 0
	c.shrinks = 0
	c.pointsWon = 0
	c.pointsLost = 0
	c.merges = 0
	c.mergeRejections = 0
	c.powerUpSpawns = 0
	c.powerUpCollected = [components.EffectKindCount]int{}
	c.hostRemovals = 0
	c.anomalies = 0
	c.wellDiameters = c.wellDiameters[:0]

	return stats
}

// WindowDuration returns the window length in simulation seconds.
func (c *Collector) WindowDuration() float64 {
	return c.windowDurationSec
}
