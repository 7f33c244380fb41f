package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for the simulation step.
const (
	PhaseHostInput = "host_input"
	PhaseGravity   = "gravity"
	PhaseIntegrate = "integrate"
	PhaseContacts  = "contacts"
	PhaseEffects   = "effects"
	PhaseScheduler = "scheduler"
	PhaseScore     = "score"
	PhaseSweep     = "sweep"
	PhaseTelemetry = "telemetry"
)

// Phases lists every phase in step order.
var Phases = []string{
	PhaseHostInput, PhaseGravity, PhaseIntegrate,
	PhaseContacts, PhaseEffects, PhaseScheduler,
	PhaseScore, PhaseSweep, PhaseTelemetry,
}

// PerfCollector tracks per-phase tick timing over a rolling window of ticks.
// Phases get a fixed slot on first use, so a tick allocates nothing once
// every phase has been seen.
type PerfCollector struct {
	windowSize  int
	ticks       []time.Duration   // ring of tick durations
	phases      [][]time.Duration // ring of per-slot phase durations
	writeIndex  int
	sampleCount int

	names   []string
	slots   map[string]int
	current []time.Duration

	tickStart  time.Time
	phaseStart time.Time
	lastSlot   int // -1 outside a phase

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over (e.g., 60 for 1 second at 60 ticks/s).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	p := &PerfCollector{
		windowSize: windowSize,
		ticks:      make([]time.Duration, windowSize),
		phases:     make([][]time.Duration, windowSize),
		slots:      make(map[string]int, len(Phases)),
		lastSlot:   -1,
	}
	for _, name := range Phases {
		p.slot(name)
	}
	return p
}

// slot returns the index for phase, assigning one on first use.
func (p *PerfCollector) slot(phase string) int {
	if i, ok := p.slots[phase]; ok {
		return i
	}
	i := len(p.names)
	p.names = append(p.names, phase)
	p.slots[phase] = i
	p.current = append(p.current, 0)
	return i
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	clear(p.current)
	p.lastSlot = -1
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastSlot >= 0 {
		p.current[p.lastSlot] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastSlot = p.slot(phase)
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastSlot >= 0 {
		p.current[p.lastSlot] += now.Sub(p.phaseStart)
	}
	p.lastSlot = -1

	p.ticks[p.writeIndex] = now.Sub(p.tickStart)
	p.phases[p.writeIndex] = append(p.phases[p.writeIndex][:0], p.current...)
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Tick timing
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total tick time
	PhasePct map[string]float64

	// Throughput
	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:      make(map[string]time.Duration, len(p.names)),
		PhasePct:      make(map[string]float64, len(p.names)),
		FrameDuration: p.frameDuration,
	}
	// Frame timing is available even before the first tick
	if p.frameDuration > 0 {
		stats.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.sampleCount == 0 {
		return stats
	}

	ticks := make([]float64, p.sampleCount)
	sums := make([]time.Duration, len(p.names))
	for i := range p.sampleCount {
		ticks[i] = float64(p.ticks[i])
		for slot, d := range p.phases[i] {
			sums[slot] += d
		}
	}
	sort.Float64s(ticks)

	avg := stat.Mean(ticks, nil)
	stats.AvgTickDuration = time.Duration(avg)
	stats.MinTickDuration = time.Duration(ticks[0])
	stats.MaxTickDuration = time.Duration(ticks[len(ticks)-1])
	stats.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, ticks, nil))
	if avg > 0 {
		stats.TicksPerSecond = float64(time.Second) / avg
	}

	for slot, sum := range sums {
		if sum == 0 {
			continue
		}
		name := p.names[slot]
		mean := sum / time.Duration(p.sampleCount)
		stats.PhaseAvg[name] = mean
		if avg > 0 {
			stats.PhasePct[name] = float64(mean) / avg * 100
		}
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"p95_tick_us", s.P95TickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	// Add phase breakdowns
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	HostInputPct float64 `csv:"host_input_pct"`
	GravityPct   float64 `csv:"gravity_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	ContactsPct  float64 `csv:"contacts_pct"`
	EffectsPct   float64 `csv:"effects_pct"`
	SchedulerPct float64 `csv:"scheduler_pct"`
	ScorePct     float64 `csv:"score_pct"`
	SweepPct     float64 `csv:"sweep_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		P95TickUS:    s.P95TickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		HostInputPct: s.PhasePct[PhaseHostInput],
		GravityPct:   s.PhasePct[PhaseGravity],
		IntegratePct: s.PhasePct[PhaseIntegrate],
		ContactsPct:  s.PhasePct[PhaseContacts],
		EffectsPct:   s.PhasePct[PhaseEffects],
		SchedulerPct: s.PhasePct[PhaseScheduler],
		ScorePct:     s.PhasePct[PhaseScore],
		SweepPct:     s.PhasePct[PhaseSweep],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
