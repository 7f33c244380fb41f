package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// World state at window end
	Consumables int `csv:"consumables"`
	Score       int `csv:"score"`
	HighScore   int `csv:"high_score"`
	MergeLive   int `csv:"merge_live"`

	// Consumption during window
	Grows      int `csv:"grows"`
	Shrinks    int `csv:"shrinks"`
	PointsWon  int `csv:"points_won"`
	PointsLost int `csv:"points_lost"`

	// Merging
	Merges          int     `csv:"merges"`
	MergeRejections int     `csv:"merge_rejections"`
	MergeRate       float64 `csv:"merge_rate"` // merges / (merges + rejections)

	// Power-ups
	PowerUpSpawns        int `csv:"powerup_spawns"`
	PowerUpCollected     int `csv:"powerup_collected"`
	RangeBypassCollected int `csv:"range_bypass"`
	ImmobilizeCollected  int `csv:"immobilize"`

	// Host and anomalies
	HostRemovals int `csv:"host_removals"`
	Anomalies    int `csv:"anomalies"`

	// Well diameter distribution (sampled every tick)
	WellDiameterMean float64 `csv:"well_diameter_mean"`
	WellDiameterStd  float64 `csv:"well_diameter_std"`
	WellDiameterP10  float64 `csv:"well_diameter_p10"`
	WellDiameterP50  float64 `csv:"well_diameter_p50"`
	WellDiameterP90  float64 `csv:"well_diameter_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution returns mean, population std and p10/p50/p90 of values.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	std = stat.PopStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("consumables", s.Consumables),
		slog.Int("score", s.Score),
		slog.Int("high_score", s.HighScore),
		slog.Int("merge_live", s.MergeLive),
		slog.Int("grows", s.Grows),
		slog.Int("shrinks", s.Shrinks),
		slog.Int("merges", s.Merges),
		slog.Int("merge_rejections", s.MergeRejections),
		slog.Int("powerup_collected", s.PowerUpCollected),
		slog.Int("anomalies", s.Anomalies),
		slog.Float64("well_diameter_mean", s.WellDiameterMean),
		slog.Float64("well_diameter_p50", s.WellDiameterP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"consumables", s.Consumables,
		"score", s.Score,
		"high_score", s.HighScore,
		"merge_live", s.MergeLive,
		"grows", s.Grows,
		"shrinks", s.Shrinks,
		"points_won", s.PointsWon,
		"points_lost", s.PointsLost,
		"merges", s.Merges,
		"merge_rejections", s.MergeRejections,
		"merge_rate", s.MergeRate,
		"powerup_spawns", s.PowerUpSpawns,
		"powerup_collected", s.PowerUpCollected,
		"host_removals", s.HostRemovals,
		"anomalies", s.Anomalies,
		"well_diameter_mean", s.WellDiameterMean,
		"well_diameter_std", s.WellDiameterStd,
		"well_diameter_p10", s.WellDiameterP10,
		"well_diameter_p50", s.WellDiameterP50,
		"well_diameter_p90", s.WellDiameterP90,
	)
}
