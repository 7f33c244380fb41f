// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// NumClasses is the number of consumable classes in the class table.
const NumClasses = 5

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Well       WellConfig       `yaml:"well"`
	Score      ScoreConfig      `yaml:"score"`
	Merge      MergeConfig      `yaml:"merge"`
	PowerUps   PowerUpsConfig   `yaml:"powerups"`
	Classes    []ClassConfig    `yaml:"classes"`
	Population PopulationConfig `yaml:"population"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Audio      AudioConfig      `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds host-side placement and culling distances.
// The world itself is unbounded; these are measured from the well.
type WorldConfig struct {
	SpawnRingMin float64 `yaml:"spawn_ring_min"` // Closest spawn distance from the well
	SpawnRingMax float64 `yaml:"spawn_ring_max"` // Farthest spawn distance from the well
	CullDistance float64 `yaml:"cull_distance"`  // Bodies beyond this are removed by the host
	DriftSpeed   float64 `yaml:"drift_speed"`    // Max initial speed of spawned consumables
	PilotSpeed   float64 `yaml:"pilot_speed"`    // Well speed under the scripted headless pilot
}

// PhysicsConfig holds gravity and integration parameters.
type PhysicsConfig struct {
	DT               float64 `yaml:"dt"`                 // Seconds per tick for the host loop
	Gravity          float64 `yaml:"gravity"`            // G for well -> consumable attraction
	WellCutoff       float64 `yaml:"well_cutoff"`        // R_well in world units
	BodyCutoffRatio  float64 `yaml:"body_cutoff_ratio"`  // R_body = R_well * this
	BodyGravityRatio float64 `yaml:"body_gravity_ratio"` // G_body = G * this
	GridCellSize     float64 `yaml:"grid_cell_size"`
	Integrate        bool    `yaml:"integrate"` // Core integrates positions from velocities
}

// WellConfig holds well sizing parameters.
type WellConfig struct {
	InitialDiameter float64 `yaml:"initial_diameter"`
	MinDiameter     float64 `yaml:"min_diameter"`
	GrowFactor      float64 `yaml:"grow_factor"`
	ShrinkFactor    float64 `yaml:"shrink_factor"`
	TargetCycle     float64 `yaml:"target_cycle"` // Seconds between target class changes (0 = off)
	InitialTarget   string  `yaml:"initial_target"`
}

// ScoreConfig holds scoring parameters.
type ScoreConfig struct {
	ShrinkPenalty     int     `yaml:"shrink_penalty"`
	MultiplierDivisor float64 `yaml:"multiplier_divisor"` // multiplier = max(1, floor(diameter / this))
}

// MergeConfig holds the merge guard thresholds and merge result shaping.
type MergeConfig struct {
	Enabled         bool    `yaml:"enabled"`
	MaxConcurrent   int     `yaml:"max_concurrent"`
	Cooldown        float64 `yaml:"cooldown"`
	MinDiameter     float64 `yaml:"min_diameter"`
	SafeZone        float64 `yaml:"safe_zone"`
	PointsFactor    float64 `yaml:"points_factor"`
	VelocityDamping float64 `yaml:"velocity_damping"`
}

// PowerUpsConfig holds power-up scheduling parameters.
type PowerUpsConfig struct {
	InitialDelay       float64           `yaml:"initial_delay"`
	CollectionCooldown float64           `yaml:"collection_cooldown"`
	RequestTimeout     float64           `yaml:"request_timeout"` // Unfulfilled spawn requests are dropped after this
	Radius             float64           `yaml:"radius"`
	RangeBypass        PowerUpKindConfig `yaml:"range_bypass"`
	Immobilize         PowerUpKindConfig `yaml:"immobilize"`
}

// PowerUpKindConfig holds per-kind power-up parameters.
type PowerUpKindConfig struct {
	Duration    float64 `yaml:"duration"`
	IntervalMin float64 `yaml:"interval_min"`
	IntervalMax float64 `yaml:"interval_max"`
	Speed       float64 `yaml:"speed"` // Trajectory speed chosen by host placement
}

// ClassConfig defines one consumable class.
type ClassConfig struct {
	Name           string  `yaml:"name"`
	Rank           int     `yaml:"rank"`
	MinDiameter    float64 `yaml:"min_diameter"`    // Spawn size range
	MaxDiameter    float64 `yaml:"max_diameter"`
	BasePoints     int     `yaml:"base_points"`
	MassMultiplier float64 `yaml:"mass_multiplier"`
	BandMin        float64 `yaml:"band_min"` // Merge result lower diameter bound (band is open above the next class)
	SpawnWeight    float64 `yaml:"spawn_weight"`
}

// PopulationConfig holds host-side consumable population settings.
type PopulationConfig struct {
	Target      int     `yaml:"target"`       // Consumables the host keeps in the world
	SpawnPerSec float64 `yaml:"spawn_per_sec"` // Max host spawns per second
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// AudioConfig holds audio cue parameters.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Volume     float64 `yaml:"volume"`
	SampleRate int     `yaml:"sample_rate"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	BodyCutoff  float64        // Physics.WellCutoff * BodyCutoffRatio
	BodyGravity float64        // Physics.Gravity * BodyGravityRatio
	ClassIndex  map[string]int // name -> index into Classes (rank order)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the invariants the simulation relies on.
func (c *Config) Validate() error {
	if len(c.Classes) != NumClasses {
		return fmt.Errorf("config: need %d classes, got %d", NumClasses, len(c.Classes))
	}
	if c.Physics.WellCutoff <= 0 {
		return fmt.Errorf("config: physics.well_cutoff must be positive")
	}
	if c.Well.MinDiameter <= 0 || c.Well.InitialDiameter <= c.Well.MinDiameter {
		return fmt.Errorf("config: well.initial_diameter must exceed well.min_diameter > 0")
	}
	if c.Well.GrowFactor <= 1 || c.Well.ShrinkFactor <= 0 || c.Well.ShrinkFactor >= 1 {
		return fmt.Errorf("config: well grow_factor must be > 1 and shrink_factor in (0, 1)")
	}
	if c.Score.MultiplierDivisor <= 0 {
		return fmt.Errorf("config: score.multiplier_divisor must be positive")
	}
	for _, k := range []PowerUpKindConfig{c.PowerUps.RangeBypass, c.PowerUps.Immobilize} {
		if k.IntervalMax < k.IntervalMin {
			return fmt.Errorf("config: power-up interval_max < interval_min")
		}
	}
	seen := make(map[string]bool, len(c.Classes))
	for _, cl := range c.Classes {
		if seen[cl.Name] {
			return fmt.Errorf("config: duplicate class %q", cl.Name)
		}
		seen[cl.Name] = true
		if cl.MassMultiplier <= 0 {
			return fmt.Errorf("config: class %q mass_multiplier must be positive", cl.Name)
		}
	}
	return nil
}

// Refresh re-validates the config and recomputes derived values after
// fields were changed in code.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.BodyCutoff = c.Physics.WellCutoff * c.Physics.BodyCutoffRatio
	c.Derived.BodyGravity = c.Physics.Gravity * c.Physics.BodyGravityRatio

	// Classes are kept in ascending rank so index == rank order
	sort.SliceStable(c.Classes, func(i, j int) bool {
		return c.Classes[i].Rank < c.Classes[j].Rank
	})

	c.Derived.ClassIndex = make(map[string]int, len(c.Classes))
	for i, cl := range c.Classes {
		c.Derived.ClassIndex[cl.Name] = i
	}
}

// BandClass returns the class index whose merge diameter band contains d.
// Bands are ascending and non-overlapping; the top band is open-ended.
func (c *Config) BandClass(d float64) int {
	idx := 0
	for i, cl := range c.Classes {
		if d >= cl.BandMin {
			idx = i
		}
	}
	return idx
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
