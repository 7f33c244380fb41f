// Package main tunes gameplay constants with CMA-ES so that runs under the
// scripted pilot last about as long as a target session length.
package main

import (
	"github.com/pthm-cable/gravwell/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Defaults match defaults.yaml.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Physics
			{Name: "gravity", Path: "physics.gravity", Min: 100, Max: 1000, Default: 400},
			{Name: "drift_speed", Path: "world.drift_speed", Min: 0, Max: 60, Default: 20},
			// Well sizing
			{Name: "grow_factor", Path: "well.grow_factor", Min: 1.01, Max: 1.12, Default: 1.05},
			{Name: "shrink_factor", Path: "well.shrink_factor", Min: 0.75, Max: 0.97, Default: 0.9},
			{Name: "target_cycle", Path: "well.target_cycle", Min: 4, Max: 30, Default: 12},
			// Population
			{Name: "population_target", Path: "population.target", Min: 15, Max: 80, Default: 40},
			{Name: "spawn_per_sec", Path: "population.spawn_per_sec", Min: 1, Max: 10, Default: 4},
			// Merging
			{Name: "merge_cooldown", Path: "merge.cooldown", Min: 0.5, Max: 5, Default: 1.5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct and re-derives
// the computed fields. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	c := pv.Clamp(values)

	cfg.Physics.Gravity = c[0]
	cfg.World.DriftSpeed = c[1]
	cfg.Well.GrowFactor = c[2]
	cfg.Well.ShrinkFactor = c[3]
	cfg.Well.TargetCycle = c[4]
	cfg.Population.Target = int(c[5] + 0.5)
	cfg.Population.SpawnPerSec = c[6]
	cfg.Merge.Cooldown = c[7]

	return cfg.Refresh()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Physics.Gravity,
		cfg.World.DriftSpeed,
		cfg.Well.GrowFactor,
		cfg.Well.ShrinkFactor,
		cfg.Well.TargetCycle,
		float64(cfg.Population.Target),
		cfg.Population.SpawnPerSec,
		cfg.Merge.Cooldown,
	}
}
