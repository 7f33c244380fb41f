package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/gravwell/config"
	"github.com/pthm-cable/gravwell/telemetry"
)

func TestParamRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestDefaultsMatchConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	got := pv.ExtractFromConfig(cfg)
	if len(got) != pv.Dim() {
		t.Fatalf("extracted %d values, want %d", len(got), pv.Dim())
	}
	for i, spec := range pv.Specs {
		if math.Abs(got[i]-spec.Default) > 1e-9 {
			t.Errorf("%s default = %v, config has %v", spec.Path, spec.Default, got[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	values := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		values[i] = spec.Max * 10
	}
	if err := pv.ApplyToConfig(cfg, values); err != nil {
		t.Fatalf("ApplyToConfig() error: %v", err)
	}
	if cfg.Well.ShrinkFactor >= 1 {
		t.Errorf("shrink_factor = %v, want clamped below 1", cfg.Well.ShrinkFactor)
	}
	if cfg.Physics.Gravity != 1000 {
		t.Errorf("gravity = %v, want 1000", cfg.Physics.Gravity)
	}
	if math.Abs(cfg.Derived.BodyGravity-1000*cfg.Physics.BodyGravityRatio) > 1e-9 {
		t.Errorf("derived body gravity not refreshed: %v", cfg.Derived.BodyGravity)
	}
}

func TestComputeFitness(t *testing.T) {
	tests := []struct {
		name string
		a, b evalSummary
	}{
		{
			name: "closer to target wins",
			a:    evalSummary{SurvivalMean: 170, Quality: 0.5},
			b:    evalSummary{SurvivalMean: 60, Quality: 0.5},
		},
		{
			name: "lower spread wins",
			a:    evalSummary{SurvivalMean: 180, SurvivalStd: 10, Quality: 0.5},
			b:    evalSummary{SurvivalMean: 180, SurvivalStd: 90, Quality: 0.5},
		},
		{
			name: "quality breaks ties",
			a:    evalSummary{SurvivalMean: 180, Quality: 0.9},
			b:    evalSummary{SurvivalMean: 180, Quality: 0.1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if fa, fb := computeFitness(tt.a, 180), computeFitness(tt.b, 180); fa >= fb {
				t.Errorf("fitness %v >= %v", fa, fb)
			}
		})
	}
}

func TestComputeQuality(t *testing.T) {
	if q := computeQuality(nil); q != 0 {
		t.Errorf("empty quality = %v", q)
	}

	eventful := []telemetry.WindowStats{
		{},
		{Grows: 30, Shrinks: 10, Merges: 3, PowerUpSpawns: 1, PowerUpCollected: 1},
		{Grows: 30, Shrinks: 10, Merges: 2, MergeRejections: 1, PowerUpSpawns: 1, PowerUpCollected: 1},
	}
	dull := []telemetry.WindowStats{
		{},
		{Grows: 40},
		{Grows: 40},
	}
	qe, qd := computeQuality(eventful), computeQuality(dull)
	if qe <= qd {
		t.Errorf("eventful quality %v <= dull %v", qe, qd)
	}
	if qe < 0 || qe > 1 {
		t.Errorf("quality %v out of range", qe)
	}
}
