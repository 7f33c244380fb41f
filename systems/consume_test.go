package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/gravwell/components"
)

func TestMultiplier(t *testing.T) {
	rules := ConsumptionRules{MultiplierDivisor: 60}
	tests := []struct {
		diameter float64
		want     int
	}{
		{0, 1},
		{40, 1},
		{59.9, 1},
		{60, 1},
		{119.9, 1},
		{120, 2},
		{240, 4},
	}
	for _, tt := range tests {
		if got := rules.Multiplier(tt.diameter); got != tt.want {
			t.Errorf("Multiplier(%f) = %d, want %d", tt.diameter, got, tt.want)
		}
	}
}

func TestResolveConsumption(t *testing.T) {
	rules := ConsumptionRules{
		GrowFactor:        1.05,
		ShrinkFactor:      0.9,
		ShrinkPenalty:     50,
		MultiplierDivisor: 60,
	}

	tests := []struct {
		name         string
		wellDiameter float64
		target       components.ClassID
		consDiameter float64
		class        components.ClassID
		points       int
		bypass       bool
		wantKind     ConsumeKind
		wantFatal    EndReason
		wantPoints   int
		wantDiameter float64
	}{
		{
			name:         "matching class grows",
			wellDiameter: 40, target: 0,
			consDiameter: 38, class: 0, points: 100,
			wantKind: ConsumeGrow, wantPoints: 100, wantDiameter: 42,
		},
		{
			name:         "multiplier scales with diameter",
			wellDiameter: 240, target: 4,
			consDiameter: 100, class: 4, points: 1000,
			wantKind: ConsumeGrow, wantPoints: 4000, wantDiameter: 252,
		},
		{
			name:         "other class shrinks",
			wellDiameter: 40, target: 0,
			consDiameter: 20, class: 1, points: 200,
			wantKind: ConsumeShrink, wantPoints: -50, wantDiameter: 36,
		},
		{
			name:         "bypass grows on any class",
			wellDiameter: 40, target: 0,
			consDiameter: 20, class: 3, points: 600, bypass: true,
			wantKind: ConsumeGrow, wantPoints: 600, wantDiameter: 42,
		},
		{
			name:         "oversize is fatal regardless of class",
			wellDiameter: 45, target: 4,
			consDiameter: 50, class: 4, points: 1000,
			wantKind: ConsumeOversize, wantFatal: EndOversizeCollision, wantDiameter: 45,
		},
		{
			name:         "equal diameter trips the size gate",
			wellDiameter: 40, target: 0,
			consDiameter: 40, class: 0, points: 100,
			wantKind: ConsumeOversize, wantFatal: EndOversizeCollision, wantDiameter: 40,
		},
		{
			name:         "bypass never overrides the size gate",
			wellDiameter: 40, target: 0,
			consDiameter: 41, class: 0, points: 100, bypass: true,
			wantKind: ConsumeOversize, wantFatal: EndOversizeCollision, wantDiameter: 40,
		},
		{
			name:         "shrink below minimum is fatal",
			wellDiameter: 21, target: 0,
			consDiameter: 10, class: 2, points: 400,
			wantKind: ConsumeShrink, wantFatal: EndUndersizeShrink, wantPoints: -50, wantDiameter: 18.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wellBody := components.NewBody(components.CategoryWell, tt.wellDiameter/2, 1)
			well := components.Well{TargetClass: tt.target, MinDiameter: 20}
			body := components.NewBody(components.CategoryConsumable, tt.consDiameter/2, 1)
			cons := components.Consumable{Class: tt.class, Points: tt.points}

			got := ResolveConsumption(rules, &wellBody, &well, &body, &cons, tt.bypass)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Fatal != tt.wantFatal {
				t.Errorf("Fatal = %v, want %v", got.Fatal, tt.wantFatal)
			}
			if got.Points != tt.wantPoints {
				t.Errorf("Points = %d, want %d", got.Points, tt.wantPoints)
			}
			if math.Abs(got.NewDiameter-tt.wantDiameter) > 1e-9 {
				t.Errorf("NewDiameter = %f, want %f", got.NewDiameter, tt.wantDiameter)
			}
			if math.Abs(wellBody.Diameter()-tt.wantDiameter) > 1e-9 {
				t.Errorf("well diameter = %f, want %f", wellBody.Diameter(), tt.wantDiameter)
			}
			if got.OldDiameter != tt.wellDiameter {
				t.Errorf("OldDiameter = %f, want %f", got.OldDiameter, tt.wellDiameter)
			}
		})
	}
}
