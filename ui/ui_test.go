package ui

import "testing"

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()
	tests := []struct {
		id   OverlayID
		want bool
	}{
		{OverlayStarfield, true},
		{OverlayParticles, true},
		{OverlayControls, true},
		{OverlayGravityReach, false},
		{OverlayPerf, false},
	}
	for _, tt := range tests {
		if got := reg.IsEnabled(tt.id); got != tt.want {
			t.Errorf("IsEnabled(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestOverlayToggle(t *testing.T) {
	reg := NewOverlayRegistry()
	if !reg.Toggle(OverlayPerf) || !reg.IsEnabled(OverlayPerf) {
		t.Fatal("first toggle did not enable")
	}
	if reg.Toggle(OverlayPerf) || reg.IsEnabled(OverlayPerf) {
		t.Fatal("second toggle did not disable")
	}
}

func TestOverlayCategories(t *testing.T) {
	reg := NewOverlayRegistry()
	total := 0
	for _, cat := range reg.Categories() {
		total += len(reg.ByCategory(cat))
	}
	if total != 5 {
		t.Errorf("overlays across categories = %d, want 5", total)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		sec  float64
		want string
	}{
		{0, "0:00"},
		{59.9, "0:59"},
		{61, "1:01"},
		{3600, "60:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.sec); got != tt.want {
			t.Errorf("formatClock(%v) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}
