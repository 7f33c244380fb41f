package camera

import (
	"math"
	"testing"
)

func TestWorldToScreenRoundTrip(t *testing.T) {
	cam := New(1280, 720)
	cam.X = 300
	cam.Y = -200
	cam.Zoom = 1.5

	points := []struct{ x, y float32 }{
		{0, 0},
		{300, -200},
		{-1000, 5000},
		{42.5, 17.25},
	}
	for _, p := range points {
		sx, sy := cam.WorldToScreen(p.x, p.y)
		wx, wy := cam.ScreenToWorld(sx, sy)
		if math.Abs(float64(wx-p.x)) > 0.01 || math.Abs(float64(wy-p.y)) > 0.01 {
			t.Errorf("round trip (%f, %f) -> (%f, %f)", p.x, p.y, wx, wy)
		}
	}
}

func TestCenterMapsToViewportCenter(t *testing.T) {
	cam := New(1280, 720)
	cam.X = -5000
	cam.Y = 5000

	sx, sy := cam.WorldToScreen(-5000, 5000)
	if sx != 640 || sy != 360 {
		t.Errorf("expected (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestFollowConverges(t *testing.T) {
	cam := New(800, 600)
	for range 600 {
		cam.Follow(1000, -400, 1.0/60)
	}
	if math.Abs(float64(cam.X-1000)) > 0.5 || math.Abs(float64(cam.Y+400)) > 0.5 {
		t.Errorf("expected camera near (1000, -400), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestFollowFrameRateIndependent(t *testing.T) {
	a := New(800, 600)
	b := New(800, 600)

	a.Follow(100, 0, 0.5)
	for range 5 {
		b.Follow(100, 0, 0.1)
	}
	if math.Abs(float64(a.X-b.X)) > 0.01 {
		t.Errorf("one 0.5s step gave %f, five 0.1s steps gave %f", a.X, b.X)
	}
}

func TestFollowIgnoresNonPositiveDT(t *testing.T) {
	cam := New(800, 600)
	cam.Follow(100, 100, 0)
	cam.Follow(100, 100, -1)
	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected camera unmoved, got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720)

	cam.SetZoom(0.01)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}

	cam.SetZoom(10.0)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
}

func TestFitDiameterZoomsOutForLargeBodies(t *testing.T) {
	small := New(1000, 800)
	large := New(1000, 800)
	for range 600 {
		small.FitDiameter(40, 0.2, 1.0/60)
		large.FitDiameter(400, 0.2, 1.0/60)
	}
	if large.Zoom >= small.Zoom {
		t.Errorf("expected lower zoom for the larger body, got %f >= %f", large.Zoom, small.Zoom)
	}
	// 800 * 0.2 / 400 = 0.4
	if math.Abs(float64(large.Zoom-0.4)) > 0.01 {
		t.Errorf("expected zoom near 0.4, got %f", large.Zoom)
	}
}

func TestPanScalesWithZoom(t *testing.T) {
	cam := New(800, 600)
	cam.SetZoom(2)
	cam.Pan(100, -50)
	if cam.X != 50 || cam.Y != -25 {
		t.Errorf("expected (50, -25), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720)

	// Visible range: (-640, -360) to (640, 360)
	if !cam.IsVisible(0, 0, 10) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(2000, 1300, 10) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(-700, 0, 100) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestVisibleWorldBounds(t *testing.T) {
	cam := New(800, 600)
	cam.X = 100
	cam.Y = 50
	cam.SetZoom(2)

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if minX != -100 || maxX != 300 || minY != -100 || maxY != 200 {
		t.Errorf("unexpected bounds (%f, %f)-(%f, %f)", minX, minY, maxX, maxY)
	}
}
