package host

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/game"
	"github.com/pthm-cable/gravwell/systems"
)

func TestCull(t *testing.T) {
	wellPos := r2.Vec{X: 100, Y: 100}
	bodies := []systems.BodyState{
		{ID: 1, Category: components.CategoryWell, Pos: r2.Vec{X: 5000, Y: 0}},
		{ID: 2, Category: components.CategoryConsumable, Pos: r2.Vec{X: 150, Y: 100}},
		{ID: 3, Category: components.CategoryConsumable, Pos: r2.Vec{X: 1200, Y: 100}},
		{ID: 4, Category: components.CategoryPowerUp, Pos: r2.Vec{X: 100, Y: -1500}},
		{ID: 5, Category: components.CategoryPowerUp, Pos: r2.Vec{X: 100, Y: 200}},
	}

	got := NewCuller(1000).Cull(bodies, wellPos)
	want := []game.HostRemoval{
		{ID: 3, Reason: game.HostCulled},
		{ID: 4, Reason: game.HostOffWorld},
	}
	if len(got) != len(want) {
		t.Fatalf("Cull() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("removal %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCullDisabled(t *testing.T) {
	bodies := []systems.BodyState{
		{ID: 2, Category: components.CategoryConsumable, Pos: r2.Vec{X: 1e9}},
	}
	if got := NewCuller(0).Cull(bodies, r2.Vec{}); got != nil {
		t.Errorf("expected no removals with culling off, got %v", got)
	}
}
