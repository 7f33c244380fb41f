package host

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/game"
	"github.com/pthm-cable/gravwell/systems"
)

func body(id components.BodyID, x, y, radius float64) systems.BodyState {
	return systems.BodyState{
		ID:       id,
		Category: components.CategoryConsumable,
		Pos:      r2.Vec{X: x, Y: y},
		Radius:   radius,
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		bodies []systems.BodyState
		want   []game.ContactPair
	}{
		{
			name:   "empty",
			bodies: nil,
			want:   nil,
		},
		{
			name:   "overlapping pair",
			bodies: []systems.BodyState{body(1, 0, 0, 10), body(2, 15, 0, 10)},
			want:   []game.ContactPair{{A: 1, B: 2}},
		},
		{
			name:   "exactly touching counts",
			bodies: []systems.BodyState{body(1, 0, 0, 10), body(2, 20, 0, 10)},
			want:   []game.ContactPair{{A: 1, B: 2}},
		},
		{
			name:   "separated",
			bodies: []systems.BodyState{body(1, 0, 0, 10), body(2, 21, 0, 10)},
			want:   nil,
		},
		{
			name: "large body spans cells",
			bodies: []systems.BodyState{
				body(3, 0, 0, 300),
				body(1, 290, 0, 15),
				body(2, -1000, 0, 5),
			},
			want: []game.ContactPair{{A: 1, B: 3}},
		},
		{
			name: "sorted regardless of input order",
			bodies: []systems.BodyState{
				body(9, 100, 100, 10),
				body(4, 0, 0, 10),
				body(7, 105, 100, 10),
				body(2, 5, 0, 10),
			},
			want: []game.ContactPair{{A: 2, B: 4}, {A: 7, B: 9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewContactDetector(50)
			got := d.Detect(tt.bodies)
			if len(got) != len(tt.want) {
				t.Fatalf("Detect() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("pair %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFilterContacts(t *testing.T) {
	pairs := []game.ContactPair{{A: 1, B: 2}, {A: 2, B: 3}, {A: 4, B: 5}}
	got := filterContacts(pairs, map[components.BodyID]bool{2: true})
	if len(got) != 1 || got[0] != (game.ContactPair{A: 4, B: 5}) {
		t.Errorf("filterContacts() = %v, want [{4 5}]", got)
	}
}
