package renderer

import (
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gravwell/camera"
)

// Particle is one short-lived spark in world space.
type Particle struct {
	X, Y    float32
	VX, VY  float32
	Life    float32
	MaxLife float32
	Size    float32
	Color   rl.Color
}

// ParticleSystem owns the sparks emitted by consumptions and merges.
// It is purely visual and never feeds back into the simulation.
type ParticleSystem struct {
	particles []Particle
	rng       *rand.Rand
	max       int
}

// NewParticleSystem creates a particle system holding at most max sparks.
func NewParticleSystem(max int, seed int64) *ParticleSystem {
	return &ParticleSystem{
		particles: make([]Particle, 0, max),
		rng:       rand.New(rand.NewSource(seed)),
		max:       max,
	}
}

// Burst emits n sparks radiating from (x, y). Sparks past capacity are dropped.
func (p *ParticleSystem) Burst(x, y float32, n int, speed, size float32, color rl.Color) {
	for range n {
		if len(p.particles) >= p.max {
			return
		}
		angle := p.rng.Float64() * 2 * math.Pi
		v := speed * (0.4 + 0.6*p.rng.Float32())
		life := 0.4 + 0.5*p.rng.Float32()
		p.particles = append(p.particles, Particle{
			X:       x,
			Y:       y,
			VX:      v * float32(math.Cos(angle)),
			VY:      v * float32(math.Sin(angle)),
			Life:    life,
			MaxLife: life,
			Size:    size,
			Color:   color,
		})
	}
}

// Update ages and moves sparks, compacting out the expired ones in place.
func (p *ParticleSystem) Update(dt float32) {
	live := p.particles[:0]
	for _, pt := range p.particles {
		pt.Life -= dt
		if pt.Life <= 0 {
			continue
		}
		pt.X += pt.VX * dt
		pt.Y += pt.VY * dt
		// Drag
		pt.VX *= 1 - 2*dt
		pt.VY *= 1 - 2*dt
		live = append(live, pt)
	}
	clear(p.particles[len(live):])
	p.particles = live
}

// Len returns the number of live sparks.
func (p *ParticleSystem) Len() int {
	return len(p.particles)
}

// Draw renders all visible sparks.
func (p *ParticleSystem) Draw(cam *camera.Camera) {
	for i := range p.particles {
		pt := &p.particles[i]
		if !cam.IsVisible(pt.X, pt.Y, pt.Size) {
			continue
		}
		lifeRatio := pt.Life / pt.MaxLife
		sx, sy := cam.WorldToScreen(pt.X, pt.Y)
		c := pt.Color
		c.A = uint8(float32(c.A) * lifeRatio)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, max(pt.Size*lifeRatio*cam.Zoom, 0.5), c)
	}
}
