package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gravwell/camera"
)

// starLayer is one parallax plane of the starfield.
type starLayer struct {
	parallax float32 // 1 moves with the world, 0 is pinned to the screen
	perTile  int
	size     float32
	alpha    uint8
}

// BackgroundRenderer draws an unbounded parallax starfield. Stars are
// derived from a hash of their tile, so nothing is stored and the same
// patch of sky always looks the same.
type BackgroundRenderer struct {
	base   rl.Color
	tile   float32
	seed   uint64
	layers []starLayer
}

// NewBackgroundRenderer creates a starfield over a solid base color.
func NewBackgroundRenderer(baseR, baseG, baseB uint8, seed int64) *BackgroundRenderer {
	return &BackgroundRenderer{
		base: rl.Color{R: baseR, G: baseG, B: baseB, A: 255},
		tile: 256,
		seed: uint64(seed),
		layers: []starLayer{
			{parallax: 0.15, perTile: 6, size: 1, alpha: 90},
			{parallax: 0.4, perTile: 4, size: 1.5, alpha: 150},
			{parallax: 0.8, perTile: 2, size: 2, alpha: 220},
		},
	}
}

// Draw clears the screen and paints the visible stars.
func (b *BackgroundRenderer) Draw(cam *camera.Camera, time float32) {
	rl.ClearBackground(b.base)

	for li, layer := range b.layers {
		// Each layer sees the camera position scaled by its parallax
		cx := cam.X * layer.parallax
		cy := cam.Y * layer.parallax
		halfW := cam.ViewportW / 2 / cam.Zoom
		halfH := cam.ViewportH / 2 / cam.Zoom

		x0 := int64(math.Floor(float64((cx - halfW) / b.tile)))
		x1 := int64(math.Floor(float64((cx + halfW) / b.tile)))
		y0 := int64(math.Floor(float64((cy - halfH) / b.tile)))
		y1 := int64(math.Floor(float64((cy + halfH) / b.tile)))

		for ty := y0; ty <= y1; ty++ {
			for tx := x0; tx <= x1; tx++ {
				h := tileHash(b.seed, uint64(li), tx, ty)
				for range layer.perTile {
					var fx, fy, tw float32
					h, fx = nextUnit(h)
					h, fy = nextUnit(h)
					h, tw = nextUnit(h)

					wx := (float32(tx) + fx) * b.tile
					wy := (float32(ty) + fy) * b.tile
					sx := (wx-cx)*cam.Zoom + cam.ViewportW/2
					sy := (wy-cy)*cam.Zoom + cam.ViewportH/2

					// Slow twinkle, phase-shifted per star
					a := float32(layer.alpha) * (0.75 + 0.25*float32(math.Sin(float64(time*1.7+tw*6.28))))
					rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, layer.size, rl.Color{R: 220, G: 225, B: 255, A: uint8(a)})
				}
			}
		}
	}
}

// tileHash mixes the seed, layer and tile coordinates into a star stream seed.
func tileHash(seed, layer uint64, tx, ty int64) uint64 {
	h := seed ^ layer*0x9e3779b97f4a7c15
	h ^= uint64(tx) * 0xbf58476d1ce4e5b9
	h ^= uint64(ty) * 0x94d049bb133111eb
	return mix64(h)
}

// nextUnit advances a splitmix64 stream and returns a value in [0, 1).
func nextUnit(h uint64) (uint64, float32) {
	h += 0x9e3779b97f4a7c15
	return h, float32(mix64(h)>>40) / float32(1<<24)
}

func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
