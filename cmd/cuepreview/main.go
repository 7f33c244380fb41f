// Cue preview tool - plays each audio cue with a volume slider.
//
// Usage: go run ./cmd/cuepreview
package main

import (
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gravwell/audio"
	"github.com/pthm-cable/gravwell/config"
)

const (
	windowWidth  = 360
	windowHeight = 320
	buttonHeight = 32
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.Audio.Enabled = true

	player := audio.NewPlayer(cfg.Audio)
	if err := player.Start(); err != nil {
		slog.Error("failed to open speaker", "error", err)
		os.Exit(1)
	}
	defer player.Close()

	rl.InitWindow(windowWidth, windowHeight, "Cue Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	volume := float32(player.Volume())
	cues := audio.Cues()
	keys := []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive}

	for !rl.WindowShouldClose() {
		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 20, G: 22, B: 30, A: 255})

		y := float32(20)
		rl.DrawText(fmt.Sprintf("Volume %.2f", volume), 20, int32(y), 14, rl.LightGray)
		y += 20
		volume = gui.SliderBar(rl.Rectangle{X: 44, Y: y, Width: windowWidth - 88, Height: 16}, "0", "1", volume, 0, 1)
		player.SetVolume(float64(volume))
		y += 36

		for i, c := range cues {
			label := fmt.Sprintf("[%d] %s  %dms", i+1, c, c.Length().Milliseconds())
			pressed := gui.Button(rl.Rectangle{X: 20, Y: y, Width: windowWidth - 40, Height: buttonHeight}, label)
			if i < len(keys) && rl.IsKeyPressed(keys[i]) {
				pressed = true
			}
			if pressed {
				player.Play(c)
			}
			y += buttonHeight + 8
		}

		rl.EndDrawing()
	}
}
