package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/gravwell/config"
)

// Player mixes cues onto the speaker. A disabled player accepts every call
// and does nothing, so callers never branch on audio being on.
type Player struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	volume  float64
	mixer   *beep.Mixer
	cache   map[Cue][][2]float64
	enabled bool
	started bool
}

// NewPlayer creates a player from cfg. The speaker is not opened until Start.
func NewPlayer(cfg config.AudioConfig) *Player {
	rate := beep.SampleRate(cfg.SampleRate)
	if rate <= 0 {
		rate = 48000
	}
	return &Player{
		rate:    rate,
		volume:  min(max(cfg.Volume, 0), 1),
		mixer:   &beep.Mixer{},
		cache:   make(map[Cue][][2]float64, cueCount),
		enabled: cfg.Enabled,
	}
}

// Start opens the speaker and begins playing the mixer.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled || p.started {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		p.enabled = false
		return fmt.Errorf("audio: opening speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.started = true
	slog.Info("audio started", "sample_rate", int(p.rate), "volume", p.volume)
	return nil
}

// Play queues cues on the mixer.
func (p *Player) Play(cues ...Cue) {
	if len(cues) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	streams := make([]beep.Streamer, 0, len(cues))
	for _, c := range cues {
		streams = append(streams, p.buffered(c))
	}
	speaker.Lock()
	p.mixer.Add(streams...)
	speaker.Unlock()
}

// buffered renders c once and replays it from memory afterwards.
func (p *Player) buffered(c Cue) beep.Streamer {
	samples, ok := p.cache[c]
	if !ok {
		samples = Render(c.Build(p.rate, p.volume))
		p.cache[c] = samples
	}
	return &sampleStream{samples: samples}
}

// Volume returns the cue volume in [0, 1].
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume changes the cue volume. Rendered cues are dropped and rebuilt on next play.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v = min(max(v, 0), 1)
	if v == p.volume {
		return
	}
	p.volume = v
	clear(p.cache)
}

// Close silences the mixer. beep has no speaker close, so the device stays open.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.started = false
}

// Render drains s into memory.
func Render(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok || n == 0 {
			return out
		}
	}
}

// sampleStream replays pre-rendered samples.
type sampleStream struct {
	samples [][2]float64
	pos     int
}

func (s *sampleStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n = copy(samples, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *sampleStream) Err() error { return nil }
