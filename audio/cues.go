package audio

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/pthm-cable/gravwell/game"
	"github.com/pthm-cable/gravwell/systems"
)

// Cue identifies a gameplay sound.
type Cue int

const (
	CueGrow Cue = iota
	CueShrink
	CueMerge
	CuePowerUp
	CueEnd
	cueCount
)

// String returns the display name for a Cue.
func (c Cue) String() string {
	switch c {
	case CueGrow:
		return "grow"
	case CueShrink:
		return "shrink"
	case CueMerge:
		return "merge"
	case CuePowerUp:
		return "powerup"
	case CueEnd:
		return "end"
	}
	return "unknown"
}

// Cues returns every cue in order.
func Cues() []Cue {
	cues := make([]Cue, cueCount)
	for i := range cues {
		cues[i] = Cue(i)
	}
	return cues
}

// CuesFor returns the cues a tick should sound, at most one of each, in cue order.
// A grow and a shrink in the same tick both play.
func CuesFor(out game.TickOutput) []Cue {
	var fired [cueCount]bool
	for _, ev := range out.Consumptions {
		switch ev.Result.Kind {
		case systems.ConsumeGrow:
			fired[CueGrow] = true
		case systems.ConsumeShrink:
			fired[CueShrink] = true
		}
	}
	if len(out.Merges) > 0 {
		fired[CueMerge] = true
	}
	for _, pu := range out.PowerUps {
		if pu.Type == game.PowerUpActivated {
			fired[CuePowerUp] = true
		}
	}
	if out.Ended != nil {
		fired[CueEnd] = true
	}

	var cues []Cue
	for c, ok := range fired {
		if ok {
			cues = append(cues, Cue(c))
		}
	}
	return cues
}

// Length returns how long a cue plays.
func (c Cue) Length() time.Duration {
	switch c {
	case CueGrow:
		return 90 * time.Millisecond
	case CueShrink:
		return 180 * time.Millisecond
	case CueMerge:
		return 220 * time.Millisecond
	case CuePowerUp:
		return 320 * time.Millisecond
	case CueEnd:
		return 900 * time.Millisecond
	}
	return 0
}

// Build synthesizes the streamer for c at vol in [0, 1].
func (c Cue) Build(rate beep.SampleRate, vol float64) beep.Streamer {
	d := c.Length()
	var s beep.Streamer
	switch c {
	case CueGrow:
		// Short rising blip
		s = NewEnvelope(NewTone(520, 880, d, WaveSine, rate), d, 5*time.Millisecond, 60*time.Millisecond, rate)
	case CueShrink:
		// Falling buzz
		s = NewEnvelope(NewTone(240, 110, d, WaveSquare, rate), d, 5*time.Millisecond, 80*time.Millisecond, rate)
		s = withVolume(s, 0.5)
	case CueMerge:
		// Two partials sliding together
		low := NewEnvelope(NewTone(300, 440, d, WaveTriangle, rate), d, 20*time.Millisecond, 120*time.Millisecond, rate)
		high := NewEnvelope(NewTone(660, 440, d, WaveTriangle, rate), d, 20*time.Millisecond, 120*time.Millisecond, rate)
		s = beep.Mix(withVolume(low, 0.6), withVolume(high, 0.4))
	case CuePowerUp:
		// Arpeggio: root, fifth, octave
		step := d / 3
		s = beep.Seq(
			NewEnvelope(NewTone(660, 660, step, WaveSine, rate), step, 3*time.Millisecond, 40*time.Millisecond, rate),
			NewEnvelope(NewTone(990, 990, step, WaveSine, rate), step, 3*time.Millisecond, 40*time.Millisecond, rate),
			NewEnvelope(NewTone(1320, 1320, step, WaveSine, rate), step, 3*time.Millisecond, 60*time.Millisecond, rate),
		)
	case CueEnd:
		tone := NewEnvelope(NewTone(330, 55, d, WaveSquare, rate), d, 10*time.Millisecond, 500*time.Millisecond, rate)
		noise := NewEnvelope(NewTone(0, 0, d/3, WaveNoise, rate), d/3, 2*time.Millisecond, 250*time.Millisecond, rate)
		s = beep.Mix(withVolume(tone, 0.7), withVolume(noise, 0.3))
	default:
		return beep.Silence(0)
	}
	// Mixed streams may pad with silence; Take bounds every cue to its length
	return beep.Take(rate.N(d), withVolume(s, vol))
}

