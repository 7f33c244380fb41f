package systems

// ScoreEngine accumulates points. The total never drops below zero and the
// high-water mark only rises; persisting it is the host's job.
type ScoreEngine struct {
	total int
	high  int
}

// NewScoreEngine creates a score engine seeded with a previously persisted high score.
func NewScoreEngine(high int) *ScoreEngine {
	if high < 0 {
		high = 0
	}
	return &ScoreEngine{high: high}
}

// AddPoints applies delta and returns the delta actually applied.
// A penalty larger than the current total is floored so the total stays at zero.
func (s *ScoreEngine) AddPoints(delta int) int {
	if delta < 0 && -delta > s.total {
		delta = -s.total
	}
	s.total += delta
	if s.total > s.high {
		s.high = s.total
	}
	return delta
}

// Total returns the current score.
func (s *ScoreEngine) Total() int {
	return s.total
}

// High returns the highest total seen, including the seeded value.
func (s *ScoreEngine) High() int {
	return s.high
}
