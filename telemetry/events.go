// Package telemetry provides session statistics, performance timing and CSV output.
package telemetry

import "github.com/pthm-cable/gravwell/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventConsume EventType = iota
	EventMerge
	EventPowerUp
	EventTarget
	EventAnomaly
	EventEnd
)

// String returns the CSV name for an EventType.
func (t EventType) String() string {
	switch t {
	case EventConsume:
		return "consume"
	case EventMerge:
		return "merge"
	case EventPowerUp:
		return "powerup"
	case EventTarget:
		return "target"
	case EventAnomaly:
		return "anomaly"
	case EventEnd:
		return "end"
	}
	return "unknown"
}

// Event represents a single notable simulation event, one row of events.csv.
type Event struct {
	Tick   int64   `csv:"tick"`
	Time   float64 `csv:"time"`
	Type   string  `csv:"type"`
	BodyID uint32  `csv:"body_id"`
	Detail string  `csv:"detail"`
	Value  float64 `csv:"value"`
}

// NewConsumeEvent creates an event for a resolved well contact.
// detail is the outcome name; diameter is the well diameter afterwards.
func NewConsumeEvent(tick int64, now float64, id components.BodyID, detail string, diameter float64) Event {
	return Event{
		Tick:   tick,
		Time:   now,
		Type:   EventConsume.String(),
		BodyID: uint32(id),
		Detail: detail,
		Value:  diameter,
	}
}

// NewMergeEvent creates an event for a completed merge.
func NewMergeEvent(tick int64, now float64, resultID components.BodyID, className string, diameter float64) Event {
	return Event{
		Tick:   tick,
		Time:   now,
		Type:   EventMerge.String(),
		BodyID: uint32(resultID),
		Detail: className,
		Value:  diameter,
	}
}

// NewPowerUpEvent creates an event for a power-up transition.
func NewPowerUpEvent(tick int64, now float64, kind components.EffectKind, transition string, expiry float64) Event {
	return Event{
		Tick:   tick,
		Time:   now,
		Type:   EventPowerUp.String(),
		Detail: kind.String() + ":" + transition,
		Value:  expiry,
	}
}

// NewTargetEvent creates an event for a target class change.
func NewTargetEvent(tick int64, now float64, className string) Event {
	return Event{
		Tick:   tick,
		Time:   now,
		Type:   EventTarget.String(),
		Detail: className,
	}
}

// NewAnomalyEvent creates an event for a soft anomaly.
func NewAnomalyEvent(tick int64, now float64, id components.BodyID, detail string) Event {
	return Event{
		Tick:   tick,
		Time:   now,
		Type:   EventAnomaly.String(),
		BodyID: uint32(id),
		Detail: detail,
	}
}

// NewEndEvent creates the terminal event of a session.
func NewEndEvent(tick int64, now float64, reason string, score int) Event {
	return Event{
		Tick:   tick,
		Time:   now,
		Type:   EventEnd.String(),
		Detail: reason,
		Value:  float64(score),
	}
}
