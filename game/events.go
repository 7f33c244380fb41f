package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/systems"
)

// ContactPair is one host-detected contact between two bodies this tick.
type ContactPair struct {
	A, B components.BodyID
}

// HostRemovalReason tags why the host removed a body.
type HostRemovalReason uint8

const (
	HostCulled   HostRemovalReason = iota // Too far from the well
	HostOffWorld                          // Power-up left the world unconsumed
)

// String returns the display name for a HostRemovalReason.
func (r HostRemovalReason) String() string {
	switch r {
	case HostCulled:
		return "culled"
	case HostOffWorld:
		return "off_world"
	}
	return "unknown"
}

// HostRemoval is a host notification that a body left for host-only reasons.
type HostRemoval struct {
	ID     components.BodyID
	Reason HostRemovalReason
}

// TickInput is everything the host hands the core for one tick.
type TickInput struct {
	Now          float64 // Monotonic simulation time in seconds
	WellPosition *r2.Vec // Host-driven well position; nil keeps the current one
	Contacts     []ContactPair
	Spawned      []systems.BodyState // Fulfilled spawn requests, ids assigned by the host
	Removed      []HostRemoval
}

// ChangeReason tags a body lifecycle change.
type ChangeReason uint8

const (
	ChangeConsumed ChangeReason = iota
	ChangeMergedAway
	ChangeMergedResultCreated
	ChangeFatal
	ChangeHostRemoved
	ChangeSpawned
)

// String returns the display name for a ChangeReason.
func (r ChangeReason) String() string {
	switch r {
	case ChangeConsumed:
		return "consumed"
	case ChangeMergedAway:
		return "merged_away"
	case ChangeMergedResultCreated:
		return "merged_result_created"
	case ChangeFatal:
		return "fatal"
	case ChangeHostRemoved:
		return "host_removed"
	case ChangeSpawned:
		return "spawned"
	}
	return "unknown"
}

// BodyChange reports a body entering or leaving the simulation.
type BodyChange struct {
	Reason ChangeReason
	Body   systems.BodyState
}

// BodyMutation is a changed body state for rendering sync.
type BodyMutation struct {
	ID     components.BodyID
	Pos    r2.Vec
	Vel    r2.Vec
	Radius float64
	Mass   float64
}

// ConsumeEvent reports one resolved well/consumable contact.
type ConsumeEvent struct {
	ConsumableID components.BodyID
	Class        components.ClassID
	Result       systems.Consumption
}

// MergeEvent reports one completed merge.
type MergeEvent struct {
	A, B     components.BodyID
	ResultID components.BodyID
	Diameter float64
	Class    components.ClassID
	Points   int
}

// ScoreEvent reports a score change actually applied.
type ScoreEvent struct {
	Source components.BodyID
	Delta  int
	Total  int
}

// PowerUpEventType tags power-up lifecycle events.
type PowerUpEventType uint8

const (
	PowerUpSpawnRequested PowerUpEventType = iota
	PowerUpActivated
	PowerUpDeactivated
	PowerUpFreezeConsumables
	PowerUpUnfreezeConsumables
)

// String returns the display name for a PowerUpEventType.
func (t PowerUpEventType) String() string {
	switch t {
	case PowerUpSpawnRequested:
		return "spawn_requested"
	case PowerUpActivated:
		return "activated"
	case PowerUpDeactivated:
		return "deactivated"
	case PowerUpFreezeConsumables:
		return "freeze"
	case PowerUpUnfreezeConsumables:
		return "unfreeze"
	}
	return "unknown"
}

// PowerUpEvent reports a power-up lifecycle transition.
type PowerUpEvent struct {
	Type   PowerUpEventType
	Kind   components.EffectKind
	Expiry float64 // Set on activation
}

// AnomalyKind classifies soft anomalies. None of them stop the simulation.
type AnomalyKind uint8

const (
	AnomalyUnknownPair AnomalyKind = iota
	AnomalyUnknownBody
	AnomalyMergeRejected
	AnomalyDuplicateActivation
	AnomalyMalformedSpawn
	AnomalyClockRewind
)

// String returns the display name for an AnomalyKind.
func (k AnomalyKind) String() string {
	switch k {
	case AnomalyUnknownPair:
		return "unknown_pair"
	case AnomalyUnknownBody:
		return "unknown_body"
	case AnomalyMergeRejected:
		return "merge_rejected"
	case AnomalyDuplicateActivation:
		return "duplicate_activation"
	case AnomalyMalformedSpawn:
		return "malformed_spawn"
	case AnomalyClockRewind:
		return "clock_rewind"
	}
	return "unknown"
}

// Anomaly is a rejected or malformed request, reported for observability.
type Anomaly struct {
	Kind AnomalyKind
	IDs  []components.BodyID
	Err  error
}

// SessionEnded is the terminal event of a session.
type SessionEnded struct {
	Reason    systems.EndReason
	Time      float64
	Score     int
	HighScore int
}

// TickOutput is everything the core reports back for one tick.
type TickOutput struct {
	Tick          int64
	Now           float64
	Mutations     []BodyMutation
	Changes       []BodyChange
	Consumptions  []ConsumeEvent
	Merges        []MergeEvent
	Scores        []ScoreEvent
	PowerUps      []PowerUpEvent
	TargetChanged *components.ClassID
	Anomalies     []Anomaly
	Ended         *SessionEnded
	Halted        bool // Session had already ended; no work was done
}
