package engine

import "time"

// Mode is the kind of segment the timer is counting.
type Mode string

const (
	ModeWork Mode = "work"
	ModeFree Mode = "free"
)

// Opposite returns the other mode.
func (mode Mode) Opposite() Mode {
	if mode == ModeWork {
		return ModeFree
	}
	return ModeWork
}

// Phase is the lifecycle state of the engine. Exactly one phase is active and
// it alone decides whether a tick advances elapsed time.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhasePaused   Phase = "paused"
	PhaseAlerting Phase = "alerting"
	PhaseFinished Phase = "finished"
)

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
	EventAlert       EventType = "alert"
	EventStoreError  EventType = "store_error"
	EventIdlePause   EventType = "idle_pause"
	EventIdleError   EventType = "idle_error"
)

// Snapshot is the observable engine state handed to the presentation layer.
type Snapshot struct {
	Mode    Mode
	Phase   Phase
	Elapsed int
	Target  int

	// SessionWork is the cumulative Work seconds across all segments of the
	// current session.
	SessionWork int

	// Display is target-elapsed while counting, or the overtime amount once
	// Work has run past its target. Free overtime displays 0 remaining.
	Display  int
	Overtime bool

	// OvertimeTicks counts seconds spent Alerting; elapsed stays pinned at
	// the target during Free overtime, so the overrun lives here.
	OvertimeTicks int
}

// Event represents an engine update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Message  string
	At       time.Time
}
