package model

import (
	"time"

	"github.com/google/uuid"
)

// EngineConfig contains runtime settings for the timer engine.
type EngineConfig struct {
	WorkTarget time.Duration
	FreeTarget time.Duration

	// AlertInWork controls whether reaching the Work target raises an alert.
	// Work keeps counting past its target either way.
	AlertInWork bool

	// OvertimeRepeatEvery is the number of overtime ticks between repeat
	// reminders while Free overtime alerting is active.
	OvertimeRepeatEvery int

	IdlePauseEnabled  bool
	IdlePauseAfter    time.Duration
	IdleCheckInterval time.Duration
}

// SessionRecord is one finished session. Immutable once created; its duration
// is the cumulative Work time of the whole session, not the last segment.
type SessionRecord struct {
	ID              string
	CreatedAt       time.Time
	DurationSeconds int
	Note            string
}

// NewSessionRecord creates a record for a session that accumulated the given
// number of Work seconds.
func NewSessionRecord(durationSeconds int) SessionRecord {
	return SessionRecord{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		DurationSeconds: durationSeconds,
	}
}
