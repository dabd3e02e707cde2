package engine

import "time"

// HandleBackground records the suspension timestamp and arms deferred
// notification requests covering the window during which no ticks will be
// delivered. While the timestamp is set, live ticks are inert.
func (e *Engine) HandleBackground(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.backgroundAt = now

	if e.phase == PhaseRunning && e.elapsed < e.target {
		remaining := time.Duration(e.target-e.elapsed) * time.Second
		if e.mode == ModeWork {
			if e.config.AlertInWork && !e.workAlertFired {
				e.policy.DeferredWorkTarget(remaining)
			}
		} else {
			e.policy.DeferredFreeTarget(remaining)
		}
	}
	if e.phase == PhaseAlerting {
		e.policy.DeferredOvertimeSeries()
	}
}

// HandleForeground reconciles state against the wall clock after a
// suspension. Calling it without a recorded suspension is a no-op, so a
// repeated resume signal cannot double-apply the gap.
func (e *Engine) HandleForeground(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.backgroundAt.IsZero() {
		return
	}
	diff := int(now.Sub(e.backgroundAt) / time.Second)
	if diff < 0 {
		diff = 0
	}
	e.backgroundAt = time.Time{}

	// Deferred requests are superseded by live reconciliation.
	e.policy.CancelDeferred()

	switch e.phase {
	case PhaseRunning:
		e.elapsed += diff
		if e.mode == ModeWork {
			// The deferred request already covered the crossing; keep the
			// single-shot guard consistent with a segment past its target.
			if e.target > 0 && e.elapsed >= e.target {
				e.workAlertFired = true
			}
		} else if e.elapsed >= e.target {
			e.elapsed = e.target
			e.phase = PhaseAlerting
			e.overtimeTicks = 0
			e.policy.OvertimeStart()
			e.emitLocked(Event{Type: EventAlert, Snapshot: e.snapshotLocked(), At: now})
			e.emitStateLocked(now)
		}
		e.emitProgressLocked(now)
	case PhaseAlerting:
		// Already over target when suspended. Live alerting resumes with the
		// next tick; missed overtime ticks are not credited retroactively.
		e.emitProgressLocked(now)
	case PhasePaused:
		// Paused time never advances elapsed; the gap is discarded.
	}
}
