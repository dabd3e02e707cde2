package engine

import (
	"errors"
	"sync"
	"time"

	"pacer/internal/core/model"
	"pacer/internal/core/notify"
)

// ErrIdleUnsupported indicates idle detection is not available on this system.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// SessionStore receives finished-session records. Appends are best-effort;
// a failed append never blocks or corrupts the engine.
type SessionStore interface {
	Append(record model.SessionRecord) error
}

// Config contains runtime options for the Engine.
type Config struct {
	TickInterval time.Duration
}

// Engine is the timer state machine. All commands, the tick handler and the
// background reconciliation mutate state under one mutex, so the engine
// behaves as a single serialized timeline.
type Engine struct {
	mu      sync.Mutex
	config  model.EngineConfig
	options Config

	mode           Mode
	phase          Phase
	elapsed        int
	target         int
	sessionWork    int
	workAlertFired bool
	overtimeTicks  int
	backgroundAt   time.Time

	policy *notify.Policy
	store  SessionStore

	idleChecker   IdleChecker
	lastIdleCheck time.Time

	events  []chan Event
	stopCh  chan struct{}
	running bool
}

// New creates an Engine in the Idle phase.
func New(config model.EngineConfig, options Config, policy *notify.Policy, store SessionStore) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if config.OvertimeRepeatEvery <= 0 {
		config.OvertimeRepeatEvery = 60
	}
	if config.IdleCheckInterval <= 0 {
		config.IdleCheckInterval = 5 * time.Second
	}

	return &Engine{
		config:  config,
		options: options,
		mode:    ModeWork,
		phase:   PhaseIdle,
		policy:  policy,
		store:   store,
		stopCh:  make(chan struct{}),
	}
}

// SetIdleChecker injects an idle checker.
func (e *Engine) SetIdleChecker(checker IdleChecker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idleChecker = checker
}

// Subscribe registers a new observer channel.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	e.events = append(e.events, ch)
	e.mu.Unlock()
	return ch
}

// Start launches the ticking loop. The loop runs for the engine's lifetime;
// ticks only advance state while the phase allows it.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	go e.run()
}

// Stop terminates the ticking loop and closes observers.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	close(e.stopCh)
	e.running = false
	events := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// UpdateConfig replaces the runtime configuration. A running segment keeps
// the target it captured at its start; new targets apply from the next
// segment boundary.
func (e *Engine) UpdateConfig(config model.EngineConfig) {
	e.mu.Lock()
	if config.OvertimeRepeatEvery <= 0 {
		config.OvertimeRepeatEvery = 60
	}
	if config.IdleCheckInterval <= 0 {
		config.IdleCheckInterval = 5 * time.Second
	}
	e.config = config
	e.mu.Unlock()
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// BeginWith starts a new session in the given mode. Only valid from Idle.
func (e *Engine) BeginWith(mode Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseIdle {
		return
	}

	e.sessionWork = 0
	e.beginSegmentLocked(mode)
	e.phase = PhaseRunning
	e.emitStateLocked(time.Now())
}

// TogglePause freezes or unfreezes a running segment. No-op in any phase
// other than Running or Paused.
func (e *Engine) TogglePause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case PhaseRunning:
		e.phase = PhasePaused
	case PhasePaused:
		e.phase = PhaseRunning
	default:
		return
	}
	e.emitStateLocked(time.Now())
}

// StopAndSwitch ends the current segment and immediately starts the opposite
// mode. Work elapsed time flushes into the session total. Valid from Running,
// Paused and Alerting; switching never leaves the timer idle.
func (e *Engine) StopAndSwitch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activeLocked() {
		return
	}

	if e.mode == ModeWork {
		e.sessionWork += e.elapsed
	}
	e.beginSegmentLocked(e.mode.Opposite())
	e.phase = PhaseRunning
	e.emitStateLocked(time.Now())
}

// FinishSession ends the session. A record is appended only when the session
// accumulated any Work time. Valid from Running, Paused and Alerting.
func (e *Engine) FinishSession() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activeLocked() {
		return
	}

	if e.mode == ModeWork {
		e.sessionWork += e.elapsed
	}
	if e.sessionWork > 0 && e.store != nil {
		if err := e.store.Append(model.NewSessionRecord(e.sessionWork)); err != nil {
			e.emitLocked(Event{
				Type:     EventStoreError,
				Snapshot: e.snapshotLocked(),
				Message:  err.Error(),
				At:       time.Now(),
			})
		}
	}

	e.phase = PhaseFinished
	e.policy.CancelAll()
	e.emitStateLocked(time.Now())
}

// Reset returns the engine to Idle and clears all per-session state. Usable
// as forced recovery from any phase.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseIdle {
		return
	}

	e.mode = ModeWork
	e.phase = PhaseIdle
	e.elapsed = 0
	e.target = 0
	e.sessionWork = 0
	e.workAlertFired = false
	e.overtimeTicks = 0
	e.backgroundAt = time.Time{}
	e.policy.CancelAll()
	e.emitStateLocked(time.Now())
}

func (e *Engine) run() {
	ticker := time.NewTicker(e.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case tickTime := <-ticker.C:
			e.tick(tickTime)
		}
	}
}

func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Suspended: reconciliation owns time until HandleForeground runs.
	if !e.backgroundAt.IsZero() {
		return
	}

	switch e.phase {
	case PhaseAlerting:
		e.overtimeTicks++
		if e.overtimeTicks%e.config.OvertimeRepeatEvery == 0 {
			e.policy.OvertimeRepeat(e.overtimeTicks / 60)
		}
		e.emitLocked(Event{Type: EventAlert, Snapshot: e.snapshotLocked(), At: now})
		e.emitProgressLocked(now)
	case PhaseRunning:
		e.handleIdleCheckLocked(now)
		if e.phase != PhaseRunning {
			return
		}
		e.elapsed++
		if e.mode == ModeWork {
			e.checkWorkTargetLocked(now)
		} else {
			e.checkFreeTargetLocked(now)
		}
		e.emitProgressLocked(now)
	}
}

func (e *Engine) checkWorkTargetLocked(now time.Time) {
	if e.elapsed != e.target || e.target <= 0 {
		return
	}
	if !e.config.AlertInWork || e.workAlertFired {
		return
	}
	e.workAlertFired = true
	e.policy.WorkComplete()
	e.emitLocked(Event{Type: EventAlert, Snapshot: e.snapshotLocked(), At: now})
}

func (e *Engine) checkFreeTargetLocked(now time.Time) {
	if e.elapsed < e.target {
		return
	}
	e.elapsed = e.target
	e.phase = PhaseAlerting
	e.overtimeTicks = 0
	e.policy.OvertimeStart()
	e.emitLocked(Event{Type: EventAlert, Snapshot: e.snapshotLocked(), At: now})
	e.emitStateLocked(now)
}

func (e *Engine) handleIdleCheckLocked(now time.Time) {
	if !e.config.IdlePauseEnabled || e.idleChecker == nil || e.mode != ModeWork {
		return
	}
	if !e.lastIdleCheck.IsZero() && now.Sub(e.lastIdleCheck) < e.config.IdleCheckInterval {
		return
	}
	e.lastIdleCheck = now

	idleDuration, err := e.idleChecker.IdleDuration()
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			e.config.IdlePauseEnabled = false
		}
		e.emitLocked(Event{
			Type:     EventIdleError,
			Snapshot: e.snapshotLocked(),
			Message:  err.Error(),
			At:       now,
		})
		return
	}
	if e.config.IdlePauseAfter > 0 && idleDuration >= e.config.IdlePauseAfter {
		e.phase = PhasePaused
		e.emitLocked(Event{
			Type:     EventIdlePause,
			Snapshot: e.snapshotLocked(),
			Message:  "paused after inactivity",
			At:       now,
		})
	}
}

// beginSegmentLocked resets per-segment state and captures the target for the
// new mode. Targets are read here and nowhere else.
func (e *Engine) beginSegmentLocked(mode Mode) {
	e.mode = mode
	e.elapsed = 0
	e.target = int(e.targetFor(mode) / time.Second)
	e.workAlertFired = false
	e.overtimeTicks = 0
}

func (e *Engine) targetFor(mode Mode) time.Duration {
	if mode == ModeWork {
		return e.config.WorkTarget
	}
	return e.config.FreeTarget
}

func (e *Engine) activeLocked() bool {
	switch e.phase {
	case PhaseRunning, PhasePaused, PhaseAlerting:
		return true
	}
	return false
}

func (e *Engine) snapshotLocked() Snapshot {
	display := e.target - e.elapsed
	overtime := false
	if e.mode == ModeWork && e.elapsed > e.target {
		display = e.elapsed - e.target
		overtime = true
	}
	if e.phase == PhaseAlerting {
		overtime = true
	}

	return Snapshot{
		Mode:          e.mode,
		Phase:         e.phase,
		Elapsed:       e.elapsed,
		Target:        e.target,
		SessionWork:   e.sessionWork,
		Display:       display,
		Overtime:      overtime,
		OvertimeTicks: e.overtimeTicks,
	}
}

func (e *Engine) emitStateLocked(now time.Time) {
	e.emitLocked(Event{Type: EventStateChange, Snapshot: e.snapshotLocked(), At: now})
}

func (e *Engine) emitProgressLocked(now time.Time) {
	e.emitLocked(Event{Type: EventProgress, Snapshot: e.snapshotLocked(), At: now})
}

func (e *Engine) emitLocked(event Event) {
	events := append([]chan Event(nil), e.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
