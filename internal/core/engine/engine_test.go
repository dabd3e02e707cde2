package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pacer/internal/core/model"
	"pacer/internal/core/notify"
)

type scheduledCall struct {
	id    string
	title string
	body  string
	delay time.Duration
}

type repeatCall struct {
	idPrefix string
	interval time.Duration
	count    int
}

type schedulerRecorder struct {
	oneShots []scheduledCall
	repeats  []repeatCall
	canceled []string
}

func (recorder *schedulerRecorder) ScheduleOneShot(id, title, body string, delay time.Duration) {
	recorder.oneShots = append(recorder.oneShots, scheduledCall{id: id, title: title, body: body, delay: delay})
}

func (recorder *schedulerRecorder) ScheduleRepeating(idPrefix, title string, body func(n int) string, interval time.Duration, count int) {
	recorder.repeats = append(recorder.repeats, repeatCall{idPrefix: idPrefix, interval: interval, count: count})
}

func (recorder *schedulerRecorder) Cancel(id string) {
	recorder.canceled = append(recorder.canceled, id)
}

func (recorder *schedulerRecorder) CancelPrefix(idPrefix string) {
	recorder.canceled = append(recorder.canceled, idPrefix)
}

func (recorder *schedulerRecorder) countID(id string) int {
	total := 0
	for _, call := range recorder.oneShots {
		if call.id == id {
			total++
		}
	}
	return total
}

type storeRecorder struct {
	records []model.SessionRecord
	err     error
}

func (recorder *storeRecorder) Append(record model.SessionRecord) error {
	if recorder.err != nil {
		return recorder.err
	}
	recorder.records = append(recorder.records, record)
	return nil
}

func testConfig() model.EngineConfig {
	return model.EngineConfig{
		WorkTarget:  5 * time.Second,
		FreeTarget:  3 * time.Second,
		AlertInWork: true,
	}
}

func newTestEngine(config model.EngineConfig) (*Engine, *schedulerRecorder, *storeRecorder) {
	scheduler := &schedulerRecorder{}
	store := &storeRecorder{}
	keeper := New(config, Config{}, notify.NewPolicy(scheduler), store)
	return keeper, scheduler, store
}

func tickTimes(keeper *Engine, count int) {
	for i := 0; i < count; i++ {
		keeper.tick(time.Now())
	}
}

func TestBeginWithOnlyFromIdle(t *testing.T) {
	keeper, _, _ := newTestEngine(testConfig())

	keeper.BeginWith(ModeWork)
	snapshot := keeper.Snapshot()
	require.Equal(t, PhaseRunning, snapshot.Phase)
	require.Equal(t, ModeWork, snapshot.Mode)
	assert.Equal(t, 5, snapshot.Target)
	assert.Equal(t, 0, snapshot.Elapsed)

	// Already running: a second begin must not restart the segment.
	tickTimes(keeper, 2)
	keeper.BeginWith(ModeFree)
	snapshot = keeper.Snapshot()
	assert.Equal(t, ModeWork, snapshot.Mode)
	assert.Equal(t, 2, snapshot.Elapsed)
}

func TestWorkTargetAlertFiresExactlyOnce(t *testing.T) {
	keeper, scheduler, _ := newTestEngine(testConfig())
	keeper.BeginWith(ModeWork)

	tickTimes(keeper, 5)
	snapshot := keeper.Snapshot()
	require.Equal(t, PhaseRunning, snapshot.Phase)
	assert.Equal(t, 5, snapshot.Elapsed)
	assert.Equal(t, 1, scheduler.countID("work-complete"))

	// Work keeps counting; overtime is cosmetic and no second alert fires.
	tickTimes(keeper, 2)
	snapshot = keeper.Snapshot()
	require.Equal(t, PhaseRunning, snapshot.Phase)
	assert.Equal(t, 7, snapshot.Elapsed)
	assert.Equal(t, 2, snapshot.Display)
	assert.True(t, snapshot.Overtime)
	assert.Equal(t, 1, scheduler.countID("work-complete"))
}

func TestWorkAlertDisabled(t *testing.T) {
	config := testConfig()
	config.AlertInWork = false
	keeper, scheduler, _ := newTestEngine(config)
	keeper.BeginWith(ModeWork)

	tickTimes(keeper, 6)
	assert.Equal(t, 0, scheduler.countID("work-complete"))
	assert.Equal(t, 6, keeper.Snapshot().Elapsed)
}

func TestFreeTargetClampsAndAlerts(t *testing.T) {
	keeper, scheduler, _ := newTestEngine(testConfig())
	keeper.BeginWith(ModeFree)

	tickTimes(keeper, 3)
	snapshot := keeper.Snapshot()
	require.Equal(t, PhaseAlerting, snapshot.Phase)
	assert.Equal(t, 3, snapshot.Elapsed)
	assert.Equal(t, 0, snapshot.Display)
	assert.True(t, snapshot.Overtime)
	assert.Equal(t, 1, scheduler.countID("free-overtime"))

	// Elapsed stays pinned at the target while overtime ticks accumulate.
	tickTimes(keeper, 10)
	snapshot = keeper.Snapshot()
	assert.Equal(t, PhaseAlerting, snapshot.Phase)
	assert.Equal(t, 3, snapshot.Elapsed)
}

func TestFreeOvertimeRepeatThrottle(t *testing.T) {
	keeper, scheduler, _ := newTestEngine(testConfig())
	keeper.BeginWith(ModeFree)
	tickTimes(keeper, 3)

	tickTimes(keeper, 59)
	assert.Equal(t, 0, scheduler.countID("free-overtime-repeat"))

	tickTimes(keeper, 1)
	assert.Equal(t, 1, scheduler.countID("free-overtime-repeat"))

	tickTimes(keeper, 60)
	assert.Equal(t, 2, scheduler.countID("free-overtime-repeat"))
}

func TestTogglePause(t *testing.T) {
	keeper, _, _ := newTestEngine(testConfig())
	keeper.BeginWith(ModeWork)
	tickTimes(keeper, 2)

	keeper.TogglePause()
	require.Equal(t, PhasePaused, keeper.Snapshot().Phase)

	// Ticks must not advance a paused segment.
	tickTimes(keeper, 5)
	assert.Equal(t, 2, keeper.Snapshot().Elapsed)

	keeper.TogglePause()
	require.Equal(t, PhaseRunning, keeper.Snapshot().Phase)
	tickTimes(keeper, 1)
	assert.Equal(t, 3, keeper.Snapshot().Elapsed)
}

func TestTogglePauseNoopOutsideRunningPaused(t *testing.T) {
	keeper, _, _ := newTestEngine(testConfig())

	keeper.TogglePause()
	assert.Equal(t, PhaseIdle, keeper.Snapshot().Phase)

	keeper.BeginWith(ModeFree)
	tickTimes(keeper, 3)
	require.Equal(t, PhaseAlerting, keeper.Snapshot().Phase)
	keeper.TogglePause()
	assert.Equal(t, PhaseAlerting, keeper.Snapshot().Phase)
}

func TestStopAndSwitchAccumulatesWork(t *testing.T) {
	keeper, _, _ := newTestEngine(testConfig())
	keeper.BeginWith(ModeWork)
	tickTimes(keeper, 4)

	keeper.StopAndSwitch()
	snapshot := keeper.Snapshot()
	require.Equal(t, ModeFree, snapshot.Mode)
	require.Equal(t, PhaseRunning, snapshot.Phase)
	assert.Equal(t, 0, snapshot.Elapsed)
	assert.Equal(t, 3, snapshot.Target)
	assert.Equal(t, 4, snapshot.SessionWork)

	// Free time never adds to the session total.
	tickTimes(keeper, 2)
	keeper.StopAndSwitch()
	snapshot = keeper.Snapshot()
	require.Equal(t, ModeWork, snapshot.Mode)
	assert.Equal(t, 4, snapshot.SessionWork)
	assert.Equal(t, 5, snapshot.Target)
}

func TestStopAndSwitchFromAlerting(t *testing.T) {
	keeper, _, _ := newTestEngine(testConfig())
	keeper.BeginWith(ModeFree)
	tickTimes(keeper, 10)
	require.Equal(t, PhaseAlerting, keeper.Snapshot().Phase)

	keeper.StopAndSwitch()
	snapshot := keeper.Snapshot()
	assert.Equal(t, ModeWork, snapshot.Mode)
	assert.Equal(t, PhaseRunning, snapshot.Phase)
	assert.Equal(t, 0, snapshot.Elapsed)
}

func TestSwitchResetsSegmentGuards(t *testing.T) {
	keeper, scheduler, _ := newTestEngine(testConfig())
	keeper.BeginWith(ModeWork)
	tickTimes(keeper, 5)
	require.Equal(t, 1, scheduler.countID("work-complete"))

	keeper.StopAndSwitch()
	keeper.StopAndSwitch()

	// Fresh Work segment: the one-shot guard must be re-armed.
	tickTimes(keeper, 5)
	assert.Equal(t, 2, scheduler.countID("work-complete"))
}

func TestFinishSessionAppendsOneRecord(t *testing.T) {
	keeper, _, store := newTestEngine(testConfig())
	keeper.BeginWith(ModeWork)
	tickTimes(keeper, 4)
	keeper.StopAndSwitch()
	tickTimes(keeper, 2)
	keeper.StopAndSwitch()
	tickTimes(keeper, 3)

	keeper.FinishSession()
	snapshot := keeper.Snapshot()
	require.Equal(t, PhaseFinished, snapshot.Phase)
	assert.Equal(t, 7, snapshot.SessionWork)
	require.Len(t, store.records, 1)
	assert.Equal(t, 7, store.records[0].DurationSeconds)
	assert.NotEmpty(t, store.records[0].ID)
}

func TestFinishSessionWithoutWorkSkipsRecord(t *testing.T) {
	keeper, _, store := newTestEngine(testConfig())
	keeper.BeginWith(ModeFree)
	tickTimes(keeper, 2)

	keeper.FinishSession()
	require.Equal(t, PhaseFinished, keeper.Snapshot().Phase)
	assert.Empty(t, store.records)
}

func TestFinishSessionStoreErrorDoesNotCorruptState(t *testing.T) {
	keeper, _, store := newTestEngine(testConfig())
	store.err = errors.New("disk full")
	events := keeper.Subscribe(5)

	keeper.BeginWith(ModeWork)
	tickTimes(keeper, 2)
	keeper.FinishSession()

	assert.Equal(t, PhaseFinished, keeper.Snapshot().Phase)

	sawStoreError := false
	for len(events) > 0 {
		event := <-events
		if event.Type == EventStoreError {
			sawStoreError = true
		}
	}
	assert.True(t, sawStoreError)
}

func TestFinishCancelsPendingNotifications(t *testing.T) {
	keeper, scheduler, _ := newTestEngine(testConfig())
	keeper.BeginWith(ModeFree)
	tickTimes(keeper, 3)

	keeper.FinishSession()
	assert.Contains(t, scheduler.canceled, "deferred-target")
	assert.Contains(t, scheduler.canceled, "free-overtime")
	assert.Contains(t, scheduler.canceled, "work-complete")
}

func TestResetReturnsToIdle(t *testing.T) {
	keeper, _, _ := newTestEngine(testConfig())
	keeper.BeginWith(ModeWork)
	tickTimes(keeper, 3)
	keeper.FinishSession()

	keeper.Reset()
	snapshot := keeper.Snapshot()
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	assert.Equal(t, 0, snapshot.Elapsed)
	assert.Equal(t, 0, snapshot.SessionWork)

	// Recovered engine can start a fresh session.
	keeper.BeginWith(ModeFree)
	assert.Equal(t, PhaseRunning, keeper.Snapshot().Phase)
}

func TestCommandsIgnoredOutOfPhase(t *testing.T) {
	keeper, _, store := newTestEngine(testConfig())

	keeper.StopAndSwitch()
	keeper.FinishSession()
	assert.Equal(t, PhaseIdle, keeper.Snapshot().Phase)
	assert.Empty(t, store.records)

	keeper.BeginWith(ModeWork)
	keeper.FinishSession()
	require.Equal(t, PhaseFinished, keeper.Snapshot().Phase)

	keeper.StopAndSwitch()
	keeper.TogglePause()
	assert.Equal(t, PhaseFinished, keeper.Snapshot().Phase)
}

func TestUpdateConfigAppliesAtSegmentBoundary(t *testing.T) {
	keeper, _, _ := newTestEngine(testConfig())
	keeper.BeginWith(ModeWork)
	tickTimes(keeper, 2)

	config := testConfig()
	config.WorkTarget = 30 * time.Second
	keeper.UpdateConfig(config)

	// Running segment keeps its captured target.
	assert.Equal(t, 5, keeper.Snapshot().Target)

	keeper.StopAndSwitch()
	keeper.StopAndSwitch()
	assert.Equal(t, 30, keeper.Snapshot().Target)
}

func TestDisplayCountsDownThenShowsOvertime(t *testing.T) {
	keeper, _, _ := newTestEngine(testConfig())
	keeper.BeginWith(ModeWork)

	tickTimes(keeper, 1)
	snapshot := keeper.Snapshot()
	assert.Equal(t, 4, snapshot.Display)
	assert.False(t, snapshot.Overtime)

	tickTimes(keeper, 4)
	snapshot = keeper.Snapshot()
	assert.Equal(t, 0, snapshot.Display)
	assert.False(t, snapshot.Overtime)

	tickTimes(keeper, 3)
	snapshot = keeper.Snapshot()
	assert.Equal(t, 3, snapshot.Display)
	assert.True(t, snapshot.Overtime)
}

type fakeIdle struct {
	idle time.Duration
	err  error
}

func (checker fakeIdle) IdleDuration() (time.Duration, error) {
	return checker.idle, checker.err
}

func TestIdlePausesRunningWork(t *testing.T) {
	config := testConfig()
	config.IdlePauseEnabled = true
	config.IdlePauseAfter = 2 * time.Minute
	config.IdleCheckInterval = time.Second
	keeper, _, _ := newTestEngine(config)
	keeper.SetIdleChecker(fakeIdle{idle: 3 * time.Minute})

	keeper.BeginWith(ModeWork)
	tickTimes(keeper, 1)
	assert.Equal(t, PhasePaused, keeper.Snapshot().Phase)
	assert.Equal(t, 0, keeper.Snapshot().Elapsed)
}

func TestIdleUnsupportedDisablesChecks(t *testing.T) {
	config := testConfig()
	config.IdlePauseEnabled = true
	config.IdlePauseAfter = time.Minute
	config.IdleCheckInterval = time.Second
	keeper, _, _ := newTestEngine(config)
	keeper.SetIdleChecker(fakeIdle{err: ErrIdleUnsupported})

	keeper.BeginWith(ModeWork)
	tickTimes(keeper, 3)
	assert.Equal(t, PhaseRunning, keeper.Snapshot().Phase)
	assert.Equal(t, 3, keeper.Snapshot().Elapsed)
	assert.False(t, keeper.config.IdlePauseEnabled)
}
