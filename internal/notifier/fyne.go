// Package notifier delivers notification requests through the fyne
// application notification surface.
package notifier

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// FyneScheduler implements the scheduling contract on top of
// fyne.App.SendNotification. Deferred requests are tracked per id so a
// re-schedule or cancel stops the pending timer.
type FyneScheduler struct {
	app fyne.App

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewFyneScheduler creates a scheduler for the given application.
func NewFyneScheduler(app fyne.App) *FyneScheduler {
	return &FyneScheduler{
		app:    app,
		timers: make(map[string]*time.Timer),
	}
}

// ScheduleOneShot sends the notification after delay, replacing any pending
// request with the same id. A non-positive delay sends immediately.
func (scheduler *FyneScheduler) ScheduleOneShot(id, title, body string, delay time.Duration) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	scheduler.cancelLocked(id)
	if delay <= 0 {
		scheduler.app.SendNotification(fyne.NewNotification(title, body))
		return
	}
	scheduler.timers[id] = time.AfterFunc(delay, func() {
		scheduler.app.SendNotification(fyne.NewNotification(title, body))
		scheduler.mu.Lock()
		delete(scheduler.timers, id)
		scheduler.mu.Unlock()
	})
}

// ScheduleRepeating arms count notifications at the given interval, ids
// derived from idPrefix. Re-arming the same prefix replaces the series.
func (scheduler *FyneScheduler) ScheduleRepeating(idPrefix, title string, body func(n int) string, interval time.Duration, count int) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	scheduler.cancelPrefixLocked(idPrefix)
	for n := 1; n <= count; n++ {
		id := seriesID(idPrefix, n)
		message := body(n)
		scheduler.timers[id] = time.AfterFunc(time.Duration(n)*interval, func() {
			scheduler.app.SendNotification(fyne.NewNotification(title, message))
			scheduler.mu.Lock()
			delete(scheduler.timers, id)
			scheduler.mu.Unlock()
		})
	}
}

// Cancel stops a pending request. Unknown ids are ignored.
func (scheduler *FyneScheduler) Cancel(id string) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.cancelLocked(id)
}

// CancelPrefix stops every pending request whose id starts with idPrefix.
func (scheduler *FyneScheduler) CancelPrefix(idPrefix string) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.cancelPrefixLocked(idPrefix)
}

// Pending reports the number of armed timers.
func (scheduler *FyneScheduler) Pending() int {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return len(scheduler.timers)
}

func (scheduler *FyneScheduler) cancelLocked(id string) {
	if timer, ok := scheduler.timers[id]; ok {
		timer.Stop()
		delete(scheduler.timers, id)
	}
}

func (scheduler *FyneScheduler) cancelPrefixLocked(idPrefix string) {
	for id, timer := range scheduler.timers {
		if strings.HasPrefix(id, idPrefix) {
			timer.Stop()
			delete(scheduler.timers, id)
		}
	}
}

func seriesID(idPrefix string, n int) string {
	return idPrefix + "-" + strconv.Itoa(n)
}
