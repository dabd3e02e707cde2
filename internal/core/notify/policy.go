// Package notify decides what notifications to request and when. Delivery is
// a collaborator concern: the engine talks to a Scheduler and never assumes a
// request was delivered.
package notify

import (
	"fmt"
	"time"
)

// Scheduler is the delivery collaborator. All calls are fire-and-forget and
// idempotent under the same id: re-scheduling replaces, never duplicates.
type Scheduler interface {
	ScheduleOneShot(id, title, body string, delay time.Duration)
	ScheduleRepeating(idPrefix, title string, body func(n int) string, interval time.Duration, count int)
	Cancel(id string)
	CancelPrefix(idPrefix string)
}

// Notification ids. Fixed so a repeated request replaces its predecessor.
const (
	idWorkComplete         = "work-complete"
	idOvertimeStart        = "free-overtime"
	idOvertimeRepeat       = "free-overtime-repeat"
	idDeferredTarget       = "deferred-target"
	prefixDeferredOvertime = "deferred-overtime"
)

// Cadence of the deferred overtime series armed at suspension. The cap keeps
// the series bounded without being configuration.
const (
	DeferredOvertimeInterval = 10 * time.Second
	DeferredOvertimeMax      = 30
)

// Policy owns the id space and message text of every notification the timer
// requests.
type Policy struct {
	scheduler Scheduler
}

// NewPolicy creates a Policy backed by the given scheduler.
func NewPolicy(scheduler Scheduler) *Policy {
	return &Policy{scheduler: scheduler}
}

// WorkComplete requests the one-shot work-target notification.
func (policy *Policy) WorkComplete() {
	policy.scheduler.ScheduleOneShot(idWorkComplete, "Work complete", "Work target reached. Time for a break.", 0)
}

// OvertimeStart requests the initial Free-overtime notification.
func (policy *Policy) OvertimeStart() {
	policy.scheduler.ScheduleOneShot(idOvertimeStart, "Break is over", "Free time is up. Back to work?", 0)
}

// OvertimeRepeat requests a repeat overtime reminder.
func (policy *Policy) OvertimeRepeat(minutesOver int) {
	policy.scheduler.ScheduleOneShot(idOvertimeRepeat, "Break is over", overtimeBody(minutesOver), 0)
}

// DeferredWorkTarget arms a one-shot request for the moment the suspended
// Work segment will reach its target.
func (policy *Policy) DeferredWorkTarget(remaining time.Duration) {
	policy.scheduler.ScheduleOneShot(idDeferredTarget, "Work complete", "Work target reached. Time for a break.", remaining)
}

// DeferredFreeTarget arms a one-shot request for the moment the suspended
// Free segment will reach its target.
func (policy *Policy) DeferredFreeTarget(remaining time.Duration) {
	policy.scheduler.ScheduleOneShot(idDeferredTarget, "Break is over", "Free time is up. Back to work?", remaining)
}

// DeferredOvertimeSeries arms a bounded series of overtime reminders so they
// keep arriving while the process is suspended.
func (policy *Policy) DeferredOvertimeSeries() {
	policy.scheduler.ScheduleRepeating(prefixDeferredOvertime, "Break is over", func(n int) string {
		minutesOver := int(time.Duration(n) * DeferredOvertimeInterval / time.Minute)
		return overtimeBody(minutesOver)
	}, DeferredOvertimeInterval, DeferredOvertimeMax)
}

// CancelDeferred drops every request armed for a suspension window.
func (policy *Policy) CancelDeferred() {
	policy.scheduler.Cancel(idDeferredTarget)
	policy.scheduler.CancelPrefix(prefixDeferredOvertime)
}

// CancelAll drops every pending request.
func (policy *Policy) CancelAll() {
	policy.CancelDeferred()
	policy.scheduler.Cancel(idWorkComplete)
	policy.scheduler.Cancel(idOvertimeStart)
	policy.scheduler.Cancel(idOvertimeRepeat)
}

func overtimeBody(minutesOver int) string {
	if minutesOver <= 0 {
		return "Free time is up. Back to work?"
	}
	if minutesOver == 1 {
		return "1 minute over your break target."
	}
	return fmt.Sprintf("%d minutes over your break target.", minutesOver)
}
