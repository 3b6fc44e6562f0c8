// Package completion tracks the "mark complete" interaction of one exercise
// visit and the delayed return to the group that follows it.
package completion

import "time"

// DefaultDelay is the pause between confirming completion and leaving the
// exercise.
const DefaultDelay = 1500 * time.Millisecond

// Scheduler runs fn once after d. The returned func cancels a pending run.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// State of the current exercise visit
type State struct {
	Pending   bool
	Confirmed bool
}

// Trigger is called from the scheduler when a confirmation timer expires.
// The owner passes token back to Fire under its own lock.
type Trigger func(token uint64)

// Flow is owned by a single session and is not safe for concurrent use
type Flow struct {
	sched   Scheduler
	delay   time.Duration
	trigger Trigger

	exerciseID int64
	token      uint64
	state      State
	cancel     func()
}

// NewFlow creates an idle flow. A non-positive delay means DefaultDelay.
func NewFlow(sched Scheduler, delay time.Duration, trigger Trigger) *Flow {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Flow{sched: sched, delay: delay, trigger: trigger}
}

// Enter starts a fresh visit of exercise id
func (f *Flow) Enter(id int64) {
	f.stop()
	f.exerciseID = id
	f.token++
	f.state = State{}
}

// MarkComplete confirms completion of id and schedules the return. It reports
// whether a timer was scheduled; repeated calls are no-ops.
func (f *Flow) MarkComplete(id int64) bool {
	if id != f.exerciseID || f.exerciseID == 0 || f.state.Confirmed {
		return false
	}
	f.state = State{Pending: true, Confirmed: true}
	token := f.token
	f.cancel = f.sched.After(f.delay, func() { f.trigger(token) })
	return true
}

// Leave ends the visit and cancels a pending timer
func (f *Flow) Leave() {
	f.stop()
	f.exerciseID = 0
	f.token++
	f.state = State{}
}

// Fire consumes an expired timer. It returns the exercise to complete, or
// false when token belongs to an earlier visit or nothing is pending.
func (f *Flow) Fire(token uint64) (int64, bool) {
	if token != f.token || !f.state.Pending {
		return 0, false
	}
	f.state.Pending = false
	f.cancel = nil
	return f.exerciseID, true
}

// State returns the state of the current visit
func (f *Flow) State() State { return f.state }

// ExerciseID is the exercise being visited, 0 when idle
func (f *Flow) ExerciseID() int64 { return f.exerciseID }

func (f *Flow) stop() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}
