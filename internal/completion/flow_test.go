package completion

import (
	"testing"
	"time"
)

type fakeTimer struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) After(d time.Duration, fn func()) func() {
	t := &fakeTimer{delay: d, fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.cancelled = true }
}

type firing struct {
	flow  *Flow
	fired []int64
}

func newFiring(sched Scheduler, delay time.Duration) *firing {
	r := &firing{}
	r.flow = NewFlow(sched, delay, func(token uint64) {
		if id, ok := r.flow.Fire(token); ok {
			r.fired = append(r.fired, id)
		}
	})
	return r
}

func TestMarkCompleteIsIdempotent(t *testing.T) {
	sched := &fakeScheduler{}
	r := newFiring(sched, 0)

	r.flow.Enter(4)
	if got := r.flow.State(); got != (State{}) {
		t.Fatalf("fresh visit state = %+v", got)
	}

	if !r.flow.MarkComplete(4) {
		t.Fatal("first MarkComplete did not schedule")
	}
	if r.flow.MarkComplete(4) {
		t.Error("second MarkComplete scheduled again")
	}
	if len(sched.timers) != 1 {
		t.Fatalf("%d timers scheduled, want 1", len(sched.timers))
	}
	if sched.timers[0].delay != DefaultDelay {
		t.Errorf("delay = %s, want %s", sched.timers[0].delay, DefaultDelay)
	}
	if got := r.flow.State(); got != (State{Pending: true, Confirmed: true}) {
		t.Errorf("state = %+v", got)
	}

	sched.timers[0].fn()
	if len(r.fired) != 1 || r.fired[0] != 4 {
		t.Errorf("fired = %v, want [4]", r.fired)
	}
	if r.flow.State().Pending {
		t.Error("still pending after firing")
	}
}

func TestMarkCompleteIgnoresOtherExercise(t *testing.T) {
	tests := []struct {
		name  string
		enter int64
		mark  int64
	}{
		{"idle flow", 0, 3},
		{"different exercise", 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := &fakeScheduler{}
			r := newFiring(sched, time.Second)
			if tt.enter != 0 {
				r.flow.Enter(tt.enter)
			}
			if r.flow.MarkComplete(tt.mark) {
				t.Error("MarkComplete scheduled")
			}
			if len(sched.timers) != 0 {
				t.Error("timer scheduled")
			}
		})
	}
}

func TestLeaveCancelsTimer(t *testing.T) {
	sched := &fakeScheduler{}
	r := newFiring(sched, time.Second)

	r.flow.Enter(1)
	r.flow.MarkComplete(1)
	r.flow.Leave()

	if !sched.timers[0].cancelled {
		t.Error("timer not cancelled on leave")
	}
	// a timer that slipped past cancellation must still be a no-op
	sched.timers[0].fn()
	if len(r.fired) != 0 {
		t.Errorf("cancelled timer fired: %v", r.fired)
	}
	if got := r.flow.State(); got != (State{}) {
		t.Errorf("state after leave = %+v", got)
	}
}

func TestStaleTokenFromEarlierVisit(t *testing.T) {
	sched := &fakeScheduler{}
	r := newFiring(sched, time.Second)

	r.flow.Enter(1)
	r.flow.MarkComplete(1)
	r.flow.Enter(1)
	r.flow.MarkComplete(1)

	if !sched.timers[0].cancelled {
		t.Error("first visit timer not cancelled by re-entry")
	}
	sched.timers[0].fn()
	if len(r.fired) != 0 {
		t.Fatalf("stale timer fired: %v", r.fired)
	}
	sched.timers[1].fn()
	if len(r.fired) != 1 {
		t.Errorf("current timer fired %d times, want 1", len(r.fired))
	}
	sched.timers[1].fn()
	if len(r.fired) != 1 {
		t.Error("timer fired twice")
	}
}
