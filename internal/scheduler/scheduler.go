package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler runs the app's deferred and periodic tasks: completion
// confirmations and the session sweep.
type Scheduler struct {
	scheduler *gocron.Scheduler
	logger    *slog.Logger

	mu      sync.Mutex
	started bool
}

// New creates a new scheduler instance
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start begins running all scheduled tasks in a non-blocking manner
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.scheduler.Stop()
}

// After runs fn once, d from now. The returned cancel prevents a run that
// has not started yet and is safe to call more than once.
func (s *Scheduler) After(d time.Duration, fn func()) func() {
	if d <= 0 {
		d = time.Millisecond
	}
	job, err := s.scheduler.Every(d).WaitForSchedule().LimitRunsTo(1).Do(fn)
	if err != nil {
		// gocron only rejects malformed schedules; fall back to a plain timer
		s.logger.Warn("one-shot job rejected, using timer", "delay", d, "error", err)
		t := time.AfterFunc(d, fn)
		return func() { t.Stop() }
	}
	var once sync.Once
	return func() {
		once.Do(func() { s.scheduler.RemoveByReference(job) })
	}
}

// Every runs fn at a fixed interval until the scheduler stops
func (s *Scheduler) Every(interval time.Duration, fn func()) error {
	if interval <= 0 {
		return fmt.Errorf("scheduler: interval must be positive, got %s", interval)
	}
	if _, err := s.scheduler.Every(interval).WaitForSchedule().Do(fn); err != nil {
		return fmt.Errorf("schedule periodic job: %w", err)
	}
	return nil
}

// Jobs returns the number of jobs still scheduled
func (s *Scheduler) Jobs() int {
	return s.scheduler.Len()
}
