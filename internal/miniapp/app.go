// Package miniapp wires the host bridge, catalog, navigation, completion and
// profile components into one user session.
package miniapp

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/fitgram/internal/catalog"
	"github.com/example/fitgram/internal/completion"
	"github.com/example/fitgram/internal/host"
	"github.com/example/fitgram/internal/navigation"
	"github.com/example/fitgram/internal/profile"
	"github.com/example/fitgram/pkg/models"
)

// ErrClosed is returned for actions on a closed session
var ErrClosed = errors.New("miniapp: session closed")

// Tab is the bottom navigation selection
type Tab int

const (
	TabGroups Tab = iota
	TabProfile
)

func (t Tab) String() string {
	if t == TabProfile {
		return "profile"
	}
	return "groups"
}

// Deps are the collaborators of a session
type Deps struct {
	Bridge       *host.Bridge
	Loader       *catalog.Loader
	Profiles     *profile.Aggregator
	Scheduler    completion.Scheduler
	Logger       *slog.Logger
	ConfirmDelay time.Duration
}

// App is one user session. All exported methods are safe for concurrent use.
type App struct {
	ID uuid.UUID

	bridge   *host.Bridge
	loader   *catalog.Loader
	profiles *profile.Aggregator
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	settled  *sync.Cond
	inflight int
	closed   bool

	machine *navigation.Machine
	flow    *completion.Flow
	memo    catalog.Memo
	tab     Tab

	snapshot   catalog.Snapshot
	loadSeq    uint64
	loading    bool
	loadCancel context.CancelFunc

	detail   *models.Exercise
	notFound bool

	summary        profile.Summary
	profileSeq     uint64
	profileLoading bool

	lastActive time.Time
	watchers   []func()
}

// New creates a session at the catalog root. Start begins loading.
func New(parent context.Context, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bridge := deps.Bridge
	if bridge == nil {
		bridge = host.NewBridge(nil, logger)
	}
	loader := deps.Loader
	if loader == nil {
		loader = catalog.NewLoader(nil, catalog.WithLogger(logger))
	}
	profiles := deps.Profiles
	if profiles == nil {
		profiles = profile.NewAggregator(nil, logger)
	}

	a := &App{
		ID:         uuid.New(),
		bridge:     bridge,
		loader:     loader,
		profiles:   profiles,
		lastActive: time.Now(),
	}
	a.logger = logger.With("component", "miniapp", "session", a.ID.String())
	a.settled = sync.NewCond(&a.mu)
	a.ctx, a.cancel = context.WithCancel(parent)
	a.machine = navigation.New(a.ctx, bridge, a.resolveGroup, logger)
	a.machine.OnTransition(a.onTransition)
	sched := deps.Scheduler
	if sched == nil {
		sched = timerScheduler{}
	}
	a.flow = completion.NewFlow(sched, deps.ConfirmDelay, a.confirmExpired)
	return a
}

// Start initializes the host and loads the catalog and the profile
func (a *App) Start() {
	a.bridge.Initialize()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.touch()
	a.startLevelLoad()
	a.startProfileLoad()
	a.mu.Unlock()
	a.notify()
}

// OnChange registers fn to run after every state change, outside the
// session lock.
func (a *App) OnChange(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.watchers = append(a.watchers, fn)
}

// SelectGroup opens a muscle group from the catalog
func (a *App) SelectGroup(group string) error {
	return a.do(func() error {
		a.tab = TabGroups
		return a.machine.SelectGroup(group)
	})
}

// SelectExercise opens an exercise from the current group
func (a *App) SelectExercise(id int64) error {
	return a.do(func() error { return a.machine.SelectExercise(id) })
}

// ChangeGroup returns from a group to the catalog
func (a *App) ChangeGroup() error {
	return a.do(a.machine.ChangeGroup)
}

// Back is the in-app back action
func (a *App) Back() error {
	return a.do(a.machine.Back)
}

// PressBack delivers a host back press. It reports whether a handler
// consumed it.
func (a *App) PressBack() (bool, error) {
	var handled bool
	err := a.do(func() error {
		handled = a.bridge.PressBack()
		return nil
	})
	return handled, err
}

// ReturnToRoot jumps to the catalog, e.g. from the not-found view
func (a *App) ReturnToRoot() error {
	return a.do(func() error {
		a.tab = TabGroups
		return a.machine.ReturnToRoot()
	})
}

// MarkComplete confirms the open exercise. The session returns to its group
// after the confirmation delay unless the user navigates away first.
func (a *App) MarkComplete() error {
	return a.do(func() error {
		cur := a.machine.Current()
		if cur.Kind != navigation.ExerciseDetail || a.detail == nil {
			return navigation.ErrInvalidTransition
		}
		a.flow.MarkComplete(cur.ExerciseID)
		return nil
	})
}

// Refresh reloads the data of the current level
func (a *App) Refresh() error {
	return a.do(func() error {
		a.startLevelLoad()
		return nil
	})
}

// ShowTab switches the bottom navigation
func (a *App) ShowTab(tab Tab) error {
	return a.do(func() error {
		a.tab = tab
		return nil
	})
}

// RefreshProfile refetches the profile summary
func (a *App) RefreshProfile() error {
	return a.do(func() error {
		a.startProfileLoad()
		return nil
	})
}

// LastActive is the time of the last user action
func (a *App) LastActive() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastActive
}

// Settle blocks until every in-flight load has been applied or discarded
func (a *App) Settle() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for a.inflight > 0 {
		a.settled.Wait()
	}
}

// Close cancels pending work and releases the host back control
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.flow.Leave()
	a.machine.Close()
	a.cancel()
	a.mu.Unlock()
	a.Settle()
}

func (a *App) do(fn func() error) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.touch()
	err := fn()
	a.mu.Unlock()
	if err != nil {
		return err
	}
	a.notify()
	return nil
}

func (a *App) touch() { a.lastActive = time.Now() }

func (a *App) notify() {
	a.mu.Lock()
	watchers := append([]func(){}, a.watchers...)
	a.mu.Unlock()
	for _, fn := range watchers {
		fn()
	}
}

// onTransition runs inside the machine, under the session lock
func (a *App) onTransition(from, to navigation.Level) {
	if from.Kind == navigation.ExerciseDetail {
		a.flow.Leave()
	}
	a.detail = nil
	a.notFound = false
	if to.Kind == navigation.ExerciseDetail {
		a.flow.Enter(to.ExerciseID)
	}
	a.startLevelLoad()
}

// resolveGroup prefers the loaded detail record, then the current snapshot
func (a *App) resolveGroup(id int64) (string, bool) {
	if a.detail != nil && a.detail.ID == id {
		return a.detail.MuscleGroup, true
	}
	if ex, ok := a.loader.Lookup(id); ok {
		return ex.MuscleGroup, true
	}
	return "", false
}

func (a *App) confirmExpired(token uint64) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	id, ok := a.flow.Fire(token)
	if ok {
		if err := a.machine.CompleteConfirmed(id); err != nil {
			a.logger.Warn("completion return failed", "exercise_id", id, "error", err)
		}
	}
	a.mu.Unlock()
	if ok {
		a.notify()
	}
}

// startLevelLoad launches the single load of the active level. Results are
// applied only while both the level and the load are still the latest.
func (a *App) startLevelLoad() {
	if a.loadCancel != nil {
		a.loadCancel()
	}
	levelCtx, epoch := a.machine.Scope()
	ctx, cancel := context.WithCancel(levelCtx)
	a.loadCancel = cancel
	level := a.machine.Current()
	a.loadSeq++
	seq := a.loadSeq
	a.loading = true
	a.inflight++

	go func() {
		defer a.finish()
		defer cancel()
		if level.Kind == navigation.ExerciseDetail {
			ex, err := a.loader.LoadOne(ctx, level.ExerciseID)
			a.applyDetail(ctx, epoch, seq, level.ExerciseID, ex, err)
			return
		}
		snap := a.loader.Load(ctx)
		a.applySnapshot(ctx, epoch, seq, snap)
	}()
}

func (a *App) current(ctx context.Context, epoch, seq uint64) bool {
	return ctx.Err() == nil && !a.closed && a.machine.IsCurrent(epoch) && seq == a.loadSeq
}

func (a *App) applySnapshot(ctx context.Context, epoch, seq uint64, snap catalog.Snapshot) {
	a.mu.Lock()
	if !a.current(ctx, epoch, seq) {
		a.mu.Unlock()
		a.logger.Debug("discarding stale catalog load", "epoch", epoch)
		return
	}
	a.snapshot = snap
	a.loading = false
	a.mu.Unlock()
	a.notify()
}

func (a *App) applyDetail(ctx context.Context, epoch, seq uint64, id int64, ex models.Exercise, err error) {
	a.mu.Lock()
	if !a.current(ctx, epoch, seq) {
		a.mu.Unlock()
		a.logger.Debug("discarding stale exercise load", "exercise_id", id, "epoch", epoch)
		return
	}
	a.loading = false
	switch {
	case err == nil:
		a.detail = &ex
	case errors.Is(err, catalog.ErrNotFound):
		if cached, ok := a.loader.Lookup(id); ok {
			a.detail = &cached
		} else {
			a.notFound = true
		}
	default:
		a.logger.Warn("exercise load failed", "exercise_id", id, "error", err)
		a.notFound = true
	}
	a.mu.Unlock()
	a.notify()
}

func (a *App) startProfileLoad() {
	a.profileSeq++
	seq := a.profileSeq
	a.profileLoading = true
	a.inflight++

	var hostUser *models.TelegramUser
	if u, ok := a.bridge.HostUser(); ok {
		hostUser = &u
	}

	go func() {
		defer a.finish()
		summary := a.profiles.Load(a.ctx, hostUser)

		a.mu.Lock()
		if a.closed || seq != a.profileSeq {
			a.mu.Unlock()
			return
		}
		a.summary = summary
		a.profileLoading = false
		a.mu.Unlock()
		a.notify()
	}()
}

func (a *App) finish() {
	a.mu.Lock()
	a.inflight--
	if a.inflight == 0 {
		a.settled.Broadcast()
	}
	a.mu.Unlock()
}

// timerScheduler backs sessions created without a shared scheduler
type timerScheduler struct{}

func (timerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
