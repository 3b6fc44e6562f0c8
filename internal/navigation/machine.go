// Package navigation implements the three-level view stack
// (catalog → group → exercise) and keeps the host back control bound to
// whichever level is active.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/fitgram/internal/host"
)

// ErrInvalidTransition is returned for an action the current level does not
// accept.
var ErrInvalidTransition = errors.New("navigation: invalid transition")

// BackRegistrar is the part of the host bridge the machine drives
type BackRegistrar interface {
	RegisterBackHandler(h *host.BackHandler) error
	UnregisterBackHandler(h *host.BackHandler)
	SetBackVisible(visible bool)
}

// GroupResolver returns the muscle group of an exercise, if known
type GroupResolver func(id int64) (string, bool)

// TransitionFunc observes a completed level change
type TransitionFunc func(from, to Level)

// Machine is the navigation state machine of one session. It is not safe for
// concurrent use; the owning session serializes access.
type Machine struct {
	back     BackRegistrar
	resolve  GroupResolver
	logger   *slog.Logger
	parent   context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	level    Level
	epoch    uint64
	handler  *host.BackHandler
	watchers []TransitionFunc
}

// New creates a machine at CatalogRoot. Level contexts derive from parent.
func New(parent context.Context, back BackRegistrar, resolve GroupResolver, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	if resolve == nil {
		resolve = func(int64) (string, bool) { return "", false }
	}
	m := &Machine{
		back:    back,
		resolve: resolve,
		logger:  logger.With("component", "navigation"),
		parent:  parent,
		level:   Root(),
	}
	m.ctx, m.cancel = context.WithCancel(parent)
	m.back.SetBackVisible(false)
	return m
}

// OnTransition adds an observer called after every level change
func (m *Machine) OnTransition(fn TransitionFunc) {
	m.watchers = append(m.watchers, fn)
}

// Current returns the active level
func (m *Machine) Current() Level { return m.level }

// Epoch increases on every transition
func (m *Machine) Epoch() uint64 { return m.epoch }

// Scope returns the context of the active level, cancelled when it is left,
// together with its epoch.
func (m *Machine) Scope() (context.Context, uint64) {
	return m.ctx, m.epoch
}

// IsCurrent reports whether epoch still identifies the active level
func (m *Machine) IsCurrent(epoch uint64) bool {
	return epoch == m.epoch
}

// SelectGroup opens a muscle group from the catalog
func (m *Machine) SelectGroup(group string) error {
	if m.level.Kind != CatalogRoot {
		return m.invalid("select group")
	}
	return m.enter(Group(group))
}

// SelectExercise opens an exercise from a group
func (m *Machine) SelectExercise(id int64) error {
	if m.level.Kind != GroupDetail {
		return m.invalid("select exercise")
	}
	return m.enter(Exercise(id))
}

// ChangeGroup leaves a group for the catalog
func (m *Machine) ChangeGroup() error {
	if m.level.Kind != GroupDetail {
		return m.invalid("change group")
	}
	return m.enter(Root())
}

// Back moves one level up. From an exercise whose group cannot be resolved
// it goes straight to the catalog. At the root it does nothing.
func (m *Machine) Back() error {
	switch m.level.Kind {
	case GroupDetail:
		return m.enter(Root())
	case ExerciseDetail:
		return m.enter(m.parentOf(m.level.ExerciseID))
	}
	return nil
}

// CompleteConfirmed returns from a completed exercise to its group
func (m *Machine) CompleteConfirmed(id int64) error {
	if m.level.Kind != ExerciseDetail || m.level.ExerciseID != id {
		return m.invalid("complete")
	}
	return m.enter(m.parentOf(id))
}

// ReturnToRoot jumps to the catalog from any level
func (m *Machine) ReturnToRoot() error {
	if m.level.Kind == CatalogRoot {
		return nil
	}
	return m.enter(Root())
}

// Close cancels the active level and releases its back handler
func (m *Machine) Close() {
	m.cancel()
	if m.handler != nil {
		m.back.UnregisterBackHandler(m.handler)
		m.handler = nil
	}
	m.back.SetBackVisible(false)
}

func (m *Machine) parentOf(id int64) Level {
	if group, ok := m.resolve(id); ok && group != "" {
		return Group(group)
	}
	return Root()
}

func (m *Machine) invalid(action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, m.level)
}

func (m *Machine) enter(to Level) error {
	from := m.level

	m.cancel()
	if m.handler != nil {
		m.back.UnregisterBackHandler(m.handler)
		m.handler = nil
	}

	m.level = to
	m.epoch++
	m.ctx, m.cancel = context.WithCancel(m.parent)
	m.back.SetBackVisible(to.BackVisible())

	if to.BackVisible() {
		epoch := m.epoch
		h := host.NewBackHandler(func() {
			// A press delivered after the level was left belongs to nobody.
			if !m.IsCurrent(epoch) {
				return
			}
			if err := m.Back(); err != nil {
				m.logger.Warn("back press failed", "error", err)
			}
		})
		if err := m.back.RegisterBackHandler(h); err != nil {
			return fmt.Errorf("register back handler for %s: %w", to, err)
		}
		m.handler = h
	}

	m.logger.Debug("level changed", "from", from.String(), "to", to.String(), "epoch", m.epoch)
	for _, fn := range m.watchers {
		fn(from, to)
	}
	return nil
}
