// Package catalog acquires the exercise list (remote first, bundled fallback
// second) and derives the muscle-group index from it.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/example/fitgram/pkg/models"
)

// ErrNotFound means neither the remote catalog nor the fallback dataset knows
// the requested exercise.
var ErrNotFound = errors.New("catalog: exercise not found")

// Source is the remote catalog
type Source interface {
	Exercises(ctx context.Context) ([]models.Exercise, error)
	Exercise(ctx context.Context, id int64) (models.Exercise, error)
}

// Origin tells where a snapshot came from
type Origin int

const (
	OriginNone Origin = iota
	OriginRemote
	OriginFallback
)

func (o Origin) String() string {
	switch o {
	case OriginRemote:
		return "remote"
	case OriginFallback:
		return "fallback"
	}
	return "none"
}

// Snapshot is one immutable version of the exercise list
type Snapshot struct {
	Version   uint64
	Exercises []models.Exercise
	Origin    Origin
}

// Loader owns the exercise list of a session
type Loader struct {
	source   Source
	fallback []models.Exercise
	logger   *slog.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithFallback replaces the bundled dataset
func WithFallback(list []models.Exercise) LoaderOption {
	return func(l *Loader) { l.fallback = append([]models.Exercise(nil), list...) }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader reading from source. A nil source always
// resolves to the fallback dataset.
func NewLoader(source Source, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:   source,
		fallback: Fallback(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "catalog")
	return l
}

// Load fetches the remote list and stores it as the new snapshot. An empty or
// failed remote result resolves to the fallback dataset; no error is ever
// returned. If ctx is cancelled the current snapshot is returned unchanged.
func (l *Loader) Load(ctx context.Context) Snapshot {
	list, origin := l.fetch(ctx)
	if ctx.Err() != nil {
		return l.Snapshot()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = Snapshot{
		Version:   l.snapshot.Version + 1,
		Exercises: list,
		Origin:    origin,
	}
	return l.snapshot
}

func (l *Loader) fetch(ctx context.Context) ([]models.Exercise, Origin) {
	if l.source == nil {
		return l.fallbackList(), OriginFallback
	}

	list, err := l.source.Exercises(ctx)
	switch {
	case ctx.Err() != nil:
		return nil, OriginNone
	case err != nil:
		l.logger.Warn("remote catalog unavailable, using fallback", "error", err)
		return l.fallbackList(), OriginFallback
	case len(list) == 0:
		l.logger.Info("remote catalog empty, using fallback")
		return l.fallbackList(), OriginFallback
	}
	return list, OriginRemote
}

func (l *Loader) fallbackList() []models.Exercise {
	return append([]models.Exercise(nil), l.fallback...)
}

// LoadOne fetches a single exercise with the same remote-then-fallback
// policy. ErrNotFound is terminal: the id exists nowhere.
func (l *Loader) LoadOne(ctx context.Context, id int64) (models.Exercise, error) {
	if l.source != nil {
		ex, err := l.source.Exercise(ctx, id)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Exercise{}, ctxErr
		}
		if err == nil && ex.ID != 0 {
			return ex, nil
		}
		if err != nil {
			l.logger.Warn("remote exercise unavailable, using fallback", "id", id, "error", err)
		}
	}

	for _, ex := range l.fallback {
		if ex.ID == id {
			return ex, nil
		}
	}
	return models.Exercise{}, ErrNotFound
}

// Snapshot returns the current snapshot
func (l *Loader) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

// Lookup searches the current snapshot for id
func (l *Loader) Lookup(id int64) (models.Exercise, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, ex := range l.snapshot.Exercises {
		if ex.ID == id {
			return ex, true
		}
	}
	return models.Exercise{}, false
}
