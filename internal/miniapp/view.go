package miniapp

import (
	"github.com/example/fitgram/internal/catalog"
	"github.com/example/fitgram/internal/completion"
	"github.com/example/fitgram/internal/navigation"
	"github.com/example/fitgram/internal/profile"
	"github.com/example/fitgram/pkg/models"
)

// GroupCount is one row of the catalog root
type GroupCount struct {
	Name  string
	Count int
}

// View is an immutable copy of everything a front end renders
type View struct {
	Tab   Tab
	Level navigation.Level

	// Loading is true while the active level's load is in flight
	Loading bool
	Origin  catalog.Origin
	Version uint64

	Groups    []GroupCount
	Exercises []models.Exercise
	Exercise  *models.Exercise
	NotFound  bool

	Completion completion.State

	Profile        profile.Summary
	ProfileLoading bool

	BackVisible bool
	Banner      string
}

// View returns the current render state
func (a *App) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	level := a.machine.Current()
	v := View{
		Tab:            a.tab,
		Level:          level,
		Loading:        a.loading,
		Origin:         a.snapshot.Origin,
		Version:        a.snapshot.Version,
		NotFound:       a.notFound,
		Profile:        a.summary,
		ProfileLoading: a.profileLoading,
		BackVisible:    level.BackVisible(),
		Banner:         a.summary.Banner(),
	}

	groups := a.memo.Groups(a.snapshot)
	switch level.Kind {
	case navigation.CatalogRoot:
		v.Groups = make([]GroupCount, 0, len(groups))
		for _, g := range groups {
			v.Groups = append(v.Groups, GroupCount{Name: g.Group, Count: g.Count()})
		}
	case navigation.GroupDetail:
		if g, ok := catalog.Find(groups, level.Group); ok {
			v.Exercises = append([]models.Exercise(nil), g.Exercises...)
		}
	case navigation.ExerciseDetail:
		if a.detail != nil {
			ex := *a.detail
			v.Exercise = &ex
		}
		v.Completion = a.flow.State()
	}
	return v
}
