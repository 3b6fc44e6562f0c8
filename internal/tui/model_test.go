package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/fitgram/internal/catalog"
	"github.com/example/fitgram/internal/host"
	"github.com/example/fitgram/internal/miniapp"
	"github.com/example/fitgram/internal/navigation"
	"github.com/example/fitgram/internal/profile"
	"github.com/example/fitgram/pkg/models"
)

var exercises = []models.Exercise{
	{ID: 1, Name: "Classic Pushups", MuscleGroup: "Chest", Difficulty: models.DifficultyBeginner, Description: "Keep a straight line."},
	{ID: 2, Name: "Air Squats", MuscleGroup: "Legs", Difficulty: models.DifficultyBeginner},
	{ID: 3, Name: "Reverse Lunges", MuscleGroup: "Legs", Difficulty: models.DifficultyIntermediate},
}

type staticSource struct{}

func (staticSource) Exercises(ctx context.Context) ([]models.Exercise, error) {
	return exercises, nil
}

func (staticSource) Exercise(ctx context.Context, id int64) (models.Exercise, error) {
	for _, ex := range exercises {
		if ex.ID == id {
			return ex, nil
		}
	}
	return models.Exercise{}, catalog.ErrNotFound
}

type staticProfiles struct{}

func (staticProfiles) Profile(ctx context.Context) (models.Profile, error) {
	return models.Profile{Name: "Sam", TotalWorkouts: 7, StreakCount: 2}, nil
}

// heldScheduler never fires, so confirmations stay visible
type heldScheduler struct{}

func (heldScheduler) After(time.Duration, func()) func() { return func() {} }

func newTestModel(t *testing.T) (Model, *miniapp.App) {
	t.Helper()
	app := miniapp.New(context.Background(), miniapp.Deps{
		Bridge:    host.NewBridge(host.Standalone{}, nil),
		Loader:    catalog.NewLoader(staticSource{}),
		Profiles:  profile.NewAggregator(staticProfiles{}, nil),
		Scheduler: heldScheduler{},
	})
	t.Cleanup(app.Close)

	m := New(app)
	app.Start()
	return step(t, app, m, ChangedMsg{}), app
}

// step feeds msg to m, waits for the loads it started and applies them
func step(t *testing.T, app *miniapp.App, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	app.Settle()
	next, _ = next.Update(ChangedMsg{})
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelCatalog(t *testing.T) {
	m, _ := newTestModel(t)

	out := m.View()
	for _, want := range []string{miniapp.CatalogTitle, "Chest", "Legs", miniapp.CountLabel(2)} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog view missing %q:\n%s", want, out)
		}
	}
	if m.rows() != 2 {
		t.Errorf("rows = %d, want 2", m.rows())
	}
}

func TestModelNavigation(t *testing.T) {
	m, app := newTestModel(t)

	legs := -1
	for i, g := range m.view.Groups {
		if g.Name == "Legs" {
			legs = i
		}
	}
	if legs < 0 {
		t.Fatalf("Legs missing from %+v", m.view.Groups)
	}
	for i := 0; i < legs; i++ {
		m = step(t, app, m, tea.KeyMsg{Type: tea.KeyDown})
	}

	m = step(t, app, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.view.Level != navigation.Group("Legs") {
		t.Fatalf("level = %v, want group(Legs)", m.view.Level)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d after entering a group", m.cursor)
	}
	if !strings.Contains(m.View(), miniapp.FoundLabel(2)) {
		t.Errorf("group view missing count:\n%s", m.View())
	}

	want := m.view.Exercises[0].ID
	m = step(t, app, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.view.Exercise == nil || m.view.Exercise.ID != want {
		t.Fatalf("exercise = %+v, want id %d", m.view.Exercise, want)
	}
	if !strings.Contains(m.View(), miniapp.MarkCompleteCTA) {
		t.Errorf("exercise view missing CTA:\n%s", m.View())
	}

	m = step(t, app, m, runes("c"))
	if !m.view.Completion.Confirmed {
		t.Fatal("mark complete not confirmed")
	}
	if !strings.Contains(m.View(), miniapp.RecordedText) {
		t.Errorf("exercise view missing confirmation:\n%s", m.View())
	}

	m = step(t, app, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.view.Level != navigation.Group("Legs") {
		t.Fatalf("after back level = %v", m.view.Level)
	}
	m = step(t, app, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.view.Level != navigation.Root() {
		t.Fatalf("after second back level = %v", m.view.Level)
	}

	m = step(t, app, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.status != "Not available here" {
		t.Errorf("status = %q at root back", m.status)
	}
}

func TestModelProfileTab(t *testing.T) {
	m, app := newTestModel(t)

	m = step(t, app, m, runes("p"))
	if m.view.Tab != miniapp.TabProfile {
		t.Fatalf("tab = %v", m.view.Tab)
	}
	out := m.View()
	for _, want := range []string{"Sam", "Workouts: 7"} {
		if !strings.Contains(out, want) {
			t.Errorf("profile view missing %q:\n%s", want, out)
		}
	}

	m = step(t, app, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.view.Tab != miniapp.TabGroups {
		t.Errorf("esc on profile left tab = %v", m.view.Tab)
	}
}

func TestModelKeysOutOfPlace(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{"complete at root", runes("c")},
		{"up at top", tea.KeyMsg{Type: tea.KeyUp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, app := newTestModel(t)
			m = step(t, app, m, tt.key)
			if m.view.Level != navigation.Root() || m.cursor != 0 {
				t.Errorf("level = %v cursor = %d", m.view.Level, m.cursor)
			}
		})
	}
}

func TestModelInit(t *testing.T) {
	app := miniapp.New(context.Background(), miniapp.Deps{
		Bridge:    host.NewBridge(host.Standalone{}, nil),
		Loader:    catalog.NewLoader(staticSource{}),
		Profiles:  profile.NewAggregator(staticProfiles{}, nil),
		Scheduler: heldScheduler{},
	})
	t.Cleanup(app.Close)

	m := New(app)
	if !strings.Contains(m.View(), miniapp.LoadingText) {
		t.Errorf("view before start should be loading:\n%s", m.View())
	}
	if m.Init() == nil {
		t.Fatal("Init returned no command")
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not produce tea.QuitMsg")
	}
}
