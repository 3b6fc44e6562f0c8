// Package tui is a terminal front end for a mini app session.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/fitgram/internal/miniapp"
	"github.com/example/fitgram/internal/navigation"
)

// ChangedMsg tells the model the session state moved
type ChangedMsg struct{}

// Notify returns an OnChange hook that forwards changes to p. Session
// actions started from Update notify synchronously, so the send must not
// wait for the event loop.
func Notify(p *tea.Program) func() {
	return func() { go p.Send(ChangedMsg{}) }
}

// Model renders a miniapp.App and maps keys onto its actions
type Model struct {
	app    *miniapp.App
	view   miniapp.View
	cursor int
	status string
	help   help.Model
	spin   spinner.Model
	width  int
}

// New creates a model over app. The caller owns app.
func New(app *miniapp.App) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	return Model{
		app:  app,
		view: app.View(),
		help: help.New(),
		spin: s,
	}
}

// Init starts the session
func (m Model) Init() tea.Cmd {
	app := m.app
	start := func() tea.Msg {
		app.Start()
		return ChangedMsg{}
	}
	return tea.Batch(start, m.spin.Tick)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChangedMsg:
		m.sync()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, keys.Select):
		m.act(m.selectRow())

	case key.Matches(msg, keys.Back):
		if m.view.Tab == miniapp.TabProfile {
			m.act(m.app.ShowTab(miniapp.TabGroups))
			break
		}
		handled, err := m.app.PressBack()
		if err == nil && !handled {
			err = navigation.ErrInvalidTransition
		}
		m.act(err)

	case key.Matches(msg, keys.Complete):
		m.act(m.app.MarkComplete())

	case key.Matches(msg, keys.Profile):
		m.act(m.app.ShowTab(miniapp.TabProfile))

	case key.Matches(msg, keys.Groups):
		m.act(m.app.ShowTab(miniapp.TabGroups))

	case key.Matches(msg, keys.Root):
		m.act(m.app.ReturnToRoot())

	case key.Matches(msg, keys.Refresh):
		if m.view.Tab == miniapp.TabProfile {
			m.act(m.app.RefreshProfile())
		} else {
			m.act(m.app.Refresh())
		}
	}

	m.sync()
	return m, nil
}

func (m *Model) selectRow() error {
	if m.view.Tab != miniapp.TabGroups {
		return nil
	}
	switch m.view.Level.Kind {
	case navigation.CatalogRoot:
		if m.cursor < len(m.view.Groups) {
			return m.app.SelectGroup(m.view.Groups[m.cursor].Name)
		}
	case navigation.GroupDetail:
		if m.cursor < len(m.view.Exercises) {
			return m.app.SelectExercise(m.view.Exercises[m.cursor].ID)
		}
	case navigation.ExerciseDetail:
		if m.view.NotFound {
			return m.app.ReturnToRoot()
		}
		return m.app.MarkComplete()
	}
	return nil
}

func (m *Model) act(err error) {
	switch {
	case err == nil:
	case errors.Is(err, navigation.ErrInvalidTransition):
		m.status = "Not available here"
	case errors.Is(err, miniapp.ErrClosed):
		m.status = "Session closed"
	default:
		m.status = err.Error()
	}
}

// sync pulls a fresh view and resets the cursor when the level changed
func (m *Model) sync() {
	prev := m.view
	m.view = m.app.View()
	if prev.Level != m.view.Level || prev.Tab != m.view.Tab {
		m.cursor = 0
	}
	if n := m.rows(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) rows() int {
	if m.view.Tab != miniapp.TabGroups {
		return 0
	}
	switch m.view.Level.Kind {
	case navigation.CatalogRoot:
		return len(m.view.Groups)
	case navigation.GroupDetail:
		return len(m.view.Exercises)
	}
	return 0
}

// View renders the screen
func (m Model) View() string {
	var body string
	if m.view.Tab == miniapp.TabProfile {
		body = m.profileView()
	} else {
		switch m.view.Level.Kind {
		case navigation.GroupDetail:
			body = m.groupView()
		case navigation.ExerciseDetail:
			body = m.exerciseView()
		default:
			body = m.catalogView()
		}
	}

	parts := []string{m.tabs(), body}
	if m.view.Banner != "" {
		parts = append(parts, bannerStyle.Render("⚠ "+m.view.Banner))
	}
	if m.status != "" {
		parts = append(parts, mutedStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(keys))
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) tabs() string {
	groups, prof := tabStyle, tabStyle
	if m.view.Tab == miniapp.TabProfile {
		prof = activeTab
	} else {
		groups = activeTab
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, groups.Render("Groups"), prof.Render("Profile")) + "\n"
}

func (m Model) catalogView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(miniapp.CatalogTitle) + "\n")
	sb.WriteString(subtitleStyle.Render(miniapp.CatalogSubtitle) + "\n\n")
	if len(m.view.Groups) == 0 {
		sb.WriteString(m.loading() + "\n")
		return sb.String()
	}
	for i, g := range m.view.Groups {
		line := fmt.Sprintf("%s  %s", g.Name, mutedStyle.Render(miniapp.CountLabel(g.Count)))
		sb.WriteString(m.row(i, line))
	}
	return sb.String()
}

func (m Model) groupView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(strings.ToUpper(m.view.Level.Group)) + "\n")
	switch {
	case len(m.view.Exercises) > 0:
		sb.WriteString(subtitleStyle.Render(miniapp.FoundLabel(len(m.view.Exercises))) + "\n\n")
		for i, ex := range m.view.Exercises {
			sb.WriteString(m.row(i, miniapp.DifficultyBadge(ex.Difficulty)+" "+ex.Name))
		}
	case m.view.Loading:
		sb.WriteString("\n" + m.loading() + "\n")
	default:
		sb.WriteString("\n" + mutedStyle.Render(miniapp.EmptyGroupText) + "\n")
	}
	return sb.String()
}

func (m Model) exerciseView() string {
	if m.view.NotFound {
		return titleStyle.Render(miniapp.NotFoundText) + "\n\n" +
			mutedStyle.Render("enter: "+miniapp.BackToLibrary) + "\n"
	}
	ex := m.view.Exercise
	if ex == nil {
		return m.loading() + "\n"
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(ex.Name) + "\n")
	sb.WriteString(fmt.Sprintf("%s %s · %s\n", miniapp.DifficultyBadge(ex.Difficulty), ex.Difficulty, ex.MuscleGroup))
	if ex.Description != "" {
		sb.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render("Instructions") + "\n")
		text := ex.Description
		if m.width > 8 {
			text = lipgloss.NewStyle().Width(m.width - 8).Render(text)
		}
		sb.WriteString(text + "\n")
	}
	if ex.VideoURL != "" {
		sb.WriteString("\n" + mutedStyle.Render("Video: "+ex.VideoURL) + "\n")
	}
	sb.WriteString("\n")
	if m.view.Completion.Confirmed {
		sb.WriteString(successStyle.Render("✓ "+miniapp.RecordedText) + "\n")
	} else {
		sb.WriteString(selectedStyle.Render("[ "+miniapp.MarkCompleteCTA+" ]") + "\n")
	}
	return sb.String()
}

func (m Model) profileView() string {
	p := m.view.Profile
	name := p.DisplayName
	if name == "" {
		name = miniapp.LoadingText
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(name) + "\n")
	if p.Handle != "" {
		sb.WriteString(mutedStyle.Render(p.Handle) + "\n")
	}
	switch {
	case p.Loaded:
		sb.WriteString(fmt.Sprintf("\nWorkouts: %d\nStreak:   %d\n", p.Profile.TotalWorkouts, p.Profile.StreakCount))
	case m.view.ProfileLoading:
		sb.WriteString("\n" + m.loading() + "\n")
	}
	return sb.String()
}

func (m Model) loading() string {
	return m.spin.View() + " " + mutedStyle.Render(miniapp.LoadingText)
}

func (m Model) row(i int, text string) string {
	if i == m.cursor {
		return selectedStyle.Render("> ") + text + "\n"
	}
	return "  " + text + "\n"
}
