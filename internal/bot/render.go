package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/fitgram/internal/miniapp"
	"github.com/example/fitgram/internal/navigation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data
const (
	callbackGroupPrefix    = "g:"
	callbackExercisePrefix = "x:"
	callbackBack           = "back"
	callbackChangeGroup    = "change"
	callbackComplete       = "done"
	callbackRoot           = "root"
	callbackProfile        = "profile"
	callbackCatalog        = "catalog"
	callbackRefresh        = "refresh"
)

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

// renderView turns a view into message text and keyboard. Text and keyboard
// both come from v alone.
func renderView(v miniapp.View) (string, [][]MenuButton) {
	if v.Tab == miniapp.TabProfile {
		return renderProfile(v)
	}

	var text string
	var keys [][]MenuButton
	switch v.Level.Kind {
	case navigation.GroupDetail:
		text, keys = renderGroup(v)
	case navigation.ExerciseDetail:
		text, keys = renderExercise(v)
	default:
		text, keys = renderCatalog(v)
	}

	if v.BackVisible {
		keys = append(keys, []MenuButton{{Text: "⬅️ Back", CallbackData: callbackBack}})
	}
	return text, keys
}

func renderCatalog(v miniapp.View) (string, [][]MenuButton) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>💪 %s</b>\n<i>%s</i>\n", miniapp.CatalogTitle, escape(miniapp.CatalogSubtitle))
	if v.Profile.DisplayName != "" {
		fmt.Fprintf(&sb, "\nWelcome, <b>%s</b>\n", escape(v.Profile.DisplayName))
	}
	if v.Banner != "" {
		fmt.Fprintf(&sb, "\n⚠️ %s\n", escape(v.Banner))
	}

	if len(v.Groups) == 0 {
		sb.WriteString("\n" + miniapp.LoadingText)
	} else {
		sb.WriteString("\n")
		for _, g := range v.Groups {
			fmt.Fprintf(&sb, "• <b>%s</b> · %s\n", escape(g.Name), miniapp.CountLabel(g.Count))
		}
	}

	var keys [][]MenuButton
	var row []MenuButton
	for _, g := range v.Groups {
		row = append(row, MenuButton{
			Text:         fmt.Sprintf("%s (%d)", g.Name, g.Count),
			CallbackData: callbackGroupPrefix + g.Name,
		})
		if len(row) == 2 {
			keys = append(keys, row)
			row = nil
		}
	}
	if len(row) > 0 {
		keys = append(keys, row)
	}
	keys = append(keys, []MenuButton{
		{Text: "🔄 Refresh", CallbackData: callbackRefresh},
		{Text: "👤 Profile", CallbackData: callbackProfile},
	})
	return strings.TrimRight(sb.String(), "\n"), keys
}

func renderGroup(v miniapp.View) (string, [][]MenuButton) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", escape(strings.ToUpper(v.Level.Group)))

	var keys [][]MenuButton
	switch {
	case len(v.Exercises) > 0:
		fmt.Fprintf(&sb, "<i>%s</i>\n\n", miniapp.FoundLabel(len(v.Exercises)))
		for i, ex := range v.Exercises {
			fmt.Fprintf(&sb, "%d. %s %s\n", i+1, miniapp.DifficultyBadge(ex.Difficulty), escape(ex.Name))
			keys = append(keys, []MenuButton{{
				Text:         fmt.Sprintf("%s %s", miniapp.DifficultyBadge(ex.Difficulty), ex.Name),
				CallbackData: callbackExercisePrefix + strconv.FormatInt(ex.ID, 10),
			}})
		}
	case v.Loading:
		sb.WriteString("\n" + miniapp.LoadingText)
	default:
		sb.WriteString("\n<i>" + escape(miniapp.EmptyGroupText) + "</i>")
	}

	keys = append(keys, []MenuButton{{Text: "🔀 Change group", CallbackData: callbackChangeGroup}})
	return strings.TrimRight(sb.String(), "\n"), keys
}

func renderExercise(v miniapp.View) (string, [][]MenuButton) {
	if v.NotFound {
		return "<b>" + miniapp.NotFoundText + "</b>", [][]MenuButton{
			{{Text: miniapp.BackToLibrary, CallbackData: callbackRoot}},
		}
	}
	if v.Exercise == nil {
		return miniapp.LoadingText, nil
	}

	ex := v.Exercise
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", escape(ex.Name))
	fmt.Fprintf(&sb, "%s %s · %s\n", miniapp.DifficultyBadge(ex.Difficulty), escape(string(ex.Difficulty)), escape(ex.MuscleGroup))
	if ex.Description != "" {
		fmt.Fprintf(&sb, "\n<b>Instructions</b>\n%s\n", escape(ex.Description))
	}
	if ex.VideoURL != "" {
		fmt.Fprintf(&sb, "\n▶️ <a href=\"%s\">Watch video</a>\n", escape(ex.VideoURL))
	}

	var keys [][]MenuButton
	if v.Completion.Confirmed {
		fmt.Fprintf(&sb, "\n✅ <b>%s</b>", miniapp.RecordedText)
	} else {
		keys = append(keys, []MenuButton{{Text: "✅ " + miniapp.MarkCompleteCTA, CallbackData: callbackComplete}})
	}
	return strings.TrimRight(sb.String(), "\n"), keys
}

func renderProfile(v miniapp.View) (string, [][]MenuButton) {
	p := v.Profile
	var sb strings.Builder

	name := p.DisplayName
	if name == "" {
		name = miniapp.LoadingText
	}
	fmt.Fprintf(&sb, "<b>👤 %s</b>\n", escape(name))
	if p.Handle != "" {
		sb.WriteString(escape(p.Handle) + "\n")
	}

	switch {
	case p.Loaded:
		fmt.Fprintf(&sb, "\n🏋️ Workouts: <b>%d</b>\n🔥 Streak: <b>%d</b>", p.Profile.TotalWorkouts, p.Profile.StreakCount)
	case v.ProfileLoading:
		sb.WriteString("\n" + miniapp.LoadingText)
	case v.Banner != "":
		fmt.Fprintf(&sb, "\n⚠️ %s", escape(v.Banner))
	}

	keys := [][]MenuButton{{
		{Text: "🔄 Refresh", CallbackData: callbackRefresh},
		{Text: "💪 Groups", CallbackData: callbackCatalog},
	}}
	return strings.TrimRight(sb.String(), "\n"), keys
}

// helpText lists the bot commands
const helpText = `Fitness Flow: quick sessions built for Telegram.

/start - Open the exercise catalog
/catalog - Show muscle groups
/profile - Show your stats
/help - Show this message`

// parsedCallback is a decoded button press
type parsedCallback struct {
	action string
	group  string
	id     int64
}

func parseCallback(data string) (parsedCallback, error) {
	switch {
	case strings.HasPrefix(data, callbackGroupPrefix):
		group := strings.TrimPrefix(data, callbackGroupPrefix)
		if group == "" {
			return parsedCallback{}, fmt.Errorf("empty group in callback %q", data)
		}
		return parsedCallback{action: callbackGroupPrefix, group: group}, nil
	case strings.HasPrefix(data, callbackExercisePrefix):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, callbackExercisePrefix), 10, 64)
		if err != nil || id <= 0 {
			return parsedCallback{}, fmt.Errorf("invalid exercise id in callback %q", data)
		}
		return parsedCallback{action: callbackExercisePrefix, id: id}, nil
	}
	switch data {
	case callbackBack, callbackChangeGroup, callbackComplete, callbackRoot,
		callbackProfile, callbackCatalog, callbackRefresh:
		return parsedCallback{action: data}, nil
	}
	return parsedCallback{}, fmt.Errorf("unknown callback %q", data)
}

