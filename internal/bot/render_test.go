package bot

import (
	"strings"
	"testing"

	"github.com/example/fitgram/internal/completion"
	"github.com/example/fitgram/internal/miniapp"
	"github.com/example/fitgram/internal/navigation"
	"github.com/example/fitgram/internal/profile"
	"github.com/example/fitgram/pkg/models"
)

func callbacks(keys [][]MenuButton) []string {
	var out []string
	for _, row := range keys {
		for _, k := range row {
			out = append(out, k.CallbackData)
		}
	}
	return out
}

func hasCallback(keys [][]MenuButton, data string) bool {
	for _, c := range callbacks(keys) {
		if c == data {
			return true
		}
	}
	return false
}

func TestRenderView(t *testing.T) {
	squat := &models.Exercise{
		ID: 3, Name: "Air Squats", MuscleGroup: "Legs", Difficulty: models.DifficultyBeginner,
		VideoURL: "https://example.com/v.mp4?a=1&b=2", Description: "Chest up.",
	}

	tests := []struct {
		name        string
		view        miniapp.View
		backRow     bool
		contains    []string
		callbacks   []string
		noCallbacks []string
	}{
		{
			name: "catalog with banner",
			view: miniapp.View{
				Level:   navigation.Root(),
				Groups:  []miniapp.GroupCount{{Name: "Chest", Count: 2}, {Name: "<Abs>", Count: 1}},
				Profile: profile.Summary{DisplayName: profile.FallbackName},
				Banner:  profile.DefaultBanner,
			},
			contains:    []string{"Muscle Groups", "Welcome, <b>Athlete</b>", "⚠️ Failed to load profile", "2 Exercises Available", "&lt;Abs&gt;", "1 Exercise Available"},
			callbacks:   []string{"g:Chest", "g:<Abs>", "refresh", "profile"},
			noCallbacks: []string{"back"},
		},
		{
			name:      "catalog still loading",
			view:      miniapp.View{Level: navigation.Root(), Loading: true},
			contains:  []string{miniapp.LoadingText},
			callbacks: []string{"refresh"},
		},
		{
			name: "group with exercises",
			view: miniapp.View{
				Level:     navigation.Group("Legs"),
				Exercises: []models.Exercise{*squat, {ID: 4, Name: "Reverse Lunges", Difficulty: models.DifficultyIntermediate}},
			},
			backRow:   true,
			contains:  []string{"LEGS", "2 Workouts found", "1. 🟢 Air Squats", "2. 🟡 Reverse Lunges"},
			callbacks: []string{"x:3", "x:4", "change", "back"},
		},
		{
			name:      "empty group",
			view:      miniapp.View{Level: navigation.Group("Neck")},
			backRow:   true,
			contains:  []string{miniapp.EmptyGroupText},
			callbacks: []string{"change", "back"},
		},
		{
			name:        "exercise before completion",
			view:        miniapp.View{Level: navigation.Exercise(3), Exercise: squat},
			backRow:     true,
			contains:    []string{"<b>Air Squats</b>", "Beginner · Legs", "Instructions", `href="https://example.com/v.mp4?a=1&amp;b=2"`},
			callbacks:   []string{"done", "back"},
			noCallbacks: []string{"change"},
		},
		{
			name: "exercise confirmed",
			view: miniapp.View{
				Level:      navigation.Exercise(3),
				Exercise:   squat,
				Completion: completion.State{Pending: true, Confirmed: true},
			},
			backRow:     true,
			contains:    []string{miniapp.RecordedText},
			noCallbacks: []string{"done"},
		},
		{
			name:        "exercise not found",
			view:        miniapp.View{Level: navigation.Exercise(99), NotFound: true},
			contains:    []string{miniapp.NotFoundText},
			callbacks:   []string{"root"},
			noCallbacks: []string{"done"},
		},
		{
			name: "profile loaded",
			view: miniapp.View{
				Tab: miniapp.TabProfile,
				Profile: profile.Summary{
					Loaded:      true,
					DisplayName: "Dana",
					Handle:      "@dana",
					Profile:     models.Profile{TotalWorkouts: 12, StreakCount: 4},
				},
			},
			backRow:     true,
			contains:    []string{"👤 Dana", "@dana", "Workouts: <b>12</b>", "Streak: <b>4</b>"},
			callbacks:   []string{"refresh", "catalog"},
			noCallbacks: []string{"back"},
		},
		{
			name: "profile failed",
			view: miniapp.View{
				Tab:     miniapp.TabProfile,
				Profile: profile.Summary{DisplayName: "Alex"},
				Banner:  profile.DefaultBanner,
			},
			contains: []string{"👤 Alex", profile.DefaultBanner},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.view
			v.BackVisible = tt.backRow
			text, keys := renderView(v)
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("text missing %q:\n%s", want, text)
				}
			}
			for _, want := range tt.callbacks {
				if !hasCallback(keys, want) {
					t.Errorf("keyboard missing %q: %v", want, callbacks(keys))
				}
			}
			for _, unwanted := range tt.noCallbacks {
				if hasCallback(keys, unwanted) {
					t.Errorf("keyboard has unexpected %q", unwanted)
				}
			}
		})
	}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data    string
		want    parsedCallback
		wantErr bool
	}{
		{data: "g:Legs", want: parsedCallback{action: callbackGroupPrefix, group: "Legs"}},
		{data: "g:Upper Back", want: parsedCallback{action: callbackGroupPrefix, group: "Upper Back"}},
		{data: "x:42", want: parsedCallback{action: callbackExercisePrefix, id: 42}},
		{data: "back", want: parsedCallback{action: callbackBack}},
		{data: "done", want: parsedCallback{action: callbackComplete}},
		{data: "refresh", want: parsedCallback{action: callbackRefresh}},
		{data: "g:", wantErr: true},
		{data: "x:abc", wantErr: true},
		{data: "x:-1", wantErr: true},
		{data: "start_learning", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := parseCallback(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
