package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/example/fitgram/pkg/models"
)

type headerLog struct {
	mu   sync.Mutex
	seen []string
}

func (l *headerLog) add(v string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, v)
}

func (l *headerLog) values() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.seen...)
}

func newTestServer(t *testing.T, routes map[string]string, status int) (*httptest.Server, *headerLog) {
	t.Helper()
	log := &headerLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r.Header.Get(InitDataHeader))
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, log
}

func TestClientExercisesShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantIDs []int64
	}{
		{
			name:    "flat",
			body:    `[{"id":1,"name":"Pushups","muscle_group":"Chest","difficulty":"Beginner","video_url":"v1"},{"id":3,"name":"Squats","muscle_group":"Legs","difficulty":"Beginner","video_url":"v3"}]`,
			wantIDs: []int64{1, 3},
		},
		{
			name:    "grouped",
			body:    `[{"group":"Chest","exercises":[{"id":1,"muscle_group":"Chest"}]},{"group":"Legs","exercises":[{"id":3,"muscle_group":"Legs"},{"id":4,"muscle_group":"Legs"}]}]`,
			wantIDs: []int64{1, 3, 4},
		},
		{name: "empty", body: `[]`, wantIDs: nil},
		{name: "null", body: `null`, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, map[string]string{"/api/exercises": tt.body}, http.StatusOK)
			c := NewClient(srv.URL, nil)

			got, err := c.Exercises(context.Background())
			if err != nil {
				t.Fatalf("Exercises: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d exercises, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("exercise[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestClientSendsIdentityHeader(t *testing.T) {
	srv, log := newTestServer(t, map[string]string{"/api/exercises": `[]`}, http.StatusOK)

	c := NewClient(srv.URL+"/", func() string { return "user=abc&hash=1" })
	if _, err := c.Exercises(context.Background()); err != nil {
		t.Fatalf("Exercises: %v", err)
	}
	anon := NewClient(srv.URL, nil)
	if _, err := anon.Exercises(context.Background()); err != nil {
		t.Fatalf("Exercises (anonymous): %v", err)
	}

	seen := log.values()
	if len(seen) != 2 || seen[0] != "user=abc&hash=1" || seen[1] != "" {
		t.Errorf("headers seen = %q", seen)
	}
}

func TestClientStatusErrorIsTransient(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"/api/exercises": `{"error":"boom"}`}, http.StatusInternalServerError)
	c := NewClient(srv.URL, nil)

	_, err := c.Exercises(context.Background())
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("err = %v, want ErrTransient", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Errorf("err = %v, want StatusError 500", err)
	}

	_, err = c.Exercise(context.Background(), 99)
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Errorf("missing exercise err = %v, want StatusError 404", err)
	}
}

func TestClientNetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).Profile(context.Background())
	if !errors.Is(err, ErrTransient) {
		t.Errorf("err = %v, want ErrTransient", err)
	}
}

func TestClientDecodeErrorIsTransient(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"/api/exercises/1": `{not json`}, http.StatusOK)
	_, err := NewClient(srv.URL, nil).Exercise(context.Background(), 1)
	if !errors.Is(err, ErrTransient) {
		t.Errorf("err = %v, want ErrTransient", err)
	}
}

func TestClientProfileShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want models.Profile
	}{
		{
			name: "current",
			body: `{"name":"Ann","total_workouts":12,"streak_count":3,"telegram_user_id":42}`,
			want: models.Profile{Name: "Ann", TotalWorkouts: 12, StreakCount: 3, TelegramUserID: 42},
		},
		{
			name: "legacy",
			body: `{"telegram_id":1234567,"first_name":"User","streak_count":5,"workouts_completed":42}`,
			want: models.Profile{Name: "User", TotalWorkouts: 42, StreakCount: 5, TelegramUserID: 1234567},
		},
		{
			name: "negative counters clamp",
			body: `{"name":"X","total_workouts":-1,"streak_count":-2}`,
			want: models.Profile{Name: "X"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, map[string]string{"/api/profile": tt.body}, http.StatusOK)
			got, err := NewClient(srv.URL, nil).Profile(context.Background())
			if err != nil {
				t.Fatalf("Profile: %v", err)
			}
			if got != tt.want {
				t.Errorf("Profile() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
