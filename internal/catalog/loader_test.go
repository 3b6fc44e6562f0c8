package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/example/fitgram/pkg/models"
)

type fakeSource struct {
	list    []models.Exercise
	listErr error
	byID    map[int64]models.Exercise
	oneErr  error
	calls   int
}

func (f *fakeSource) Exercises(ctx context.Context) ([]models.Exercise, error) {
	f.calls++
	return f.list, f.listErr
}

func (f *fakeSource) Exercise(ctx context.Context, id int64) (models.Exercise, error) {
	if f.oneErr != nil {
		return models.Exercise{}, f.oneErr
	}
	return f.byID[id], nil
}

func remoteList() []models.Exercise {
	return []models.Exercise{
		{ID: 10, Name: "Deadlift", MuscleGroup: "Back", Difficulty: models.DifficultyAdvanced},
		{ID: 11, Name: "Plank", MuscleGroup: "Core", Difficulty: models.DifficultyBeginner},
	}
}

func TestLoaderResolutionPolicy(t *testing.T) {
	tests := []struct {
		name       string
		source     Source
		want       []models.Exercise
		wantOrigin Origin
	}{
		{"remote non-empty", &fakeSource{list: remoteList()}, remoteList(), OriginRemote},
		{"remote empty", &fakeSource{list: []models.Exercise{}}, Fallback(), OriginFallback},
		{"remote error", &fakeSource{listErr: errors.New("connection refused")}, Fallback(), OriginFallback},
		{"no source", nil, Fallback(), OriginFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(tt.source)
			snap := l.Load(context.Background())

			if !reflect.DeepEqual(snap.Exercises, tt.want) {
				t.Errorf("Exercises = %+v, want %+v", snap.Exercises, tt.want)
			}
			if snap.Origin != tt.wantOrigin {
				t.Errorf("Origin = %v, want %v", snap.Origin, tt.wantOrigin)
			}
			if snap.Version != 1 {
				t.Errorf("Version = %d, want 1", snap.Version)
			}
		})
	}
}

func TestLoaderVersionsIncrease(t *testing.T) {
	l := NewLoader(&fakeSource{list: remoteList()})
	first := l.Load(context.Background())
	second := l.Load(context.Background())

	if second.Version <= first.Version {
		t.Errorf("versions %d then %d, want strictly increasing", first.Version, second.Version)
	}
	if got := l.Snapshot(); got.Version != second.Version {
		t.Errorf("Snapshot().Version = %d, want %d", got.Version, second.Version)
	}
}

func TestLoaderCancelledLoadKeepsSnapshot(t *testing.T) {
	l := NewLoader(&fakeSource{list: remoteList()})
	before := l.Load(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := l.Load(ctx)

	if got.Version != before.Version {
		t.Errorf("cancelled load changed version %d -> %d", before.Version, got.Version)
	}
}

func TestLoaderWithFallbackOverride(t *testing.T) {
	custom := []models.Exercise{{ID: 100, MuscleGroup: "Glutes", Difficulty: models.DifficultyBeginner}}
	l := NewLoader(&fakeSource{listErr: errors.New("down")}, WithFallback(custom))

	snap := l.Load(context.Background())
	if !reflect.DeepEqual(snap.Exercises, custom) {
		t.Errorf("Exercises = %+v, want override", snap.Exercises)
	}
}

func TestLoaderLoadOne(t *testing.T) {
	remote := models.Exercise{ID: 10, Name: "Deadlift", MuscleGroup: "Back"}

	tests := []struct {
		name    string
		source  *fakeSource
		id      int64
		wantID  int64
		wantErr error
	}{
		{"remote hit", &fakeSource{byID: map[int64]models.Exercise{10: remote}}, 10, 10, nil},
		{"remote empty falls back", &fakeSource{byID: map[int64]models.Exercise{}}, 4, 4, nil},
		{"remote error falls back", &fakeSource{oneErr: errors.New("502")}, 3, 3, nil},
		{"absent everywhere", &fakeSource{oneErr: errors.New("404")}, 999, 0, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := NewLoader(tt.source).LoadOne(context.Background(), tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if ex.ID != tt.wantID {
				t.Errorf("ID = %d, want %d", ex.ID, tt.wantID)
			}
		})
	}
}

func TestLoaderLookup(t *testing.T) {
	l := NewLoader(&fakeSource{list: remoteList()})
	if _, ok := l.Lookup(10); ok {
		t.Fatal("lookup before any load should miss")
	}
	l.Load(context.Background())
	ex, ok := l.Lookup(11)
	if !ok || ex.Name != "Plank" {
		t.Errorf("Lookup(11) = %+v, %v", ex, ok)
	}
}

func TestFallbackDataset(t *testing.T) {
	list := Fallback()
	if err := ValidateDataset(list); err != nil {
		t.Fatalf("bundled dataset invalid: %v", err)
	}
	list[0].Name = "mutated"
	if Fallback()[0].Name == "mutated" {
		t.Error("Fallback must return a copy")
	}
}

func TestValidateDataset(t *testing.T) {
	ok := models.Exercise{ID: 1, MuscleGroup: "Chest", Difficulty: models.DifficultyBeginner}

	tests := []struct {
		name    string
		list    []models.Exercise
		wantErr bool
	}{
		{"valid", []models.Exercise{ok}, false},
		{"empty", nil, true},
		{"zero id", []models.Exercise{{MuscleGroup: "Chest", Difficulty: models.DifficultyBeginner}}, true},
		{"duplicate id", []models.Exercise{ok, ok}, true},
		{"no group", []models.Exercise{{ID: 2, Difficulty: models.DifficultyBeginner}}, true},
		{"bad difficulty", []models.Exercise{{ID: 2, MuscleGroup: "Legs", Difficulty: "Easy"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDataset(tt.list)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDataset() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
