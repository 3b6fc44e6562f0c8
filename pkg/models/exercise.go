package models

// Difficulty is the training level an exercise is aimed at
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Valid reports whether d is one of the known difficulty levels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Exercise represents a single catalog entry with its instructional video
type Exercise struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	MuscleGroup  string     `json:"muscle_group"`
	Difficulty   Difficulty `json:"difficulty"`
	VideoURL     string     `json:"video_url"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	Description  string     `json:"description,omitempty"`
}

// ExerciseGroup is the derived set of exercises sharing a muscle group
type ExerciseGroup struct {
	Group     string     `json:"group"`
	Exercises []Exercise `json:"exercises"`
}

// Count returns the number of exercises in the group
func (g ExerciseGroup) Count() int {
	return len(g.Exercises)
}
