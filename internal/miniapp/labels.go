package miniapp

import (
	"fmt"

	"github.com/example/fitgram/pkg/models"
)

// Copy shared by the front ends
const (
	CatalogTitle    = "Muscle Groups"
	CatalogSubtitle = "Choose your focus for today's session"
	EmptyGroupText  = "No exercises found for this group."
	NotFoundText    = "Exercise not found"
	BackToLibrary   = "Back to Library"
	MarkCompleteCTA = "Mark as Complete"
	RecordedText    = "Workout Recorded"
	LoadingText     = "Loading..."
)

// CountLabel is the per-group count line of the catalog
func CountLabel(n int) string {
	if n == 1 {
		return "1 Exercise Available"
	}
	return fmt.Sprintf("%d Exercises Available", n)
}

// FoundLabel is the count line of a group detail
func FoundLabel(n int) string {
	return fmt.Sprintf("%d Workouts found", n)
}

// DifficultyBadge returns a marker for d
func DifficultyBadge(d models.Difficulty) string {
	switch d {
	case models.DifficultyBeginner:
		return "🟢"
	case models.DifficultyIntermediate:
		return "🟡"
	case models.DifficultyAdvanced:
		return "🔴"
	}
	return "⚪"
}
