package models

// Profile is the server-authoritative stats snapshot for the current user
type Profile struct {
	Name           string `json:"name"`
	TotalWorkouts  int    `json:"total_workouts"`
	StreakCount    int    `json:"streak_count"`
	TelegramUserID int64  `json:"telegram_user_id"`
}
