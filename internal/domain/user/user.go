package user

import "time"

type User struct {
	ID                 string     `json:"id" bson:"_id,omitempty"`
	Username           string     `json:"username" bson:"username"`
	Email              string     `json:"email" bson:"email"`
	CreatedAt          time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" bson:"updated_at"`
	XPPoints           int        `json:"xp_points" bson:"xp_points"`
	Level              int        `json:"level" bson:"level"`
	Title              string     `json:"title" bson:"title"`
	CurrentStreak      int        `json:"current_streak" bson:"current_streak"`
	LongestStreak      int        `json:"longest_streak" bson:"longest_streak"`
	LastSessionDate    *time.Time `json:"last_session_date,omitempty" bson:"last_session_date,omitempty"`
	StreakMultiplier   float64    `json:"streak_multiplier" bson:"streak_multiplier"`
	LastStreakReset    *time.Time `json:"last_streak_reset,omitempty" bson:"last_streak_reset,omitempty"`
	TotalSessions      int        `json:"total_sessions" bson:"total_sessions"`
	TodaySessions      int        `json:"today_sessions" bson:"today_sessions"`
	IsAnonymous        bool       `json:"is_anonymous" bson:"is_anonymous"`
	ShowOnLeaderboard  bool       `json:"show_on_leaderboard" bson:"show_on_leaderboard"`
	// EarnedAchievements holds the achievement types already granted so that a
	// milestone re-triggered by a data correction is never awarded twice.
	EarnedAchievements []string `json:"earned_achievements,omitempty" bson:"earned_achievements,omitempty"`
	PasswordHash       string   `json:"-" bson:"password_hash"`
}

type Achievement struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Type        string    `json:"type" bson:"type"`
	Description string    `json:"description" bson:"description"`
	EarnedAt    time.Time `json:"earned_at" bson:"earned_at"`
	XPAwarded   int       `json:"xp_awarded" bson:"xp_awarded"`
}

func (u *User) HasAchievement(achievementType string) bool {
	for _, t := range u.EarnedAchievements {
		if t == achievementType {
			return true
		}
	}
	return false
}
