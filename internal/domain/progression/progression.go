package progression

import (
	"math"
	"time"

	"streak_hub/internal/domain/user"
)

const (
	// BaseSessionXP is multiplied by the user's current streak multiplier on
	// every completed session.
	BaseSessionXP = 50

	// StreakGracePeriod is the maximum gap between sessions before the streak
	// resets. A new calendar day inside the window continues the streak.
	StreakGracePeriod = 24 * time.Hour
)

type Level struct {
	Level int
	XP    int
	Title string
}

// Levels maps cumulative XP thresholds to levels. Must stay strictly
// increasing by XP.
var Levels = []Level{
	{1, 0, "Newcomer"},
	{2, 100, "Beginner"},
	{3, 250, "Apprentice"},
	{4, 500, "Regular"},
	{5, 1000, "Dedicated"},
	{6, 2000, "Committed"},
	{7, 3500, "Relentless"},
	{8, 5500, "Master"},
	{9, 8000, "Grandmaster"},
	{10, 11000, "Legend"},
}

type Milestone struct {
	Type        string
	Description string
	XP          int
	Multiplier  float64
}

// StreakMilestones is keyed by exact streak length in days. Reaching a
// milestone updates the streak multiplier and grants a one-time achievement.
var StreakMilestones = map[int]Milestone{
	3:  {Type: "streak_3", Description: "3-day streak", XP: 100, Multiplier: 1.2},
	7:  {Type: "streak_7", Description: "7-day streak", XP: 250, Multiplier: 1.5},
	14: {Type: "streak_14", Description: "14-day streak", XP: 500, Multiplier: 2.0},
	30: {Type: "streak_30", Description: "30-day streak", XP: 1000, Multiplier: 2.5},
	60: {Type: "streak_60", Description: "60-day streak", XP: 2000, Multiplier: 3.0},
}

// SessionMilestones is keyed by exact total session count.
var SessionMilestones = map[int]Milestone{
	10:  {Type: "sessions_10", Description: "10 sessions logged", XP: 150},
	50:  {Type: "sessions_50", Description: "50 sessions logged", XP: 500},
	100: {Type: "sessions_100", Description: "100 sessions logged", XP: 1500},
}

type SessionPayload struct {
	Duration  int    `json:"duration"`
	Intensity string `json:"intensity"`
	Mood      string `json:"mood"`
}

type Outcome struct {
	User            user.User
	XPGained        int
	LeveledUp       bool
	NewAchievements []user.Achievement
	CurrentLevelXP  int
	NextLevelXP     int
}

// CalculateLevel returns the highest level whose threshold is <= xp, its
// title, the threshold of that level and of the next one. At the top of the
// table progress saturates: nextXP equals the current threshold.
func CalculateLevel(xp int) (level int, title string, currentXP int, nextXP int) {
	current := Levels[0]
	next := Levels[0]
	for i, l := range Levels {
		if xp >= l.XP {
			current = l
			if i+1 < len(Levels) {
				next = Levels[i+1]
			} else {
				next = l
			}
		}
	}
	return current.Level, current.Title, current.XP, next.XP
}

// GrantXP credits a non-negative delta, re-derives level and title, and
// reports whether the level strictly increased. Grants compose: calling it
// for the session reward and again per achievement stacks the XP.
func GrantXP(u *user.User, delta int) (leveledUp bool) {
	if delta < 0 {
		delta = 0
	}
	before := u.Level
	u.XPPoints += delta
	u.Level, u.Title, _, _ = CalculateLevel(u.XPPoints)
	return u.Level > before
}

// ApplySession applies one completed session to a copy of the user record
// and returns the outcome. Pure: all time comes from now, all randomness is
// absent, no I/O.
//
// Streak policy (grace-period variant): a session on the same calendar day
// leaves the streak untouched; a session on a new day within the grace
// window increments it; anything beyond the window, or a first-ever session,
// resets it to 1.
func ApplySession(u user.User, now time.Time, p SessionPayload) Outcome {
	_ = p // duration/intensity/mood are recorded by the caller, not scored

	if u.LastSessionDate == nil || !sameDay(*u.LastSessionDate, now) {
		u.TodaySessions = 0
	}

	var milestones []Milestone

	switch {
	case u.LastSessionDate == nil || now.Sub(*u.LastSessionDate) > StreakGracePeriod:
		u.CurrentStreak = 1
		u.StreakMultiplier = 1
		reset := now
		u.LastStreakReset = &reset
	case !sameDay(*u.LastSessionDate, now):
		u.CurrentStreak++
		if m, ok := StreakMilestones[u.CurrentStreak]; ok {
			u.StreakMultiplier = m.Multiplier
			if !u.HasAchievement(m.Type) {
				milestones = append(milestones, m)
			}
		}
	}
	if u.StreakMultiplier < 1 {
		u.StreakMultiplier = 1
	}

	sessionXP := int(math.Round(BaseSessionXP * u.StreakMultiplier))
	leveledUp := GrantXP(&u, sessionXP)

	last := now
	u.LastSessionDate = &last
	u.TotalSessions++
	u.TodaySessions++
	if u.CurrentStreak > u.LongestStreak {
		u.LongestStreak = u.CurrentStreak
	}

	if m, ok := SessionMilestones[u.TotalSessions]; ok && !u.HasAchievement(m.Type) {
		milestones = append(milestones, m)
	}

	xpGained := sessionXP
	var earned []user.Achievement
	for _, m := range milestones {
		if GrantXP(&u, m.XP) {
			leveledUp = true
		}
		xpGained += m.XP
		u.EarnedAchievements = append(u.EarnedAchievements, m.Type)
		earned = append(earned, user.Achievement{
			UserID:      u.ID,
			Type:        m.Type,
			Description: m.Description,
			EarnedAt:    now,
			XPAwarded:   m.XP,
		})
	}

	u.UpdatedAt = now

	_, _, currentXP, nextXP := CalculateLevel(u.XPPoints)
	return Outcome{
		User:            u,
		XPGained:        xpGained,
		LeveledUp:       leveledUp,
		NewAchievements: earned,
		CurrentLevelXP:  currentXP,
		NextLevelXP:     nextXP,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
