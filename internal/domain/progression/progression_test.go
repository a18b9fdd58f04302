package progression_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"streak_hub/internal/domain/progression"
	"streak_hub/internal/domain/user"
)

func baseUser() user.User {
	return user.User{
		ID:               "u1",
		Username:         "alice",
		Level:            1,
		Title:            "Newcomer",
		StreakMultiplier: 1,
	}
}

func TestCalculateLevel(t *testing.T) {
	tests := map[string]struct {
		xp        int
		wantLevel int
		wantNext  int
	}{
		"zero xp is level 1":        {xp: 0, wantLevel: 1, wantNext: 100},
		"just below a threshold":    {xp: 99, wantLevel: 1, wantNext: 100},
		"exactly on a threshold":    {xp: 100, wantLevel: 2, wantNext: 250},
		"mid table":                 {xp: 2600, wantLevel: 6, wantNext: 3500},
		"top of table saturates":    {xp: 11000, wantLevel: 10, wantNext: 11000},
		"beyond the top stays put":  {xp: 999999, wantLevel: 10, wantNext: 11000},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			level, title, _, next := progression.CalculateLevel(tc.xp)
			require.Equal(t, tc.wantLevel, level)
			require.Equal(t, tc.wantNext, next)
			require.NotEmpty(t, title)
		})
	}
}

func TestGrantXP_RoundTrip(t *testing.T) {
	u := baseUser()
	u.XPPoints = 70

	leveledUp := progression.GrantXP(&u, 60)

	require.Equal(t, 130, u.XPPoints)
	require.True(t, leveledUp)
	wantLevel, wantTitle, _, _ := progression.CalculateLevel(130)
	require.Equal(t, wantLevel, u.Level)
	require.Equal(t, wantTitle, u.Title)

	require.False(t, progression.GrantXP(&u, 0))
	require.Equal(t, 130, u.XPPoints)
}

func TestApplySession_FirstSessionEver(t *testing.T) {
	now := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)

	out := progression.ApplySession(baseUser(), now, progression.SessionPayload{Duration: 25})

	require.Equal(t, 1, out.User.CurrentStreak)
	require.Equal(t, 1, out.User.TodaySessions)
	require.Equal(t, 1, out.User.TotalSessions)
	require.Equal(t, float64(1), out.User.StreakMultiplier)
	require.Equal(t, progression.BaseSessionXP, out.XPGained)
	require.NotNil(t, out.User.LastSessionDate)
	require.Equal(t, now, *out.User.LastSessionDate)
}

func TestApplySession_StreakContinuesWithinGrace(t *testing.T) {
	last := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	now := last.Add(20 * time.Hour) // next calendar day, inside the window

	u := baseUser()
	u.CurrentStreak = 2
	u.LongestStreak = 2
	u.LastSessionDate = &last
	u.TotalSessions = 5
	u.TodaySessions = 3

	out := progression.ApplySession(u, now, progression.SessionPayload{})

	require.Equal(t, 3, out.User.CurrentStreak)
	require.Equal(t, 3, out.User.LongestStreak)
	require.Equal(t, 1, out.User.TodaySessions, "new day resets the daily counter")
	require.Equal(t, 1.2, out.User.StreakMultiplier, "3-day milestone multiplier")

	require.Len(t, out.NewAchievements, 1)
	require.Equal(t, "streak_3", out.NewAchievements[0].Type)
	require.Equal(t, 100, out.NewAchievements[0].XPAwarded)

	// round(50*1.2) + 100 milestone
	require.Equal(t, 60+100, out.XPGained)
	require.Equal(t, 160, out.User.XPPoints)
}

func TestApplySession_StreakResetsBeyondGrace(t *testing.T) {
	last := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := last.Add(30 * time.Hour)

	u := baseUser()
	u.CurrentStreak = 7
	u.LongestStreak = 7
	u.StreakMultiplier = 1.5
	u.LastSessionDate = &last

	out := progression.ApplySession(u, now, progression.SessionPayload{})

	require.Equal(t, 1, out.User.CurrentStreak)
	require.Equal(t, float64(1), out.User.StreakMultiplier)
	require.Equal(t, 7, out.User.LongestStreak)
	require.NotNil(t, out.User.LastStreakReset)
	require.Equal(t, now, *out.User.LastStreakReset)
	require.Equal(t, progression.BaseSessionXP, out.XPGained)
}

func TestApplySession_SameDayKeepsStreak(t *testing.T) {
	last := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := last.Add(5 * time.Hour)

	u := baseUser()
	u.CurrentStreak = 4
	u.LongestStreak = 4
	u.LastSessionDate = &last
	u.TodaySessions = 1
	u.TotalSessions = 4

	out := progression.ApplySession(u, now, progression.SessionPayload{})

	require.Equal(t, 4, out.User.CurrentStreak)
	require.Equal(t, 2, out.User.TodaySessions)
	require.Equal(t, 5, out.User.TotalSessions)
	require.Nil(t, out.User.LastStreakReset)
}

func TestApplySession_MilestoneNotAwardedTwice(t *testing.T) {
	last := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	now := last.Add(20 * time.Hour)

	u := baseUser()
	u.CurrentStreak = 2
	u.LongestStreak = 10
	u.LastSessionDate = &last
	u.EarnedAchievements = []string{"streak_3"}

	out := progression.ApplySession(u, now, progression.SessionPayload{})

	require.Equal(t, 3, out.User.CurrentStreak)
	require.Empty(t, out.NewAchievements, "streak_3 was already earned")
	require.Equal(t, 1.2, out.User.StreakMultiplier, "multiplier still follows the table")
	require.Equal(t, 60, out.XPGained)
}

func TestApplySession_SessionCountMilestone(t *testing.T) {
	last := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := last.Add(2 * time.Hour)

	u := baseUser()
	u.CurrentStreak = 1
	u.LongestStreak = 1
	u.LastSessionDate = &last
	u.TotalSessions = 9
	u.TodaySessions = 1

	out := progression.ApplySession(u, now, progression.SessionPayload{})

	require.Equal(t, 10, out.User.TotalSessions)
	require.Len(t, out.NewAchievements, 1)
	require.Equal(t, "sessions_10", out.NewAchievements[0].Type)
	require.Equal(t, progression.BaseSessionXP+150, out.XPGained)
	require.Contains(t, out.User.EarnedAchievements, "sessions_10")
}

func TestApplySession_LongestStreakInvariant(t *testing.T) {
	u := baseUser()
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	gaps := []time.Duration{
		20 * time.Hour, 23 * time.Hour, 48 * time.Hour, 6 * time.Hour,
		22 * time.Hour, 22 * time.Hour, 30 * time.Hour, 21 * time.Hour,
	}
	for _, gap := range gaps {
		out := progression.ApplySession(u, now, progression.SessionPayload{})
		u = out.User
		require.GreaterOrEqual(t, u.LongestStreak, u.CurrentStreak)
		require.GreaterOrEqual(t, u.CurrentStreak, 1)
		now = now.Add(gap)
	}
}
