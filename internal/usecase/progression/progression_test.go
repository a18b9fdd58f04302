package progression_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	progressionDomain "streak_hub/internal/domain/progression"
	errs "streak_hub/internal/errors"
	repo "streak_hub/internal/repository"
	progressionUC "streak_hub/internal/usecase/progression"
)

func sessionPayload(duration int, intensity, mood string) progressionDomain.SessionPayload {
	return progressionDomain.SessionPayload{Duration: duration, Intensity: intensity, Mood: mood}
}

func newTestUsecase(t *testing.T) (*progressionUC.ProgressionUseCase, *repo.UserMapStorage) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := repo.NewMapUserStorage()
	lb := repo.NewRedisLeaderboardStorage(client)
	return progressionUC.NewProgressionUseCase(zap.NewNop().Sugar(), users, lb), users
}

func TestLogSession_UserNotFound(t *testing.T) {
	uc, _ := newTestUsecase(t)

	_, err := uc.LogSession(context.Background(), "missing", sessionPayload(25, "high", "good"))
	require.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestLogSession_PersistsUserAndAchievements(t *testing.T) {
	ctx := context.Background()
	uc, users := newTestUsecase(t)

	u, err := users.CreateUser(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	now := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)
	uc.SetClock(func() time.Time { return now })

	// day 1 and 2 build the streak, day 3 hits the milestone
	for day := 0; day < 2; day++ {
		_, err = uc.LogSession(ctx, u.ID, sessionPayload(25, "medium", "fine"))
		require.NoError(t, err)
		now = now.Add(22 * time.Hour)
		uc.SetClock(func() time.Time { return now })
	}

	resp, err := uc.LogSession(ctx, u.ID, sessionPayload(25, "medium", "fine"))
	require.NoError(t, err)

	require.Equal(t, 3, resp.User.CurrentStreak)
	require.Len(t, resp.NewAchievements, 1)
	require.Equal(t, "streak_3", resp.NewAchievements[0].Type)

	stored, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, resp.User.XPPoints, stored.XPPoints)
	require.Contains(t, stored.EarnedAchievements, "streak_3")

	awards, err := users.GetAchievementsByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, awards, 1)
	require.Equal(t, "streak_3", awards[0].Type)
}

func TestGrantXP_StacksWithSessionXP(t *testing.T) {
	ctx := context.Background()
	uc, users := newTestUsecase(t)

	u, err := users.CreateUser(ctx, "bob", "bob@example.com", "pw")
	require.NoError(t, err)

	resp, err := uc.LogSession(ctx, u.ID, sessionPayload(10, "low", "ok"))
	require.NoError(t, err)

	updated, leveledUp, err := uc.GrantXP(ctx, u.ID, 75)
	require.NoError(t, err)
	require.True(t, leveledUp, "50 session XP + 75 crosses the level-2 threshold")
	require.Equal(t, resp.User.XPPoints+75, updated.XPPoints)
}

func TestUpdatePrivacy_HidesFromLeaderboard(t *testing.T) {
	ctx := context.Background()
	uc, users := newTestUsecase(t)

	u, err := users.CreateUser(ctx, "carol", "carol@example.com", "pw")
	require.NoError(t, err)

	_, err = uc.LogSession(ctx, u.ID, sessionPayload(25, "high", "good"))
	require.NoError(t, err)

	rows, err := uc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "carol", rows[0].Username)

	hide := false
	_, err = uc.UpdatePrivacy(ctx, u.ID, progressionUC.PrivacyUpdate{ShowOnLeaderboard: &hide})
	require.NoError(t, err)

	rows, err = uc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestLeaderboard_SkippedEntriesLeaveNoRankGap(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := repo.NewMapUserStorage()
	lb := repo.NewRedisLeaderboardStorage(client)
	uc := progressionUC.NewProgressionUseCase(zap.NewNop().Sugar(), users, lb)

	u, err := users.CreateUser(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	_, err = uc.LogSession(ctx, u.ID, sessionPayload(25, "high", "good"))
	require.NoError(t, err)

	// a board entry whose user no longer exists outranks alice but must not
	// consume a visible rank
	require.NoError(t, lb.UpdateScore(ctx, "ghost", 99, 0))

	rows, err := uc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 1, rows[0].Rank)
	require.Equal(t, "alice", rows[0].Username)
}

func TestUpdatePrivacy_AnonymousMasksName(t *testing.T) {
	ctx := context.Background()
	uc, users := newTestUsecase(t)

	u, err := users.CreateUser(ctx, "dave", "dave@example.com", "pw")
	require.NoError(t, err)

	_, err = uc.LogSession(ctx, u.ID, sessionPayload(25, "high", "good"))
	require.NoError(t, err)

	anon := true
	_, err = uc.UpdatePrivacy(ctx, u.ID, progressionUC.PrivacyUpdate{IsAnonymous: &anon})
	require.NoError(t, err)

	rows, err := uc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Anonymous", rows[0].Username)
}
