package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	errs "streak_hub/internal/errors"
	repo "streak_hub/internal/repository"
	"streak_hub/internal/usecase/auth"
)

func newTestAuth() *auth.AuthUsecaseHandler {
	return auth.NewUserUsecaseHandler(repo.NewMapUserStorage(), repo.NewSessionMapStorage())
}

func TestRegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	uc := newTestAuth()

	sessionID, err := uc.RegisterUser(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	userID, err := uc.GetUserIdFromSession(ctx, sessionID)
	require.NoError(t, err)

	u, err := uc.GetUserByUserId(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, 1, u.Level)
	require.True(t, u.ShowOnLeaderboard)

	require.NoError(t, uc.LogoutUser(ctx, sessionID))
	_, err = uc.GetUserIdFromSession(ctx, sessionID)
	require.ErrorIs(t, err, errs.ErrSessionNotFound)

	loginSession, err := uc.LoginUser(ctx, "alice", "pw")
	require.NoError(t, err)
	require.NotEqual(t, sessionID, loginSession)

	ok, loggedIn := uc.CheckAuthorized(ctx, loginSession)
	require.True(t, ok)
	require.Equal(t, userID, loggedIn.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	uc := newTestAuth()

	_, err := uc.RegisterUser(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = uc.RegisterUser(ctx, "alice", "other@example.com", "pw2")
	require.ErrorIs(t, err, errs.ErrUserExists)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	uc := newTestAuth()

	_, err := uc.LoginUser(ctx, "ghost", "pw")
	require.ErrorIs(t, err, errs.ErrUserNotFound)

	_, err = uc.RegisterUser(ctx, "bob", "bob@example.com", "pw")
	require.NoError(t, err)

	_, err = uc.LoginUser(ctx, "bob", "wrong")
	require.ErrorIs(t, err, errs.ErrWrongPassword)
}

func TestLogoutUnknownSession(t *testing.T) {
	uc := newTestAuth()
	require.ErrorIs(t, uc.LogoutUser(context.Background(), "no-such-session"), errs.ErrSessionNotFound)
}
