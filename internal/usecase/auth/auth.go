package auth

import (
	"context"

	userDomain "streak_hub/internal/domain/user"
	errs "streak_hub/internal/errors"
	"streak_hub/internal/random"
)

type UserStorage interface {
	CheckExists(ctx context.Context, username string) bool
	GetUser(ctx context.Context, username string) (userDomain.User, error)
	GetUserByID(ctx context.Context, id string) (userDomain.User, error)
	CreateUser(ctx context.Context, username, email, passwordHash string) (userDomain.User, error)
}

type SessionStorage interface {
	GetUserIdBySession(ctx context.Context, sessionID string) (userID string, ok bool)
	StoreSession(ctx context.Context, sessionID string, userID string) error
	DeleteSession(ctx context.Context, sessionID string) (ok bool)
}

type AuthUsecaseHandler struct {
	userStorage    UserStorage
	sessionStorage SessionStorage
}

func NewUserUsecaseHandler(u UserStorage, s SessionStorage) *AuthUsecaseHandler {
	return &AuthUsecaseHandler{
		userStorage:    u,
		sessionStorage: s,
	}
}

func (a *AuthUsecaseHandler) RegisterUser(ctx context.Context, username, email, password string) (sessionID string, err error) {
	newUser, err := a.userStorage.CreateUser(ctx, username, email, password)
	if err != nil {
		return "", err
	}
	sessionID = random.RandString(64)
	if err = a.sessionStorage.StoreSession(ctx, sessionID, newUser.ID); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (a *AuthUsecaseHandler) LoginUser(ctx context.Context, providedUsername, providedPassword string) (sessionID string, err error) {
	if !a.userStorage.CheckExists(ctx, providedUsername) {
		return "", errs.ErrUserNotFound
	}
	userFromDb, err := a.userStorage.GetUser(ctx, providedUsername)
	if err != nil {
		return "", err
	}
	if providedPassword != userFromDb.PasswordHash {
		return "", errs.ErrWrongPassword
	}
	sessionID = random.RandString(64)
	if err = a.sessionStorage.StoreSession(ctx, sessionID, userFromDb.ID); err != nil {
		return "", err
	}
	return sessionID, nil
}

// LogoutUser returns nil or ErrSessionNotFound.
func (a *AuthUsecaseHandler) LogoutUser(ctx context.Context, sessionID string) error {
	_, ok := a.sessionStorage.GetUserIdBySession(ctx, sessionID)
	if !ok {
		return errs.ErrSessionNotFound
	}
	if ok = a.sessionStorage.DeleteSession(ctx, sessionID); !ok {
		return errs.ErrSessionNotFound
	}
	return nil
}

func (a *AuthUsecaseHandler) GetUserIdFromSession(ctx context.Context, sessionID string) (string, error) {
	userID, ok := a.sessionStorage.GetUserIdBySession(ctx, sessionID)
	if !ok {
		return "", errs.ErrSessionNotFound
	}
	return userID, nil
}

func (a *AuthUsecaseHandler) CheckAuthorized(ctx context.Context, sessionID string) (bool, userDomain.User) {
	userID, found := a.sessionStorage.GetUserIdBySession(ctx, sessionID)
	if !found {
		return false, userDomain.User{}
	}
	u, err := a.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		return false, userDomain.User{}
	}
	return true, u
}

func (a *AuthUsecaseHandler) GetUserByUserId(ctx context.Context, userID string) (userDomain.User, error) {
	return a.userStorage.GetUserByID(ctx, userID)
}
