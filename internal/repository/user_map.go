package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"streak_hub/internal/domain/user"
	errs "streak_hub/internal/errors"
)

// UserMapStorage mirrors MongoUserStorage with in-process maps. It backs
// tests and local runs without a database.
type UserMapStorage struct {
	mu           sync.RWMutex
	users        map[string]user.User
	achievements map[string][]user.Achievement
}

func NewMapUserStorage() *UserMapStorage {
	return &UserMapStorage{
		users:        make(map[string]user.User),
		achievements: make(map[string][]user.Achievement),
	}
}

func (s *UserMapStorage) CheckExists(ctx context.Context, username string) bool {
	_, err := s.GetUser(ctx, username)
	return err == nil
}

func (s *UserMapStorage) GetUser(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, errs.ErrUserNotFound
}

func (s *UserMapStorage) GetUserByID(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return user.User{}, errs.ErrUserNotFound
}

func (s *UserMapStorage) CreateUser(ctx context.Context, username, email, passwordHash string) (user.User, error) {
	if s.CheckExists(ctx, username) {
		return user.User{}, errs.ErrUserExists
	}

	now := time.Now()
	newUser := user.User{
		ID:                uuid.New().String(),
		Username:          username,
		Email:             email,
		CreatedAt:         now,
		UpdatedAt:         now,
		Level:             1,
		Title:             "Newcomer",
		StreakMultiplier:  1,
		ShowOnLeaderboard: true,
		PasswordHash:      passwordHash,
	}

	s.mu.Lock()
	s.users[newUser.ID] = newUser
	s.mu.Unlock()
	return newUser, nil
}

func (s *UserMapStorage) UpdateUser(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return errs.ErrUserNotFound
	}
	s.users[u.ID] = u
	return nil
}

func (s *UserMapStorage) AddAchievement(_ context.Context, a user.Achievement) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	s.mu.Lock()
	s.achievements[a.UserID] = append(s.achievements[a.UserID], a)
	s.mu.Unlock()
	return nil
}

func (s *UserMapStorage) GetAchievementsByUser(_ context.Context, userID string) ([]user.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]user.Achievement(nil), s.achievements[userID]...), nil
}
