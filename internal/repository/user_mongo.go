package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/google/uuid"

	"streak_hub/internal/adapters"
	"streak_hub/internal/domain/user"
	errs "streak_hub/internal/errors"
)

type MongoUserStorage struct {
	adapter *adapters.AdapterMongo
}

func NewMongoUserStorage(adapter *adapters.AdapterMongo) *MongoUserStorage {
	return &MongoUserStorage{adapter: adapter}
}

func (m *MongoUserStorage) users() *mongo.Collection {
	return m.adapter.Database.Collection("users")
}

func (m *MongoUserStorage) achievements() *mongo.Collection {
	return m.adapter.Database.Collection("achievements")
}

func (m *MongoUserStorage) CheckExists(ctx context.Context, username string) bool {
	_, err := m.GetUser(ctx, username)
	return err == nil
}

func (m *MongoUserStorage) GetUser(ctx context.Context, username string) (user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result user.User
	err := m.users().FindOne(ctx, bson.M{"username": username}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, errs.ErrUserNotFound
		}
		return user.User{}, err
	}
	return result, nil
}

func (m *MongoUserStorage) GetUserByID(ctx context.Context, id string) (user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result user.User
	err := m.users().FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, errs.ErrUserNotFound
		}
		return user.User{}, err
	}
	return result, nil
}

func (m *MongoUserStorage) CreateUser(ctx context.Context, username, email, passwordHash string) (user.User, error) {
	if m.CheckExists(ctx, username) {
		return user.User{}, errs.ErrUserExists
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

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

	_, err := m.users().InsertOne(ctx, newUser)
	if err != nil {
		return user.User{}, err
	}
	return newUser, nil
}

// UpdateUser replaces the whole user document. Callers serialize writes for
// a given user id, see usecase/progression.
func (m *MongoUserStorage) UpdateUser(ctx context.Context, u user.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := m.users().ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}

func (m *MongoUserStorage) AddAchievement(ctx context.Context, a user.Achievement) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := m.achievements().InsertOne(ctx, a)
	return err
}

func (m *MongoUserStorage) GetAchievementsByUser(ctx context.Context, userID string) ([]user.Achievement, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := m.achievements().Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []user.Achievement
	for cursor.Next(ctx) {
		var a user.Achievement
		if err = cursor.Decode(&a); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, cursor.Err()
}
