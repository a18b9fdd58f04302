package repo

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"streak_hub/internal/adapters"
	"streak_hub/internal/domain/room"
	errs "streak_hub/internal/errors"
	"streak_hub/internal/statuses"
)

type MongoRoomStorage struct {
	log     *zap.SugaredLogger
	adapter *adapters.AdapterMongo
}

func NewMongoRoomStorage(log *zap.SugaredLogger, adapter *adapters.AdapterMongo) *MongoRoomStorage {
	return &MongoRoomStorage{log: log, adapter: adapter}
}

func (m *MongoRoomStorage) rooms() *mongo.Collection {
	return m.adapter.Database.Collection("rooms")
}

// GenerateRoomID derives a 5-digit numeric join code and retries until the
// code is unused by an active room.
func (m *MongoRoomStorage) GenerateRoomID(ctx context.Context) int {
	for {
		id := roomCodeFrom(uuid.New().String())
		if m.checkRoomIDIsUniq(ctx, id) {
			return id
		}
	}
}

func roomCodeFrom(s string) int {
	h := md5.New()
	h.Write([]byte(s))
	hashBytes := h.Sum(nil)
	number := binary.BigEndian.Uint32(hashBytes[:4])
	code := number%90000 + 10000
	return int(code)
}

func (m *MongoRoomStorage) checkRoomIDIsUniq(ctx context.Context, id int) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$ne": statuses.RoomStatusEnded},
	}
	err := m.rooms().FindOne(ctx, filter).Err()
	return errors.Is(err, mongo.ErrNoDocuments)
}

func (m *MongoRoomStorage) CreateRoom(ctx context.Context, r room.Room) (room.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if r.ID == 0 {
		r.ID = m.GenerateRoomID(ctx)
	}
	r.Status = statuses.RoomStatusActive
	r.CreatedAt = time.Now()

	if _, err := m.rooms().InsertOne(ctx, r); err != nil {
		m.log.Errorf("failed to insert room: %v", err)
		return room.Room{}, errs.ErrCreateRoomFailed
	}

	m.log.Infof("room %d created by %s", r.ID, r.HostID)
	return r, nil
}

func (m *MongoRoomStorage) GetRoomByID(ctx context.Context, id int) (room.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result room.Room
	err := m.rooms().FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return room.Room{}, errs.ErrRoomNotFound
		}
		return room.Room{}, err
	}
	return result, nil
}

func (m *MongoRoomStorage) SetHost(ctx context.Context, id int, hostID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := m.rooms().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"host_id": hostID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrRoomNotFound
	}
	return nil
}

func (m *MongoRoomStorage) EndRoom(ctx context.Context, id int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	res, err := m.rooms().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": statuses.RoomStatusEnded, "ended_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrRoomNotFound
	}
	return nil
}

func (m *MongoRoomStorage) ListActiveRooms(ctx context.Context) ([]room.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := m.rooms().Find(ctx, bson.M{"status": statuses.RoomStatusActive})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []room.Room
	for cursor.Next(ctx) {
		var r room.Room
		if err = cursor.Decode(&r); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, cursor.Err()
}
