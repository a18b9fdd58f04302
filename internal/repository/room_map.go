package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"streak_hub/internal/domain/room"
	errs "streak_hub/internal/errors"
	"streak_hub/internal/statuses"
)

// RoomMapStorage is the in-process counterpart of MongoRoomStorage.
type RoomMapStorage struct {
	mu    sync.RWMutex
	rooms map[int]room.Room
}

func NewMapRoomStorage() *RoomMapStorage {
	return &RoomMapStorage{rooms: make(map[int]room.Room)}
}

func (s *RoomMapStorage) CreateRoom(_ context.Context, r room.Room) (room.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == 0 {
		for {
			id := roomCodeFrom(uuid.New().String())
			if existing, ok := s.rooms[id]; !ok || existing.Status == statuses.RoomStatusEnded {
				r.ID = id
				break
			}
		}
	}
	r.Status = statuses.RoomStatusActive
	r.CreatedAt = time.Now()
	s.rooms[r.ID] = r
	return r, nil
}

func (s *RoomMapStorage) GetRoomByID(_ context.Context, id int) (room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.rooms[id]; ok {
		return r, nil
	}
	return room.Room{}, errs.ErrRoomNotFound
}

func (s *RoomMapStorage) SetHost(_ context.Context, id int, hostID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return errs.ErrRoomNotFound
	}
	r.HostID = hostID
	s.rooms[id] = r
	return nil
}

func (s *RoomMapStorage) EndRoom(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return errs.ErrRoomNotFound
	}
	now := time.Now()
	r.Status = statuses.RoomStatusEnded
	r.EndedAt = &now
	s.rooms[id] = r
	return nil
}

func (s *RoomMapStorage) ListActiveRooms(_ context.Context) ([]room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []room.Room
	for _, r := range s.rooms {
		if r.Status == statuses.RoomStatusActive {
			result = append(result, r)
		}
	}
	return result, nil
}
