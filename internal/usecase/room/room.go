package room

import (
	"context"
	"strings"

	roomDomain "streak_hub/internal/domain/room"
	errs "streak_hub/internal/errors"
	"streak_hub/internal/statuses"
)

type RoomStore interface {
	CreateRoom(ctx context.Context, r roomDomain.Room) (roomDomain.Room, error)
	GetRoomByID(ctx context.Context, id int) (roomDomain.Room, error)
	SetHost(ctx context.Context, id int, hostID string) error
	EndRoom(ctx context.Context, id int) error
	ListActiveRooms(ctx context.Context) ([]roomDomain.Room, error)
}

type RoomUseCase struct {
	store RoomStore
}

func NewRoomUseCase(store RoomStore) *RoomUseCase {
	return &RoomUseCase{store: store}
}

func (r *RoomUseCase) CreateRoom(ctx context.Context, req roomDomain.CreateRoomRequest, creatorID string) (roomDomain.Room, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Watch room"
	}
	if req.IsPrivate && req.Password == "" {
		return roomDomain.Room{}, errs.ErrWrongRoomPassword
	}

	newRoom := roomDomain.Room{
		Name:      name,
		HostID:    creatorID,
		IsPrivate: req.IsPrivate,
		Password:  req.Password,
	}
	return r.store.CreateRoom(ctx, newRoom)
}

// ValidateJoin checks the room exists, is still running and, for private
// rooms, that the supplied password matches.
func (r *RoomUseCase) ValidateJoin(ctx context.Context, roomID int, password string) (roomDomain.Room, error) {
	found, err := r.store.GetRoomByID(ctx, roomID)
	if err != nil {
		return roomDomain.Room{}, err
	}
	if found.Status == statuses.RoomStatusEnded {
		return roomDomain.Room{}, errs.ErrRoomEnded
	}
	if found.IsPrivate && found.Password != password {
		return roomDomain.Room{}, errs.ErrWrongRoomPassword
	}
	return found, nil
}

func (r *RoomUseCase) GetRoomByID(ctx context.Context, roomID int) (roomDomain.Room, error) {
	return r.store.GetRoomByID(ctx, roomID)
}

func (r *RoomUseCase) SetHost(ctx context.Context, roomID int, hostID string) error {
	return r.store.SetHost(ctx, roomID, hostID)
}

func (r *RoomUseCase) EndRoom(ctx context.Context, roomID int) error {
	return r.store.EndRoom(ctx, roomID)
}

func (r *RoomUseCase) ListActiveRooms(ctx context.Context) ([]roomDomain.Room, error) {
	return r.store.ListActiveRooms(ctx)
}
