package errors

import "errors"

var (
	ErrUserNotFound      = errors.New("user with provided username was not found")
	ErrWrongPassword     = errors.New("wrong password")
	ErrSessionNotFound   = errors.New("session was not found")
	ErrUserExists        = errors.New("user already exists")
	ErrRoomNotFound      = errors.New("room not found")
	ErrWrongRoomPassword = errors.New("wrong room password")
	ErrNotRoomHost       = errors.New("only the room host may do that")
	ErrNotInRoom         = errors.New("socket has not joined a room")
	ErrCreateRoomFailed  = errors.New("create room failed")
	ErrRoomEnded         = errors.New("room has already ended")
	ErrInternal          = errors.New("internal error")
)
