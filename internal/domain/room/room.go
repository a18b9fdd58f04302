package room

import (
	"encoding/json"
	"time"
)

type Room struct {
	ID        int        `json:"id" bson:"_id"`
	Name      string     `json:"name" bson:"name"`
	HostID    string     `json:"host_id" bson:"host_id"`
	IsPrivate bool       `json:"is_private" bson:"is_private"`
	Password  string     `json:"-" bson:"password,omitempty"`
	Status    string     `json:"status" bson:"status"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" bson:"ended_at,omitempty"`
}

type Participant struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

// VideoState is the shared playback state of a room. Only the host mutates
// it; UpdatedAt is stamped at server receipt time, never taken from the
// client.
type VideoState struct {
	CurrentTime float64   `json:"current_time"`
	IsPlaying   bool      `json:"is_playing"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MessageType string

// Inbound message types.
const (
	TypeJoinRoom     MessageType = "JOIN_ROOM"
	TypeLeaveRoom    MessageType = "LEAVE_ROOM"
	TypeVideoUpdate  MessageType = "VIDEO_UPDATE"
	TypeSendMessage  MessageType = "SEND_MESSAGE"
	TypeStatusUpdate MessageType = "STATUS_UPDATE"
	TypeTimerStart   MessageType = "TIMER_START"
	TypeTimerStop    MessageType = "TIMER_STOP"
)

// Outbound message types.
const (
	TypeRoomState         MessageType = "ROOM_STATE"
	TypeUserJoined        MessageType = "USER_JOINED"
	TypeUserLeft          MessageType = "USER_LEFT"
	TypeMessage           MessageType = "MESSAGE"
	TypeVideoStateUpdated MessageType = "VIDEO_STATE_UPDATED"
	TypeStatusUpdated     MessageType = "STATUS_UPDATED"
	TypeHostChanged       MessageType = "HOST_CHANGED"
	TypeTimerStarted      MessageType = "TIMER_STARTED"
	TypeTimerStopped      MessageType = "TIMER_STOPPED"
	TypeError             MessageType = "ERROR"
)

// Envelope is the outer frame of every message in both directions.
type Envelope struct {
	Type      MessageType     `json:"type"`
	RoomID    int             `json:"roomId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// OutEnvelope mirrors Envelope for the server-to-client direction, where the
// payload is built rather than parsed.
type OutEnvelope struct {
	Type      MessageType `json:"type"`
	RoomID    int         `json:"roomId,omitempty"`
	Payload   any         `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type JoinRoomPayload struct {
	Password string `json:"password,omitempty"`
}

type VideoUpdatePayload struct {
	CurrentTime float64 `json:"current_time"`
	IsPlaying   bool    `json:"is_playing"`
}

type ChatPayload struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
}

type StatusPayload struct {
	Status string `json:"status"`
}

type TimerPayload struct {
	Duration float64 `json:"duration,omitempty"`
	Elapsed  float64 `json:"elapsed,omitempty"`
}

type RoomStatePayload struct {
	Room         Room          `json:"room"`
	Participants []Participant `json:"participants"`
	Video        VideoState    `json:"video"`
}

type UserEventPayload struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Participants int    `json:"participants"`
}

type ChatBroadcastPayload struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

type StatusBroadcastPayload struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

type HostChangedPayload struct {
	NewHostID string `json:"new_host_id"`
}

type TimerBroadcastPayload struct {
	UserID   string  `json:"user_id"`
	Duration float64 `json:"duration,omitempty"`
	Elapsed  float64 `json:"elapsed,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type CreateRoomRequest struct {
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
	Password  string `json:"password,omitempty"`
}

type RoomCreateResponse struct {
	Room Room `json:"room"`
}
