package room

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	roomDomain "streak_hub/internal/domain/room"
	errs "streak_hub/internal/errors"
	roomuc "streak_hub/internal/usecase/room"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings with this period; a socket that has not answered the
	// previous ping by the next tick is terminated.
	pingPeriod = 30 * time.Second

	// Time allowed to read the next pong after a ping.
	pongWait = pingPeriod * 2
)

// Conn is the subset of *websocket.Conn the hub needs. Tests substitute it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one connected socket. A client joins at most one room at a time.
type Client struct {
	hub      *Hub
	conn     Conn
	userID   string
	username string

	writeMu sync.Mutex // gorilla conns forbid concurrent writers

	// guarded by hub.mu
	roomID int
	alive  bool
}

func (c *Client) send(env roomDomain.OutEnvelope) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(env); err != nil {
		c.hub.log.Warnf("write to %s failed: %v", c.userID, err)
	}
}

func (c *Client) sendError(roomID int, message string) {
	c.send(roomDomain.OutEnvelope{
		Type:      roomDomain.TypeError,
		RoomID:    roomID,
		Payload:   roomDomain.ErrorPayload{Message: message},
		Timestamp: time.Now(),
	})
}

func (c *Client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// liveRoom is the registry entry for one ACTIVE room: the participant set
// and the shared playback state. It exists exactly while the room has at
// least one registered socket.
type liveRoom struct {
	info    roomDomain.Room
	hostID  string
	video   roomDomain.VideoState
	clients map[*Client]bool
}

// Hub is the room registry and protocol handler. Every registry mutation
// and broadcast selection happens under one mutex; actual socket writes run
// outside it.
type Hub struct {
	log    *zap.SugaredLogger
	roomUC *roomuc.RoomUseCase

	mu      sync.Mutex
	rooms   map[int]*liveRoom
	clients map[*Client]bool
}

func NewHub(log *zap.SugaredLogger, roomUC *roomuc.RoomUseCase) *Hub {
	return &Hub{
		log:     log,
		roomUC:  roomUC,
		rooms:   make(map[int]*liveRoom),
		clients: make(map[*Client]bool),
	}
}

// Register attaches a freshly upgraded socket to the hub (CONNECTED state,
// not yet in any room).
func (h *Hub) Register(conn Conn, userID, username string) *Client {
	c := &Client{
		hub:      h,
		conn:     conn,
		userID:   userID,
		username: username,
		alive:    true,
	}
	conn.SetPongHandler(func(string) error {
		h.mu.Lock()
		c.alive = true
		h.mu.Unlock()
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c
}

// Disconnect runs the full leave transition and forgets the socket. Safe to
// call more than once for the same client.
func (h *Hub) Disconnect(ctx context.Context, c *Client) {
	h.leaveRoom(ctx, c)
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

// HandleMessage dispatches one inbound envelope. Unknown types and bad
// payloads answer the sender with ERROR and never affect other connections.
func (h *Hub) HandleMessage(ctx context.Context, c *Client, env roomDomain.Envelope) {
	switch env.Type {
	case roomDomain.TypeJoinRoom:
		h.handleJoin(ctx, c, env)
	case roomDomain.TypeLeaveRoom:
		h.leaveRoom(ctx, c)
	case roomDomain.TypeVideoUpdate:
		h.handleVideoUpdate(c, env)
	case roomDomain.TypeSendMessage:
		h.handleChat(c, env)
	case roomDomain.TypeStatusUpdate:
		h.handleStatus(c, env)
	case roomDomain.TypeTimerStart, roomDomain.TypeTimerStop:
		h.handleTimer(c, env)
	default:
		c.sendError(env.RoomID, "unknown message type")
	}
}

func (h *Hub) handleJoin(ctx context.Context, c *Client, env roomDomain.Envelope) {
	var payload roomDomain.JoinRoomPayload
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			c.sendError(env.RoomID, "malformed payload")
			return
		}
	}

	// a socket belongs to at most one room; switching rooms performs the
	// full leave transition for the previous one first
	h.mu.Lock()
	inRoom := c.roomID != 0
	h.mu.Unlock()
	if inRoom {
		h.leaveRoom(ctx, c)
	}

	info, err := h.roomUC.ValidateJoin(ctx, env.RoomID, payload.Password)
	if err != nil {
		c.sendError(env.RoomID, joinErrorMessage(err))
		return
	}

	h.mu.Lock()
	lr, ok := h.rooms[env.RoomID]
	if !ok {
		// EMPTY -> ACTIVE: the first joiner becomes host
		lr = &liveRoom{
			info:    info,
			hostID:  c.userID,
			clients: make(map[*Client]bool),
		}
		h.rooms[env.RoomID] = lr
	}
	lr.clients[c] = true
	c.roomID = env.RoomID

	state := roomDomain.RoomStatePayload{
		Room:         lr.info,
		Participants: h.participantsLocked(lr),
		Video:        lr.video,
	}
	state.Room.HostID = lr.hostID
	joined := roomDomain.UserEventPayload{
		UserID:       c.userID,
		Username:     c.username,
		Participants: len(lr.clients),
	}
	recipients := h.recipientsLocked(lr)
	becameHost := lr.hostID == c.userID && !ok
	h.mu.Unlock()

	if becameHost {
		if err := h.roomUC.SetHost(ctx, env.RoomID, c.userID); err != nil {
			h.log.Errorf("failed to persist host for room %d: %v", env.RoomID, err)
		}
	}

	h.broadcast(recipients, roomDomain.OutEnvelope{
		Type:      roomDomain.TypeUserJoined,
		RoomID:    env.RoomID,
		Payload:   joined,
		Timestamp: time.Now(),
	})
	c.send(roomDomain.OutEnvelope{
		Type:      roomDomain.TypeRoomState,
		RoomID:    env.RoomID,
		Payload:   state,
		Timestamp: time.Now(),
	})

	h.log.Infof("user %s joined room %d", c.userID, env.RoomID)
}

// leaveRoom is the single authoritative ACTIVE->... transition used by
// LEAVE_ROOM, socket close and the liveness monitor. Calling it for a
// client that is not in a room is a no-op, so a terminated socket can not
// double-broadcast USER_LEFT.
func (h *Hub) leaveRoom(ctx context.Context, c *Client) {
	h.mu.Lock()
	roomID := c.roomID
	if roomID == 0 {
		h.mu.Unlock()
		return
	}
	lr, ok := h.rooms[roomID]
	if !ok || !lr.clients[c] {
		c.roomID = 0
		h.mu.Unlock()
		return
	}

	delete(lr.clients, c)
	c.roomID = 0

	left := roomDomain.UserEventPayload{
		UserID:       c.userID,
		Username:     c.username,
		Participants: len(lr.clients),
	}

	var newHostID string
	roomEmpty := len(lr.clients) == 0
	if roomEmpty {
		// ACTIVE -> EMPTY
		delete(h.rooms, roomID)
	} else if lr.hostID == c.userID {
		// host failover: promote an arbitrary remaining participant
		for other := range lr.clients {
			newHostID = other.userID
			break
		}
		lr.hostID = newHostID
	}
	recipients := h.recipientsLocked(lr)
	h.mu.Unlock()

	h.broadcast(recipients, roomDomain.OutEnvelope{
		Type:      roomDomain.TypeUserLeft,
		RoomID:    roomID,
		Payload:   left,
		Timestamp: time.Now(),
	})

	if newHostID != "" {
		if err := h.roomUC.SetHost(ctx, roomID, newHostID); err != nil {
			h.log.Errorf("failed to persist host for room %d: %v", roomID, err)
		}
		h.broadcast(recipients, roomDomain.OutEnvelope{
			Type:      roomDomain.TypeHostChanged,
			RoomID:    roomID,
			Payload:   roomDomain.HostChangedPayload{NewHostID: newHostID},
			Timestamp: time.Now(),
		})
	}

	if roomEmpty {
		if err := h.roomUC.EndRoom(ctx, roomID); err != nil {
			h.log.Errorf("failed to mark room %d ended: %v", roomID, err)
		}
		h.log.Infof("room %d is empty, ended", roomID)
	}
}

func (h *Hub) handleVideoUpdate(c *Client, env roomDomain.Envelope) {
	var payload roomDomain.VideoUpdatePayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		c.sendError(env.RoomID, "malformed payload")
		return
	}

	h.mu.Lock()
	lr, roomID, err := h.roomOfLocked(c)
	if err == nil && lr.hostID != c.userID {
		err = errs.ErrNotRoomHost
	}
	if err != nil {
		h.mu.Unlock()
		c.sendError(env.RoomID, err.Error())
		return
	}
	// state replaced wholesale, stamped at receipt time to ignore client
	// clock skew
	lr.video = roomDomain.VideoState{
		CurrentTime: payload.CurrentTime,
		IsPlaying:   payload.IsPlaying,
		UpdatedAt:   time.Now(),
	}
	video := lr.video
	recipients := h.recipientsLocked(lr)
	h.mu.Unlock()

	h.broadcast(recipients, roomDomain.OutEnvelope{
		Type:      roomDomain.TypeVideoStateUpdated,
		RoomID:    roomID,
		Payload:   video,
		Timestamp: time.Now(),
	})
}

func (h *Hub) handleChat(c *Client, env roomDomain.Envelope) {
	var payload roomDomain.ChatPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		c.sendError(env.RoomID, "malformed payload")
		return
	}

	h.mu.Lock()
	lr, roomID, err := h.roomOfLocked(c)
	if err != nil {
		h.mu.Unlock()
		c.sendError(env.RoomID, err.Error())
		return
	}
	recipients := h.recipientsLocked(lr)
	h.mu.Unlock()

	h.broadcast(recipients, roomDomain.OutEnvelope{
		Type:   roomDomain.TypeMessage,
		RoomID: roomID,
		Payload: roomDomain.ChatBroadcastPayload{
			UserID:      c.userID,
			Username:    c.username,
			Content:     payload.Content,
			MessageType: payload.MessageType,
			SentAt:      time.Now(),
		},
		Timestamp: time.Now(),
	})
}

func (h *Hub) handleStatus(c *Client, env roomDomain.Envelope) {
	var payload roomDomain.StatusPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		c.sendError(env.RoomID, "malformed payload")
		return
	}

	h.mu.Lock()
	lr, roomID, err := h.roomOfLocked(c)
	if err != nil {
		h.mu.Unlock()
		c.sendError(env.RoomID, err.Error())
		return
	}
	recipients := h.recipientsLocked(lr)
	h.mu.Unlock()

	h.broadcast(recipients, roomDomain.OutEnvelope{
		Type:   roomDomain.TypeStatusUpdated,
		RoomID: roomID,
		Payload: roomDomain.StatusBroadcastPayload{
			UserID: c.userID,
			Status: payload.Status,
		},
		Timestamp: time.Now(),
	})
}

// handleTimer covers TIMER_START and TIMER_STOP. Host-only, same as video
// control.
func (h *Hub) handleTimer(c *Client, env roomDomain.Envelope) {
	var payload roomDomain.TimerPayload
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			c.sendError(env.RoomID, "malformed payload")
			return
		}
	}

	h.mu.Lock()
	lr, roomID, err := h.roomOfLocked(c)
	if err == nil && lr.hostID != c.userID {
		err = errs.ErrNotRoomHost
	}
	if err != nil {
		h.mu.Unlock()
		c.sendError(env.RoomID, err.Error())
		return
	}
	recipients := h.recipientsLocked(lr)
	h.mu.Unlock()

	outType := roomDomain.TypeTimerStarted
	if env.Type == roomDomain.TypeTimerStop {
		outType = roomDomain.TypeTimerStopped
	}
	h.broadcast(recipients, roomDomain.OutEnvelope{
		Type:   outType,
		RoomID: roomID,
		Payload: roomDomain.TimerBroadcastPayload{
			UserID:   c.userID,
			Duration: payload.Duration,
			Elapsed:  payload.Elapsed,
		},
		Timestamp: time.Now(),
	})
}

// RunLivenessMonitor runs Sweep each period until the context is cancelled.
func (h *Hub) RunLivenessMonitor(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Sweep(ctx)
		}
	}
}

// Sweep pings every open socket and clears its liveness flag; a socket whose
// flag is still clear from the previous sweep missed its pong and is
// terminated through the regular leave transition, so a crashed client frees
// its room.
func (h *Hub) Sweep(ctx context.Context) {
	h.mu.Lock()
	var dead, live []*Client
	for c := range h.clients {
		if !c.alive {
			dead = append(dead, c)
			continue
		}
		c.alive = false
		live = append(live, c)
	}
	h.mu.Unlock()

	for _, c := range dead {
		h.log.Infof("terminating unresponsive socket of user %s", c.userID)
		h.Disconnect(ctx, c)
	}
	for _, c := range live {
		if err := c.ping(); err != nil {
			h.Disconnect(ctx, c)
		}
	}
}

// ParticipantCount reports the registered socket count of a room, 0 when
// the room is EMPTY.
func (h *Hub) ParticipantCount(roomID int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	lr, ok := h.rooms[roomID]
	if !ok {
		return 0
	}
	return len(lr.clients)
}

// HostID returns the live host of a room, "" when the room is EMPTY.
func (h *Hub) HostID(roomID int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	lr, ok := h.rooms[roomID]
	if !ok {
		return ""
	}
	return lr.hostID
}

func (h *Hub) roomOfLocked(c *Client) (*liveRoom, int, error) {
	if c.roomID == 0 {
		return nil, 0, errs.ErrNotInRoom
	}
	lr, ok := h.rooms[c.roomID]
	if !ok {
		return nil, 0, errs.ErrNotInRoom
	}
	return lr, c.roomID, nil
}

func (h *Hub) participantsLocked(lr *liveRoom) []roomDomain.Participant {
	participants := make([]roomDomain.Participant, 0, len(lr.clients))
	for member := range lr.clients {
		participants = append(participants, roomDomain.Participant{
			UserID:   member.userID,
			Username: member.username,
			Status:   "active",
		})
	}
	return participants
}

func (h *Hub) recipientsLocked(lr *liveRoom) []*Client {
	recipients := make([]*Client, 0, len(lr.clients))
	for member := range lr.clients {
		recipients = append(recipients, member)
	}
	return recipients
}

func (h *Hub) broadcast(recipients []*Client, env roomDomain.OutEnvelope) {
	for _, c := range recipients {
		c.send(env)
	}
}

func joinErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errs.ErrRoomNotFound):
		return "room not found"
	case errors.Is(err, errs.ErrRoomEnded):
		return "room has ended"
	case errors.Is(err, errs.ErrWrongRoomPassword):
		return "wrong room password"
	default:
		return "failed to join room"
	}
}
