package room

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"streak_hub/internal/bootstrap"
	"streak_hub/internal/delivery/auth"
	roomDomain "streak_hub/internal/domain/room"
	"streak_hub/internal/httpresponse"
	roomuc "streak_hub/internal/usecase/room"
	"streak_hub/internal/utils"
)

type RoomHandler struct {
	cfg         bootstrap.Config
	log         *zap.SugaredLogger
	roomUC      *roomuc.RoomUseCase
	hub         *Hub
	authHandler *auth.AuthHandler
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewRoomHandler(cfg bootstrap.Config, log *zap.SugaredLogger, store roomuc.RoomStore, authHandler *auth.AuthHandler) *RoomHandler {
	roomUC := roomuc.NewRoomUseCase(store)
	return &RoomHandler{
		cfg:         cfg,
		log:         log,
		roomUC:      roomUC,
		hub:         NewHub(log, roomUC),
		authHandler: authHandler,
	}
}

func (h *RoomHandler) Hub() *Hub {
	return h.hub
}

func (h *RoomHandler) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	var req roomDomain.CreateRoomRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Error("CreateRoom: JSON decode error: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc})
		return
	}

	created, err := h.roomUC.CreateRoom(r.Context(), req, userID)
	if err != nil {
		h.log.Error("CreateRoom: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}

	h.log.Infof("room %d created", created.ID)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, roomDomain.RoomCreateResponse{Room: created})
}

func (h *RoomHandler) HandleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomUC.ListActiveRooms(r.Context())
	if err != nil {
		h.log.Error("ListRooms: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusInternalServerError,
			httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, rooms)
}

func (h *RoomHandler) HandleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: "room id must be a number"})
		return
	}

	found, err := h.roomUC.GetRoomByID(r.Context(), roomID)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusNotFound,
			httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, found)
}

// HandleSocket upgrades the connection and runs the read loop. One socket
// per client session; JOIN_ROOM and everything after it flows through the
// hub.
func (h *RoomHandler) HandleSocket(w http.ResponseWriter, r *http.Request) {
	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	username := userID
	if u, err := h.authHandler.UserByID(r.Context(), userID); err == nil {
		username = u.Username
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("upgrade error: ", err)
		return
	}

	client := h.hub.Register(conn, userID, username)
	defer h.hub.Disconnect(r.Context(), client)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("socket of %s closed unexpectedly: %v", userID, err)
			}
			return
		}

		var env roomDomain.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			client.sendError(0, "malformed message")
			continue
		}
		h.hub.HandleMessage(r.Context(), client, env)
	}
}
