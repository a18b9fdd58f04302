package session

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"streak_hub/internal/bootstrap"
	"streak_hub/internal/delivery/auth"
	"streak_hub/internal/domain/progression"
	errs "streak_hub/internal/errors"
	"streak_hub/internal/httpresponse"
	progressionUC "streak_hub/internal/usecase/progression"
	"streak_hub/internal/utils"
)

// SessionHandler owns the gamification surface: session logging, the
// leaderboard and the privacy flags that gate it.
type SessionHandler struct {
	cfg         bootstrap.Config
	log         *zap.SugaredLogger
	progression *progressionUC.ProgressionUseCase
	authHandler *auth.AuthHandler
}

func NewSessionHandler(cfg bootstrap.Config, log *zap.SugaredLogger, uc *progressionUC.ProgressionUseCase, authHandler *auth.AuthHandler) *SessionHandler {
	return &SessionHandler{
		cfg:         cfg,
		log:         log,
		progression: uc,
		authHandler: authHandler,
	}
}

// HandleLogSession godoc
// @Summary Log a completed session
// @Description Applies streak/XP/achievement rules for the current user
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} progression.SessionResponse
// @Failure 400 {object} httpresponse.ErrorResponse
// @Failure 401 {object} httpresponse.ErrorResponse
// @Router /api/session [post]
func (h *SessionHandler) HandleLogSession(w http.ResponseWriter, r *http.Request) {
	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	var payload progression.SessionPayload
	if err := utils.DecodeJSONRequest(r, &payload); err != nil {
		h.log.Error("LogSession: JSON decode error: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc})
		return
	}

	resp, err := h.progression.LogSession(r.Context(), userID, payload)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			httpresponse.WriteResponseWithStatus(w, http.StatusNotFound,
				httpresponse.ErrorResponse{ErrorDescription: err.Error()})
			return
		}
		h.log.Errorf("LogSession: %v", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}

	h.log.Infof("session logged for %s: +%d xp, streak %d", userID, resp.XPGained, resp.User.CurrentStreak)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

// HandleLeaderboard godoc
// @Summary Global leaderboard
// @Description Visible users ordered by streak, then XP, both descending
// @Tags leaderboard
// @Produce json
// @Success 200 {array} progression.LeaderboardRow
// @Router /api/leaderboard [get]
func (h *SessionHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	size := h.cfg.LeaderboardSize
	if size <= 0 {
		size = 50
	}

	rows, err := h.progression.Leaderboard(r.Context(), size)
	if err != nil {
		h.log.Errorf("Leaderboard: %v", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, rows)
}

// HandleUpdatePrivacy godoc
// @Summary Update visibility flags
// @Tags user
// @Accept json
// @Produce json
// @Success 200 {object} user.User
// @Failure 401 {object} httpresponse.ErrorResponse
// @Router /api/user/privacy [patch]
func (h *SessionHandler) HandleUpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	var upd progressionUC.PrivacyUpdate
	if err := utils.DecodeJSONRequest(r, &upd); err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc})
		return
	}

	u, err := h.progression.UpdatePrivacy(r.Context(), userID, upd)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			httpresponse.WriteResponseWithStatus(w, http.StatusNotFound,
				httpresponse.ErrorResponse{ErrorDescription: err.Error()})
			return
		}
		h.log.Errorf("UpdatePrivacy: %v", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, u)
}

// HandleAchievements godoc
// @Summary Achievements of the current user
// @Tags user
// @Produce json
// @Success 200 {array} user.Achievement
// @Failure 401 {object} httpresponse.ErrorResponse
// @Router /api/achievements [get]
func (h *SessionHandler) HandleAchievements(w http.ResponseWriter, r *http.Request) {
	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	list, err := h.progression.GetAchievements(r.Context(), userID)
	if err != nil {
		h.log.Errorf("Achievements: %v", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, list)
}
