package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"team-manager/internal/domain/models"
	"team-manager/internal/lib/logger/sl"
	"team-manager/internal/service"
)

type (
	ListNotificationsResponse struct {
		Notifications []models.Notification `json:"notifications"`
	}

	UnreadCountResponse struct {
		Count int `json:"count"`
	}

	RespondRequest struct {
		UserID         string `json:"user_id"`
		NotificationID string `json:"notification_id"`
		Kind           string `json:"kind"`
	}

	MarkReadRequest struct {
		UserID         string `json:"user_id"`
		NotificationID string `json:"notification_id"`
	}

	AcceptResponse struct {
		Status   string `json:"status"`
		TeamName string `json:"team_name,omitempty"`
		Player   string `json:"player,omitempty"`
	}
)

type NotificationHandler struct {
	notifService *service.NotificationService
	teamService  *service.TeamService
	log          *slog.Logger
}

func NewNotificationHandler(
	notifService *service.NotificationService,
	teamService *service.TeamService,
	log *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifService: notifService,
		teamService:  teamService,
		log:          log,
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handler.notification.List"

	log := h.log.With(
		slog.String("op", op),
	)

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		log.Error("user_id is required")
		h.writeError(w, http.StatusBadRequest, "user_id query parameter is required", nil)
		return
	}

	notifications, err := h.notifService.List(r.Context(), userID)
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		h.writeError(w, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}

	h.writeJSON(w, http.StatusOK, ListNotificationsResponse{Notifications: notifications})
	log.Info("notifications listed", slog.Int("count", len(notifications)))
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	const op = "handler.notification.UnreadCount"

	log := h.log.With(
		slog.String("op", op),
	)

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		log.Error("user_id is required")
		h.writeError(w, http.StatusBadRequest, "user_id query parameter is required", nil)
		return
	}

	count, err := h.notifService.UnreadCount(r.Context(), userID)
	if err != nil {
		log.Error("failed to count unread notifications", sl.Err(err))
		h.writeError(w, http.StatusInternalServerError, "failed to count unread notifications", err)
		return
	}

	h.writeJSON(w, http.StatusOK, UnreadCountResponse{Count: count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	const op = "handler.notification.MarkRead"

	log := h.log.With(
		slog.String("op", op),
	)

	var req MarkReadRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", sl.Err(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.UserID == "" || req.NotificationID == "" {
		log.Error("user_id and notification_id are required")
		h.writeError(w, http.StatusBadRequest, "user_id and notification_id are required", nil)
		return
	}

	if err := h.notifService.MarkRead(r.Context(), req.UserID, req.NotificationID); err != nil {
		log.Error("failed to mark notification read", sl.Err(err))
		h.writeError(w, teamErrorStatus(err), "failed to mark notification read", err)
		return
	}

	h.writeJSON(w, http.StatusOK, StatusResponse{Status: "marked read"})
}

// Accept consumes an actionable notification. The kind decides which side of
// the handshake completes: a team_invite joins the caller, a team_request
// joins the requesting player.
func (h *NotificationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	const op = "handler.notification.Accept"

	log := h.log.With(
		slog.String("op", op),
	)

	var req RespondRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", sl.Err(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.UserID == "" || req.NotificationID == "" {
		log.Error("user_id and notification_id are required")
		h.writeError(w, http.StatusBadRequest, "user_id and notification_id are required", nil)
		return
	}

	switch req.Kind {
	case models.NotificationKindTeamInvite:
		team, err := h.teamService.AcceptInvite(r.Context(), req.UserID, req.NotificationID)
		if err != nil {
			log.Error("failed to accept invitation", sl.Err(err))
			h.writeError(w, teamErrorStatus(err), "failed to accept invitation", err)
			return
		}

		h.writeJSON(w, http.StatusOK, AcceptResponse{
			Status:   "joined team",
			TeamName: team.Name,
		})
		log.Info("invitation accepted")

	case models.NotificationKindTeamRequest:
		player, err := h.teamService.AcceptRequest(r.Context(), req.UserID, req.NotificationID)
		if err != nil {
			log.Error("failed to accept join request", sl.Err(err))
			h.writeError(w, teamErrorStatus(err), "failed to accept join request", err)
			return
		}

		h.writeJSON(w, http.StatusOK, AcceptResponse{
			Status: "player added to team",
			Player: player.IGN,
		})
		log.Info("join request accepted")

	default:
		log.Error("unknown notification kind", slog.String("kind", req.Kind))
		h.writeError(w, http.StatusBadRequest, "kind must be team_invite or team_request", nil)
	}
}

func (h *NotificationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	const op = "handler.notification.Decline"

	log := h.log.With(
		slog.String("op", op),
	)

	var req RespondRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", sl.Err(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.UserID == "" || req.NotificationID == "" {
		log.Error("user_id and notification_id are required")
		h.writeError(w, http.StatusBadRequest, "user_id and notification_id are required", nil)
		return
	}

	// Declining an invite and declining a request both just consume the
	// notification; no membership changes either way.
	var err error
	if req.Kind == models.NotificationKindTeamRequest {
		err = h.teamService.DeclineRequest(r.Context(), req.UserID, req.NotificationID)
	} else {
		err = h.teamService.DeclineInvite(r.Context(), req.UserID, req.NotificationID)
	}
	if err != nil {
		log.Error("failed to decline notification", sl.Err(err))
		h.writeError(w, teamErrorStatus(err), "failed to decline", err)
		return
	}

	h.writeJSON(w, http.StatusOK, StatusResponse{Status: "declined"})
	log.Info("notification declined")
}

func (h *NotificationHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode JSON response", sl.Err(err))
	}
}

func (h *NotificationHandler) writeError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResp := ErrorResponse{
		Error: message,
	}
	if err != nil {
		errorResp.Details = err.Error()
	}

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		h.log.Error("failed to encode error response", sl.Err(err))
	}
}
