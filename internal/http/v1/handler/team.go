package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"team-manager/internal/apperrors"
	"team-manager/internal/domain/models"
	"team-manager/internal/lib/logger/sl"
	"team-manager/internal/service"
)

type (
	CreateTeamRequest struct {
		UserID   string `json:"user_id"`
		TeamName string `json:"team_name"`
	}

	CreateTeamResponse struct {
		Team models.Team `json:"team"`
	}

	JoinByCodeRequest struct {
		UserID   string `json:"user_id"`
		TeamCode string `json:"team_code"`
	}

	JoinByCodeResponse struct {
		TeamName string `json:"team_name"`
		Status   string `json:"status"`
	}

	InviteRequest struct {
		UserID   string `json:"user_id"`
		PlayerID string `json:"player_id"`
	}

	RemoveMemberRequest struct {
		UserID   string `json:"user_id"`
		PlayerID string `json:"player_id"`
	}

	MemberActionRequest struct {
		UserID string `json:"user_id"`
	}

	GetTeamResponse struct {
		Team models.Team `json:"team"`
	}

	SearchCandidateResponse struct {
		Player models.Profile `json:"player"`
	}

	StatusResponse struct {
		Status string `json:"status"`
	}
)

type TeamHandler struct {
	teamService *service.TeamService
	log         *slog.Logger
}

func NewTeamHandler(teamService *service.TeamService, log *slog.Logger) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		log:         log,
	}
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.CreateTeam"

	log := h.log.With(
		slog.String("op", op),
	)

	var req CreateTeamRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", sl.Err(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.UserID == "" {
		log.Error("user_id is required")
		h.writeError(w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), req.UserID, req.TeamName)
	if err != nil {
		log.Error("failed to create team", sl.Err(err))
		h.writeError(w, teamErrorStatus(err), "failed to create team", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, CreateTeamResponse{Team: *team})
	log.Info("team created successfully")
}

func (h *TeamHandler) GetMyTeam(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.GetMyTeam"

	log := h.log.With(
		slog.String("op", op),
	)

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		log.Error("user_id is required")
		h.writeError(w, http.StatusBadRequest, "user_id query parameter is required", nil)
		return
	}

	team, err := h.teamService.GetMyTeam(r.Context(), userID)
	if err != nil {
		log.Error("failed to get team", sl.Err(err))
		h.writeError(w, teamErrorStatus(err), "failed to get team", err)
		return
	}

	h.writeJSON(w, http.StatusOK, GetTeamResponse{Team: *team})
	log.Info("team retrieved successfully")
}

func (h *TeamHandler) JoinByCode(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.JoinByCode"

	log := h.log.With(
		slog.String("op", op),
	)

	var req JoinByCodeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", sl.Err(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.UserID == "" || req.TeamCode == "" {
		log.Error("user_id and team_code are required")
		h.writeError(w, http.StatusBadRequest, "user_id and team_code are required", nil)
		return
	}

	team, err := h.teamService.RequestJoinByCode(r.Context(), req.UserID, req.TeamCode)
	if err != nil {
		log.Error("failed to request join", sl.Err(err))
		h.writeError(w, teamErrorStatus(err), "failed to request join", err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, JoinByCodeResponse{
		TeamName: team.Name,
		Status:   "join request sent to team admin",
	})
	log.Info("join request sent")
}

func (h *TeamHandler) SearchCandidate(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.SearchCandidate"

	log := h.log.With(
		slog.String("op", op),
	)

	userID := r.URL.Query().Get("user_id")
	uid := r.URL.Query().Get("uid")
	if userID == "" || uid == "" {
		log.Error("user_id and uid are required")
		h.writeError(w, http.StatusBadRequest, "user_id and uid query parameters are required", nil)
		return
	}

	player, err := h.teamService.SearchCandidate(r.Context(), userID, uid)
	if err != nil {
		log.Error("failed to search candidate", sl.Err(err))
		h.writeError(w, teamErrorStatus(err), "failed to search player", err)
		return
	}

	h.writeJSON(w, http.StatusOK, SearchCandidateResponse{Player: *player})
	log.Info("candidate found")
}

func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.Invite"

	log := h.log.With(
		slog.String("op", op),
	)

	var req InviteRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", sl.Err(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.UserID == "" || req.PlayerID == "" {
		log.Error("user_id and player_id are required")
		h.writeError(w, http.StatusBadRequest, "user_id and player_id are required", nil)
		return
	}

	if err := h.teamService.Invite(r.Context(), req.UserID, req.PlayerID); err != nil {
		log.Error("failed to send invitation", sl.Err(err))
		h.writeError(w, teamErrorStatus(err), "failed to send invitation", err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, StatusResponse{Status: "invitation sent"})
	log.Info("invitation sent")
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.RemoveMember"

	log := h.log.With(
		slog.String("op", op),
	)

	var req RemoveMemberRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", sl.Err(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.UserID == "" || req.PlayerID == "" {
		log.Error("user_id and player_id are required")
		h.writeError(w, http.StatusBadRequest, "user_id and player_id are required", nil)
		return
	}

	if err := h.teamService.RemoveMember(r.Context(), req.UserID, req.PlayerID); err != nil {
		log.Error("failed to remove member", sl.Err(err))
		h.writeError(w, teamErrorStatus(err), "failed to remove member", err)
		return
	}

	h.writeJSON(w, http.StatusOK, StatusResponse{Status: "member removed"})
	log.Info("member removed")
}

func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.Leave"

	log := h.log.With(
		slog.String("op", op),
	)

	var req MemberActionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", sl.Err(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.UserID == "" {
		log.Error("user_id is required")
		h.writeError(w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	if err := h.teamService.LeaveTeam(r.Context(), req.UserID); err != nil {
		log.Error("failed to leave team", sl.Err(err))
		h.writeError(w, teamErrorStatus(err), "failed to leave team", err)
		return
	}

	h.writeJSON(w, http.StatusOK, StatusResponse{Status: "left team"})
	log.Info("member left team")
}

func (h *TeamHandler) Dissolve(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.Dissolve"

	log := h.log.With(
		slog.String("op", op),
	)

	var req MemberActionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", sl.Err(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.UserID == "" {
		log.Error("user_id is required")
		h.writeError(w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	if err := h.teamService.DissolveTeam(r.Context(), req.UserID); err != nil {
		log.Error("failed to dissolve team", sl.Err(err))
		h.writeError(w, teamErrorStatus(err), "failed to dissolve team", err)
		return
	}

	h.writeJSON(w, http.StatusOK, StatusResponse{Status: "team dissolved"})
	log.Info("team dissolved")
}

// teamErrorStatus maps workflow error kinds to HTTP statuses.
func teamErrorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrTeamNotFound),
		errors.Is(err, apperrors.ErrPlayerNotFound),
		errors.Is(err, apperrors.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrAlreadyInTeam),
		errors.Is(err, apperrors.ErrNotInTeam),
		errors.Is(err, apperrors.ErrTeamFull),
		errors.Is(err, apperrors.ErrDuplicateInvite),
		errors.Is(err, apperrors.ErrSelfInvite),
		errors.Is(err, apperrors.ErrNotActionable):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrTeamNameRequired),
		errors.Is(err, apperrors.ErrIGNRequired),
		errors.Is(err, apperrors.ErrInvalidUID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *TeamHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode JSON response", sl.Err(err))
	}
}

func (h *TeamHandler) writeError(w http.ResponseWriter, status int, message string, err error) {
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
