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
	RegisterProfileRequest struct {
		IGN string `json:"ign"`
		UID string `json:"uid"`
	}

	ProfileResponse struct {
		Profile models.Profile `json:"profile"`
	}

	ErrorResponse struct {
		Error   string `json:"error"`
		Details string `json:"details,omitempty"`
	}
)

type ProfileHandler struct {
	profileService *service.ProfileService
	log            *slog.Logger
}

func NewProfileHandler(profileService *service.ProfileService, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log,
	}
}

func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	const op = "handler.profile.Register"

	log := h.log.With(
		slog.String("op", op),
	)

	var req RegisterProfileRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", sl.Err(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	profile, err := h.profileService.Register(r.Context(), req.IGN, req.UID)
	if err != nil {
		log.Error("failed to register profile", sl.Err(err))

		switch {
		case errors.Is(err, apperrors.ErrIGNRequired), errors.Is(err, apperrors.ErrInvalidUID):
			h.writeError(w, http.StatusBadRequest, "invalid profile fields", err)
		case errors.Is(err, apperrors.ErrUIDTaken):
			h.writeError(w, http.StatusConflict, "this UID is already taken", err)
		default:
			h.writeError(w, http.StatusInternalServerError, "failed to register profile", err)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, ProfileResponse{Profile: *profile})
	log.Info("profile registered successfully")
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handler.profile.Get"

	log := h.log.With(
		slog.String("op", op),
	)

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		log.Error("user_id is required")
		h.writeError(w, http.StatusBadRequest, "user_id query parameter is required", nil)
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		log.Error("failed to get profile", sl.Err(err))

		if errors.Is(err, apperrors.ErrPlayerNotFound) {
			h.writeError(w, http.StatusNotFound, "player not found", err)
		} else {
			h.writeError(w, http.StatusInternalServerError, "failed to get profile", err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, ProfileResponse{Profile: *profile})
	log.Info("profile retrieved successfully")
}

func (h *ProfileHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode JSON response", sl.Err(err))
	}
}

func (h *ProfileHandler) writeError(w http.ResponseWriter, status int, message string, err error) {
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
