package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wellness-tracker/apiserver/internal/logger"
	"github.com/wellness-tracker/apiserver/internal/services"
	"github.com/wellness-tracker/apiserver/internal/store"
)

// RemindersHandler reads and writes the per-user reminder preference blob.
// The server never interprets the blob; validation is the client's concern.
type RemindersHandler struct {
	userService *services.UserService
}

// NewRemindersHandler constructs a handler with the provided service.
func NewRemindersHandler(userService *services.UserService) *RemindersHandler {
	return &RemindersHandler{userService: userService}
}

// RemindersRouter registers reminder preference routes on the given router.
func RemindersRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewRemindersHandler(userService)

	r.Use(authMiddleware)
	r.Get("/", handler.GetPreferences)
	r.Put("/", handler.SetPreferences)
}

func (h *RemindersHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	prefs, err := h.userService.GetReminderPreferences(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.FromRequest(r).Err(err).Msg("failed to read reminder preferences")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, RemindersResponse{ReminderPreferences: prefs})
}

func (h *RemindersHandler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req RemindersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prefs, err := h.userService.SetReminderPreferences(r.Context(), userID, req.ReminderPreferences)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.FromRequest(r).Err(err).Msg("failed to update reminder preferences")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, RemindersResponse{ReminderPreferences: prefs})
}

type RemindersRequest struct {
	ReminderPreferences json.RawMessage `json:"reminderPreferences"`
}

type RemindersResponse struct {
	ReminderPreferences json.RawMessage `json:"reminderPreferences"`
}
