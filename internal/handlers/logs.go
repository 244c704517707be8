package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wellness-tracker/apiserver/internal/logger"
	"github.com/wellness-tracker/apiserver/internal/services"
	"github.com/wellness-tracker/apiserver/internal/store"
	"github.com/wellness-tracker/apiserver/types"
)

// dateLayouts are the accepted formats for startDate/endDate query params.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// LogsHandler provides HTTP handlers for wellness logs.
type LogsHandler struct {
	logService *services.LogService
}

// NewLogsHandler constructs a handler with the provided service.
func NewLogsHandler(logService *services.LogService) *LogsHandler {
	return &LogsHandler{logService: logService}
}

// LogsRouter registers wellness log routes on the given router. Every route
// is guarded: the session middleware runs before any handler.
func LogsRouter(r chi.Router, logService *services.LogService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewLogsHandler(logService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListLogs)
	r.Post("/", handler.CreateLog)
	r.Put("/", handler.UpdateLog)
	r.Delete("/", handler.DeleteLog)
}

func (h *LogsHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req LogUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Type == "" || req.Value == 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	details, err := types.DecodeDetails(req.Type, req.Details)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log, err := h.logService.Create(r.Context(), types.WellnessLog{
		UserID:  userID,
		Type:    req.Type,
		Value:   req.Value,
		Details: details,
	})
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to create wellness log")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, log)
}

func (h *LogsHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter := parseLogFilter(r)

	logs, err := h.logService.List(r.Context(), userID, filter)
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to list wellness logs")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, logs)
}

func (h *LogsHandler) UpdateLog(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req LogUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ID == "" || req.Type == "" || req.Value == 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	details, err := types.DecodeDetails(req.Type, req.Details)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log, err := h.logService.Update(r.Context(), userID, types.WellnessLog{
		ID:      req.ID,
		Type:    req.Type,
		Value:   req.Value,
		Details: details,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Log not found or unauthorized")
			return
		}
		logger.FromRequest(r).Err(err).Msg("failed to update wellness log")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, log)
}

func (h *LogsHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing log ID")
		return
	}

	if err := h.logService.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Log not found or unauthorized")
			return
		}
		logger.FromRequest(r).Err(err).Msg("failed to delete wellness log")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Log deleted successfully"})
}

// LogUpsertRequest is the JSON body for create and update. ID is only
// meaningful on update; Date is accepted but ignored on create, where the
// server always stamps the current time.
type LogUpsertRequest struct {
	ID      string          `json:"id"`
	Type    types.LogType   `json:"type"`
	Value   float64         `json:"value"`
	Details json.RawMessage `json:"details"`
	Date    *time.Time      `json:"date,omitempty"`
}

// parseLogFilter builds the listing filter from query parameters. The date
// range applies only when both bounds are present, parseable, and ordered;
// anything else silently falls back to an unfiltered (owner-scoped) listing.
func parseLogFilter(r *http.Request) store.LogFilter {
	var filter store.LogFilter

	if rawType := strings.TrimSpace(r.URL.Query().Get("type")); rawType != "" {
		filter.Type = types.LogType(rawType)
	}

	start, startErr := parseDate(r.URL.Query().Get("startDate"))
	end, endErr := parseDate(r.URL.Query().Get("endDate"))
	if startErr == nil && endErr == nil && !start.After(end) {
		filter.Start = &start
		filter.End = &end
	}

	return filter
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unparseable date")
}
