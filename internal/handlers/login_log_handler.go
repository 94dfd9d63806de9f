package handlers

import (
	"context"
	"net/http"
	"strconv"

	"mess-backend/internal/logger"
	"mess-backend/internal/models"
	"mess-backend/pkg/utils"
)

type loginLogLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.LoginLog, error)
}

type LoginLogHandler struct {
	Repo loginLogLister
}

func NewLoginLogHandler(repo loginLogLister) *LoginLogHandler {
	return &LoginLogHandler{Repo: repo}
}

// ListLoginLogs returns recent admin and student logins as JSON.
func (h *LoginLogHandler) ListLoginLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	logs, err := h.Repo.ListRecent(r.Context(), limit)
	if err != nil {
		logger.For("http").Error().Err(err).Msg("failed to list login logs")
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve login logs")
		return
	}
	if logs == nil {
		logs = []models.LoginLog{}
	}
	utils.JSON(w, http.StatusOK, logs)
}

// limitParam reads ?limit=, defaulting to 100 and capping at 1000. It
// writes the 400 itself when the value is bad.
func limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLogLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "limit must be a positive number")
		return 0, false
	}
	return min(n, maxLogLimit), true
}
