package handlers

import (
	"context"
	"net/http"

	"mess-backend/internal/logger"
	"mess-backend/internal/models"
	"mess-backend/pkg/utils"
)

type actionLogLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.AdminActionLog, error)
}

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

type AdminActionLogHandler struct {
	Repo actionLogLister
}

func NewAdminActionLogHandler(repo actionLogLister) *AdminActionLogHandler {
	return &AdminActionLogHandler{Repo: repo}
}

// ListActionLogs returns the most recent admin actions, newest first.
func (h *AdminActionLogHandler) ListActionLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	logs, err := h.Repo.ListRecent(r.Context(), limit)
	if err != nil {
		logger.For("http").Error().Err(err).Msg("failed to list admin action logs")
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve admin action logs")
		return
	}
	if logs == nil {
		logs = []models.AdminActionLog{}
	}
	utils.JSON(w, http.StatusOK, logs)
}
