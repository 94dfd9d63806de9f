package handlers

import (
	"context"
	"net/http"

	"mess-backend/internal/logger"
	"mess-backend/internal/models"
	"mess-backend/pkg/utils"
)

type onlinePaymentLister interface {
	List(ctx context.Context, status models.OnlinePaymentStatus, limit int) ([]models.OnlinePayment, error)
}

type OnlinePaymentHandler struct {
	Repo onlinePaymentLister
}

func NewOnlinePaymentHandler(repo onlinePaymentLister) *OnlinePaymentHandler {
	return &OnlinePaymentHandler{Repo: repo}
}

// ListOnlinePayments returns Razorpay orders as JSON. ?status=unsettled
// shows captured payments that still need a manual ledger entry.
func (h *OnlinePaymentHandler) ListOnlinePayments(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	var status models.OnlinePaymentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		if status, ok = models.ParseOnlinePaymentStatus(raw); !ok {
			utils.RespondError(w, http.StatusBadRequest, "status must be created, paid, failed or unsettled")
			return
		}
	}
	payments, err := h.Repo.List(r.Context(), status, limit)
	if err != nil {
		logger.For("http").Error().Err(err).Msg("failed to list online payments")
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve online payments")
		return
	}
	if payments == nil {
		payments = []models.OnlinePayment{}
	}
	utils.JSON(w, http.StatusOK, payments)
}
