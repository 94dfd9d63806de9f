package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"mess-backend/internal/logger"
	"mess-backend/internal/models"
	"mess-backend/internal/repositories"
	"mess-backend/internal/services"
	"mess-backend/pkg/utils"
)

type ledgerViewer interface {
	StudentLedger(ctx context.Context, studentID int) (*models.StudentLedger, error)
}

type onlinePayments interface {
	IsEnabled() bool
	CreateOrder(ctx context.Context, studentID int, period models.FeePeriod) (*models.CheckoutOrder, error)
	VerifyPayment(ctx context.Context, studentID int, orderID, paymentID, signature string) (*repositories.MarkPaidResult, error)
}

// StudentPortalHandler serves the logged-in student's own pages. The
// student id always comes from the session, never from the URL.
type StudentPortalHandler struct {
	Ledger   ledgerViewer
	Receipts receiptGenerator
	Payments onlinePayments
	render   *Renderer
}

func NewStudentPortalHandler(ledger ledgerViewer, receipts receiptGenerator, payments onlinePayments, render *Renderer) *StudentPortalHandler {
	return &StudentPortalHandler{Ledger: ledger, Receipts: receipts, Payments: payments, render: render}
}

type studentDashboardView struct {
	*models.StudentLedger
	OnlinePayments bool
}

func (h *StudentPortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.Ledger.StudentLedger(r.Context(), principalID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render.Render(w, r, "student_dashboard.html", "My Mess Fees", studentDashboardView{
		StudentLedger:  ledger,
		OnlinePayments: h.Payments != nil && h.Payments.IsEnabled(),
	})
}

// DownloadReceipt handles GET /student/download-receipt/{month}/{year}
func (h *StudentPortalHandler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	period, err := pathPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.Receipts.Download(r.Context(), principalID(r), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendDownload(w, report)
}

// CreateOrder opens a Razorpay order for a pending month and returns the
// checkout parameters as JSON.
func (h *StudentPortalHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	period, err := pathPeriod(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.Payments.CreateOrder(r.Context(), principalID(r), period)
	if err != nil {
		h.paymentError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifyPayment accepts the Razorpay checkout callback as JSON or a form
// post and settles the fee.
func (h *StudentPortalHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		req = verifyPaymentRequest{
			OrderID:   r.PostFormValue("razorpay_order_id"),
			PaymentID: r.PostFormValue("razorpay_payment_id"),
			Signature: r.PostFormValue("razorpay_signature"),
		}
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		utils.RespondError(w, http.StatusBadRequest, "order id, payment id and signature are required")
		return
	}

	res, err := h.Payments.VerifyPayment(r.Context(), principalID(r), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		h.paymentError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"status":         "paid",
		"receipt_number": res.ReceiptNumber,
	})
}

func (h *StudentPortalHandler) paymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOnlinePaymentsOff):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSignatureMismatch):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case services.IsNotFound(err):
		utils.RespondError(w, http.StatusNotFound, "No pending fee for this month")
	case services.IsInvalidInput(err):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.For("http").Error().Err(err).Msg("online payment failed")
		utils.RespondError(w, http.StatusInternalServerError, "Server Error")
	}
}
