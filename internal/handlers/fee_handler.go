package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"mess-backend/internal/auth"
	"mess-backend/internal/models"
	"mess-backend/internal/services"
)

const feesPage = "/admin/add-monthly-fees"

// FeeHandler serves the monthly fee definitions page.
type FeeHandler struct {
	Ledger ledgerManager
	render *Renderer
}

func NewFeeHandler(ledger ledgerManager, render *Renderer) *FeeHandler {
	return &FeeHandler{Ledger: ledger, render: render}
}

// FeesPage lists every fee with its outstanding amount and the grand total.
func (h *FeeHandler) FeesPage(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Ledger.FeeSummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render.Render(w, r, "admin_add_fees.html", "Monthly Fees", summary)
}

// AddFees issues a fee to every current student. A period that already
// has a fee goes back to the page with a flash message.
func (h *FeeHandler) AddFees(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	period, err := formPeriod(r.PostFormValue("month"), r.PostFormValue("year"))
	if err != nil {
		http.Error(w, "Invalid input data", http.StatusBadRequest)
		return
	}

	fee, err := h.Ledger.IssueFee(r.Context(), actorFrom(r), period, r.PostFormValue("fee_amount"))
	switch {
	case errors.Is(err, services.ErrFeeExists):
		h.render.Redirect(w, r, feesPage, auth.FlashError, "Fees for this month already exist")
		return
	case err != nil:
		writeError(w, r, err)
		return
	}

	h.render.Redirect(w, r, feesPage, auth.FlashSuccess,
		fmt.Sprintf("Issued %s fee to %d students", fee.Period, fee.PendingCount))
}

// DeleteFees retracts a fee from every student.
func (h *FeeHandler) DeleteFees(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "feeId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	fee, err := h.Ledger.RetractFee(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render.Redirect(w, r, feesPage, auth.FlashSuccess, fmt.Sprintf("Deleted %s fee", fee.Period))
}

// UpdateFeeAmount changes the amount of an issued period. The period comes
// from month/year fields or a "January 2024" fee_key. When a student_id is
// given the admin is returned to that student's page.
func (h *FeeHandler) UpdateFeeAmount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	var (
		period models.FeePeriod
		err    error
	)
	if key := strings.TrimSpace(r.FormValue("fee_key")); key != "" {
		period, err = models.ParseFeePeriod(key)
	} else {
		period, err = formPeriod(r.FormValue("month"), r.FormValue("year"))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Ledger.UpdateFeeAmount(r.Context(), actorFrom(r), period, r.FormValue("new_fee_amount")); err != nil {
		writeError(w, r, err)
		return
	}

	back := feesPage
	if id, err := strconv.Atoi(r.FormValue("student_id")); err == nil && id > 0 {
		back = studentPage(id)
	}
	h.render.Redirect(w, r, back, auth.FlashSuccess, fmt.Sprintf("%s fee amount updated", period))
}
