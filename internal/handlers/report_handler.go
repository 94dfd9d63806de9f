package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mess-backend/internal/auth"
	"mess-backend/internal/models"
	"mess-backend/internal/services"
)

type reportGenerator interface {
	PendingReport(ctx context.Context, period models.FeePeriod) (*services.Report, error)
	AllStudentsReport(ctx context.Context) (*services.Report, error)
	BasicStudentsReport(ctx context.Context) (*services.Report, error)
	CollectionReport(ctx context.Context, startDate, endDate string) (*services.Report, error)
}

type receiptGenerator interface {
	Download(ctx context.Context, studentID int, period models.FeePeriod) (*services.Report, error)
}

const collectionPage = "/admin/generate-fees-collection-report"

// ReportHandler serves the admin spreadsheet and receipt downloads.
type ReportHandler struct {
	Reports  reportGenerator
	Receipts receiptGenerator
	render   *Renderer
}

func NewReportHandler(reports reportGenerator, receipts receiptGenerator, render *Renderer) *ReportHandler {
	return &ReportHandler{Reports: reports, Receipts: receipts, render: render}
}

// PendingReport handles GET /admin/generate-report?month=&year=
func (h *ReportHandler) PendingReport(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	year := strings.TrimSpace(r.URL.Query().Get("year"))
	if month == "" || year == "" {
		http.Error(w, "Month and year are required", http.StatusBadRequest)
		return
	}
	period, err := formPeriod(month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	report, err := h.Reports.PendingReport(ctx, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendDownload(w, report)
}

func (h *ReportHandler) AllStudents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	report, err := h.Reports.AllStudentsReport(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendDownload(w, report)
}

func (h *ReportHandler) BasicStudents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	report, err := h.Reports.BasicStudentsReport(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendDownload(w, report)
}

func (h *ReportHandler) CollectionReportPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "admin_collection_report.html", "Fee Collection Report", nil)
}

// CollectionReport handles the date range form. A bad range goes back to
// the form with a flash message.
func (h *ReportHandler) CollectionReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	report, err := h.Reports.CollectionReport(ctx, r.PostFormValue("start_date"), r.PostFormValue("end_date"))
	switch {
	case services.IsInvalidInput(err):
		h.render.Redirect(w, r, collectionPage, auth.FlashError, err.Error())
		return
	case err != nil:
		writeError(w, r, err)
		return
	}
	sendDownload(w, report)
}

// DownloadReceipt handles GET /admin/download-receipt/{studentId}/{month}/{year}
func (h *ReportHandler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "studentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := pathPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.Receipts.Download(r.Context(), id, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sendDownload(w, report)
}
