package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"mess-backend/internal/config"
	"mess-backend/internal/logger"
	"mess-backend/internal/models"
	"mess-backend/internal/repositories"
	"mess-backend/internal/timeutil"
)

// ReceiptArchive stores a copy of every generated receipt.
type ReceiptArchive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Receipt page is 420x298pt with a 10pt margin.
const (
	receiptWidth   = 420.0
	receiptHeight  = 298.0
	receiptMargin  = 10.0
	receiptRowH    = 18.0
	receiptRowGap  = 6.0
	receiptDateFmt = "02/01/2006 03:04 PM"
)

type ReceiptService struct {
	Students *repositories.StudentRepository
	Fees     *repositories.MonthlyFeeRepository
	Ledger   *repositories.LedgerRepository
	Archive  ReceiptArchive

	contractor string
	hostel     string
	location   string
	signatory  string
}

func NewReceiptService(
	students *repositories.StudentRepository,
	fees *repositories.MonthlyFeeRepository,
	ledger *repositories.LedgerRepository,
	archive ReceiptArchive,
	cfg *config.Config,
) *ReceiptService {
	return &ReceiptService{
		Students:   students,
		Fees:       fees,
		Ledger:     ledger,
		Archive:    archive,
		contractor: cfg.Institution.Contractor,
		hostel:     cfg.Institution.HostelName,
		location:   cfg.Institution.Location,
		signatory:  cfg.Institution.Signatory,
	}
}

// Receipt collects what is printed for a student's paid period.
func (s *ReceiptService) Receipt(ctx context.Context, studentID int, period models.FeePeriod) (*models.Receipt, error) {
	student, err := s.Students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	fee, err := s.Fees.GetByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	entry, err := s.Ledger.PaidEntry(ctx, studentID, fee.ID)
	if err != nil {
		return nil, err
	}
	return &models.Receipt{
		Student:       *student,
		Period:        period,
		Amount:        fee.FeeAmount,
		ReceiptNumber: *entry.ReceiptNumber,
		PaymentMethod: *entry.PaymentMethod,
		PaidAt:        *entry.PaidAt,
	}, nil
}

// Download renders the receipt PDF and archives a copy when an archive is
// configured. Archive failures are logged, not returned.
func (s *ReceiptService) Download(ctx context.Context, studentID int, period models.FeePeriod) (*Report, error) {
	receipt, err := s.Receipt(ctx, studentID, period)
	if err != nil {
		return nil, err
	}
	data, err := s.RenderPDF(receipt)
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}

	if s.Archive != nil {
		key := fmt.Sprintf("%d/%02d/receipt_%d_student_%d.pdf",
			period.Year, int(period.Month), receipt.ReceiptNumber, studentID)
		archiveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := s.Archive.Put(archiveCtx, key, data, "application/pdf"); err != nil {
			logger.For("receipts").Warn().Err(err).Str("key", key).Msg("failed to archive receipt")
		}
		cancel()
	}

	return &Report{
		Filename:    ReceiptFilename(receipt),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// ReceiptFilename is receipt_<name>_<Month>_<Year>.pdf with spaces replaced.
func ReceiptFilename(r *models.Receipt) string {
	name := strings.Join(strings.Fields(r.Student.FullName), "_")
	return fmt.Sprintf("receipt_%s_%s_%d.pdf", name, r.Period.Month, r.Period.Year)
}

// RenderPDF draws the fixed-size receipt.
func (s *ReceiptService) RenderPDF(r *models.Receipt) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: receiptWidth, Ht: receiptHeight},
	})
	pdf.SetMargins(receiptMargin, receiptMargin, receiptMargin)
	pdf.SetAutoPageBreak(false, receiptMargin)
	pdf.AddPage()

	contentW := receiptWidth - 2*receiptMargin

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(receiptMargin, receiptMargin+4)
	pdf.CellFormat(contentW, 12, s.contractor, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 16, s.hostel, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 10, s.location, "", 1, "C", false, 0, "")

	y := pdf.GetY() + 4
	pdf.Line(receiptMargin, y, receiptWidth-receiptMargin, y)
	y += 10

	x := receiptMargin
	pdf.SetFontSize(8)
	cell := func(dx, w float64, text string, bold bool) {
		if bold {
			pdf.SetFont("Helvetica", "B", 8)
		} else {
			pdf.SetFont("Helvetica", "", 8)
		}
		pdf.SetXY(x+dx, y)
		pdf.CellFormat(w, receiptRowH, text, "1", 0, "L", false, 0, "")
	}
	next := func() { y += receiptRowH + receiptRowGap }

	cell(0, 55, "Receipt No.", true)
	cell(55, 45, strconv.Itoa(r.ReceiptNumber), false)
	cell(110, 40, "Sr. No.", true)
	cell(150, 70, strconv.Itoa(r.Student.SerialNumber), false)
	cell(230, 65, "Receipt Date", true)
	cell(295, 105, timeutil.Format(r.PaidAt, receiptDateFmt), false)
	next()

	cell(0, 55, "Room No.", true)
	cell(55, 45, strconv.Itoa(r.Student.RoomNumber), false)
	cell(110, 40, "Branch", true)
	cell(150, 70, r.Student.Branch, false)
	cell(230, 65, "Month", true)
	cell(295, 105, r.Period.String(), false)
	next()

	cell(0, 82, "Student Name", true)
	cell(82, 318, r.Student.FullName, false)
	next()

	cell(0, 82, "Enrollment No.", true)
	cell(82, 115, r.Student.EnrollmentNumber, false)
	cell(205, 80, "Mobile No.", true)
	cell(285, 115, r.Student.MobileNumber, false)
	next()

	cell(0, 82, "Amount", true)
	cell(82, 115, r.Amount.StringFixed(2), false)
	cell(205, 80, "Payment Mode", true)
	cell(285, 115, string(r.PaymentMethod), false)
	next()

	cell(0, 82, "Amount (in Words)", true)
	cell(82, 318, RupeesInWords(r.Amount), false)

	y += receiptRowH + receiptRowGap + 40
	pdf.SetFont("Helvetica", "B", 8)
	pdf.Text(x+300, y, "SIGNATURE")
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(x+287, y+10, s.signatory)
	pdf.Text(x+280, y+20, "(Hostel Mess Contractor)")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
