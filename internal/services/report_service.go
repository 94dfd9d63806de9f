package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mess-backend/internal/config"
	"mess-backend/internal/metrics"
	"mess-backend/internal/models"
	"mess-backend/internal/repositories"
	"mess-backend/internal/timeutil"
)

// Report is a generated download.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportService struct {
	Students *repositories.StudentRepository
	Fees     *repositories.MonthlyFeeRepository
	Ledger   *repositories.LedgerRepository

	college     string
	hostelBlock string
}

func NewReportService(
	students *repositories.StudentRepository,
	fees *repositories.MonthlyFeeRepository,
	ledger *repositories.LedgerRepository,
	cfg *config.Config,
) *ReportService {
	return &ReportService{
		Students:    students,
		Fees:        fees,
		Ledger:      ledger,
		college:     cfg.Institution.College,
		hostelBlock: cfg.Institution.HostelBlock,
	}
}

// PendingReport lists who still owes the period, one sheet per gender.
func (s *ReportService) PendingReport(ctx context.Context, period models.FeePeriod) (*Report, error) {
	fee, err := s.Fees.GetByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	students, err := s.Ledger.PendingStudents(ctx, fee.ID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, ErrNoPendingStudents
	}

	data, err := buildWorkbook(s.pendingSheets(period, students))
	if err != nil {
		return nil, err
	}
	metrics.ReportsGenerated.WithLabelValues("pending").Inc()
	return &Report{
		Filename:    fmt.Sprintf("%s_%d_pending_fees.xlsx", period.Month, period.Year),
		ContentType: xlsxContentType,
		Data:        data,
	}, nil
}

func (s *ReportService) pendingSheets(period models.FeePeriod, students []models.Student) []sheetLayout {
	boys, girls := SplitByGender(students)
	sheet := func(name string, list []models.Student) sheetLayout {
		rows := make([][]any, 0, len(list))
		for _, st := range list {
			rows = append(rows, []any{st.FullName, st.RoomNumber, st.Batch, st.MobileNumber})
		}
		return sheetLayout{
			Name:      name,
			Titles:    []string{s.college, s.hostelBlock, "MESS FACILITY MONTHLY REPORT", "MONTH: " + period.String()},
			Subtitles: []string{"GENDER: " + name},
			Notes:     []string{"The following students are requested to pay the fees by the end of this month"},
			Headers:   []string{"Full Name", "Room Number", "Batch", "Mobile Number"},
			Widths:    []float64{40, 15, 10, 20},
			Rows:      rows,
		}
	}
	return []sheetLayout{sheet("Boys", boys), sheet("Girls", girls)}
}

// AllStudentsReport lists every student with their pending month count.
func (s *ReportService) AllStudentsReport(ctx context.Context) (*Report, error) {
	students, err := s.Students.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	data, err := buildWorkbook(s.allStudentsSheets(students))
	if err != nil {
		return nil, err
	}
	metrics.ReportsGenerated.WithLabelValues("all_students").Inc()
	return &Report{Filename: "student_details.xlsx", ContentType: xlsxContentType, Data: data}, nil
}

func (s *ReportService) allStudentsSheets(students []models.StudentSummary) []sheetLayout {
	boys, girls := SplitByGender(students)
	sheet := func(name string, list []models.StudentSummary) sheetLayout {
		rows := make([][]any, 0, len(list))
		for _, st := range list {
			rows = append(rows, []any{st.FullName, st.RoomNumber, st.Batch, st.MobileNumber, st.PendingMonths})
		}
		return sheetLayout{
			Name:    name,
			Titles:  []string{s.college, s.hostelBlock, "MESS FACILITY STUDENTS LIST", "GENDER: " + name},
			Headers: []string{"Full Name", "Room Number", "Batch", "Mobile Number", "Pending Months"},
			Widths:  []float64{40, 15, 10, 20, 18},
			Rows:    rows,
		}
	}
	return []sheetLayout{sheet("Boys", boys), sheet("Girls", girls)}
}

// BasicStudentsReport is a printable roster with two blank columns for
// signatures or notes.
func (s *ReportService) BasicStudentsReport(ctx context.Context) (*Report, error) {
	students, err := s.Students.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	data, err := buildWorkbook(s.basicStudentsSheets(students))
	if err != nil {
		return nil, err
	}
	metrics.ReportsGenerated.WithLabelValues("basic_students").Inc()
	return &Report{Filename: "basic_student_details.xlsx", ContentType: xlsxContentType, Data: data}, nil
}

func (s *ReportService) basicStudentsSheets(students []models.StudentSummary) []sheetLayout {
	boys, girls := SplitByGender(students)
	sheet := func(name string, list []models.StudentSummary) sheetLayout {
		rows := make([][]any, 0, len(list))
		for _, st := range list {
			rows = append(rows, []any{st.FullName, st.RoomNumber, st.Batch, "", ""})
		}
		return sheetLayout{
			Name:    name,
			Titles:  []string{s.college, s.hostelBlock, "MESS FACILITY STUDENTS LIST"},
			Headers: []string{"Full Name", "Room Number", "Batch", "", ""},
			Widths:  []float64{40, 15, 10, 20, 20},
			Rows:    rows,
		}
	}
	return []sheetLayout{sheet("Male Students", boys), sheet("Female Students", girls)}
}

// CollectionReport groups payments made between two calendar days
// (inclusive, IST) by payment method and gender.
func (s *ReportService) CollectionReport(ctx context.Context, startDate, endDate string) (*Report, error) {
	start, end, err := ParseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	records, err := s.Ledger.PaymentsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	data, err := buildWorkbook(s.collectionSheets(start, end, records))
	if err != nil {
		return nil, err
	}
	metrics.ReportsGenerated.WithLabelValues("collection").Inc()
	return &Report{
		Filename: fmt.Sprintf("Fee_Collection_Report_%s_to_%s.xlsx",
			timeutil.Format(start, timeutil.DateLayout), timeutil.Format(end, timeutil.DateLayout)),
		ContentType: xlsxContentType,
		Data:        data,
	}, nil
}

// ParseDateRange turns two YYYY-MM-DD values into [start 00:00, end 23:59:59.999] IST.
func ParseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := timeutil.ParseDate(strings.TrimSpace(startDate))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start date", ErrInvalidInput)
	}
	end, err := timeutil.ParseDate(strings.TrimSpace(endDate))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end date", ErrInvalidInput)
	}
	start, end = timeutil.StartOfDay(start), timeutil.EndOfDay(end)
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	}
	return start, end, nil
}

func (s *ReportService) collectionSheets(start, end time.Time, records []models.PaymentRecord) []sheetLayout {
	interval := fmt.Sprintf("INTERVAL: %s TO %s",
		timeutil.Format(start, "02 Jan 2006"), timeutil.Format(end, "02 Jan 2006"))

	var sheets []sheetLayout
	for _, g := range CollectionGroups(records) {
		rows := make([][]any, 0, len(g.Records))
		for _, rec := range g.Records {
			amount, _ := rec.Amount.Float64()
			rows = append(rows, []any{
				rec.FullName, rec.Batch, rec.RoomNumber, rec.MobileNumber,
				timeutil.Format(rec.PaidAt, timeutil.DisplayLayout), rec.Period.String(), amount,
			})
		}
		total, _ := g.Total.Float64()
		sheets = append(sheets, sheetLayout{
			Name:         fmt.Sprintf("%s Payments %s", g.Method, genderSheetLabel(g.Gender)),
			Titles:       []string{s.college, s.hostelBlock, "FEE COLLECTION REPORT", interval},
			Headers:      []string{"Full Name", "Batch", "Room Number", "Mobile Number", "Payment Date", "Month", "Amount"},
			Widths:       []float64{25, 10, 15, 15, 22, 15, 20},
			Rows:         rows,
			EmptyMessage: "No data available for the selected date range",
			Footer:       []any{"", "", "", "", "", "Total", total},
		})
	}
	return sheets
}

func genderSheetLabel(gender string) string {
	if gender == models.GenderFemale {
		return "Girls"
	}
	return "Boys"
}
