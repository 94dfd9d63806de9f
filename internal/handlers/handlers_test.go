package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mess-backend/internal/auth"
	"mess-backend/internal/middleware"
	"mess-backend/internal/models"
	"mess-backend/internal/repositories"
	"mess-backend/internal/services"
	"mess-backend/templates"
)

type fakeLedger struct {
	issueErr   error
	markErr    error
	retract    *models.MonthlyFee
	retractErr error
	summary    *models.FeeSummary
	ledger     *models.StudentLedger
	updateErr  error

	gotPeriod models.FeePeriod
	gotMethod string
	gotAmount string
	gotActor  *services.Actor
}

func (f *fakeLedger) IssueFee(ctx context.Context, actor *services.Actor, period models.FeePeriod, rawAmount string) (*models.MonthlyFee, error) {
	f.gotPeriod, f.gotAmount, f.gotActor = period, rawAmount, actor
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return &models.MonthlyFee{ID: 1, Period: period, PendingCount: 3}, nil
}

func (f *fakeLedger) MarkPaid(ctx context.Context, actor *services.Actor, studentID int, period models.FeePeriod, rawMethod string) (*repositories.MarkPaidResult, error) {
	f.gotPeriod, f.gotMethod, f.gotActor = period, rawMethod, actor
	if f.markErr != nil {
		return nil, f.markErr
	}
	return &repositories.MarkPaidResult{FeeID: 1, ReceiptNumber: 4, PendingCount: 2, ReceiptsGenerated: 4}, nil
}

func (f *fakeLedger) RetractFee(ctx context.Context, actor *services.Actor, feeID int) (*models.MonthlyFee, error) {
	return f.retract, f.retractErr
}

func (f *fakeLedger) RemoveStudent(ctx context.Context, actor *services.Actor, studentID int) error {
	return nil
}

func (f *fakeLedger) UpdateFeeAmount(ctx context.Context, actor *services.Actor, period models.FeePeriod, rawAmount string) error {
	f.gotPeriod, f.gotAmount = period, rawAmount
	return f.updateErr
}

func (f *fakeLedger) FeeSummary(ctx context.Context) (*models.FeeSummary, error) {
	return f.summary, nil
}

func (f *fakeLedger) StudentLedger(ctx context.Context, studentID int) (*models.StudentLedger, error) {
	if f.ledger == nil {
		return nil, services.ErrStudentNotFound
	}
	return f.ledger, nil
}

type fakeStudents struct {
	list   []models.StudentSummary
	addErr error
	query  string
}

func (f *fakeStudents) AddStudent(ctx context.Context, actor *services.Actor, req models.CreateStudentRequest) (*models.Student, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &models.Student{ID: 9, FullName: req.FullName}, nil
}

func (f *fakeStudents) List(ctx context.Context) ([]models.StudentSummary, error) {
	return f.list, nil
}

func (f *fakeStudents) Search(ctx context.Context, query string) ([]models.StudentSummary, error) {
	f.query = query
	return f.list, nil
}

func (f *fakeStudents) UpdateRoomNumber(ctx context.Context, actor *services.Actor, id int, raw string) error {
	return nil
}

func (f *fakeStudents) UpdateEnrollmentNumber(ctx context.Context, actor *services.Actor, id int, raw string) error {
	return nil
}

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	rn, err := NewRenderer(templates.FS, auth.NewFlashStore("handler-test", false), "Test Hostel")
	require.NoError(t, err)
	return rn
}

func adminRequest(method, target string, form url.Values, vars map[string]string) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	claims := &auth.Claims{PrincipalID: 1, Role: auth.RoleAdmin}
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func TestFeesPageShowsGrandTotal(t *testing.T) {
	ledger := &fakeLedger{summary: &models.FeeSummary{
		Fees: []models.MonthlyFee{{
			ID:           1,
			Period:       models.FeePeriod{Month: time.January, Year: 2024},
			FeeAmount:    decimal.RequireFromString("1500"),
			PendingCount: 2,
		}},
		GrandTotal: decimal.RequireFromString("3000"),
	}}
	h := NewFeeHandler(ledger, testRenderer(t))

	rec := httptest.NewRecorder()
	h.FeesPage(rec, adminRequest(http.MethodGet, "/admin/add-monthly-fees", nil, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "January 2024")
	assert.Contains(t, body, "3000.00")
	assert.Contains(t, body, "/admin/delete-monthly-fees/1")
}

func TestAddFees(t *testing.T) {
	form := url.Values{"month": {"January"}, "year": {"2024"}, "fee_amount": {"1500"}}

	t.Run("issued", func(t *testing.T) {
		ledger := &fakeLedger{}
		rec := httptest.NewRecorder()
		NewFeeHandler(ledger, testRenderer(t)).AddFees(rec, adminRequest(http.MethodPost, "/admin/add-monthly-fees", form, nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/add-monthly-fees", rec.Header().Get("Location"))
		assert.Equal(t, models.FeePeriod{Month: time.January, Year: 2024}, ledger.gotPeriod)
		assert.Equal(t, "1500", ledger.gotAmount)
		require.NotNil(t, ledger.gotActor)
		assert.Equal(t, 1, ledger.gotActor.AdminID)
	})

	t.Run("duplicate period flashes", func(t *testing.T) {
		ledger := &fakeLedger{issueErr: services.ErrFeeExists}
		rec := httptest.NewRecorder()
		NewFeeHandler(ledger, testRenderer(t)).AddFees(rec, adminRequest(http.MethodPost, "/admin/add-monthly-fees", form, nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/add-monthly-fees", rec.Header().Get("Location"))
		assert.NotEmpty(t, rec.Result().Cookies())
	})

	t.Run("bad month", func(t *testing.T) {
		bad := url.Values{"month": {"Smarch"}, "year": {"2024"}, "fee_amount": {"1500"}}
		rec := httptest.NewRecorder()
		NewFeeHandler(&fakeLedger{}, testRenderer(t)).AddFees(rec, adminRequest(http.MethodPost, "/admin/add-monthly-fees", bad, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid input data")
	})

	t.Run("bad amount", func(t *testing.T) {
		ledger := &fakeLedger{issueErr: services.ErrInvalidInput}
		rec := httptest.NewRecorder()
		NewFeeHandler(ledger, testRenderer(t)).AddFees(rec, adminRequest(http.MethodPost, "/admin/add-monthly-fees", form, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteFeesNotFound(t *testing.T) {
	ledger := &fakeLedger{retractErr: services.ErrFeeNotFound}
	rec := httptest.NewRecorder()
	NewFeeHandler(ledger, testRenderer(t)).DeleteFees(rec,
		adminRequest(http.MethodPost, "/admin/delete-monthly-fees/99", nil, map[string]string{"feeId": "99"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateFeeAmountReturnsToStudent(t *testing.T) {
	ledger := &fakeLedger{}
	form := url.Values{"fee_key": {"March 2024"}, "new_fee_amount": {"1750"}, "student_id": {"5"}}
	rec := httptest.NewRecorder()
	NewFeeHandler(ledger, testRenderer(t)).UpdateFeeAmount(rec, adminRequest(http.MethodPost, "/admin/update-fee-amount", form, nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/view-student/5", rec.Header().Get("Location"))
	assert.Equal(t, models.FeePeriod{Month: time.March, Year: 2024}, ledger.gotPeriod)
	assert.Equal(t, "1750", ledger.gotAmount)
}

func TestMarkFeeAsPaid(t *testing.T) {
	vars := map[string]string{"studentId": "5", "month": "January", "year": "2024"}
	target := "/admin/mark-fee-as-paid/5/January/2024"

	t.Run("paid", func(t *testing.T) {
		ledger := &fakeLedger{}
		rec := httptest.NewRecorder()
		NewStudentHandler(&fakeStudents{}, ledger, testRenderer(t)).MarkFeeAsPaid(rec,
			adminRequest(http.MethodPost, target, url.Values{"payment_method": {"Cash"}}, vars))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/view-student/5", rec.Header().Get("Location"))
		assert.Equal(t, "Cash", ledger.gotMethod)
		assert.Equal(t, models.FeePeriod{Month: time.January, Year: 2024}, ledger.gotPeriod)
	})

	t.Run("nothing pending", func(t *testing.T) {
		ledger := &fakeLedger{markErr: services.ErrLedgerEntryNotFound}
		rec := httptest.NewRecorder()
		NewStudentHandler(&fakeStudents{}, ledger, testRenderer(t)).MarkFeeAsPaid(rec,
			adminRequest(http.MethodPost, target, url.Values{"payment_method": {"Cash"}}, vars))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad method", func(t *testing.T) {
		ledger := &fakeLedger{markErr: services.ErrInvalidPaymentMethod}
		rec := httptest.NewRecorder()
		NewStudentHandler(&fakeStudents{}, ledger, testRenderer(t)).MarkFeeAsPaid(rec,
			adminRequest(http.MethodPost, target, url.Values{"payment_method": {"cash"}}, vars))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad year", func(t *testing.T) {
		bad := map[string]string{"studentId": "5", "month": "January", "year": "20x4"}
		rec := httptest.NewRecorder()
		NewStudentHandler(&fakeStudents{}, &fakeLedger{}, testRenderer(t)).MarkFeeAsPaid(rec,
			adminRequest(http.MethodPost, target, url.Values{"payment_method": {"Cash"}}, bad))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestViewStudent(t *testing.T) {
	t.Run("unknown student", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewStudentHandler(&fakeStudents{}, &fakeLedger{}, testRenderer(t)).ViewStudent(rec,
			adminRequest(http.MethodGet, "/admin/view-student/3", nil, map[string]string{"studentId": "3"}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewStudentHandler(&fakeStudents{}, &fakeLedger{}, testRenderer(t)).ViewStudent(rec,
			adminRequest(http.MethodGet, "/admin/view-student/abc", nil, map[string]string{"studentId": "abc"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDashboardAndSearch(t *testing.T) {
	students := &fakeStudents{list: []models.StudentSummary{
		{Student: models.Student{ID: 3, FullName: "Ravi Kumar", RoomNumber: 101, Gender: "Male"}, PendingMonths: 2},
	}}
	h := NewStudentHandler(students, &fakeLedger{}, testRenderer(t))

	rec := httptest.NewRecorder()
	h.Dashboard(rec, adminRequest(http.MethodGet, "/admin/dashboard", nil, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ravi Kumar")
	assert.Contains(t, rec.Body.String(), "/admin/view-student/3")

	rec = httptest.NewRecorder()
	h.SearchStudents(rec, adminRequest(http.MethodGet, "/admin/search-students?query=+Ravi+", nil, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ravi", students.query)
}

func TestAddStudentDuplicateUsername(t *testing.T) {
	students := &fakeStudents{addErr: services.ErrUsernameTaken}
	form := url.Values{"username": {"ravi"}, "full_name": {"Ravi Kumar"}}
	rec := httptest.NewRecorder()
	NewStudentHandler(students, &fakeLedger{}, testRenderer(t)).AddStudent(rec,
		adminRequest(http.MethodPost, "/admin/add-student", form, nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/add-student", rec.Header().Get("Location"))
}

type fakeActionLogs struct {
	limit int
}

func (f *fakeActionLogs) ListRecent(ctx context.Context, limit int) ([]models.AdminActionLog, error) {
	f.limit = limit
	return nil, nil
}

func TestListActionLogs(t *testing.T) {
	repo := &fakeActionLogs{}
	h := NewAdminActionLogHandler(repo)

	rec := httptest.NewRecorder()
	h.ListActionLogs(rec, adminRequest(http.MethodGet, "/admin/action-logs", nil, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultLogLimit, repo.limit)
	var logs []models.AdminActionLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	assert.Empty(t, logs)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = httptest.NewRecorder()
	h.ListActionLogs(rec, adminRequest(http.MethodGet, "/admin/action-logs?limit=5000", nil, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxLogLimit, repo.limit)

	rec = httptest.NewRecorder()
	h.ListActionLogs(rec, adminRequest(http.MethodGet, "/admin/action-logs?limit=-1", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeOnlinePayments struct {
	status models.OnlinePaymentStatus
	limit  int
	calls  int
}

func (f *fakeOnlinePayments) List(ctx context.Context, status models.OnlinePaymentStatus, limit int) ([]models.OnlinePayment, error) {
	f.calls++
	f.status, f.limit = status, limit
	if status != models.OnlinePaymentUnsettled {
		return nil, nil
	}
	paymentID := "pay_42"
	return []models.OnlinePayment{{
		OrderID:     "order_42",
		StudentID:   12,
		StudentName: "Meera Shah",
		Status:      models.OnlinePaymentUnsettled,
		PaymentID:   &paymentID,
	}}, nil
}

func TestListOnlinePayments(t *testing.T) {
	repo := &fakeOnlinePayments{}
	h := NewOnlinePaymentHandler(repo)

	rec := httptest.NewRecorder()
	h.ListOnlinePayments(rec, adminRequest(http.MethodGet, "/admin/online-payments", nil, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OnlinePaymentStatus(""), repo.status)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = httptest.NewRecorder()
	h.ListOnlinePayments(rec, adminRequest(http.MethodGet, "/admin/online-payments?status=unsettled&limit=20", nil, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, repo.limit)
	var payments []models.OnlinePayment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, models.OnlinePaymentUnsettled, payments[0].Status)
	assert.Equal(t, "pay_42", *payments[0].PaymentID)

	rec = httptest.NewRecorder()
	h.ListOnlinePayments(rec, adminRequest(http.MethodGet, "/admin/online-payments?status=refunded", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, repo.calls)
}

type fakeReports struct {
	pendingErr error
}

func (f *fakeReports) PendingReport(ctx context.Context, period models.FeePeriod) (*services.Report, error) {
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	return &services.Report{Filename: "January_2024_pending_fees.xlsx", ContentType: "application/octet-stream", Data: []byte("xlsx")}, nil
}

func (f *fakeReports) AllStudentsReport(ctx context.Context) (*services.Report, error) {
	return nil, nil
}

func (f *fakeReports) BasicStudentsReport(ctx context.Context) (*services.Report, error) {
	return nil, nil
}

func (f *fakeReports) CollectionReport(ctx context.Context, startDate, endDate string) (*services.Report, error) {
	return nil, services.ErrInvalidInput
}

func TestPendingReport(t *testing.T) {
	h := NewReportHandler(&fakeReports{}, nil, testRenderer(t))

	rec := httptest.NewRecorder()
	h.PendingReport(rec, adminRequest(http.MethodGet, "/admin/generate-report?month=January&year=2024", nil, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="January_2024_pending_fees.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx", rec.Body.String())

	rec = httptest.NewRecorder()
	h.PendingReport(rec, adminRequest(http.MethodGet, "/admin/generate-report?month=January", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Month and year are required")

	h = NewReportHandler(&fakeReports{pendingErr: services.ErrNoPendingStudents}, nil, testRenderer(t))
	rec = httptest.NewRecorder()
	h.PendingReport(rec, adminRequest(http.MethodGet, "/admin/generate-report?month=1&year=2024", nil, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
