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
	"mess-backend/internal/config"
	"mess-backend/internal/middleware"
	"mess-backend/internal/models"
	"mess-backend/internal/repositories"
	"mess-backend/internal/services"
)

type fakeViewer struct {
	ledger    *models.StudentLedger
	studentID int
}

func (f *fakeViewer) StudentLedger(ctx context.Context, studentID int) (*models.StudentLedger, error) {
	f.studentID = studentID
	return f.ledger, nil
}

type fakePayments struct {
	enabled   bool
	verifyErr error
	gotOrder  string
}

func (f *fakePayments) IsEnabled() bool { return f.enabled }

func (f *fakePayments) CreateOrder(ctx context.Context, studentID int, period models.FeePeriod) (*models.CheckoutOrder, error) {
	if !f.enabled {
		return nil, services.ErrOnlinePaymentsOff
	}
	return &models.CheckoutOrder{OrderID: "order_1"}, nil
}

func (f *fakePayments) VerifyPayment(ctx context.Context, studentID int, orderID, paymentID, signature string) (*repositories.MarkPaidResult, error) {
	f.gotOrder = orderID
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &repositories.MarkPaidResult{ReceiptNumber: 7}, nil
}

func studentRequest(method, target string, body *strings.Reader, vars map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req.WithContext(middleware.WithClaims(req.Context(), &auth.Claims{PrincipalID: 12, Role: auth.RoleStudent}))
}

func TestPortalDashboard(t *testing.T) {
	jan := models.FeePeriod{Month: time.January, Year: 2024}
	feb := models.FeePeriod{Month: time.February, Year: 2024}
	method := models.PaymentCash
	receipt := 1
	paidAt := time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC)
	viewer := &fakeViewer{ledger: &models.StudentLedger{
		Student: models.Student{ID: 12, FullName: "Meera Iyer"},
		Fees: []models.StudentFeeLine{
			{
				Fee:   models.MonthlyFee{ID: 1, Period: jan, FeeAmount: decimal.NewFromInt(1500)},
				Entry: &models.LedgerEntry{FeeID: 1, Period: jan, FeeAmount: decimal.NewFromInt(1500), PaidAt: &paidAt, PaymentMethod: &method, ReceiptNumber: &receipt},
			},
			{
				Fee:   models.MonthlyFee{ID: 2, Period: feb, FeeAmount: decimal.NewFromInt(1500)},
				Entry: &models.LedgerEntry{FeeID: 2, Period: feb, FeeAmount: decimal.NewFromInt(1500), Pending: true},
			},
			{Fee: models.MonthlyFee{ID: 3, Period: models.FeePeriod{Month: time.March, Year: 2024}, FeeAmount: decimal.NewFromInt(1600)}},
		},
	}}
	h := NewStudentPortalHandler(viewer, nil, &fakePayments{enabled: true}, testRenderer(t))

	rec := httptest.NewRecorder()
	h.Dashboard(rec, studentRequest(http.MethodGet, "/student/dashboard", nil, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, viewer.studentID)
	body := rec.Body.String()
	assert.Contains(t, body, "Meera Iyer")
	assert.Contains(t, body, "/student/download-receipt/January/2024")
	assert.Contains(t, body, `data-month="February"`)
	assert.Contains(t, body, "checkout.razorpay.com")

	// March was issued before the student joined: listed, but not payable.
	assert.Contains(t, body, "March 2024")
	assert.Contains(t, body, "Not Applicable")
	assert.NotContains(t, body, `data-month="March"`)
	assert.NotContains(t, body, "/student/download-receipt/March/2024")
}

func TestPortalCreateOrderDisabled(t *testing.T) {
	h := NewStudentPortalHandler(&fakeViewer{}, nil, &fakePayments{}, testRenderer(t))
	rec := httptest.NewRecorder()
	h.CreateOrder(rec, studentRequest(http.MethodPost, "/student/pay/January/2024", nil,
		map[string]string{"month": "January", "year": "2024"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortalCreateOrder(t *testing.T) {
	h := NewStudentPortalHandler(&fakeViewer{}, nil, &fakePayments{enabled: true}, testRenderer(t))
	rec := httptest.NewRecorder()
	h.CreateOrder(rec, studentRequest(http.MethodPost, "/student/pay/January/2024", nil,
		map[string]string{"month": "January", "year": "2024"}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "order_1")
}

func TestPortalVerifyPayment(t *testing.T) {
	t.Run("json callback", func(t *testing.T) {
		payments := &fakePayments{enabled: true}
		h := NewStudentPortalHandler(&fakeViewer{}, nil, payments, testRenderer(t))
		body := `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"abc"}`
		req := studentRequest(http.MethodPost, "/student/pay/verify", strings.NewReader(body), nil)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.VerifyPayment(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "order_1", payments.gotOrder)
		var out map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, "paid", out["status"])
		assert.EqualValues(t, 7, out["receipt_number"])
	})

	t.Run("form callback with bad signature", func(t *testing.T) {
		payments := &fakePayments{enabled: true, verifyErr: services.ErrSignatureMismatch}
		h := NewStudentPortalHandler(&fakeViewer{}, nil, payments, testRenderer(t))
		form := url.Values{"razorpay_order_id": {"order_1"}, "razorpay_payment_id": {"pay_1"}, "razorpay_signature": {"bad"}}
		req := studentRequest(http.MethodPost, "/student/pay/verify", strings.NewReader(form.Encode()), nil)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.VerifyPayment(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		h := NewStudentPortalHandler(&fakeViewer{}, nil, &fakePayments{enabled: true}, testRenderer(t))
		req := studentRequest(http.MethodPost, "/student/pay/verify", strings.NewReader(`{}`), nil)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.VerifyPayment(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

type fakeAuthenticator struct {
	jwt       *auth.JWTManager
	err       error
	loggedOut bool
	gotReq    services.LoginRequest
}

func (f *fakeAuthenticator) session(role string) (*services.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	token, claims, err := f.jwt.GenerateToken(role, 3)
	if err != nil {
		return nil, err
	}
	return &services.Session{Token: token, Claims: claims}, nil
}

func (f *fakeAuthenticator) AdminLogin(ctx context.Context, req services.LoginRequest) (*services.Session, error) {
	f.gotReq = req
	return f.session(auth.RoleAdmin)
}

func (f *fakeAuthenticator) StudentLogin(ctx context.Context, req services.LoginRequest) (*services.Session, error) {
	f.gotReq = req
	return f.session(auth.RoleStudent)
}

func (f *fakeAuthenticator) Logout(ctx context.Context, claims *auth.Claims) {
	f.loggedOut = true
}

func testAuthHandler(t *testing.T, err error) (*AuthHandler, *fakeAuthenticator) {
	cfg := &config.Config{}
	cfg.Session.Secret = "handler-secret"
	cfg.Session.Issuer = "mess-test"
	cfg.Session.ExpirationHours = 1
	jwt := auth.NewJWTManager(cfg)
	svc := &fakeAuthenticator{jwt: jwt, err: err}
	return NewAuthHandler(svc, jwt, testRenderer(t)), svc
}

func loginRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.10:4000"
	return req
}

func TestStudentLogin(t *testing.T) {
	h, svc := testAuthHandler(t, nil)
	rec := httptest.NewRecorder()
	h.StudentLogin(rec, loginRequest("/student/login", url.Values{"username": {"meera"}, "password": {"secret1"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/student/dashboard", rec.Header().Get("Location"))
	assert.Equal(t, "meera", svc.gotReq.Username)
	assert.Equal(t, "192.0.2.10", svc.gotReq.IP)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
}

func TestLoginThrottleKeyIgnoresSpoofedForwardedFor(t *testing.T) {
	h, svc := testAuthHandler(t, services.ErrInvalidCredentials)
	realIP, err := middleware.NewRealIP(nil)
	require.NoError(t, err)
	login := realIP(http.HandlerFunc(h.StudentLogin))

	for _, spoofed := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3", "4.4.4.4", "5.5.5.5", "6.6.6.6"} {
		req := loginRequest("/student/login", url.Values{"username": {"meera"}, "password": {"wrong"}})
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", spoofed)
		login.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "203.0.113.9", svc.gotReq.IP)
	}
}

func TestAdminLoginFailures(t *testing.T) {
	for _, err := range []error{services.ErrInvalidCredentials, services.ErrTOTPRequired, services.ErrTooManyAttempts} {
		h, _ := testAuthHandler(t, err)
		rec := httptest.NewRecorder()
		h.AdminLogin(rec, loginRequest("/admin/login", url.Values{"username": {"warden"}, "password": {"nope"}}))

		assert.Equal(t, http.StatusSeeOther, rec.Code, err.Error())
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
		for _, c := range rec.Result().Cookies() {
			assert.NotEqual(t, auth.SessionCookieName, c.Name)
		}
	}
}

func TestLogout(t *testing.T) {
	h, svc := testAuthHandler(t, nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, studentRequest(http.MethodGet, "/student/logout", nil, nil))

	assert.True(t, svc.loggedOut)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/student/login", rec.Header().Get("Location"))
}

func TestLoginPagesRender(t *testing.T) {
	h, _ := testAuthHandler(t, nil)

	rec := httptest.NewRecorder()
	h.AdminLoginPage(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="totp_code"`)

	rec = httptest.NewRecorder()
	h.StudentLoginPage(rec, httptest.NewRequest(http.MethodGet, "/student/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)
}
