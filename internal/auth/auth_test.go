package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mess-backend/internal/config"
)

func testJWTManager(secret string) *JWTManager {
	cfg := &config.Config{}
	cfg.Session.Secret = secret
	cfg.Session.Issuer = "mess-test"
	cfg.Session.ExpirationHours = 1
	return NewJWTManager(cfg)
}

func TestJWTRoundTrip(t *testing.T) {
	m := testJWTManager("test-secret")

	token, claims, err := m.GenerateToken(RoleStudent, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, got.PrincipalID)
	assert.Equal(t, RoleStudent, got.Role)
	assert.Equal(t, claims.ID, got.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), got.ExpiresAt.Time, time.Minute)
}

func TestJWTRejectsForeignToken(t *testing.T) {
	token, _, err := testJWTManager("secret-a").GenerateToken(RoleAdmin, 1)
	require.NoError(t, err)

	_, err = testJWTManager("secret-b").ValidateToken(token)
	assert.Error(t, err)

	_, err = testJWTManager("secret-a").ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestSessionCookie(t *testing.T) {
	m := testJWTManager("test-secret")
	token, claims, err := m.GenerateToken(RoleAdmin, 1)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.SetSessionCookie(rec, token, claims)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	rec = httptest.NewRecorder()
	m.ClearSessionCookie(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter22"))
}

func TestTOTP(t *testing.T) {
	secret, url, err := GenerateTOTP("warden")
	require.NoError(t, err)
	assert.Contains(t, url, "otpauth://totp/")
	assert.Contains(t, url, "warden")

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	assert.True(t, ValidateTOTP(code, secret))
	assert.False(t, ValidateTOTP("000000x", secret))
}

func TestFlashSurvivesRedirect(t *testing.T) {
	store := NewFlashStore("flash-secret", false)

	// Request 1 queues a message and redirects.
	rec := httptest.NewRecorder()
	store.Add(rec, httptest.NewRequest(http.MethodPost, "/admin/add-monthly-fees", nil), FlashError, "Fees for this month already exist")
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Request 2 renders the page and consumes it.
	req := httptest.NewRequest(http.MethodGet, "/admin/add-monthly-fees", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	flashes := store.Pop(rec, req)
	assert.Equal(t, []string{"Fees for this month already exist"}, flashes.Errors)
	assert.Empty(t, flashes.Successes)

	// Request 3 with the cleared cookie sees nothing.
	req = httptest.NewRequest(http.MethodGet, "/admin/add-monthly-fees", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	flashes = NewFlashStore("flash-secret", false).Pop(httptest.NewRecorder(), req)
	assert.Empty(t, flashes.Errors)
}

func TestFlashWithoutCookie(t *testing.T) {
	store := NewFlashStore("flash-secret", false)
	flashes := store.Pop(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, flashes.Errors)
	assert.Empty(t, flashes.Successes)
}
