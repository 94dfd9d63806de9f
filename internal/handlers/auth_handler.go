package handlers

import (
	"context"
	"errors"
	"net/http"

	"mess-backend/internal/auth"
	"mess-backend/internal/middleware"
	"mess-backend/internal/services"
)

type authenticator interface {
	AdminLogin(ctx context.Context, req services.LoginRequest) (*services.Session, error)
	StudentLogin(ctx context.Context, req services.LoginRequest) (*services.Session, error)
	Logout(ctx context.Context, claims *auth.Claims)
}

// AuthHandler serves the admin and student login pages and issues the
// session cookie.
type AuthHandler struct {
	Service authenticator
	JWT     *auth.JWTManager
	render  *Renderer
}

func NewAuthHandler(service authenticator, jwt *auth.JWTManager, render *Renderer) *AuthHandler {
	return &AuthHandler{Service: service, JWT: jwt, render: render}
}

func (h *AuthHandler) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "admin_login.html", "Admin Login", nil)
}

func (h *AuthHandler) StudentLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "student_login.html", "Student Login", nil)
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, auth.RoleAdmin, h.Service.AdminLogin, "/admin/dashboard")
}

func (h *AuthHandler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, auth.RoleStudent, h.Service.StudentLogin, "/student/dashboard")
}

type loginFunc func(ctx context.Context, req services.LoginRequest) (*services.Session, error)

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, role string, login loginFunc, home string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	session, err := login(r.Context(), services.LoginRequest{
		Username:  r.PostFormValue("username"),
		Password:  r.PostFormValue("password"),
		TOTPCode:  r.PostFormValue("totp_code"),
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	loginPage := middleware.LoginPath(role)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		h.render.Redirect(w, r, loginPage, auth.FlashError, "Invalid username or password")
		return
	case errors.Is(err, services.ErrTOTPRequired):
		h.render.Redirect(w, r, loginPage, auth.FlashError, "Enter the code from your authenticator app")
		return
	case errors.Is(err, services.ErrTooManyAttempts):
		h.render.Redirect(w, r, loginPage, auth.FlashError, "Too many failed attempts. Try again in a few minutes")
		return
	case err != nil:
		writeError(w, r, err)
		return
	}

	h.JWT.SetSessionCookie(w, session.Token, session.Claims)
	http.Redirect(w, r, home, http.StatusSeeOther)
}

// Logout revokes the current session and returns to the role's login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if ok {
		h.Service.Logout(r.Context(), claims)
	}
	h.JWT.ClearSessionCookie(w)

	role := auth.RoleAdmin
	if ok {
		role = claims.Role
	}
	http.Redirect(w, r, middleware.LoginPath(role), http.StatusSeeOther)
}
