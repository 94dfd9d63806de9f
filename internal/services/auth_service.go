package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mess-backend/internal/auth"
	"mess-backend/internal/cache"
	"mess-backend/internal/logger"
	"mess-backend/internal/metrics"
	"mess-backend/internal/models"
	"mess-backend/internal/repositories"
)

type AuthService struct {
	Admins    *repositories.AdminRepository
	Students  *repositories.StudentRepository
	LoginLogs *repositories.LoginLogRepository
	JWT       *auth.JWTManager
}

func NewAuthService(
	admins *repositories.AdminRepository,
	students *repositories.StudentRepository,
	loginLogs *repositories.LoginLogRepository,
	jwt *auth.JWTManager,
) *AuthService {
	return &AuthService{Admins: admins, Students: students, LoginLogs: loginLogs, JWT: jwt}
}

type LoginRequest struct {
	Username  string
	Password  string
	TOTPCode  string
	IP        string
	UserAgent string
}

// Session is an issued login.
type Session struct {
	Token  string
	Claims *auth.Claims
}

// AdminLogin checks the password and, for enrolled admins, the TOTP code.
func (s *AuthService) AdminLogin(ctx context.Context, req LoginRequest) (*Session, error) {
	username := strings.TrimSpace(req.Username)
	if cache.LoginLocked(ctx, auth.RoleAdmin, username, req.IP) {
		metrics.LoginAttempts.WithLabelValues(auth.RoleAdmin, "locked").Inc()
		return nil, ErrTooManyAttempts
	}

	admin, err := s.Admins.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repositories.ErrAdminNotFound) {
		return nil, err
	}
	if admin == nil || !auth.VerifyPassword(admin.PasswordHash, req.Password) {
		return nil, s.failLogin(ctx, auth.RoleAdmin, username, req.IP)
	}

	if admin.TOTPEnabled() {
		if req.TOTPCode == "" {
			return nil, ErrTOTPRequired
		}
		if !auth.ValidateTOTP(strings.TrimSpace(req.TOTPCode), *admin.TOTPSecret) {
			return nil, s.failLogin(ctx, auth.RoleAdmin, username, req.IP)
		}
	}

	return s.startSession(ctx, auth.RoleAdmin, admin.ID, username, req)
}

// StudentLogin checks a student's username and password.
func (s *AuthService) StudentLogin(ctx context.Context, req LoginRequest) (*Session, error) {
	username := strings.TrimSpace(req.Username)
	if cache.LoginLocked(ctx, auth.RoleStudent, username, req.IP) {
		metrics.LoginAttempts.WithLabelValues(auth.RoleStudent, "locked").Inc()
		return nil, ErrTooManyAttempts
	}

	student, err := s.Students.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repositories.ErrStudentNotFound) {
		return nil, err
	}
	if student == nil || !auth.VerifyPassword(student.PasswordHash, req.Password) {
		return nil, s.failLogin(ctx, auth.RoleStudent, username, req.IP)
	}

	return s.startSession(ctx, auth.RoleStudent, student.ID, username, req)
}

func (s *AuthService) failLogin(ctx context.Context, role, username, ip string) error {
	cache.RecordFailedLogin(ctx, role, username, ip)
	metrics.LoginAttempts.WithLabelValues(role, "failed").Inc()
	logger.For("auth").Warn().Str("role", role).Str("username", username).Str("ip", ip).Msg("failed login")
	return ErrInvalidCredentials
}

func (s *AuthService) startSession(ctx context.Context, role string, id int, username string, req LoginRequest) (*Session, error) {
	token, claims, err := s.JWT.GenerateToken(role, id)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	cache.ClearFailedLogins(ctx, role, username, req.IP)
	metrics.LoginAttempts.WithLabelValues(role, "success").Inc()

	if s.LoginLogs != nil {
		entry := &models.LoginLog{PrincipalType: role, PrincipalID: id, IPAddress: req.IP, UserAgent: req.UserAgent}
		if err := s.LoginLogs.CreateLoginLog(ctx, entry); err != nil {
			logger.For("auth").Warn().Err(err).Msg("failed to write login log")
		}
	}
	return &Session{Token: token, Claims: claims}, nil
}

// Logout revokes the session token and closes its login log.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) {
	if claims == nil {
		return
	}
	if claims.ExpiresAt != nil {
		cache.RevokeSession(ctx, claims.ID, claims.ExpiresAt.Time)
	}
	if s.LoginLogs != nil {
		if err := s.LoginLogs.RecordLogout(ctx, claims.Role, claims.PrincipalID); err != nil {
			logger.For("auth").Warn().Err(err).Msg("failed to record logout")
		}
	}
}

// Authorize re-checks a validated token against storage. The principal
// must still exist and the token must not be revoked.
func (s *AuthService) Authorize(ctx context.Context, claims *auth.Claims) error {
	if cache.IsSessionRevoked(ctx, claims.ID) {
		return ErrInvalidCredentials
	}
	var err error
	switch claims.Role {
	case auth.RoleAdmin:
		_, err = s.Admins.Get(ctx, claims.PrincipalID)
	case auth.RoleStudent:
		_, err = s.Students.Get(ctx, claims.PrincipalID)
	default:
		return ErrInvalidCredentials
	}
	if errors.Is(err, repositories.ErrAdminNotFound) || errors.Is(err, repositories.ErrStudentNotFound) {
		return ErrInvalidCredentials
	}
	return err
}

// CreateAdmin adds an admin account, optionally enrolling TOTP. Returns
// the otpauth URL when TOTP was enrolled.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string, withTOTP bool) (*models.Admin, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 6 {
		return nil, "", fmt.Errorf("%w: username required and password must be at least 6 characters", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	admin := &models.Admin{Username: username, PasswordHash: hash}

	var url string
	if withTOTP {
		secret, u, err := auth.GenerateTOTP(username)
		if err != nil {
			return nil, "", fmt.Errorf("generate totp: %w", err)
		}
		admin.TOTPSecret, url = &secret, u
	}

	if err := s.Admins.Create(ctx, admin); err != nil {
		return nil, "", err
	}
	return admin, url, nil
}

// EnsureDefaultAdmin creates the given admin only when no admin exists yet.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := s.Admins.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, _, err := s.CreateAdmin(ctx, username, password, false); err != nil {
		return false, err
	}
	return true, nil
}
