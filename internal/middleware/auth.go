package middleware

import (
	"context"
	"net/http"

	"mess-backend/internal/auth"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// SessionAuthorizer re-checks a validated token against storage.
type SessionAuthorizer interface {
	Authorize(ctx context.Context, claims *auth.Claims) error
}

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	authorizer SessionAuthorizer
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, authorizer SessionAuthorizer) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		authorizer: authorizer,
	}
}

// RequireRole lets the request through only with a live session cookie for
// the given role. Anything else is sent to that role's login page.
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	loginPath := LoginPath(role)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := m.sessionClaims(r)
			if claims == nil || claims.Role != role {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			if err := m.authorizer.Authorize(r.Context(), claims); err != nil {
				m.jwtManager.ClearSessionCookie(w)
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectIfLoggedIn sends an already logged-in principal of role to home.
func (m *AuthMiddleware) RedirectIfLoggedIn(role, home string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				if claims := m.sessionClaims(r); claims != nil && claims.Role == role &&
					m.authorizer.Authorize(r.Context(), claims) == nil {
					http.Redirect(w, r, home, http.StatusFound)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) sessionClaims(r *http.Request) *auth.Claims {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := m.jwtManager.ValidateToken(cookie.Value)
	if err != nil {
		return nil
	}
	return claims
}

// LoginPath is the login page for a role.
func LoginPath(role string) string {
	if role == auth.RoleStudent {
		return "/student/login"
	}
	return "/admin/login"
}

// GetClaimsFromContext extracts the session claims set by RequireRole
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok
}

// WithClaims stores claims on a context, used by tests.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}
