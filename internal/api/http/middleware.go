package http

import (
	"context"
	"net/http"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/logger"
	"memberhub-backend/internal/security"
	"memberhub-backend/internal/service"
)

type contextKey string

const (
	userContextKey contextKey = "current_user"
	gateContextKey contextKey = "gate_claims"
)

// Middleware wires authentication and gating around route handlers.
type Middleware struct {
	auth    service.AuthService
	tokens  security.TokenManager
	cookies *cookieWriter
}

func NewMiddleware(auth service.AuthService, tokens security.TokenManager, cookies *cookieWriter) *Middleware {
	return &Middleware{auth: auth, tokens: tokens, cookies: cookies}
}

// Authenticate validates the auth cookie and loads the current user. When the
// persisted role no longer matches the token, both cookies are reissued so
// role changes take effect mid-session.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			respondError(w, r, domain.Unauthorized("authentication required"))
			return
		}
		claims, err := m.tokens.ValidateToken(cookie.Value)
		if err != nil || claims.Type != security.TokenTypeAuth {
			m.cookies.clearAuth(w)
			respondError(w, r, domain.Unauthorized("invalid or expired session"))
			return
		}

		user, freshToken, reissued, err := m.auth.SessionUser(r.Context(), claims)
		if err != nil {
			m.cookies.clearAuth(w)
			respondError(w, r, err)
			return
		}
		if reissued {
			m.cookies.setAuth(w, freshToken, string(user.Role))
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles allows only the listed roles past. Must run after
// Authenticate.
func (m *Middleware) RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			if user == nil {
				respondError(w, r, domain.Unauthorized("authentication required"))
				return
			}
			if !allowed[user.Role] {
				respondError(w, r, domain.Forbidden("you are not authorized to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireGate admits only requests carrying a valid invitation-gate cookie,
// set by the invitation verification endpoint. It keeps the registration
// form unreachable without a verified code.
func (m *Middleware) RequireGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(gateCookieName)
		if err != nil {
			respondError(w, r, domain.Forbidden("verify your invitation code before registering"))
			return
		}
		claims, err := m.tokens.ValidateToken(cookie.Value)
		if err != nil || claims.Type != security.TokenTypeFormGate {
			m.cookies.clearGate(w)
			respondError(w, r, domain.Forbidden("registration window has expired; verify your invitation code again"))
			return
		}

		ctx := context.WithValue(r.Context(), gateContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the authenticated user, or nil outside Authenticate.
func CurrentUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}

// GateClaims returns the validated invitation-gate claims, or nil.
func GateClaims(r *http.Request) *security.Claims {
	claims, _ := r.Context().Value(gateContextKey).(*security.Claims)
	return claims
}

// RequestLogger logs each request with method, path, status and duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
