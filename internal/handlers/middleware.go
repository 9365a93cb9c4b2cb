package handlers

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"dinnerboard/internal/models"
	"dinnerboard/internal/security"
	"dinnerboard/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey   ContextKey = "user"
	FamilyContextKey ContextKey = "family"
)

// SessionCookieName carries the opaque session ID
const SessionCookieName = "session_id"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	bootstrap   *service.BootstrapService
	authLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, bootstrap *service.BootstrapService, authLimiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		bootstrap:   bootstrap,
		authLimiter: authLimiter,
	}
}

// RequireAuth requires a valid session cookie and puts the user on the context
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		user, err := m.authService.ValidateSession(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			respondError(w, http.StatusUnauthorized, "session invalid or expired")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireFamily resolves the authenticated user's family, seeding a default
// roster on their first access, and puts the family ID on the context. Must
// be wrapped inside RequireAuth.
func (m *Middleware) RequireFamily(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		familyID, err := m.bootstrap.EnsureInitialized(user.ID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), FamilyContextKey, familyID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimitAuth throttles credential endpoints per client IP
func (m *Middleware) RateLimitAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.authLimiter.Allow(clientIP(r)) {
			respondError(w, http.StatusTooManyRequests, "too many attempts, try again later")
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// clientIP extracts the caller's IP, honoring X-Forwarded-For behind a proxy
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetFamilyFromContext retrieves the resolved family ID from the context
func GetFamilyFromContext(ctx context.Context) string {
	familyID, ok := ctx.Value(FamilyContextKey).(string)
	if !ok {
		return ""
	}
	return familyID
}
