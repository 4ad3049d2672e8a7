package handlers

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"researchnest/internal/models"
	"researchnest/internal/security"
	"researchnest/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	ClaimsContextKey     ContextKey = "claims"
	CookieAuthContextKey ContextKey = "cookie_auth"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
	limiter     *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, csrf *security.CSRFGenerator, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		csrf:        csrf,
		limiter:     limiter,
	}
}

// authenticate reads the session token from the Authorization header or,
// failing that, the session cookie
func (m *Middleware) authenticate(r *http.Request) (*security.Claims, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return nil, false
		}
		claims, err := m.authService.ParseToken(strings.TrimSpace(token))
		if err != nil {
			return nil, false
		}
		return claims, false
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := m.authService.ParseToken(cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func withClaims(r *http.Request, claims *security.Claims, viaCookie bool) *http.Request {
	ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
	ctx = context.WithValue(ctx, CookieAuthContextKey, viaCookie)
	return r.WithContext(ctx)
}

// RequireAuth is middleware that requires a valid session token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, viaCookie := m.authenticate(r)
		if claims == nil {
			if _, err := r.Cookie(SessionCookieName); err == nil {
				http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			}
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		next(w, withClaims(r, claims, viaCookie))
	}
}

// RequirePage gates a role-scoped page prefix, redirecting to the sign-in
// page with a callback when the session is missing or has another role
func (m *Middleware) RequirePage(userType models.UserType, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, viaCookie := m.authenticate(r)
		if claims == nil || claims.Type != string(userType) {
			target := SignInPath + "?callbackUrl=" + url.QueryEscape(r.URL.Path)
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next(w, withClaims(r, claims, viaCookie))
	}
}

// CSRFProtect validates the X-CSRF-Token header on cookie-authenticated
// state-changing requests. Bearer requests are exempt.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r)
			return
		}

		viaCookie, _ := r.Context().Value(CookieAuthContextKey).(bool)
		if !viaCookie {
			next(w, r)
			return
		}

		claims := GetClaimsFromContext(r.Context())
		if claims == nil || !m.csrf.ValidateToken(claims.ID, r.Header.Get(CSRFHeaderName)) {
			respondWithError(w, http.StatusForbidden, ErrInvalidCSRFToken, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit rejects clients that exceed the configured request rate
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			log.Printf("Rate limit exceeded for %s on %s", ip, r.URL.Path)
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// Protected is RequireAuth followed by CSRFProtect
func (m *Middleware) Protected(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(m.CSRFProtect(next))
}

// CSRFToken returns the CSRF token matching claims
func (m *Middleware) CSRFToken(claims *security.Claims) string {
	return m.csrf.GenerateToken(claims.ID)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Logging middleware logs HTTP requests and records request metrics
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		observeRequest(r.Method, r.Pattern, rec.status, elapsed.Seconds())
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, elapsed)
	})
}

// GetClaimsFromContext retrieves the session claims from the request context
func GetClaimsFromContext(ctx context.Context) *security.Claims {
	claims, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	if !ok {
		return nil
	}
	return claims
}

// callerFromContext converts the session claims into a service caller
func callerFromContext(ctx context.Context) service.Caller {
	claims := GetClaimsFromContext(ctx)
	if claims == nil {
		return service.Caller{}
	}
	return service.Caller{
		UserID:   claims.UserID,
		Type:     models.UserType(claims.Type),
		FamilyID: claims.FamilyID,
	}
}
