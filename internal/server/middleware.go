package server

import (
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/echo-journal/echo/internal/common"
)

// responseWriter wraps http.ResponseWriter to capture status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// recoveryMiddleware catches panics and returns 500.
func recoveryMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Str("panic", fmt.Sprintf("%v", rec)).
						Str("path", r.URL.Path).
						Msg("Panic recovered in HTTP handler")
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware adds CORS headers for the web client. Credentials are
// allowed because the cookie bridge rides on same-site cookies.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-Correlation-ID, X-CSRF-Token")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// correlationIDMiddleware extracts or generates a correlation ID.
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID := r.Header.Get("X-Request-ID")
		if corrID == "" {
			corrID = r.Header.Get("X-Correlation-ID")
		}
		if corrID == "" {
			corrID = uuid.New().String()[:8]
		}
		w.Header().Set("X-Correlation-ID", corrID)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			dur := time.Since(start)
			corrID := w.Header().Get("X-Correlation-ID")

			event := logger.Trace()
			if rw.statusCode >= 500 {
				event = logger.Error()
			} else if rw.statusCode >= 400 {
				event = logger.Info()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", rw.statusCode).
				Int("bytes", rw.bytesWritten).
				Dur("duration", dur).
				Str("correlation_id", corrID).
				Msg("HTTP request")
		})
	}
}

// bodyLimitMiddleware caps request body size from config.
func bodyLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authMiddleware resolves the caller from either an Authorization: Bearer
// header or the access cookie. An invalid bearer token is rejected outright;
// an invalid cookie passes through unauthenticated so the bridge endpoints
// can repair the session. Requests without credentials pass through and
// individual handlers decide whether auth is required.
func authMiddleware(config *common.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := []byte(config.Auth.JWTSecret)

			if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				tokenString := strings.TrimPrefix(authHeader, "Bearer ")
				_, claims, err := validateJWT(tokenString, secret)
				if err != nil {
					w.Header().Set("WWW-Authenticate", "Bearer")
					WriteError(w, http.StatusUnauthorized, "invalid or expired token")
					return
				}
				sub, _ := claims["sub"].(string)
				if sub == "" {
					w.Header().Set("WWW-Authenticate", "Bearer")
					WriteError(w, http.StatusUnauthorized, "invalid token claims")
					return
				}
				email, _ := claims["email"].(string)
				uc := &common.UserContext{UserID: sub, Email: email, AuthMethod: common.AuthMethodBearer}
				next.ServeHTTP(w, r.WithContext(common.WithUserContext(r.Context(), uc)))
				return
			}

			if cookie, err := r.Cookie(config.Cookies.AccessName); err == nil && cookie.Value != "" {
				if _, claims, err := validateJWT(cookie.Value, secret); err == nil {
					if sub, _ := claims["sub"].(string); sub != "" {
						email, _ := claims["email"].(string)
						uc := &common.UserContext{UserID: sub, Email: email, AuthMethod: common.AuthMethodCookie}
						r = r.WithContext(common.WithUserContext(r.Context(), uc))
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// csrfMiddleware enforces the double-submit check on mutating requests that
// authenticated via cookie: the X-CSRF-Token header must match the csrf
// cookie. Bearer-authenticated and unauthenticated requests are exempt, as
// are the bridge endpoints themselves (they mint the token).
func csrfMiddleware(config *common.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if strings.HasPrefix(r.URL.Path, "/api/auth/") {
				next.ServeHTTP(w, r)
				return
			}
			uc := common.UserContextFromContext(r.Context())
			if uc == nil || uc.AuthMethod != common.AuthMethodCookie {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(config.Cookies.CSRFName)
			if header == "" || err != nil || cookie.Value == "" ||
				subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
				WriteErrorWithCode(w, http.StatusForbidden, "CSRF token missing or invalid", "csrf_failed")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeLimiter rate-limits mutating requests per client address.
type writeLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newWriteLimiter(perMin, burst int) *writeLimiter {
	if perMin <= 0 {
		perMin = 60
	}
	if burst <= 0 {
		burst = 20
	}
	return &writeLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMin) / 60.0),
		burst:    burst,
	}
}

func (l *writeLimiter) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// writeLimitMiddleware rejects mutating requests that exceed the per-client
// write rate with 429.
func writeLimitMiddleware(limits common.LimitsConfig) func(http.Handler) http.Handler {
	limiter := newWriteLimiter(limits.WriteRatePerMin, limits.WriteBurst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			key := clientKey(r)
			if !limiter.allow(key) {
				WriteErrorWithCode(w, http.StatusTooManyRequests, "Too many requests", "rate_limited")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies a client for rate limiting: the authenticated user
// when available, otherwise the remote address.
func clientKey(r *http.Request) string {
	if uc := common.UserContextFromContext(r.Context()); uc != nil && uc.UserID != "" {
		return "user:" + uc.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "addr:" + r.RemoteAddr
	}
	return "addr:" + host
}

// resolveUserID returns the authenticated user ID for the request, or empty.
func resolveUserID(r *http.Request) string {
	return common.ResolveUserID(r.Context())
}

// applyMiddleware wraps a handler with the middleware stack.
func applyMiddleware(handler http.Handler, logger *common.Logger, config *common.Config) http.Handler {
	// Apply in reverse order (last applied = first executed)
	handler = loggingMiddleware(logger)(handler)
	handler = correlationIDMiddleware(handler)
	handler = csrfMiddleware(config)(handler)
	handler = writeLimitMiddleware(config.Limits)(handler)
	handler = authMiddleware(config)(handler)
	handler = bodyLimitMiddleware(config.Limits.MaxBodyBytes)(handler)
	handler = corsMiddleware(handler)
	handler = recoveryMiddleware(logger)(handler)
	return handler
}
