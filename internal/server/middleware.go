package server

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskrooms/taskrooms/internal/api"
	"github.com/taskrooms/taskrooms/internal/session"
)

// loggingMiddleware logs request information using slog.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// sessionMiddleware decodes the session cookie and, when the token
// verifies, attaches the session to the request context. It never
// rejects: the access gate and the handlers decide what a missing
// session means for a given path.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := s.deps.Cookies.Read(r); ok {
			if sess, valid := s.deps.Codec.Verify(token); valid {
				r = r.WithContext(session.IntoContext(r.Context(), sess))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// accessGate applies the Decide table at the edge. It inspects only
// the already-verified session in the context, so no store access
// happens here.
func (s *Server) accessGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, authenticated := session.FromContext(r.Context())
		switch Decide(r.URL.Path, authenticated) {
		case ActionRedirectHome:
			http.Redirect(w, r, "/", http.StatusSeeOther)
		case ActionRedirectLogin:
			http.Redirect(w, r, "/login?redirectTo="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
		case ActionDenyJSON:
			api.WriteUnauthorized(w, api.ReasonUnauthenticated, "authentication required")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// RateLimitConfig holds configuration for a rate-limited endpoint.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// simpleRateLimiter is an in-memory fixed-window rate limiter per key.
type simpleRateLimiter struct {
	mu       sync.Mutex
	counters map[string]*limitCounter
	limit    int
	burst    int
	window   time.Duration
}

type limitCounter struct {
	count   int
	resetAt time.Time
}

func newSimpleRateLimiter(requestsPerMinute, burst int) *simpleRateLimiter {
	return &simpleRateLimiter{
		counters: make(map[string]*limitCounter),
		limit:    requestsPerMinute,
		burst:    burst,
		window:   time.Minute,
	}
}

func (l *simpleRateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	counter, exists := l.counters[key]
	if !exists || now.After(counter.resetAt) {
		l.counters[key] = &limitCounter{
			count:   1,
			resetAt: now.Add(l.window),
		}
		return true
	}

	if counter.count < l.limit+l.burst {
		counter.count++
		return true
	}

	return false
}

// rateLimitMiddleware applies rate limiting to specific paths.
func (s *Server) rateLimitMiddleware(config map[string]RateLimitConfig) func(next http.Handler) http.Handler {
	limiters := make(map[string]*simpleRateLimiter)
	for path, cfg := range config {
		limiters[path] = newSimpleRateLimiter(cfg.RequestsPerMinute, cfg.Burst)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var limiter *simpleRateLimiter
			var matchedPath string
			for path, l := range limiters {
				if r.URL.Path == path || strings.HasPrefix(r.URL.Path, path+"/") {
					limiter = l
					matchedPath = path
					break
				}
			}

			if limiter != nil {
				clientIP := s.trustedProxies.ClientIP(r)
				if !limiter.allow(clientIP) {
					s.logger.Warn("rate limit exceeded",
						"path", matchedPath,
						"client_ip", clientIP,
					)
					w.Header().Set("Retry-After", "60")
					api.WriteTooManyRequests(w, "too many requests, please try again later")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
