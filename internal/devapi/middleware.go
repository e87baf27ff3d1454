package devapi

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"
)

type contextKey string

const userIDKey contextKey = "user_id"

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearer(r)
		if tokenString == "" {
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := s.parseAccessToken(tokenString)
		if err != nil {
			s.logger.Debug().Err(err).Msg("rejected access token")
			s.writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

func requestUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// rateLimiter is a sliding-window counter keyed by client address, applied to
// the auth endpoints so a misbehaving loop can't hammer login or refresh.
type rateLimiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	window  time.Duration
	maxHits int
}

func newRateLimiter(window time.Duration, maxHits int) *rateLimiter {
	return &rateLimiter{
		hits:    make(map[string][]time.Time),
		window:  window,
		maxHits: maxHits,
	}
}

func (l *rateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-l.window)

	valid := l.hits[key][:0]
	for _, hit := range l.hits[key] {
		if hit.After(windowStart) {
			valid = append(valid, hit)
		}
	}
	l.hits[key] = valid

	if len(valid) >= l.maxHits {
		return false
	}
	l.hits[key] = append(valid, now)
	return true
}

func (s *Server) throttle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			key = r.RemoteAddr
		}
		if !s.limiter.allow(key) {
			s.logger.Warn().Str("addr", key).Str("path", r.URL.Path).Msg("rate limit exceeded")
			s.writeError(w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		next(w, r)
	}
}
