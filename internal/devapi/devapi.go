// Package devapi is an in-memory stand-in for the TrailStory API. It serves
// the same HTTP contract as the real backend (envelope responses, JWT access
// tokens, rotating refresh tokens) so the client's integration tests and
// frontend development can run without it. It keeps everything in process
// memory and is not a production server.
package devapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type Config struct {
	// JWTSecret signs access tokens. A development default applies when empty.
	JWTSecret []byte
	// TokenTTL is the access token lifetime. Short values are useful in tests
	// to exercise the client's refresh path.
	TokenTTL time.Duration
	// RefreshTTL is the refresh token lifetime.
	RefreshTTL time.Duration
	// RateWindow and RateMax throttle the auth endpoints per client address.
	RateWindow time.Duration
	RateMax    int
}

type Server struct {
	cfg     Config
	logger  zerolog.Logger
	store   *store
	limiter *rateLimiter
}

func New(cfg Config, logger zerolog.Logger) *Server {
	if len(cfg.JWTSecret) == 0 {
		cfg.JWTSecret = []byte("trailstory-dev-secret")
	}
	// A negative TokenTTL is allowed: tests use it to mint already-expired
	// tokens and exercise the client's refresh path.
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = 24 * time.Hour
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}
	if cfg.RateMax <= 0 {
		cfg.RateMax = 30
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		store:   newStore(cfg.RefreshTTL),
		limiter: newRateLimiter(cfg.RateWindow, cfg.RateMax),
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/auth/register", s.throttle(s.handleRegister)).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.throttle(s.handleLogin)).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.throttle(s.handleRefresh)).Methods(http.MethodPost)

	r.HandleFunc("/users/me", s.requireAuth(s.handleMe)).Methods(http.MethodGet)
	r.HandleFunc("/users/me", s.requireAuth(s.handleUpdateMe)).Methods(http.MethodPatch)
	r.HandleFunc("/users/me/avatar", s.requireAuth(s.handleUploadAvatar)).Methods(http.MethodPost)
	r.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/followers", s.requireAuth(s.handleFollowers)).Methods(http.MethodGet)
	r.HandleFunc("/users/follow/{id}", s.requireAuth(s.handleFollow)).Methods(http.MethodPost)
	r.HandleFunc("/users/unfollow/{id}", s.requireAuth(s.handleUnfollow)).Methods(http.MethodDelete)

	r.HandleFunc("/journeys", s.requireAuth(s.handleListJourneys)).Methods(http.MethodGet)
	r.HandleFunc("/journeys", s.requireAuth(s.handleCreateJourney)).Methods(http.MethodPost)
	r.HandleFunc("/journeys/{id}", s.requireAuth(s.handleDeleteJourney)).Methods(http.MethodDelete)
	r.HandleFunc("/journeys/{id}/checkpoints", s.requireAuth(s.handleCreateCheckpoint)).Methods(http.MethodPost)
	r.HandleFunc("/checkpoints/{id}", s.requireAuth(s.handleDeleteCheckpoint)).Methods(http.MethodDelete)
	r.HandleFunc("/feed", s.handleFeed).Methods(http.MethodGet)

	return r
}
