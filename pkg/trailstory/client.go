// Package trailstory is the Go client for the TrailStory API. It wires the
// session store and the authenticated request pipeline together and exposes
// typed facades for the auth, user, journey and checkpoint endpoints.
package trailstory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Mahaveer86619/trailstory-go/internal/config"
	"github.com/Mahaveer86619/trailstory-go/internal/logger"
	"github.com/Mahaveer86619/trailstory-go/pkg/session"
	"github.com/Mahaveer86619/trailstory-go/pkg/transport"
)

// DefaultBaseURL is the local development endpoint.
const DefaultBaseURL = "http://localhost:7000"

// Config configures a Client. Zero values fall back to defaults: the local
// base URL, an in-memory session store, the default HTTP client and a no-op
// logger.
type Config struct {
	BaseURL    string
	Store      session.Store
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client groups the API facades over one shared pipeline and session store.
type Client struct {
	Auth        *AuthService
	Users       *UsersService
	Journeys    *JourneysService
	Checkpoints *CheckpointsService

	pipeline *transport.Pipeline
	store    session.Store
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Store == nil {
		cfg.Store = session.NewMemoryStore()
	}

	c := &Client{
		pipeline: transport.New(cfg.BaseURL, cfg.Store, cfg.HTTPClient, cfg.Logger),
		store:    cfg.Store,
	}
	c.Auth = &AuthService{client: c}
	c.Users = &UsersService{client: c}
	c.Journeys = &JourneysService{client: c}
	c.Checkpoints = &CheckpointsService{client: c}
	return c
}

// NewFromEnv builds a client from environment configuration. Sessions live in
// a local file by default, or in Redis when TRAILSTORY_REDIS_ADDR is set.
func NewFromEnv() (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.LogLevel)

	var store session.Store
	if cfg.RedisAddr != "" {
		store = session.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), "trailstory", logger.Component(log, "session"))
	} else {
		path := cfg.SessionPath
		if path == "" {
			path, err = session.DefaultSessionPath()
			if err != nil {
				return nil, err
			}
		}
		store = session.NewFileStore(path, logger.Component(log, "session"))
	}

	return New(Config{
		BaseURL:    cfg.APIBaseURL,
		Store:      store,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Logger:     logger.Component(log, "transport"),
	}), nil
}

// IsAuthenticated reports whether a session with an access token is stored.
// Token validity is only discovered when a request fails.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.store.IsAuthenticated(ctx)
}

// CurrentUser returns the stored profile without a network round trip.
func (c *Client) CurrentUser(ctx context.Context) (User, bool) {
	s, ok := c.store.Load(ctx)
	if !ok {
		return User{}, false
	}
	return s.User, true
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
}

// do sends a request through the pipeline, maps non-2xx responses to error
// kinds, and unwraps the envelope's data field into out.
func (c *Client) do(ctx context.Context, req transport.Request, out any) error {
	resp, err := c.pipeline.Send(ctx, req)
	if err != nil {
		return err
	}
	if err := transport.FromResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return fmt.Errorf("decode response envelope: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func (c *Client) saveSession(ctx context.Context, data AuthData) error {
	return c.store.Save(ctx, session.Session{
		AccessToken:  data.Token,
		RefreshToken: data.RefreshToken,
		User:         data.User,
	})
}
