package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps the three session entries as independent Redis keys under
// a caller-chosen prefix, for deployments where the client runs server-side
// and sessions must survive process restarts or be shared across instances.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisStore wraps an existing Redis client. The prefix namespaces the
// session keys so multiple users (or multiple apps) can share one database.
func NewRedisStore(client *redis.Client, prefix string, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (r *RedisStore) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + ":" + name
}

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	userData, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode user profile: %w", err)
	}

	// All three entries land in a single MULTI/EXEC so a reader never sees a
	// half-replaced session.
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(keyAccessToken), s.AccessToken, 0)
	pipe.Set(ctx, r.key(keyRefreshToken), s.RefreshToken, 0)
	pipe.Set(ctx, r.key(keyUser), string(userData), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error().Err(err).Msg("redis session save failed")
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context) (Session, bool) {
	vals, err := r.client.MGet(ctx,
		r.key(keyAccessToken),
		r.key(keyRefreshToken),
		r.key(keyUser),
	).Result()
	if err != nil {
		r.logger.Warn().Err(err).Msg("redis session load failed, treating as absent")
		return Session{}, false
	}

	asString := func(v interface{}) string {
		s, _ := v.(string)
		return s
	}

	s := Session{
		AccessToken:  asString(vals[0]),
		RefreshToken: asString(vals[1]),
	}
	if s.AccessToken == "" {
		return Session{}, false
	}

	if raw := asString(vals[2]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.User); err != nil {
			r.logger.Warn().Err(err).Msg("stored user profile corrupt, ignoring")
			s.User = UserProfile{}
		}
	}

	return s, true
}

func (r *RedisStore) Clear(ctx context.Context) error {
	err := r.client.Del(ctx,
		r.key(keyAccessToken),
		r.key(keyRefreshToken),
		r.key(keyUser),
	).Err()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *RedisStore) IsAuthenticated(ctx context.Context) bool {
	_, ok := r.Load(ctx)
	return ok
}
