package session

import "context"

// Storage entry names. The file store keeps all three in one document; the
// Redis store uses them as key suffixes. Either way they are only ever read
// and written through a Store.
const (
	keyAccessToken  = "trailstory_token"
	keyRefreshToken = "trailstory_refresh_token"
	keyUser         = "trailstory_user"
)

// Store persists the session between requests and between runs.
//
// Save replaces any previous session wholesale. Load reports absent for
// missing or unreadable data rather than failing the caller. Clear is
// idempotent. IsAuthenticated only checks that an access token is present;
// whether the token is still accepted is discovered lazily when a request
// fails.
type Store interface {
	Save(ctx context.Context, s Session) error
	Load(ctx context.Context) (Session, bool)
	Clear(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
}
