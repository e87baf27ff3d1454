package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserProfile is the authenticated user's profile as returned by the API.
type UserProfile struct {
	ID            string    `json:"id"`
	DisplayName   string    `json:"display_name"`
	Email         string    `json:"email"`
	ProfilePicURL string    `json:"profile_pic_url,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// Session is the credential set persisted between runs. It is always replaced
// as a unit: login, register and refresh overwrite all three fields together.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         UserProfile
}

// AccessTokenExpiresAt peeks at the unverified exp claim of the access token.
// The result is advisory; token validity is only ever discovered through a
// rejected request, not by checking expiry up front.
func (s Session) AccessTokenExpiresAt() (time.Time, bool) {
	if s.AccessToken == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
