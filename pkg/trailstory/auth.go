package trailstory

import (
	"context"
	"net/http"

	"github.com/Mahaveer86619/trailstory-go/pkg/transport"
)

// AuthService covers login, registration and explicit token refresh. Each
// successful call replaces the stored session as a unit.
type AuthService struct {
	client *Client
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthData, error) {
	var data AuthData
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   loginRequest{Email: email, Password: password},
	}, &data)
	if err != nil {
		return AuthData{}, err
	}
	if err := s.client.saveSession(ctx, data); err != nil {
		return AuthData{}, err
	}
	return data, nil
}

func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (AuthData, error) {
	var data AuthData
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   registerRequest{Email: email, Password: password, DisplayName: displayName},
	}, &data)
	if err != nil {
		return AuthData{}, err
	}
	if err := s.client.saveSession(ctx, data); err != nil {
		return AuthData{}, err
	}
	return data, nil
}

// Refresh exchanges a refresh token explicitly. The pipeline performs this on
// its own when a request hits a 401; this method exists for callers that want
// to refresh eagerly.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthData, error) {
	var data AuthData
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   refreshRequest{RefreshToken: refreshToken},
	}, &data)
	if err != nil {
		return AuthData{}, err
	}
	if err := s.client.saveSession(ctx, data); err != nil {
		return AuthData{}, err
	}
	return data, nil
}

// Logout discards the stored session. The server keeps no session state for
// this client beyond the refresh token, which simply goes unused.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.client.store.Clear(ctx)
}
