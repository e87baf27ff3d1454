package trailstory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Mahaveer86619/trailstory-go/pkg/transport"
)

// UsersService covers profile and social endpoints.
type UsersService struct {
	client *Client
}

type updateMeRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func (s *UsersService) Me(ctx context.Context) (User, error) {
	var user User
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/users/me",
	}, &user)
	return user, err
}

func (s *UsersService) UpdateMe(ctx context.Context, id, displayName string) (User, error) {
	var user User
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodPatch,
		Path:   "/users/me",
		Body:   updateMeRequest{ID: id, DisplayName: displayName},
	}, &user)
	return user, err
}

// UploadAvatar sends the image as a multipart form under the "image" field.
func (s *UsersService) UploadAvatar(ctx context.Context, filename string, content []byte) (User, error) {
	var user User
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/users/me/avatar",
		Multipart: &transport.Multipart{
			Field:    "image",
			Filename: filename,
			Content:  content,
		},
	}, &user)
	return user, err
}

func (s *UsersService) List(ctx context.Context) ([]User, error) {
	users := []User{}
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/users",
	}, &users)
	return users, err
}

func (s *UsersService) Followers(ctx context.Context, userID string) ([]User, error) {
	followers := []User{}
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/users/%s/followers", url.PathEscape(userID)),
	}, &followers)
	return followers, err
}

func (s *UsersService) Follow(ctx context.Context, userID string) error {
	return s.client.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/users/follow/%s", url.PathEscape(userID)),
	}, nil)
}

func (s *UsersService) Unfollow(ctx context.Context, userID string) error {
	return s.client.do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/users/unfollow/%s", url.PathEscape(userID)),
	}, nil)
}
