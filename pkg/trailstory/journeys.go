package trailstory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Mahaveer86619/trailstory-go/pkg/transport"
)

// JourneysService covers the caller's journeys and the public feed.
type JourneysService struct {
	client *Client
}

func (s *JourneysService) List(ctx context.Context) ([]Journey, error) {
	journeys := []Journey{}
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/journeys",
	}, &journeys)
	return journeys, err
}

// Feed returns a page of public journeys. Page and limit fall back to 1 and
// 10 when out of range.
func (s *JourneysService) Feed(ctx context.Context, page, limit int) ([]Journey, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	journeys := []Journey{}
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/feed",
		Query: url.Values{
			"page":  []string{strconv.Itoa(page)},
			"limit": []string{strconv.Itoa(limit)},
		},
	}, &journeys)
	return journeys, err
}

// Get looks a journey up by id. The API has no single-journey endpoint, so
// this filters the list result client-side.
func (s *JourneysService) Get(ctx context.Context, id string) (Journey, error) {
	journeys, err := s.List(ctx)
	if err != nil {
		return Journey{}, err
	}
	for _, j := range journeys {
		if j.ID == id {
			return j, nil
		}
	}
	return Journey{}, &transport.Error{Kind: transport.KindNotFound, Message: "journey not found"}
}

func (s *JourneysService) Create(ctx context.Context, input CreateJourneyInput) (Journey, error) {
	var journey Journey
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/journeys",
		Body:   input,
	}, &journey)
	return journey, err
}

func (s *JourneysService) Delete(ctx context.Context, id string) error {
	return s.client.do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/journeys/%s", url.PathEscape(id)),
	}, nil)
}
