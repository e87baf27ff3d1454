package trailstory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Mahaveer86619/trailstory-go/pkg/transport"
)

// CheckpointsService records and removes points along a journey.
type CheckpointsService struct {
	client *Client
}

func (s *CheckpointsService) Create(ctx context.Context, journeyID string, input CreateCheckpointInput) (Checkpoint, error) {
	var cp Checkpoint
	err := s.client.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/journeys/%s/checkpoints", url.PathEscape(journeyID)),
		Body:   input,
	}, &cp)
	return cp, err
}

func (s *CheckpointsService) Delete(ctx context.Context, checkpointID string) error {
	return s.client.do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/checkpoints/%s", url.PathEscape(checkpointID)),
	}, nil)
}
