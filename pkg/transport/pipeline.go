package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Mahaveer86619/trailstory-go/pkg/session"
)

const refreshPath = "/auth/refresh"

// Pipeline dispatches API requests with the stored access token attached and
// recovers from a rejected token with a single refresh-and-retry cycle.
//
// Per request the lifecycle is: dispatch, and on the first 401 refresh the
// session, then dispatch once more. The second outcome is final whatever it
// is. When the session cannot be refreshed (no refresh token, or the refresh
// endpoint rejects it) the store is cleared and the caller receives a
// KindAuthExpired error instead of the raw 401.
type Pipeline struct {
	client  *http.Client
	baseURL string
	store   session.Store
	logger  zerolog.Logger
	refresh singleflight.Group
}

// New builds a pipeline over the given base URL and session store. A nil
// httpClient falls back to a default client.
func New(baseURL string, store session.Store, httpClient *http.Client, logger zerolog.Logger) *Pipeline {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Pipeline{
		client:  httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		logger:  logger,
	}
}

// BaseURL returns the API root this pipeline talks to.
func (p *Pipeline) BaseURL() string { return p.baseURL }

// Send dispatches the request with the current credentials. Responses other
// than 401 pass through untouched, success and failure alike; classification
// of non-2xx statuses is left to the caller via FromResponse.
func (p *Pipeline) Send(ctx context.Context, req Request) (*Response, error) {
	return p.send(ctx, req, 0)
}

// send carries the attempt count explicitly so a retried request can never be
// retried again, no matter how it fails.
func (p *Pipeline) send(ctx context.Context, req Request, attempt int) (*Response, error) {
	token := ""
	if s, ok := p.store.Load(ctx); ok {
		token = s.AccessToken
	}

	resp, err := p.dispatch(ctx, req, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || attempt > 0 {
		return resp, nil
	}

	p.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Msg("access token rejected, attempting session refresh")

	if err := p.refreshSession(ctx); err != nil {
		return nil, err
	}
	return p.send(ctx, req, attempt+1)
}

func (p *Pipeline) dispatch(ctx context.Context, req Request, token string) (*Response, error) {
	httpReq, err := p.newHTTPRequest(ctx, req, token)
	if err != nil {
		return nil, err
	}

	res, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.Warn().
			Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("request failed before a response arrived")
		return nil, newError(KindNetwork, "request failed: "+err.Error(), err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, newError(KindNetwork, "read response body: "+err.Error(), err)
	}

	return &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
	}, nil
}

// refreshSession coalesces concurrent callers behind one in-flight refresh.
// Requests that failed with 401 while a refresh was already running wait for
// its outcome and then retry with whatever session it produced. The refresh
// itself runs on a context detached from the caller's: its outcome is shared
// by every waiter, so cancelling the caller that happened to start it must
// not sign the others out.
func (p *Pipeline) refreshSession(ctx context.Context) error {
	refreshCtx := context.WithoutCancel(ctx)
	_, err, shared := p.refresh.Do("refresh", func() (interface{}, error) {
		return nil, p.doRefresh(refreshCtx)
	})
	if shared {
		p.logger.Debug().Msg("joined in-flight session refresh")
	}
	return err
}

func (p *Pipeline) doRefresh(ctx context.Context) error {
	s, ok := p.store.Load(ctx)
	if !ok || s.RefreshToken == "" {
		p.clearSession(ctx)
		return newError(KindAuthExpired, "authentication expired", nil)
	}

	if exp, ok := s.AccessTokenExpiresAt(); ok {
		p.logger.Debug().Time("token_expiry", exp).Msg("refreshing expired access token")
	}

	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: s.RefreshToken}

	resp, err := p.dispatch(ctx, Request{
		Method: http.MethodPost,
		Path:   refreshPath,
		Body:   body,
	}, "")
	if err != nil {
		p.clearSession(ctx)
		return newError(KindAuthExpired, "authentication expired", err)
	}
	if resp.StatusCode != http.StatusOK {
		p.logger.Info().Int("status", resp.StatusCode).Msg("refresh token rejected, signing out")
		p.clearSession(ctx)
		return &Error{Kind: KindAuthExpired, StatusCode: resp.StatusCode, Message: "authentication expired"}
	}

	var env struct {
		Data struct {
			Token        string              `json:"token"`
			RefreshToken string              `json:"refresh_token"`
			User         session.UserProfile `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil || env.Data.Token == "" {
		p.logger.Warn().Err(err).Msg("unusable refresh response, signing out")
		p.clearSession(ctx)
		return newError(KindAuthExpired, "authentication expired", err)
	}

	refreshed := session.Session{
		AccessToken:  env.Data.Token,
		RefreshToken: env.Data.RefreshToken,
		User:         env.Data.User,
	}
	if err := p.store.Save(ctx, refreshed); err != nil {
		return newError(KindAuthExpired, "persist refreshed session: "+err.Error(), err)
	}

	p.logger.Info().Str("user_id", refreshed.User.ID).Msg("session refreshed")
	return nil
}

func (p *Pipeline) clearSession(ctx context.Context) {
	if err := p.store.Clear(ctx); err != nil {
		p.logger.Error().Err(err).Msg("failed to clear session")
	}
}
