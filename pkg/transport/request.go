package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Request describes an outgoing API call. Bodies are held as values rather
// than streams so the same request can be dispatched again after a session
// refresh.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is JSON-encoded when non-nil. Mutually exclusive with Multipart.
	Body any
	// Multipart, when set, sends a single-file multipart form body.
	Multipart *Multipart
}

// Multipart is a buffered file upload.
type Multipart struct {
	Field    string
	Filename string
	Content  []byte
}

// Response is the fully read result of a dispatched request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (p *Pipeline) newHTTPRequest(ctx context.Context, req Request, token string) (*http.Request, error) {
	target := p.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body *bytes.Reader
	contentType := ""
	switch {
	case req.Multipart != nil:
		buf := &bytes.Buffer{}
		form := multipart.NewWriter(buf)
		part, err := form.CreateFormFile(req.Multipart.Field, req.Multipart.Filename)
		if err != nil {
			return nil, fmt.Errorf("create multipart field: %w", err)
		}
		if _, err := part.Write(req.Multipart.Content); err != nil {
			return nil, fmt.Errorf("write multipart content: %w", err)
		}
		if err := form.Close(); err != nil {
			return nil, fmt.Errorf("finalize multipart body: %w", err)
		}
		body = bytes.NewReader(buf.Bytes())
		contentType = form.FormDataContentType()
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	default:
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}
