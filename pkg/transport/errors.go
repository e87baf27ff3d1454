package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies request failures so callers can decide how to present them
// without inspecting raw status codes.
type Kind int

const (
	// KindNetwork is a transport failure with no HTTP response.
	KindNetwork Kind = iota + 1
	// KindAuthExpired means the session could not be recovered and the user
	// must sign in again. The caller owns any navigation that follows.
	KindAuthExpired
	// KindValidation is a 4xx rejection whose message is safe to show verbatim.
	KindValidation
	// KindNotFound means the referenced entity does not exist.
	KindNotFound
	// KindServer is a 5xx failure, presented generically.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuthExpired:
		return "auth_expired"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the failure type returned by the pipeline and facades.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d)", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s error", e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf returns the classification of err, or 0 for errors that did not
// originate here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsAuthExpired(err error) bool { return KindOf(err) == KindAuthExpired }
func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }
func IsNetwork(err error) bool     { return KindOf(err) == KindNetwork }

// FromResponse maps a non-2xx envelope response to its error kind, pulling
// the server's message out of the envelope when one is present. 2xx responses
// map to nil.
func FromResponse(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var env struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(resp.Body, &env)

	e := &Error{StatusCode: resp.StatusCode, Message: env.Message}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		e.Kind = KindAuthExpired
		if e.Message == "" {
			e.Message = "authentication expired"
		}
	case resp.StatusCode == http.StatusNotFound:
		e.Kind = KindNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		e.Kind = KindValidation
	default:
		e.Kind = KindServer
	}
	return e
}
