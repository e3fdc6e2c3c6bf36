package moderation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/pretty"
)

var (
	ErrAPI     = errors.New("moderation api error")
	ErrTimeout = errors.New("moderation request timed out")
	ErrNetwork = errors.New("moderation network error")

	ErrEmptyContent    = errors.New("content must not be empty")
	ErrEmptyBatch      = errors.New("batch must contain at least one item")
	ErrInvalidResponse = errors.New("invalid moderation response")
	ErrInvalidBaseURL  = errors.New("base url must be an absolute http(s) url")
)

type Kind uint8

const (
	KindAPI Kind = iota + 1
	KindTimeout
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is returned for every failed call that reached the transport.
type Error struct {
	Kind       Kind
	StatusCode int
	Body       string
	Timeout    time.Duration
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAPI:
		return fmt.Sprintf("API Error: %d - %s", e.StatusCode, e.Body)
	case KindTimeout:
		return fmt.Sprintf("Request timed out after %dms", e.Timeout.Milliseconds())
	default:
		msg := "unknown error"
		if e.Err != nil {
			msg = e.Err.Error()
		}
		return "Network Error: " + msg
	}
}

func (e *Error) Unwrap() []error {
	var sentinel error
	switch e.Kind {
	case KindAPI:
		sentinel = ErrAPI
	case KindTimeout:
		sentinel = ErrTimeout
	default:
		sentinel = ErrNetwork
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

func newAPIError(status int, body []byte) *Error {
	return &Error{Kind: KindAPI, StatusCode: status, Body: serializeBody(body)}
}

// serializeBody renders a response body the way it appears in API error
// messages: compact JSON, or a quoted string for anything else.
func serializeBody(body []byte) string {
	if len(body) > 0 && json.Valid(body) {
		return string(pretty.Ugly(body))
	}
	quoted, _ := json.Marshal(string(body))
	return string(quoted)
}

// Outcome labels err for metrics: ok, api, timeout, network or invalid.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var modErr *Error
	if errors.As(err, &modErr) {
		return modErr.Kind.String()
	}
	return "invalid"
}
