package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const (
	checkPath  = "/check"
	batchPath  = "/batch_check"
	healthPath = "/health"
)

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	Validate(ctx context.Context, content string) (*CheckResult, error)
	ValidateWithContext(ctx context.Context, content string, extra map[string]any) (*CheckResult, error)
	ValidateBatch(ctx context.Context, contents []string) (*BatchResult, error)
	Health(ctx context.Context) (*HealthStatus, error)
}

type ClientOption func(*client)

func WithHTTPClient(c httpx.Client) ClientOption {
	return func(cl *client) {
		cl.http = c
	}
}

// WithCircuitBreaker guards every call. Only transport failures, timeouts and
// 5xx answers count against the breaker.
func WithCircuitBreaker(cb httpx.CircuitBreaker) ClientOption {
	return func(cl *client) {
		cl.breaker = cb
	}
}

func WithLogger(logger *logrus.Logger) ClientOption {
	return func(cl *client) {
		cl.logger = logger
	}
}

type client struct {
	opts    Options
	http    httpx.Client
	breaker httpx.CircuitBreaker
	logger  *logrus.Logger
}

func NewClient(opts Options, options ...ClientOption) (Client, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", opts.BaseURL, err)
	}
	c := &client{opts: opts}
	for _, o := range options {
		o(c)
	}
	if c.http == nil {
		c.http = httpx.NewFastHTTPClient(httpx.WithTimeout(opts.Timeout))
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	return c, nil
}

func (c *client) Validate(ctx context.Context, content string) (*CheckResult, error) {
	return c.ValidateWithContext(ctx, content, nil)
}

func (c *client) ValidateWithContext(
	ctx context.Context,
	content string,
	extra map[string]any,
) (*CheckResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	var resp CheckResponse
	if err := c.call(ctx, http.MethodPost, checkPath, checkRequest{Text: content, Context: extra}, &resp); err != nil {
		return nil, err
	}
	result := NormalizeCheck(resp)
	return &result, nil
}

func (c *client) ValidateBatch(ctx context.Context, contents []string) (*BatchResult, error) {
	if len(contents) == 0 {
		return nil, ErrEmptyBatch
	}
	items := make([]batchItem, len(contents))
	for i, content := range contents {
		if strings.TrimSpace(content) == "" {
			return nil, fmt.Errorf("item %d: %w", i, ErrEmptyContent)
		}
		items[i] = batchItem{Text: content}
	}

	var resp BatchResponse
	if err := c.call(ctx, http.MethodPost, batchPath, batchRequest{Items: items}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) != len(contents) {
		c.logger.WithFields(logrus.Fields{
			"expected": len(contents),
			"received": len(resp.Results),
		}).Error("moderation batch result count mismatch")
		return nil, fmt.Errorf("%w: expected %d results, got %d", ErrInvalidResponse, len(contents), len(resp.Results))
	}
	result := NormalizeBatch(resp)
	return &result, nil
}

// call runs one request under the configured timeout and decodes a 2xx body into out.
func (c *client) call(ctx context.Context, method, path string, payload any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	var (
		body    []byte
		callErr error
	)
	attempt := func() error {
		body, callErr = c.roundTrip(ctx, method, path, payload)
		var modErr *Error
		if errors.As(callErr, &modErr) && modErr.Kind == KindAPI && modErr.StatusCode < http.StatusInternalServerError {
			return nil
		}
		return callErr
	}

	if c.breaker == nil {
		_ = attempt()
	} else if err := c.breaker.Execute(attempt); err != nil && callErr == nil {
		c.logger.WithError(err).Warn("moderation call rejected by circuit breaker")
		return &Error{Kind: KindNetwork, Err: err}
	}
	if callErr != nil {
		if !errors.Is(callErr, context.Canceled) {
			c.logger.WithError(callErr).WithField("path", path).Error("moderation call failed")
		}
		return callErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.WithError(err).WithField("path", path).Error("failed to decode moderation response")
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func (c *client) roundTrip(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", httpx.AcceptEncoding)
	req.Header.Set("X-API-Key", c.opts.APIKey)
	req.Header.Set("X-Environment", c.opts.Environment)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	body, _, decodeErr := httpx.DecodeBody(resp.Header.Get("Content-Encoding"), raw)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// An error reply stays an API error even when its encoding is broken.
		if decodeErr != nil {
			body = raw
		}
		return nil, newAPIError(resp.StatusCode, body)
	}
	if decodeErr != nil {
		return nil, c.transportError(ctx, decodeErr)
	}
	return body, nil
}

func (c *client) transportError(ctx context.Context, err error) *Error {
	if httpx.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Timeout: c.opts.Timeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}
