package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/httpx"
	"github.com/NeuralTrust/ConsensusSentry/pkg/types"
	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 10 * time.Second

var _ Registry = (*Client)(nil)

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	cfg    Config
	http   httpx.Client
	logger *logrus.Logger
}

func NewClient(cfg Config, httpClient httpx.Client, logger *logrus.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = httpx.NewFastHTTPClient(httpx.WithTimeout(cfg.Timeout))
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// CreateGuardrail submits a draft. The draft must carry a name and at least
// one rule; ids, owner, statuses and vote counts are assigned by the registry.
func (c *Client) CreateGuardrail(ctx context.Context, draft guardrail.Guardrail) (string, error) {
	if err := draft.ValidateForSubmission(); err != nil {
		return "", err
	}
	body := request.CreateGuardrailRequest{
		Name:     draft.Name,
		Category: draft.Category,
		Rules:    make([]request.RuleRequest, 0, len(draft.Rules)),
	}
	for _, rule := range draft.Rules {
		body.Rules = append(body.Rules, request.RuleRequest{Text: rule.Text})
	}

	var result types.Result[string]
	if err := c.do(ctx, http.MethodPost, "/api/v1/guardrails", body, &result); err != nil {
		return "", err
	}
	return c.unwrap(result, "guardrail", "")
}

func (c *Client) ProposeRule(ctx context.Context, guardrailID string, text string) (string, error) {
	if err := guardrail.ValidateRuleText(text); err != nil {
		return "", err
	}
	var result types.Result[string]
	path := "/api/v1/guardrails/" + url.PathEscape(guardrailID) + "/rules"
	if err := c.do(ctx, http.MethodPost, path, request.RuleRequest{Text: text}, &result); err != nil {
		return "", err
	}
	return c.unwrap(result, "guardrail", guardrailID)
}

func (c *Client) GetGuardrail(ctx context.Context, id string) (*guardrail.Guardrail, error) {
	var result types.Result[guardrail.Guardrail]
	if err := c.do(ctx, http.MethodGet, "/api/v1/guardrails/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	g, err := result.Unwrap()
	if err != nil {
		return nil, reasonError(http.StatusOK, result.Reason(), "guardrail", id)
	}
	return &g, nil
}

func (c *Client) GetGuardrailsByOwner(ctx context.Context) ([]guardrail.Guardrail, error) {
	var list []guardrail.Guardrail
	if err := c.do(ctx, http.MethodGet, "/api/v1/guardrails/mine", nil, &list); err != nil {
		return nil, err
	}
	return nonNil(list), nil
}

func (c *Client) GetAllGuardrails(ctx context.Context) ([]guardrail.Guardrail, error) {
	var list []guardrail.Guardrail
	if err := c.do(ctx, http.MethodGet, "/api/v1/guardrails", nil, &list); err != nil {
		return nil, err
	}
	return nonNil(list), nil
}

func (c *Client) AdvanceToVoting(ctx context.Context, ruleID string) (*guardrail.Rule, error) {
	return c.ruleCall(ctx, ruleID, "voting", nil)
}

func (c *Client) CastVote(ctx context.Context, ruleID string, direction guardrail.VoteDirection) (*guardrail.Rule, error) {
	if !direction.Valid() {
		return nil, guardrail.ErrInvalidVoteDirection
	}
	return c.ruleCall(ctx, ruleID, "votes", request.CastVoteRequest{Direction: string(direction)})
}

func (c *Client) Finalize(ctx context.Context, ruleID string) (*guardrail.Rule, error) {
	return c.ruleCall(ctx, ruleID, "finalize", nil)
}

func (c *Client) ruleCall(ctx context.Context, ruleID, action string, payload any) (*guardrail.Rule, error) {
	var result types.Result[guardrail.Rule]
	path := "/api/v1/rules/" + url.PathEscape(ruleID) + "/" + action
	if err := c.do(ctx, http.MethodPost, path, payload, &result); err != nil {
		return nil, err
	}
	rule, err := result.Unwrap()
	if err != nil {
		return nil, reasonError(http.StatusOK, result.Reason(), "rule", ruleID)
	}
	return &rule, nil
}

func (c *Client) unwrap(result types.Result[string], entity, id string) (string, error) {
	value, err := result.Unwrap()
	if err != nil {
		return "", reasonError(http.StatusOK, result.Reason(), entity, id)
	}
	return value, nil
}

// do performs the call and decodes the body into out. Non-2xx replies carrying
// an Err body are turned into domain errors.
func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", httpx.AcceptEncoding)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Error("registry request failed")
		return fmt.Errorf("registry request failed: %w", err)
	}
	body, err := httpx.ReadBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read registry response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= http.StatusMultipleChoices:
		var failure types.Result[json.RawMessage]
		if err := json.Unmarshal(body, &failure); err == nil && failure.IsErr() {
			entity, id := entityOf(path)
			return reasonError(resp.StatusCode, failure.Reason(), entity, id)
		}
		c.logger.WithField("status", resp.StatusCode).Error("registry returned an error status")
		return fmt.Errorf("%w: %d %s", ErrUnexpectedReply, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedReply, err)
	}
	return nil
}

// entityOf extracts the addressed entity from an api path such as
// /api/v1/rules/<id>/votes.
func entityOf(path string) (string, string) {
	parts := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	if len(parts) < 2 {
		return "guardrail", ""
	}
	id, _ := url.PathUnescape(parts[1])
	if parts[0] == "rules" {
		return "rule", id
	}
	return "guardrail", id
}

func nonNil(list []guardrail.Guardrail) []guardrail.Guardrail {
	if list == nil {
		return []guardrail.Guardrail{}
	}
	return list
}
