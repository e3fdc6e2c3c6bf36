package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

const (
	DefaultBaseURL = "https://toxic-classifier-api-936459055446.us-central1.run.app"
	DefaultTimeout = 10 * time.Second

	predictPath = "/predict"
)

var (
	ErrRequestFailed = errors.New("HTTP request failed")
	ErrParseResponse = errors.New("Failed to parse API response") //nolint:staticcheck
	ErrEmptyText     = errors.New("text is required")
)

//go:generate mockery --name=Classifier --dir=. --output=./mocks --filename=classifier_mock.go --case=underscore --with-expecter
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type promptClassifier struct {
	cfg    Config
	client httpx.Client
	logger *logrus.Logger
	parser fastjson.ParserPool
}

func NewClassifier(cfg Config, client httpx.Client, logger *logrus.Logger) Classifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = httpx.NewFastHTTPClient(httpx.WithTimeout(cfg.Timeout))
	}
	return &promptClassifier{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// Classify returns the label scores of text as "label: score" pairs joined
// by ", ", in the order the service sent them.
func (c *promptClassifier) Classify(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+predictPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", httpx.AcceptEncoding)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("classifier request failed")
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	body, err := httpx.ReadBody(resp)
	if err != nil {
		c.logger.WithError(err).Error("failed to read classifier response")
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.WithField("status", resp.StatusCode).Error("classifier returned an error status")
		return "", fmt.Errorf("%w: %s (%d)", ErrRequestFailed, strings.TrimSpace(string(body)), resp.StatusCode)
	}

	return c.format(body)
}

func (c *promptClassifier) format(body []byte) (string, error) {
	p := c.parser.Get()
	defer c.parser.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseResponse, err)
	}
	obj, err := v.Object()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseResponse, err)
	}

	pairs := make([]string, 0, obj.Len())
	var visitErr error
	obj.Visit(func(key []byte, value *fastjson.Value) {
		if visitErr != nil {
			return
		}
		switch value.Type() {
		case fastjson.TypeString:
			pairs = append(pairs, fmt.Sprintf("%s: %s", key, value.GetStringBytes()))
		case fastjson.TypeNumber, fastjson.TypeTrue, fastjson.TypeFalse, fastjson.TypeNull:
			pairs = append(pairs, fmt.Sprintf("%s: %s", key, value.String()))
		default:
			visitErr = fmt.Errorf("%w: field %q is not a scalar", ErrParseResponse, key)
		}
	})
	if visitErr != nil {
		return "", visitErr
	}
	return strings.Join(pairs, ", "), nil
}
