package mocks

import (
	"context"

	"github.com/NeuralTrust/ConsensusSentry/pkg/moderation"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (m *Client) Validate(ctx context.Context, content string) (*moderation.CheckResult, error) {
	args := m.Called(ctx, content)
	result, _ := args.Get(0).(*moderation.CheckResult)
	return result, args.Error(1)
}

func (m *Client) ValidateWithContext(ctx context.Context, content string, extra map[string]any) (*moderation.CheckResult, error) {
	args := m.Called(ctx, content, extra)
	result, _ := args.Get(0).(*moderation.CheckResult)
	return result, args.Error(1)
}

func (m *Client) ValidateBatch(ctx context.Context, contents []string) (*moderation.BatchResult, error) {
	args := m.Called(ctx, contents)
	result, _ := args.Get(0).(*moderation.BatchResult)
	return result, args.Error(1)
}

func (m *Client) Health(ctx context.Context) (*moderation.HealthStatus, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*moderation.HealthStatus)
	return result, args.Error(1)
}
