package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (m *Client) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *Client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *Client) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *Client) RedisClient() *redis.Client {
	args := m.Called()
	rc, _ := args.Get(0).(*redis.Client)
	return rc
}

func (m *Client) GetGuardrail(ctx context.Context, id string) (*guardrail.Guardrail, error) {
	args := m.Called(ctx, id)
	g, ok := args.Get(0).(*guardrail.Guardrail)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *guardrail.Guardrail, got %T", args.Get(0))
	}
	return g, args.Error(1)
}

func (m *Client) FillToken(ctx context.Context, id string) (cache.FillToken, error) {
	args := m.Called(ctx, id)
	token, _ := args.Get(0).(cache.FillToken)
	return token, args.Error(1)
}

func (m *Client) SaveGuardrail(ctx context.Context, g *guardrail.Guardrail, token cache.FillToken) error {
	args := m.Called(ctx, g, token)
	return args.Error(0)
}

func (m *Client) InvalidateGuardrail(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Client) ForgetLocal(id string) {
	m.Called(id)
}
