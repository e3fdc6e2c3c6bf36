package guardrail

import (
	"context"
	"io"
	"sync"
	"testing"

	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	infraCache "github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func memoryRepo(t *testing.T) domainGuardrail.Repository {
	t.Helper()
	repo, err := repository.NewMemoryGuardrailRepository(quietLogger(), "")
	require.NoError(t, err)
	return repo
}

type mockInvalidate struct {
	mock.Mock
}

func (m *mockInvalidate) Invalidate(ctx context.Context, guardrailID string) error {
	args := m.Called(ctx, guardrailID)
	return args.Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetGuardrail(ctx context.Context, id string) (*domainGuardrail.Guardrail, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*domainGuardrail.Guardrail)
	return g, args.Error(1)
}

func (m *mockCache) FillToken(ctx context.Context, id string) (infraCache.FillToken, error) {
	args := m.Called(ctx, id)
	token, _ := args.Get(0).(infraCache.FillToken)
	return token, args.Error(1)
}

func (m *mockCache) SaveGuardrail(ctx context.Context, g *domainGuardrail.Guardrail, token infraCache.FillToken) error {
	args := m.Called(ctx, g, token)
	return args.Error(0)
}

func (m *mockCache) InvalidateGuardrail(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// storeCache keeps guardrails in process and honours fill tokens the way the
// redis backed client does.
type storeCache struct {
	gens *infraCache.Generations
	mu   sync.Mutex
	data map[string]domainGuardrail.Guardrail
}

func newStoreCache() *storeCache {
	return &storeCache{gens: infraCache.NewGenerations(), data: make(map[string]domainGuardrail.Guardrail)}
}

func (c *storeCache) GetGuardrail(_ context.Context, id string) (*domainGuardrail.Guardrail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.data[id]
	if !ok {
		return nil, infraCache.ErrCacheMiss
	}
	g.Rules = append([]domainGuardrail.Rule(nil), g.Rules...)
	return &g, nil
}

func (c *storeCache) FillToken(_ context.Context, id string) (infraCache.FillToken, error) {
	return infraCache.FillToken{Local: c.gens.Current(id)}, nil
}

func (c *storeCache) SaveGuardrail(_ context.Context, g *domainGuardrail.Guardrail, token infraCache.FillToken) error {
	copied := *g
	copied.Rules = append([]domainGuardrail.Rule(nil), g.Rules...)
	stored := c.gens.IfCurrent(g.ID, token.Local, func() {
		c.mu.Lock()
		c.data[g.ID] = copied
		c.mu.Unlock()
	})
	if !stored {
		return infraCache.ErrStaleFill
	}
	return nil
}

func (c *storeCache) InvalidateGuardrail(_ context.Context, id string) error {
	c.gens.Bump(id, func() {
		c.mu.Lock()
		delete(c.data, id)
		c.mu.Unlock()
	})
	return nil
}

// gatedRepo holds the first Get after it has read from the wrapped repository
// until release is closed.
type gatedRepo struct {
	domainGuardrail.Repository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newGatedRepo(inner domainGuardrail.Repository) *gatedRepo {
	return &gatedRepo{Repository: inner, read: make(chan struct{}), release: make(chan struct{})}
}

func (r *gatedRepo) Get(ctx context.Context, id string) (*domainGuardrail.Guardrail, error) {
	g, err := r.Repository.Get(ctx, id)
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.read)
		<-r.release
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return g, err
}
