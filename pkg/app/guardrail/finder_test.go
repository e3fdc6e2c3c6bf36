package guardrail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain"
	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	guardrailMocks "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail/mocks"
	"github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http/request"
	infraCache "github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFinder_Get_CacheHit(t *testing.T) {
	ctx := context.Background()
	repo := new(guardrailMocks.Repository)
	cache := new(mockCache)
	cached := &domainGuardrail.Guardrail{ID: "g-1", Name: "cached"}
	cache.On("GetGuardrail", ctx, "g-1").Return(cached, nil)

	got, err := NewFinder(quietLogger(), repo, cache).Get(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Name)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestFinder_Get_MissLoadsAndCaches(t *testing.T) {
	ctx := context.Background()
	repo := new(guardrailMocks.Repository)
	cache := new(mockCache)
	stored := &domainGuardrail.Guardrail{ID: "g-1", Name: "stored", Rules: []domainGuardrail.Rule{}}
	token := infraCache.FillToken{Remote: 3, Local: 1}
	cache.On("GetGuardrail", ctx, "g-1").Return(nil, infraCache.ErrCacheMiss)
	cache.On("FillToken", ctx, "g-1").Return(token, nil)
	cache.On("SaveGuardrail", mock.Anything, stored, token).Return(nil)
	repo.On("Get", mock.Anything, "g-1").Return(stored, nil)

	got, err := NewFinder(quietLogger(), repo, cache).Get(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "stored", got.Name)
	assert.NotNil(t, got.Rules)
	cache.AssertExpectations(t)
}

func TestFinder_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(guardrailMocks.Repository)
	repo.On("Get", ctx, "missing").Return(nil, domain.NewNotFoundError("guardrail", "missing"))

	_, err := NewFinder(quietLogger(), repo, NewNoopCache()).Get(ctx, "missing")
	require.Error(t, err)
	assert.True(t, domain.IsNotFoundError(err))
}

func TestFinder_Get_CollapsesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	repo := new(guardrailMocks.Repository)
	var calls int32
	release := make(chan struct{})
	repo.On("Get", mock.Anything, "g-1").
		Run(func(mock.Arguments) {
			atomic.AddInt32(&calls, 1)
			<-release
		}).
		Return(&domainGuardrail.Guardrail{ID: "g-1"}, nil)

	f := NewFinder(quietLogger(), repo, NewNoopCache())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Get(ctx, "g-1")
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFinder_Get_TokenFailureReadsRepository(t *testing.T) {
	ctx := context.Background()
	repo := new(guardrailMocks.Repository)
	cache := new(mockCache)
	stored := &domainGuardrail.Guardrail{ID: "g-1", Name: "stored"}
	cache.On("GetGuardrail", ctx, "g-1").Return(nil, errors.New("redis down"))
	cache.On("FillToken", ctx, "g-1").Return(nil, errors.New("redis down"))
	repo.On("Get", ctx, "g-1").Return(stored, nil)

	got, err := NewFinder(quietLogger(), repo, cache).Get(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "stored", got.Name)
	cache.AssertNotCalled(t, "SaveGuardrail", mock.Anything, mock.Anything, mock.Anything)
}

func TestFinder_Get_WriteDuringLoadIsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := memoryRepo(t)
	id, err := NewCreator(quietLogger(), inner).Create(ctx, "alice", &request.CreateGuardrailRequest{
		Name:  "g",
		Rules: []request.RuleRequest{{Text: "first"}},
	})
	require.NoError(t, err)

	repo := newGatedRepo(inner)
	cache := newStoreCache()
	f := NewFinder(quietLogger(), repo, cache)
	proposer := NewRuleProposer(quietLogger(), inner, NewInvalidateGuardrailCache(quietLogger(), cache, nil, "node-a"))

	loaded := make(chan *domainGuardrail.Guardrail, 1)
	go func() {
		g, err := f.Get(ctx, id)
		assert.NoError(t, err)
		loaded <- g
	}()

	// The load has read one rule and is held before it fills the cache.
	<-repo.read
	_, err = proposer.Propose(ctx, id, &request.RuleRequest{Text: "second"})
	require.NoError(t, err)

	// A reader arriving after the write does not join the older load.
	fresh, err := f.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, fresh.Rules, 2)

	close(repo.release)
	select {
	case g := <-loaded:
		assert.Len(t, g.Rules, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("load did not finish")
	}

	got, err := f.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Rules, 2)

	cached, err := cache.GetGuardrail(ctx, id)
	require.NoError(t, err)
	assert.Len(t, cached.Rules, 2)
}

func TestFinder_Get_SharedLoadOutlivesFirstCaller(t *testing.T) {
	inner := memoryRepo(t)
	id, err := NewCreator(quietLogger(), inner).Create(context.Background(), "alice", &request.CreateGuardrailRequest{
		Name:  "g",
		Rules: []request.RuleRequest{{Text: "first"}},
	})
	require.NoError(t, err)

	repo := newGatedRepo(inner)
	f := NewFinder(quietLogger(), repo, NewNoopCache())

	firstCtx, cancel := context.WithCancel(context.Background())
	go func() {
		_, _ = f.Get(firstCtx, id)
	}()
	<-repo.read

	joined := make(chan error, 1)
	go func() {
		g, err := f.Get(context.Background(), id)
		if err == nil && len(g.Rules) != 1 {
			err = fmt.Errorf("unexpected rules: %d", len(g.Rules))
		}
		joined <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	close(repo.release)

	select {
	case err := <-joined:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("joined caller did not finish")
	}
}

func TestFinder_ListByOwner_AnonymousIsEmpty(t *testing.T) {
	repo := new(guardrailMocks.Repository)
	got, err := NewFinder(quietLogger(), repo, NewNoopCache()).ListByOwner(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertNotCalled(t, "ListByOwner", mock.Anything, mock.Anything)
}
