package guardrail

import (
	"context"
	"errors"
	"time"

	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	infraCache "github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

//go:generate mockery --name=Finder --dir=. --output=./mocks --filename=guardrail_finder_mock.go --case=underscore --with-expecter
type Finder interface {
	Get(ctx context.Context, id string) (*domainGuardrail.Guardrail, error)
	ListByOwner(ctx context.Context, owner identity.Identity) ([]domainGuardrail.Guardrail, error)
	List(ctx context.Context) ([]domainGuardrail.Guardrail, error)
}

const loadTimeout = 10 * time.Second

type finder struct {
	logger *logrus.Logger
	repo   domainGuardrail.Repository
	cache  GuardrailCache
	group  singleflight.Group
}

func NewFinder(logger *logrus.Logger, repo domainGuardrail.Repository, cache GuardrailCache) Finder {
	return &finder{
		logger: logger,
		repo:   repo,
		cache:  cache,
	}
}

// Get reads through the cache. Concurrent misses for the same id and fill
// token share one repository lookup; a write in between changes the token,
// so later readers never join a load that may predate it.
func (f *finder) Get(ctx context.Context, id string) (*domainGuardrail.Guardrail, error) {
	cached, err := f.cache.GetGuardrail(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, infraCache.ErrCacheMiss) {
		f.logger.WithError(err).WithField("guardrail_id", id).Warn("guardrail cache read failed")
	}

	token, err := f.cache.FillToken(ctx, id)
	if err != nil {
		f.logger.WithError(err).WithField("guardrail_id", id).Warn("guardrail cache unavailable, reading repository")
		return f.repo.Get(ctx, id)
	}

	v, err, _ := f.group.Do(id+"@"+token.String(), func() (interface{}, error) {
		// Joined callers wait on this load, so it must outlive the caller
		// that started it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		g, err := f.repo.Get(loadCtx, id)
		if err != nil {
			return nil, err
		}
		err = f.cache.SaveGuardrail(loadCtx, g, token)
		switch {
		case errors.Is(err, infraCache.ErrStaleFill):
			f.logger.WithField("guardrail_id", id).Debug("guardrail changed during load, not caching")
		case err != nil:
			f.logger.WithError(err).WithField("guardrail_id", id).Warn("failed to cache guardrail")
		}
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	shared := v.(*domainGuardrail.Guardrail)
	copied := *shared
	copied.Rules = make([]domainGuardrail.Rule, len(shared.Rules))
	copy(copied.Rules, shared.Rules)
	return &copied, nil
}

func (f *finder) ListByOwner(ctx context.Context, owner identity.Identity) ([]domainGuardrail.Guardrail, error) {
	if owner.IsZero() {
		return []domainGuardrail.Guardrail{}, nil
	}
	return f.repo.ListByOwner(ctx, owner)
}

func (f *finder) List(ctx context.Context) ([]domainGuardrail.Guardrail, error) {
	return f.repo.List(ctx)
}
