package guardrail

import (
	"context"

	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	infraCache "github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache/event"
	"github.com/sirupsen/logrus"
)

// GuardrailCache is the subset of the cache client the registry needs.
type GuardrailCache interface {
	GetGuardrail(ctx context.Context, id string) (*domainGuardrail.Guardrail, error)
	FillToken(ctx context.Context, id string) (infraCache.FillToken, error)
	SaveGuardrail(ctx context.Context, g *domainGuardrail.Guardrail, token infraCache.FillToken) error
	InvalidateGuardrail(ctx context.Context, id string) error
}

type noopCache struct {
	gens *infraCache.Generations
}

// NewNoopCache is used when redis is not configured: every read is a miss.
// Invalidations are still counted so fill tokens change after a write.
func NewNoopCache() GuardrailCache {
	return &noopCache{gens: infraCache.NewGenerations()}
}

func (*noopCache) GetGuardrail(context.Context, string) (*domainGuardrail.Guardrail, error) {
	return nil, infraCache.ErrCacheMiss
}

func (c *noopCache) FillToken(_ context.Context, id string) (infraCache.FillToken, error) {
	return infraCache.FillToken{Local: c.gens.Current(id)}, nil
}

func (*noopCache) SaveGuardrail(context.Context, *domainGuardrail.Guardrail, infraCache.FillToken) error {
	return nil
}

func (c *noopCache) InvalidateGuardrail(_ context.Context, id string) error {
	c.gens.Bump(id, nil)
	return nil
}

//go:generate mockery --name=InvalidateGuardrailCache --dir=. --output=./mocks --filename=invalidate_guardrail_cache_mock.go --case=underscore --with-expecter
type InvalidateGuardrailCache interface {
	Invalidate(ctx context.Context, guardrailID string) error
}

type invalidateGuardrailCache struct {
	logger     *logrus.Logger
	cache      GuardrailCache
	publisher  infraCache.EventPublisher
	instanceID string
}

// NewInvalidateGuardrailCache drops the cached guardrail and, when a publisher
// is given, tells the other registry instances to drop their local copies.
func NewInvalidateGuardrailCache(
	logger *logrus.Logger,
	cache GuardrailCache,
	publisher infraCache.EventPublisher,
	instanceID string,
) InvalidateGuardrailCache {
	return &invalidateGuardrailCache{
		logger:     logger,
		cache:      cache,
		publisher:  publisher,
		instanceID: instanceID,
	}
}

func (i *invalidateGuardrailCache) Invalidate(ctx context.Context, guardrailID string) error {
	if err := i.cache.InvalidateGuardrail(ctx, guardrailID); err != nil {
		i.logger.WithError(err).WithField("guardrail_id", guardrailID).Error("failed to invalidate guardrail cache")
		return err
	}
	if i.publisher == nil {
		return nil
	}
	if err := i.publisher.Publish(ctx, event.GuardrailChangedEvent{
		GuardrailID: guardrailID,
		Origin:      i.instanceID,
	}); err != nil {
		i.logger.WithError(err).WithField("guardrail_id", guardrailID).Warn("failed to publish guardrail change")
	}
	return nil
}
