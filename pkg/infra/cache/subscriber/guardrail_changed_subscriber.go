package subscriber

import (
	"context"

	infraCache "github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache/event"
	"github.com/sirupsen/logrus"
)

type GuardrailChangedEventSubscriber struct {
	logger     *logrus.Logger
	cache      infraCache.Client
	instanceID string
}

func NewGuardrailChangedEventSubscriber(
	logger *logrus.Logger,
	c infraCache.Client,
	instanceID string,
) infraCache.EventSubscriber[event.GuardrailChangedEvent] {
	return &GuardrailChangedEventSubscriber{
		logger:     logger,
		cache:      c,
		instanceID: instanceID,
	}
}

func (s *GuardrailChangedEventSubscriber) OnEvent(_ context.Context, evt event.GuardrailChangedEvent) error {
	if evt.Origin == s.instanceID {
		return nil
	}
	s.logger.WithField("guardrail_id", evt.GuardrailID).Debug("dropping local guardrail copy")
	s.cache.ForgetLocal(evt.GuardrailID)
	return nil
}
