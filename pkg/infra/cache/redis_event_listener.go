package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache/channel"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache/event"
	"github.com/sirupsen/logrus"
)

type eventHandler func(ctx context.Context, payload json.RawMessage) error

type redisEventListener struct {
	logger   *logrus.Logger
	cache    Client
	handlers map[string][]eventHandler
}

func NewRedisEventListener(logger *logrus.Logger, cache Client) EventListener {
	return &redisEventListener{
		logger:   logger,
		cache:    cache,
		handlers: make(map[string][]eventHandler),
	}
}

// RegisterEventSubscriber binds a typed subscriber to the event type it consumes.
// Registration must happen before Listen.
func RegisterEventSubscriber[T event.Event](listener EventListener, subscriber EventSubscriber[T]) {
	var evt T
	listener.handle(evt.Type(), func(ctx context.Context, payload json.RawMessage) error {
		var concrete T
		if err := json.Unmarshal(payload, &concrete); err != nil {
			return fmt.Errorf("error unmarshalling %s: %w", concrete.Type(), err)
		}
		return subscriber.OnEvent(ctx, concrete)
	})
}

func (r *redisEventListener) handle(eventType string, fn eventHandler) {
	r.handlers[eventType] = append(r.handlers[eventType], fn)
}

// Listen blocks until ctx is done, reconnecting when the subscription drops.
func (r *redisEventListener) Listen(ctx context.Context, channels ...channel.Channel) {
	channelNames := make([]string, 0, len(channels))
	for _, ch := range channels {
		channelNames = append(channelNames, string(ch))
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("redis pubsub listener shutting down")
			return
		default:
		}

		r.listenOnce(ctx, channelNames)

		if ctx.Err() != nil {
			return
		}

		r.logger.Warn("redis pubsub disconnected, reconnecting in 1s...")
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (r *redisEventListener) listenOnce(ctx context.Context, channelNames []string) {
	pubSub := r.cache.RedisClient().Subscribe(ctx, channelNames...)
	defer func() { _ = pubSub.Close() }()

	r.logger.WithField("channels", channelNames).Debug("redis pubsub connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = pubSub.Close()
		case <-done:
		}
	}()

	for msg := range pubSub.Channel() {
		r.dispatch(ctx, msg.Payload)
	}
}

func (r *redisEventListener) dispatch(ctx context.Context, payload string) {
	var envelope redisMessage
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		r.logger.WithError(err).Error("error decoding redis message")
		return
	}

	handlers, ok := r.handlers[envelope.Type]
	if !ok {
		r.logger.WithField("type", envelope.Type).Debug("no subscriber for event type")
		return
	}
	for _, handler := range handlers {
		if err := handler(ctx, envelope.Event); err != nil {
			r.logger.WithError(err).WithField("type", envelope.Type).Error("error executing subscriber")
		}
	}
}
