package cache

import (
	"context"
	"encoding/json"

	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache/channel"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache/event"
)

type redisMessage struct {
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}

type redisEventPublisher struct {
	cache   Client
	channel channel.Channel
}

func NewRedisEventPublisher(cache Client, ch channel.Channel) EventPublisher {
	return &redisEventPublisher{
		cache:   cache,
		channel: ch,
	}
}

func (p *redisEventPublisher) Publish(ctx context.Context, ev event.Event) error {
	data, err := encodeMessage(ev)
	if err != nil {
		return err
	}
	return p.cache.RedisClient().Publish(ctx, string(p.channel), data).Err()
}

func encodeMessage(ev event.Event) (string, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(redisMessage{
		Type:  ev.Type(),
		Event: b,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
