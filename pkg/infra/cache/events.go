package cache

import (
	"context"

	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache/channel"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache/event"
)

//go:generate mockery --name=EventPublisher --dir=. --output=./mocks --filename=event_publisher_mock.go --case=underscore --with-expecter
type EventPublisher interface {
	Publish(ctx context.Context, ev event.Event) error
}

type EventSubscriber[T event.Event] interface {
	OnEvent(ctx context.Context, ev T) error
}

type EventListener interface {
	Listen(ctx context.Context, channels ...channel.Channel)
	handle(eventType string, fn eventHandler)
}
