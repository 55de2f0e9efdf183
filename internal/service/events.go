package service

import (
	"context"
	"strconv"

	"github.com/Skotchmaster/teamchat/internal/logging"
	"github.com/Skotchmaster/teamchat/internal/mykafka"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// publish is best effort: a broker failure never fails the operation.
func publish(ctx context.Context, p EventPublisher, topic string, key uint, eventType string, payload any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, strconv.FormatUint(uint64(key), 10), mykafka.NewEvent(eventType, payload)); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", eventType, "error", err)
	}
}
