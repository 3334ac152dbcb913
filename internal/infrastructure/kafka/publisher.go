package kafka

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/LavaJover/festival-order-service/internal/domain"
)

// EventPublisher serializes domain events onto the order and game topics.
// Delivery is best effort: failures are logged and never surface to callers.
type EventPublisher struct {
	port       domain.PublisherPort
	orderTopic string
	gameTopic  string
	logger     *slog.Logger
}

func NewEventPublisher(port domain.PublisherPort, orderTopic, gameTopic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		port:       port,
		orderTopic: orderTopic,
		gameTopic:  gameTopic,
		logger:     logger,
	}
}

func (p *EventPublisher) PublishOrder(event OrderEvent) {
	if p == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	p.publish(p.orderTopic, event.OrderCode, event)
}

func (p *EventPublisher) PublishGame(event GameEvent) {
	if p == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	p.publish(p.gameTopic, event.Phone, event)
}

func (p *EventPublisher) publish(topic, key string, event any) {
	v, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", "topic", topic, "error", err)
		return
	}
	if err := p.port.Publish(topic, domain.Message{Key: []byte(key), Value: v}); err != nil {
		p.logger.Warn("failed to publish event", "topic", topic, "key", key, "error", err)
	}
}
