package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/agorafi/marketplace/ports"
)

// Metadata keys attached to every published message.
const (
	MetadataEvent = "event"
	MetadataScope = "scope"
)

// WatermillPublisher implements the EventPublisher interface on top of a
// watermill publisher (redis streams in production).
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a publisher writing to the given topic.
func NewWatermillPublisher(publisher message.Publisher, topic string) ports.EventPublisher {
	if topic == "" {
		topic = "marketplace.events"
	}
	return &WatermillPublisher{
		publisher: publisher,
		topic:     topic,
	}
}

// Publish sends a state-change event. The event name and scope travel as
// message metadata so subscribers can filter without decoding the payload.
func (p *WatermillPublisher) Publish(ctx context.Context, event string, payload any, scope string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(MetadataEvent, event)
	if scope != "" {
		msg.Metadata.Set(MetadataScope, scope)
	}

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
