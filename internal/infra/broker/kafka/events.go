package kafka

import (
	"context"
	"encoding/json"

	"kase/internal/app/policies"
)

// EventPublisher maps checkout lifecycle events onto Kafka messages. The
// booking id keys the message so every event for one booking lands on one
// partition.
type EventPublisher struct {
	Producer *Producer
	Topic    string
}

func (p *EventPublisher) PublishCheckoutCompleted(ctx context.Context, event policies.CheckoutCompleted) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	headers := map[string]string{
		"event": "checkout.completed",
	}
	return p.Producer.Publish(ctx, p.Topic, event.BookingID, payload, headers)
}

var _ policies.EventsPort = (*EventPublisher)(nil)
