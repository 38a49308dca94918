package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"storefront/internal/apperrors"
)

// EventOrderFinalized is published once per successfully finalized checkout.
const EventOrderFinalized = "order.finalized"

// EventPublisher sends domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// OrderFinalizedEvent is the payload of EventOrderFinalized.
type OrderFinalizedEvent struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	CheckoutID  string    `json:"checkoutId"`
	TotalPrice  float64   `json:"totalPrice"`
	FinalizedAt time.Time `json:"finalizedAt"`
}

// publish sends an event when a publisher is configured. Failures are logged
// and never reach the caller.
func publish(ctx context.Context, events EventPublisher, eventType string, payload any) {
	if events == nil {
		log.Debug().Str("type", eventType).Msg("no event publisher configured, skipping")
		return
	}
	if err := events.Publish(ctx, eventType, payload); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("failed to publish event")
	}
}

// OrderNotifier consumes order events and emits the customer notification.
// Delivery is a log line; the mail integration lives outside this service.
type OrderNotifier struct{}

// Handle decodes one event body. Unknown event types are acknowledged and
// ignored; malformed bodies are rejected.
func (OrderNotifier) Handle(eventType string, body []byte) error {
	switch eventType {
	case EventOrderFinalized:
		var evt OrderFinalizedEvent
		if err := json.Unmarshal(body, &evt); err != nil {
			return fmt.Errorf("decode %s event: %w", eventType, apperrors.ErrInvalidRequest)
		}
		if evt.OrderID == "" || evt.UserID == "" {
			return fmt.Errorf("%s event missing order or user id: %w", eventType, apperrors.ErrInvalidRequest)
		}
		log.Info().
			Str("order_id", evt.OrderID).
			Str("user_id", evt.UserID).
			Str("checkout_id", evt.CheckoutID).
			Float64("total_price", evt.TotalPrice).
			Msg("order confirmation sent")
		return nil
	default:
		log.Debug().Str("type", eventType).Msg("ignoring unknown event type")
		return nil
	}
}
