package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"winefeed/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events. Events are keyed by
// request id so all events of one quote request land on one partition.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishRequestDispatched publishes a RequestDispatched event
func (ep *EventPublisher) PublishRequestDispatched(ctx context.Context, event *models.RequestDispatchedEvent) error {
	key := fmt.Sprintf("request-%d", event.QuoteRequestID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOfferSubmitted publishes an OfferSubmitted event
func (ep *EventPublisher) PublishOfferSubmitted(ctx context.Context, event *models.OfferSubmittedEvent) error {
	key := fmt.Sprintf("request-%d", event.QuoteRequestID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOfferAccepted publishes an OfferAccepted event
func (ep *EventPublisher) PublishOfferAccepted(ctx context.Context, event *models.OfferAcceptedEvent) error {
	key := fmt.Sprintf("request-%d", event.QuoteRequestID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onRequestDispatched func(context.Context, *models.RequestDispatchedEvent) error
	onOfferSubmitted    func(context.Context, *models.OfferSubmittedEvent) error
	onOfferAccepted     func(context.Context, *models.OfferAcceptedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnRequestDispatched registers a handler for RequestDispatched events
func (eh *EventHandler) OnRequestDispatched(handler func(context.Context, *models.RequestDispatchedEvent) error) {
	eh.onRequestDispatched = handler
}

// OnOfferSubmitted registers a handler for OfferSubmitted events
func (eh *EventHandler) OnOfferSubmitted(handler func(context.Context, *models.OfferSubmittedEvent) error) {
	eh.onOfferSubmitted = handler
}

// OnOfferAccepted registers a handler for OfferAccepted events
func (eh *EventHandler) OnOfferAccepted(handler func(context.Context, *models.OfferAcceptedEvent) error) {
	eh.onOfferAccepted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeRequestDispatched:
		if eh.onRequestDispatched != nil {
			var event models.RequestDispatchedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal RequestDispatched event: %w", err)
			}
			return eh.onRequestDispatched(ctx, &event)
		}

	case models.EventTypeOfferSubmitted:
		if eh.onOfferSubmitted != nil {
			var event models.OfferSubmittedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OfferSubmitted event: %w", err)
			}
			return eh.onOfferSubmitted(ctx, &event)
		}

	case models.EventTypeOfferAccepted:
		if eh.onOfferAccepted != nil {
			var event models.OfferAcceptedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OfferAccepted event: %w", err)
			}
			return eh.onOfferAccepted(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
