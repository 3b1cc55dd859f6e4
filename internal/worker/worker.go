package worker

import (
	"context"
	"fmt"

	"winefeed/internal/broker"
	"winefeed/internal/models"
	"winefeed/internal/store"
	"winefeed/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes domain events and turns them into supplier
// and restaurant notifications. Delivery here is a structured log entry;
// the email/SMS gateway hangs off the same hook.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, st *store.Store) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		store:    st,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnRequestDispatched(w.handleRequestDispatched)
	eventHandler.OnOfferSubmitted(w.handleOfferSubmitted)
	eventHandler.OnOfferAccepted(w.handleOfferAccepted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

// handleRequestDispatched notifies every assigned supplier of the new
// request. Consumer redelivery is deduplicated via processed_events.
func (w *NotificationWorker) handleRequestDispatched(ctx context.Context, event *models.RequestDispatchedEvent) error {
	done, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || done {
		return err
	}

	for _, supplierID := range event.SupplierIDs {
		w.notify(ctx, "assignment_sent", supplierID, fmt.Sprintf(
			"New quote request %d assigned, respond before %s",
			event.QuoteRequestID, event.ExpiresAt.Format("2006-01-02 15:04")))
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

// handleOfferSubmitted notifies the requesting restaurant of a new offer.
func (w *NotificationWorker) handleOfferSubmitted(ctx context.Context, event *models.OfferSubmittedEvent) error {
	done, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || done {
		return err
	}

	request, err := w.store.GetQuoteRequestByID(ctx, event.QuoteRequestID)
	if err != nil {
		return err
	}

	w.notify(ctx, "offer_received", request.RestaurantID, fmt.Sprintf(
		"New offer %d on quote request %d", event.OfferID, event.QuoteRequestID))

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

// handleOfferAccepted notifies the winning supplier and tells the other
// responders their assignment is closed.
func (w *NotificationWorker) handleOfferAccepted(ctx context.Context, event *models.OfferAcceptedEvent) error {
	done, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || done {
		return err
	}

	w.notify(ctx, "offer_accepted", event.SupplierID, fmt.Sprintf(
		"Offer %d accepted, reference %s", event.OfferID, event.IntentReference))

	assignments, err := w.store.ListAssignmentsByRequest(ctx, event.QuoteRequestID)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if a.SupplierID == event.SupplierID {
			continue
		}
		if a.Status == models.AssignmentStatusResponded {
			w.notify(ctx, "request_closed", a.SupplierID, fmt.Sprintf(
				"Quote request %d has been closed", event.QuoteRequestID))
		}
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) alreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	processed, err := w.store.IsEventProcessed(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", eventID))
		return true, nil
	}
	return false, nil
}

func (w *NotificationWorker) notify(_ context.Context, kind string, recipientID int64, message string) {
	util.NotificationsSentTotal.WithLabelValues(kind).Inc()
	w.logger.Info("Notification sent",
		zap.String("type", kind),
		zap.Int64("recipient_id", recipientID),
		zap.String("message", message))
}
