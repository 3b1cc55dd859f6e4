package models

import "time"

// Event types
const (
	EventTypeRequestDispatched = "REQUEST_DISPATCHED"
	EventTypeOfferSubmitted    = "OFFER_SUBMITTED"
	EventTypeOfferAccepted     = "OFFER_ACCEPTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// RequestDispatchedEvent published after assignments are persisted for a request
type RequestDispatchedEvent struct {
	BaseEvent
	QuoteRequestID     int64     `json:"quote_request_id"`
	RestaurantID       int64     `json:"restaurant_id"`
	AssignmentsCreated int       `json:"assignments_created"`
	SupplierIDs        []int64   `json:"supplier_ids"`
	ExpiresAt          time.Time `json:"expires_at"`
}

// OfferSubmittedEvent published when a supplier responds to an assignment
type OfferSubmittedEvent struct {
	BaseEvent
	OfferID        int64 `json:"offer_id"`
	QuoteRequestID int64 `json:"quote_request_id"`
	SupplierID     int64 `json:"supplier_id"`
	PriceExVatOre  int64 `json:"price_ex_vat_ore"`
	Quantity       int   `json:"quantity"`
}

// OfferAcceptedEvent published when a restaurant accepts an offer
type OfferAcceptedEvent struct {
	BaseEvent
	OfferID         int64  `json:"offer_id"`
	QuoteRequestID  int64  `json:"quote_request_id"`
	SupplierID      int64  `json:"supplier_id"`
	RestaurantID    int64  `json:"restaurant_id"`
	IntentReference string `json:"intent_reference"`
	TotalPayableOre int64  `json:"total_payable_ore"`
}
