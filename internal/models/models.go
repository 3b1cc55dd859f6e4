package models

import (
	"time"

	"github.com/lib/pq"
)

// QuoteRequest is a restaurant's wine sourcing ask.
type QuoteRequest struct {
	ID                  int64          `db:"id" json:"id"`
	RestaurantID        int64          `db:"restaurant_id" json:"restaurant_id"`
	Freetext            string         `db:"freetext" json:"freetext"`
	BudgetPerBottleOre  *int64         `db:"budget_per_bottle_ore" json:"budget_per_bottle_ore,omitempty"`
	Quantity            *int           `db:"quantity" json:"quantity,omitempty"`
	DeliveryBy          *time.Time     `db:"delivery_by" json:"delivery_by,omitempty"`
	SpecialRequirements pq.StringArray `db:"special_requirements" json:"special_requirements,omitempty"`
	Status              string         `db:"status" json:"status"`
	AcceptedOfferID     *int64         `db:"accepted_offer_id" json:"accepted_offer_id,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// Supplier is a tenant-scoped seller with a wine catalog.
type Supplier struct {
	ID                 int64     `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Active             bool      `db:"active" json:"active"`
	NormalLeadTimeDays int       `db:"normal_lead_time_days" json:"normal_lead_time_days"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// Wine is a supplier catalog item. Prices are öre (minor units) ex VAT.
type Wine struct {
	ID            int64     `db:"id" json:"id"`
	SupplierID    int64     `db:"supplier_id" json:"supplier_id"`
	Name          string    `db:"name" json:"name"`
	Country       string    `db:"country" json:"country"`
	Region        string    `db:"region" json:"region"`
	Grape         string    `db:"grape" json:"grape"`
	PriceExVatOre int64     `db:"price_ex_vat_ore" json:"price_ex_vat_ore"`
	MinOrderQty   int       `db:"min_order_qty" json:"min_order_qty"`
	Stock         int       `db:"stock" json:"stock"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Assignment records one supplier being offered the chance to respond to
// one quote request. Exactly one row exists per (request, supplier) pair.
type Assignment struct {
	ID             int64          `db:"id" json:"id"`
	QuoteRequestID int64          `db:"quote_request_id" json:"quote_request_id"`
	SupplierID     int64          `db:"supplier_id" json:"supplier_id"`
	MatchScore     int            `db:"match_score" json:"match_score"`
	MatchReasons   pq.StringArray `db:"match_reasons" json:"match_reasons"`
	Status         string         `db:"status" json:"status"`
	SentAt         time.Time      `db:"sent_at" json:"sent_at"`
	ExpiresAt      time.Time      `db:"expires_at" json:"expires_at"`
	ViewedAt       *time.Time     `db:"viewed_at" json:"viewed_at,omitempty"`
	RespondedAt    *time.Time     `db:"responded_at" json:"responded_at,omitempty"`
}

// IsExpired reports whether the assignment TTL has passed. Expiry is lazy:
// stored status may still read SENT or VIEWED after the deadline, so every
// consumer checks the timestamp instead of trusting the column.
func (a *Assignment) IsExpired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// EffectiveStatus resolves the lazy EXPIRED transition against now.
func (a *Assignment) EffectiveStatus(now time.Time) string {
	if (a.Status == AssignmentStatusSent || a.Status == AssignmentStatusViewed) && a.IsExpired(now) {
		return AssignmentStatusExpired
	}
	return a.Status
}

// Offer is a supplier's priced response referencing their own catalog wine.
type Offer struct {
	ID             int64      `db:"id" json:"id"`
	QuoteRequestID int64      `db:"quote_request_id" json:"quote_request_id"`
	SupplierID     int64      `db:"supplier_id" json:"supplier_id"`
	WineID         int64      `db:"wine_id" json:"wine_id"`
	PriceExVatOre  int64      `db:"price_ex_vat_ore" json:"price_ex_vat_ore"`
	VatRate        int        `db:"vat_rate" json:"vat_rate"`
	Quantity       int        `db:"quantity" json:"quantity"`
	DeliveryDate   time.Time  `db:"delivery_date" json:"delivery_date"`
	LeadTimeDays   int        `db:"lead_time_days" json:"lead_time_days"`
	Notes          string     `db:"notes" json:"notes,omitempty"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	AcceptedAt     *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
}

// CommercialIntent is the durable acceptance record, unique per request.
// All amounts are öre.
type CommercialIntent struct {
	ID              int64     `db:"id" json:"id"`
	Reference       string    `db:"reference" json:"reference"`
	QuoteRequestID  int64     `db:"quote_request_id" json:"quote_request_id"`
	OfferID         int64     `db:"offer_id" json:"offer_id"`
	RestaurantID    int64     `db:"restaurant_id" json:"restaurant_id"`
	SupplierID      int64     `db:"supplier_id" json:"supplier_id"`
	GoodsAmountOre  int64     `db:"goods_amount_ore" json:"goods_amount_ore"`
	VatAmountOre    int64     `db:"vat_amount_ore" json:"vat_amount_ore"`
	ServiceFeeOre   int64     `db:"service_fee_ore" json:"service_fee_ore"`
	TotalPayableOre int64     `db:"total_payable_ore" json:"total_payable_ore"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Quote request statuses
const (
	RequestStatusOpen     = "OPEN"
	RequestStatusAccepted = "ACCEPTED"
	RequestStatusClosed   = "CLOSED"
)

// Assignment statuses
const (
	AssignmentStatusSent      = "SENT"
	AssignmentStatusViewed    = "VIEWED"
	AssignmentStatusResponded = "RESPONDED"
	AssignmentStatusExpired   = "EXPIRED"
	AssignmentStatusCancelled = "CANCELLED"
)

// Offer statuses
const (
	OfferStatusSent     = "SENT"
	OfferStatusAccepted = "ACCEPTED"
	OfferStatusRejected = "REJECTED"
)

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
