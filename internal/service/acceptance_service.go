package service

import (
	"context"
	"fmt"
	"time"

	"winefeed/internal/models"
	"winefeed/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AcceptanceConfig controls the service-fee computation. Under pilot-free
// mode the fee is zero; future tiers charge basis points on goods.
type AcceptanceConfig struct {
	PilotFreeMode bool
	ServiceFeeBps int64
}

// AcceptanceService enforces at-most-one accepted offer per request and
// creates the resulting commercial record.
type AcceptanceService struct {
	store     Store
	publisher EventPublisher
	cfg       AcceptanceConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewAcceptanceService creates a new acceptance service
func NewAcceptanceService(store Store, publisher EventPublisher, cfg AcceptanceConfig) *AcceptanceService {
	return &AcceptanceService{
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// OrderSummary is the client-facing view of the commercial outcome.
type OrderSummary struct {
	QuoteRequestID  int64     `json:"quote_request_id"`
	OfferID         int64     `json:"offer_id"`
	SupplierID      int64     `json:"supplier_id"`
	RestaurantID    int64     `json:"restaurant_id"`
	Status          string    `json:"status"`
	Quantity        int       `json:"quantity"`
	DeliveryDate    time.Time `json:"delivery_date"`
	TotalPayableOre int64     `json:"total_payable_ore"`
}

// AcceptanceResult is returned on a successful acceptance.
type AcceptanceResult struct {
	CommercialIntent *models.CommercialIntent `json:"commercial_intent"`
	Order            OrderSummary             `json:"order"`
}

// AcceptOffer accepts one offer on behalf of a restaurant. The unique index
// on commercial_intents is the arbiter under concurrency: of two racing
// calls exactly one commits, the other surfaces ALREADY_ACCEPTED.
func (s *AcceptanceService) AcceptOffer(ctx context.Context, offerID, actingRestaurantID int64) (*AcceptanceResult, error) {
	ctx, span := util.StartSpan(ctx, "AcceptanceService.AcceptOffer")
	defer span.End()

	offer, err := s.store.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, notFoundOrInternal(err, "offer %d not found", offerID)
	}

	request, err := s.store.GetQuoteRequestByID(ctx, offer.QuoteRequestID)
	if err != nil {
		return nil, notFoundOrInternal(err, "quote request %d not found", offer.QuoteRequestID)
	}

	if request.RestaurantID != actingRestaurantID {
		s.logger.Warn("Tenant isolation violation on acceptance",
			zap.Int64("offer_id", offerID),
			zap.Int64("acting_restaurant", actingRestaurantID),
			zap.Int64("request_owner", request.RestaurantID))
		return nil, Errorf(CodeTenantIsolation,
			"quote request %d does not belong to this restaurant (tenant isolation)", request.ID)
	}

	// Pre-check for a friendlier error; the unique index still decides races.
	existing, err := s.store.GetCommercialIntentByRequest(ctx, request.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		util.AcceptanceConflictsTotal.Inc()
		return nil, Errorf(CodeAlreadyAccepted,
			"an offer has already been accepted for quote request %d", request.ID)
	}

	goods := offer.PriceExVatOre * int64(offer.Quantity)
	vat := goods * int64(offer.VatRate) / 100
	var fee int64
	if !s.cfg.PilotFreeMode {
		fee = goods * s.cfg.ServiceFeeBps / 10000
	}

	now := s.now()
	intent := &models.CommercialIntent{
		Reference:       newIntentReference(),
		QuoteRequestID:  request.ID,
		OfferID:         offer.ID,
		RestaurantID:    request.RestaurantID,
		SupplierID:      offer.SupplierID,
		GoodsAmountOre:  goods,
		VatAmountOre:    vat,
		ServiceFeeOre:   fee,
		TotalPayableOre: goods + vat + fee,
	}

	if err := s.store.AcceptOfferTx(ctx, intent, now); err != nil {
		if isDuplicate(err) {
			util.AcceptanceConflictsTotal.Inc()
			return nil, Errorf(CodeAlreadyAccepted,
				"an offer has already been accepted for quote request %d", request.ID)
		}
		return nil, err
	}

	util.OffersAcceptedTotal.Inc()
	s.logger.Info("Offer accepted",
		zap.Int64("offer_id", offer.ID),
		zap.Int64("request_id", request.ID),
		zap.String("reference", intent.Reference),
		zap.Int64("total_payable_ore", intent.TotalPayableOre))

	event := &models.OfferAcceptedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOfferAccepted,
			Timestamp: now,
		},
		OfferID:         offer.ID,
		QuoteRequestID:  request.ID,
		SupplierID:      offer.SupplierID,
		RestaurantID:    request.RestaurantID,
		IntentReference: intent.Reference,
		TotalPayableOre: intent.TotalPayableOre,
	}
	if err := s.publisher.PublishOfferAccepted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OfferAccepted event", zap.Error(err))
	}

	return &AcceptanceResult{
		CommercialIntent: intent,
		Order: OrderSummary{
			QuoteRequestID:  request.ID,
			OfferID:         offer.ID,
			SupplierID:      offer.SupplierID,
			RestaurantID:    request.RestaurantID,
			Status:          models.RequestStatusAccepted,
			Quantity:        offer.Quantity,
			DeliveryDate:    offer.DeliveryDate,
			TotalPayableOre: intent.TotalPayableOre,
		},
	}, nil
}

func newIntentReference() string {
	return fmt.Sprintf("WF-%s", uuid.New().String()[:8])
}
