package service

import (
	"context"
	"strings"
	"time"

	"winefeed/internal/models"
	"winefeed/internal/util"

	"go.uber.org/zap"
)

// RequestService handles quote request creation and reads.
type RequestService struct {
	store  Store
	logger *zap.Logger
}

// NewRequestService creates a new request service
func NewRequestService(store Store) *RequestService {
	return &RequestService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CreateRequestInput is the restaurant's sourcing ask.
type CreateRequestInput struct {
	RestaurantID        int64
	Freetext            string
	BudgetPerBottleOre  *int64
	Quantity            *int
	DeliveryBy          *time.Time
	SpecialRequirements []string
}

// CreateRequest creates a new OPEN quote request.
func (s *RequestService) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.QuoteRequest, error) {
	ctx, span := util.StartSpan(ctx, "RequestService.CreateRequest")
	defer span.End()

	if in.RestaurantID <= 0 {
		return nil, Errorf(CodeValidation, "restaurantId is required")
	}
	if strings.TrimSpace(in.Freetext) == "" {
		return nil, Errorf(CodeValidation, "freetext is required")
	}
	if in.BudgetPerBottleOre != nil && *in.BudgetPerBottleOre <= 0 {
		return nil, Errorf(CodeValidation, "budgetPerBottleSek must be positive when set")
	}
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, Errorf(CodeValidation, "quantity must be positive when set")
	}

	request := &models.QuoteRequest{
		RestaurantID:        in.RestaurantID,
		Freetext:            in.Freetext,
		BudgetPerBottleOre:  in.BudgetPerBottleOre,
		Quantity:            in.Quantity,
		DeliveryBy:          in.DeliveryBy,
		SpecialRequirements: in.SpecialRequirements,
		Status:              models.RequestStatusOpen,
	}

	if err := s.store.CreateQuoteRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info("Quote request created",
		zap.Int64("request_id", request.ID),
		zap.Int64("restaurant_id", request.RestaurantID))
	return request, nil
}

// GetRequest retrieves a quote request by ID.
func (s *RequestService) GetRequest(ctx context.Context, id int64) (*models.QuoteRequest, error) {
	request, err := s.store.GetQuoteRequestByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "quote request %d not found", id)
	}
	return request, nil
}
