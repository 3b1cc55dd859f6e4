package service

import (
	"context"
	"sort"
	"time"

	"winefeed/internal/models"
	"winefeed/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OfferService validates and persists supplier offers against assignments,
// and serves the supplier- and restaurant-facing listings.
type OfferService struct {
	store     Store
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewOfferService creates a new offer service
func NewOfferService(store Store, publisher EventPublisher) *OfferService {
	return &OfferService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// CreateOfferInput carries the already-converted öre amounts; SEK decimals
// are converted once at the API edge.
type CreateOfferInput struct {
	QuoteRequestID int64
	SupplierID     int64
	WineID         int64
	PriceExVatOre  int64
	VatRate        int
	Quantity       int
	DeliveryDate   time.Time
	LeadTimeDays   int
	Notes          string
}

// OfferView is an offer with restaurant-facing derived fields, computed at
// read time and never stored.
type OfferView struct {
	models.Offer
	PriceIncVatOre   int64    `json:"price_inc_vat_ore"`
	TotalExVatOre    int64    `json:"total_ex_vat_ore"`
	TotalIncVatOre   int64    `json:"total_inc_vat_ore"`
	MatchScore       int      `json:"match_score"`
	MatchReasons     []string `json:"match_reasons"`
	AssignmentStatus string   `json:"assignment_status"`
	IsExpired        bool     `json:"is_expired"`
}

// OfferListing is the restaurant comparison view, ranked by match quality.
type OfferListing struct {
	Offers  []OfferView  `json:"offers"`
	Summary OfferSummary `json:"summary"`
}

type OfferSummary struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// AssignedRequest is one row of a supplier's inbox.
type AssignedRequest struct {
	Assignment models.Assignment   `json:"assignment"`
	Request    models.QuoteRequest `json:"request"`
	IsExpired  bool                `json:"is_expired"`
}

// CreateOffer validates tenant isolation and the assignment gate, then
// persists the offer and the RESPONDED transition atomically.
func (s *OfferService) CreateOffer(ctx context.Context, in CreateOfferInput) (*OfferView, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.CreateOffer")
	defer span.End()

	if err := validateOfferInput(in); err != nil {
		util.OffersRejectedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	now := s.now()

	if _, err := s.store.GetQuoteRequestByID(ctx, in.QuoteRequestID); err != nil {
		util.OffersRejectedTotal.WithLabelValues("request_not_found").Inc()
		return nil, notFoundOrInternal(err, "quote request %d not found", in.QuoteRequestID)
	}

	wine, err := s.store.GetWineByID(ctx, in.WineID)
	if err != nil {
		util.OffersRejectedTotal.WithLabelValues("wine_not_found").Inc()
		return nil, notFoundOrInternal(err, "wine %d not found", in.WineID)
	}

	// The caller's supplier identity is authenticated upstream but still
	// re-validated against stored ownership.
	if wine.SupplierID != in.SupplierID {
		util.OffersRejectedTotal.WithLabelValues("tenant_isolation").Inc()
		s.logger.Warn("Tenant isolation violation on offer submission",
			zap.Int64("supplier_id", in.SupplierID),
			zap.Int64("wine_id", in.WineID),
			zap.Int64("wine_owner", wine.SupplierID))
		return nil, Errorf(CodeTenantIsolation,
			"wine %d does not belong to this supplier (tenant isolation)", in.WineID)
	}

	assignment, err := s.store.GetAssignment(ctx, in.QuoteRequestID, in.SupplierID)
	if err != nil {
		if isNotFound(err) {
			util.OffersRejectedTotal.WithLabelValues("no_assignment").Inc()
			return nil, Errorf(CodeNoAssignment,
				"no valid assignment for supplier %d on quote request %d", in.SupplierID, in.QuoteRequestID)
		}
		return nil, err
	}

	switch assignment.EffectiveStatus(now) {
	case models.AssignmentStatusExpired:
		util.OffersRejectedTotal.WithLabelValues("assignment_expired").Inc()
		return nil, Errorf(CodeAssignmentExpired,
			"assignment for quote request %d expired at %s", in.QuoteRequestID,
			assignment.ExpiresAt.Format(time.RFC3339))
	case models.AssignmentStatusCancelled:
		util.OffersRejectedTotal.WithLabelValues("assignment_cancelled").Inc()
		return nil, Errorf(CodeNoAssignment,
			"no valid assignment for supplier %d on quote request %d", in.SupplierID, in.QuoteRequestID)
	case models.AssignmentStatusResponded:
		util.OffersRejectedTotal.WithLabelValues("already_responded").Inc()
		return nil, Errorf(CodeAlreadyResponded,
			"supplier %d has already responded to quote request %d", in.SupplierID, in.QuoteRequestID)
	}

	offer := &models.Offer{
		QuoteRequestID: in.QuoteRequestID,
		SupplierID:     in.SupplierID,
		WineID:         in.WineID,
		PriceExVatOre:  in.PriceExVatOre,
		VatRate:        in.VatRate,
		Quantity:       in.Quantity,
		DeliveryDate:   in.DeliveryDate,
		LeadTimeDays:   in.LeadTimeDays,
		Notes:          in.Notes,
		Status:         models.OfferStatusSent,
	}

	if err := s.store.CreateOfferTx(ctx, offer, now); err != nil {
		return nil, err
	}

	util.OffersSubmittedTotal.Inc()
	s.logger.Info("Offer submitted",
		zap.Int64("offer_id", offer.ID),
		zap.Int64("request_id", offer.QuoteRequestID),
		zap.Int64("supplier_id", offer.SupplierID))

	event := &models.OfferSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOfferSubmitted,
			Timestamp: now,
		},
		OfferID:        offer.ID,
		QuoteRequestID: offer.QuoteRequestID,
		SupplierID:     offer.SupplierID,
		PriceExVatOre:  offer.PriceExVatOre,
		Quantity:       offer.Quantity,
	}
	if err := s.publisher.PublishOfferSubmitted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OfferSubmitted event", zap.Error(err))
	}

	view := newOfferView(*offer, assignment, now)
	view.AssignmentStatus = models.AssignmentStatusResponded
	return &view, nil
}

// ListOffersForRequest lists a request's offers with derived pricing,
// ranked by match score descending: best match first, not cheapest.
func (s *OfferService) ListOffersForRequest(ctx context.Context, requestID int64) (*OfferListing, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.ListOffersForRequest")
	defer span.End()

	if _, err := s.store.GetQuoteRequestByID(ctx, requestID); err != nil {
		return nil, notFoundOrInternal(err, "quote request %d not found", requestID)
	}

	offers, err := s.store.ListOffersByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.store.ListAssignmentsByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	bySupplier := make(map[int64]*models.Assignment, len(assignments))
	for i := range assignments {
		bySupplier[assignments[i].SupplierID] = &assignments[i]
	}

	now := s.now()
	views := make([]OfferView, 0, len(offers))
	active := 0
	for _, offer := range offers {
		view := newOfferView(offer, bySupplier[offer.SupplierID], now)
		if !view.IsExpired && view.Status != models.OfferStatusRejected {
			active++
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].MatchScore > views[j].MatchScore
	})

	return &OfferListing{
		Offers:  views,
		Summary: OfferSummary{Total: len(views), Active: active},
	}, nil
}

// ListAssignedRequests returns a supplier's assigned requests. Reading is
// the VIEWED trigger: the supplier's unseen non-expired assignments are
// flipped first, idempotently.
func (s *OfferService) ListAssignedRequests(ctx context.Context, supplierID int64, activeOnly bool) ([]AssignedRequest, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.ListAssignedRequests")
	defer span.End()

	now := s.now()

	if err := s.store.MarkSupplierAssignmentsViewed(ctx, supplierID, now); err != nil {
		return nil, err
	}

	assignments, err := s.store.ListAssignmentsBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	requestIDs := make([]int64, 0, len(assignments))
	for _, a := range assignments {
		requestIDs = append(requestIDs, a.QuoteRequestID)
	}
	requests, err := s.store.GetQuoteRequestsByIDs(ctx, requestIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.QuoteRequest, len(requests))
	for _, r := range requests {
		byID[r.ID] = r
	}

	rows := make([]AssignedRequest, 0, len(assignments))
	for _, a := range assignments {
		request, ok := byID[a.QuoteRequestID]
		if !ok {
			continue
		}

		effective := a.EffectiveStatus(now)
		if activeOnly {
			stillOpen := request.Status == models.RequestStatusOpen
			actionable := effective == models.AssignmentStatusSent || effective == models.AssignmentStatusViewed
			if !stillOpen || !actionable {
				continue
			}
		}

		a.Status = effective
		rows = append(rows, AssignedRequest{
			Assignment: a,
			Request:    request,
			IsExpired:  a.IsExpired(now),
		})
	}

	return rows, nil
}

func validateOfferInput(in CreateOfferInput) error {
	switch {
	case in.SupplierID <= 0:
		return Errorf(CodeValidation, "supplierId is required")
	case in.WineID <= 0:
		return Errorf(CodeValidation, "supplierWineId is required")
	case in.PriceExVatOre <= 0:
		return Errorf(CodeValidation, "offeredPriceExVatSek must be positive")
	case in.VatRate < 0 || in.VatRate > 100:
		return Errorf(CodeValidation, "vatRate must be between 0 and 100")
	case in.Quantity <= 0:
		return Errorf(CodeValidation, "quantity must be positive")
	case in.DeliveryDate.IsZero():
		return Errorf(CodeValidation, "deliveryDate is required")
	case in.LeadTimeDays < 0:
		return Errorf(CodeValidation, "leadTimeDays must not be negative")
	}
	return nil
}

func newOfferView(offer models.Offer, assignment *models.Assignment, now time.Time) OfferView {
	view := OfferView{
		Offer:          offer,
		PriceIncVatOre: addVatOre(offer.PriceExVatOre, offer.VatRate),
		TotalExVatOre:  offer.PriceExVatOre * int64(offer.Quantity),
	}
	view.TotalIncVatOre = addVatOre(view.TotalExVatOre, offer.VatRate)

	if assignment != nil {
		view.MatchScore = assignment.MatchScore
		view.MatchReasons = assignment.MatchReasons
		view.AssignmentStatus = assignment.EffectiveStatus(now)
		view.IsExpired = assignment.IsExpired(now)
	}
	return view
}

// addVatOre applies a percentage VAT rate in integer öre.
func addVatOre(amountOre int64, vatRate int) int64 {
	return amountOre * (100 + int64(vatRate)) / 100
}
