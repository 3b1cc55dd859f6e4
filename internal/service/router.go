package service

import (
	"context"
	"sort"
	"time"

	"winefeed/internal/models"
	"winefeed/internal/redisclient"
	"winefeed/internal/scoring"
	"winefeed/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dispatchLockTTL = 10 * time.Second

// RouteDefaults are the routing knobs applied when a dispatch request
// leaves them unset.
type RouteDefaults struct {
	MaxMatches    int
	MinScore      int
	AssignmentTTL time.Duration
}

// RouteOptions are per-call overrides of the routing defaults. Zero values
// mean "use the default".
type RouteOptions struct {
	MaxMatches int
	MinScore   int
	ExpiresIn  time.Duration
}

// Match is one ranked supplier candidate.
type Match struct {
	SupplierID   int64    `json:"supplier_id"`
	SupplierName string   `json:"supplier_name"`
	Score        int      `json:"score"`
	Reasons      []string `json:"reasons"`
	CatalogSize  int      `json:"catalog_size"`
}

// RouteResult is the ranked outcome of scoring all active suppliers.
type RouteResult struct {
	Matches            []Match   `json:"matches"`
	SuppliersEvaluated int       `json:"suppliers_evaluated"`
	RoutedAt           time.Time `json:"routed_at"`
}

// DispatchResult reports a persisted dispatch.
type DispatchResult struct {
	AssignmentsCreated int       `json:"assignments_created"`
	Matches            []Match   `json:"matches"`
	ExpiresAt          time.Time `json:"expires_at"`
}

// DispatchStatus describes whether a request has been dispatched and to whom.
type DispatchStatus struct {
	Dispatched  bool                `json:"dispatched"`
	Assignments []models.Assignment `json:"assignments"`
}

// RouterService matches quote requests to suppliers and persists the
// resulting assignments. Dispatch is one-shot per request.
type RouterService struct {
	store     Store
	catalog   *CatalogClient
	redis     *redisclient.Client
	publisher EventPublisher
	defaults  RouteDefaults
	logger    *zap.Logger
	now       func() time.Time
}

// NewRouterService creates a new router service. redis may be nil; the
// dispatch guard lock is then skipped and the unique index alone protects
// against concurrent dispatch.
func NewRouterService(
	store Store,
	catalog *CatalogClient,
	redis *redisclient.Client,
	publisher EventPublisher,
	defaults RouteDefaults,
) *RouterService {
	return &RouterService{
		store:     store,
		catalog:   catalog,
		redis:     redis,
		publisher: publisher,
		defaults:  defaults,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// Route scores every active supplier against the request and returns the
// ranked matches without persisting anything. This backs the dispatch
// preview endpoint.
func (s *RouterService) Route(ctx context.Context, requestID int64, opts RouteOptions) (*RouteResult, error) {
	ctx, span := util.StartSpan(ctx, "RouterService.Route")
	defer span.End()

	start := time.Now()
	defer func() {
		util.RoutingLatency.Observe(time.Since(start).Seconds())
	}()

	request, err := s.store.GetQuoteRequestByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOrInternal(err, "quote request %d not found", requestID)
	}

	opts = s.applyDefaults(opts)
	now := s.now()

	suppliers, err := s.store.GetActiveSuppliers(ctx)
	if err != nil {
		return nil, err
	}

	scoringReq := scoring.Request{
		Freetext:           request.Freetext,
		BudgetPerBottleOre: request.BudgetPerBottleOre,
		Quantity:           request.Quantity,
		DeliveryBy:         request.DeliveryBy,
	}

	matches := make([]Match, 0, len(suppliers))
	for _, supplier := range suppliers {
		catalog, err := s.catalog.GetSupplierCatalog(ctx, supplier.ID)
		if err != nil {
			return nil, err
		}

		// Empty catalogs are excluded outright, whatever minScore is.
		if len(catalog) == 0 {
			continue
		}

		result := scoring.Score(scoringReq, supplier.NormalLeadTimeDays, catalog, now)
		if result.Score < opts.MinScore {
			continue
		}

		matches = append(matches, Match{
			SupplierID:   supplier.ID,
			SupplierName: supplier.Name,
			Score:        result.Score,
			Reasons:      result.Reasons(),
			CatalogSize:  len(catalog),
		})
	}

	// Stable sort: ties keep supplier load order, so identical inputs
	// always produce identical rankings.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > opts.MaxMatches {
		matches = matches[:opts.MaxMatches]
	}

	return &RouteResult{
		Matches:            matches,
		SuppliersEvaluated: len(suppliers),
		RoutedAt:           now,
	}, nil
}

// Dispatch routes the request and persists one SENT assignment per match.
// A request with any existing assignment cannot be dispatched again. A
// dispatch that matches zero suppliers persists nothing and stays
// dispatchable.
func (s *RouterService) Dispatch(ctx context.Context, requestID int64, opts RouteOptions) (*DispatchResult, error) {
	ctx, span := util.StartSpan(ctx, "RouterService.Dispatch")
	defer span.End()

	count, err := s.store.CountAssignmentsForRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		util.DispatchConflictsTotal.Inc()
		return nil, Errorf(CodeAlreadyDispatched, "quote request %d is already dispatched", requestID)
	}

	if s.redis != nil {
		acquired, err := s.redis.AcquireDispatchLock(ctx, requestID, dispatchLockTTL)
		if err != nil {
			s.logger.Warn("Dispatch lock unavailable, relying on unique index",
				zap.Int64("request_id", requestID),
				zap.Error(err))
		} else if !acquired {
			util.DispatchConflictsTotal.Inc()
			return nil, Errorf(CodeAlreadyDispatched, "quote request %d is already being dispatched", requestID)
		} else {
			defer func() {
				if err := s.redis.ReleaseDispatchLock(context.Background(), requestID); err != nil {
					s.logger.Warn("Failed to release dispatch lock", zap.Error(err))
				}
			}()
		}
	}

	routed, err := s.Route(ctx, requestID, opts)
	if err != nil {
		return nil, err
	}

	opts = s.applyDefaults(opts)
	sentAt := routed.RoutedAt
	expiresAt := sentAt.Add(opts.ExpiresIn)

	if len(routed.Matches) == 0 {
		s.logger.Warn("Dispatch matched no suppliers",
			zap.Int64("request_id", requestID),
			zap.Int("suppliers_evaluated", routed.SuppliersEvaluated),
			zap.Int("min_score", opts.MinScore))
		return &DispatchResult{AssignmentsCreated: 0, Matches: nil, ExpiresAt: expiresAt}, nil
	}

	assignments := make([]*models.Assignment, 0, len(routed.Matches))
	supplierIDs := make([]int64, 0, len(routed.Matches))
	for _, match := range routed.Matches {
		assignments = append(assignments, &models.Assignment{
			QuoteRequestID: requestID,
			SupplierID:     match.SupplierID,
			MatchScore:     match.Score,
			MatchReasons:   match.Reasons,
			Status:         models.AssignmentStatusSent,
			SentAt:         sentAt,
			ExpiresAt:      expiresAt,
		})
		supplierIDs = append(supplierIDs, match.SupplierID)
	}

	if err := s.store.CreateAssignments(ctx, assignments); err != nil {
		if isDuplicate(err) {
			util.DispatchConflictsTotal.Inc()
			return nil, Errorf(CodeAlreadyDispatched, "quote request %d is already dispatched", requestID)
		}
		return nil, err
	}

	util.RequestsDispatchedTotal.Inc()
	util.AssignmentsCreatedTotal.Add(float64(len(assignments)))
	s.logger.Info("Quote request dispatched",
		zap.Int64("request_id", requestID),
		zap.Int("assignments", len(assignments)),
		zap.Time("expires_at", expiresAt))

	request, err := s.store.GetQuoteRequestByID(ctx, requestID)
	if err == nil {
		event := &models.RequestDispatchedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeRequestDispatched,
				Timestamp: sentAt,
			},
			QuoteRequestID:     requestID,
			RestaurantID:       request.RestaurantID,
			AssignmentsCreated: len(assignments),
			SupplierIDs:        supplierIDs,
			ExpiresAt:          expiresAt,
		}
		if err := s.publisher.PublishRequestDispatched(ctx, event); err != nil {
			s.logger.Error("Failed to publish RequestDispatched event", zap.Error(err))
		}
	}

	return &DispatchResult{
		AssignmentsCreated: len(assignments),
		Matches:            routed.Matches,
		ExpiresAt:          expiresAt,
	}, nil
}

// GetDispatchStatus reports the persisted assignments of a request.
func (s *RouterService) GetDispatchStatus(ctx context.Context, requestID int64) (*DispatchStatus, error) {
	if _, err := s.store.GetQuoteRequestByID(ctx, requestID); err != nil {
		return nil, notFoundOrInternal(err, "quote request %d not found", requestID)
	}

	assignments, err := s.store.ListAssignmentsByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	return &DispatchStatus{
		Dispatched:  len(assignments) > 0,
		Assignments: assignments,
	}, nil
}

func (s *RouterService) applyDefaults(opts RouteOptions) RouteOptions {
	if opts.MaxMatches <= 0 {
		opts.MaxMatches = s.defaults.MaxMatches
	}
	if opts.MinScore <= 0 {
		opts.MinScore = s.defaults.MinScore
	}
	if opts.ExpiresIn <= 0 {
		opts.ExpiresIn = s.defaults.AssignmentTTL
	}
	return opts
}
