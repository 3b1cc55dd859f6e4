package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"winefeed/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// CreateQuoteRequest creates a new quote request
func (s *Store) CreateQuoteRequest(ctx context.Context, req *models.QuoteRequest) error {
	if req.SpecialRequirements == nil {
		req.SpecialRequirements = pq.StringArray{}
	}

	query := `
		INSERT INTO quote_requests
			(restaurant_id, freetext, budget_per_bottle_ore, quantity, delivery_by, special_requirements, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, req, query,
		req.RestaurantID, req.Freetext, req.BudgetPerBottleOre, req.Quantity,
		req.DeliveryBy, req.SpecialRequirements, req.Status)
}

// GetQuoteRequestByID retrieves a quote request by ID
func (s *Store) GetQuoteRequestByID(ctx context.Context, id int64) (*models.QuoteRequest, error) {
	var req models.QuoteRequest
	err := s.db.GetContext(ctx, &req, "SELECT * FROM quote_requests WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quote request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetQuoteRequestsByIDs retrieves multiple quote requests by IDs
func (s *Store) GetQuoteRequestsByIDs(ctx context.Context, ids []int64) ([]models.QuoteRequest, error) {
	if len(ids) == 0 {
		return []models.QuoteRequest{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM quote_requests WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var reqs []models.QuoteRequest
	err = s.db.SelectContext(ctx, &reqs, query, args...)
	return reqs, err
}

// CountAssignmentsForRequest counts assignments for a request, any status.
// A non-zero count means the request has already been dispatched.
func (s *Store) CountAssignmentsForRequest(ctx context.Context, requestID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(1) FROM assignments WHERE quote_request_id = $1", requestID)
	return count, err
}

// CreateAssignments persists all assignments of one dispatch in a single
// transaction. Returns ErrDuplicate if any (request, supplier) pair already
// exists, which the unique index guarantees can only happen on a concurrent
// or repeated dispatch.
func (s *Store) CreateAssignments(ctx context.Context, assignments []*models.Assignment) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO assignments
			(quote_request_id, supplier_id, match_score, match_reasons, status, sent_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	for _, a := range assignments {
		if a.MatchReasons == nil {
			a.MatchReasons = pq.StringArray{}
		}
		err := tx.GetContext(ctx, &a.ID, query,
			a.QuoteRequestID, a.SupplierID, a.MatchScore, a.MatchReasons,
			a.Status, a.SentAt, a.ExpiresAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("assignment for request %d supplier %d: %w",
					a.QuoteRequestID, a.SupplierID, ErrDuplicate)
			}
			return fmt.Errorf("failed to create assignment: %w", err)
		}
	}

	return tx.Commit()
}

// GetAssignment retrieves the assignment for a (request, supplier) pair
func (s *Store) GetAssignment(ctx context.Context, requestID, supplierID int64) (*models.Assignment, error) {
	var a models.Assignment
	err := s.db.GetContext(ctx, &a,
		"SELECT * FROM assignments WHERE quote_request_id = $1 AND supplier_id = $2",
		requestID, supplierID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("assignment for request %d supplier %d: %w", requestID, supplierID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAssignmentsByRequest retrieves all assignments for a request
func (s *Store) ListAssignmentsByRequest(ctx context.Context, requestID int64) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := s.db.SelectContext(ctx, &assignments,
		"SELECT * FROM assignments WHERE quote_request_id = $1 ORDER BY match_score DESC, id",
		requestID)
	return assignments, err
}

// ListAssignmentsBySupplier retrieves a supplier's assignments, newest first
func (s *Store) ListAssignmentsBySupplier(ctx context.Context, supplierID int64) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := s.db.SelectContext(ctx, &assignments,
		"SELECT * FROM assignments WHERE supplier_id = $1 ORDER BY sent_at DESC, id DESC",
		supplierID)
	return assignments, err
}

// MarkSupplierAssignmentsViewed flips the supplier's non-expired SENT
// assignments to VIEWED. Re-reading is idempotent: rows already VIEWED or
// past their TTL are untouched.
func (s *Store) MarkSupplierAssignmentsViewed(ctx context.Context, supplierID int64, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE assignments
		SET status = $1, viewed_at = $2
		WHERE supplier_id = $3 AND status = $4 AND expires_at > $2`,
		models.AssignmentStatusViewed, now, supplierID, models.AssignmentStatusSent)
	return err
}
