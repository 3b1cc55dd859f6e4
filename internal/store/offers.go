package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"winefeed/internal/models"
)

// CreateOfferTx inserts an offer and transitions its assignment to
// RESPONDED in one transaction, so an offer can never exist against a
// non-RESPONDED assignment. A supplier may respond without having listed
// first; the first touch counts as the view, keeping
// sent_at <= viewed_at <= responded_at.
func (s *Store) CreateOfferTx(ctx context.Context, offer *models.Offer, respondedAt time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO offers
			(quote_request_id, supplier_id, wine_id, price_ex_vat_ore, vat_rate,
			 quantity, delivery_date, lead_time_days, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		offer.QuoteRequestID, offer.SupplierID, offer.WineID, offer.PriceExVatOre,
		offer.VatRate, offer.Quantity, offer.DeliveryDate, offer.LeadTimeDays,
		offer.Notes, offer.Status).
		Scan(&offer.ID, &offer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE assignments
		SET status = $1, responded_at = $2, viewed_at = COALESCE(viewed_at, $2)
		WHERE quote_request_id = $3 AND supplier_id = $4`,
		models.AssignmentStatusResponded, respondedAt,
		offer.QuoteRequestID, offer.SupplierID)
	if err != nil {
		return fmt.Errorf("failed to transition assignment: %w", err)
	}

	return tx.Commit()
}

// GetOfferByID retrieves an offer by ID
func (s *Store) GetOfferByID(ctx context.Context, id int64) (*models.Offer, error) {
	var offer models.Offer
	err := s.db.GetContext(ctx, &offer, "SELECT * FROM offers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("offer %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListOffersByRequest retrieves all offers for a request
func (s *Store) ListOffersByRequest(ctx context.Context, requestID int64) ([]models.Offer, error) {
	var offers []models.Offer
	err := s.db.SelectContext(ctx, &offers,
		"SELECT * FROM offers WHERE quote_request_id = $1 ORDER BY created_at, id", requestID)
	return offers, err
}

// GetCommercialIntentByRequest retrieves the acceptance record for a
// request, or nil if none exists yet.
func (s *Store) GetCommercialIntentByRequest(ctx context.Context, requestID int64) (*models.CommercialIntent, error) {
	var intent models.CommercialIntent
	err := s.db.GetContext(ctx, &intent,
		"SELECT * FROM commercial_intents WHERE quote_request_id = $1", requestID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// AcceptOfferTx creates the commercial intent and marks the offer and
// request accepted, atomically. The unique index on
// commercial_intents.quote_request_id is the arbiter of at-most-one
// acceptance: the loser of a race gets ErrDuplicate, not a partial write.
func (s *Store) AcceptOfferTx(ctx context.Context, intent *models.CommercialIntent, acceptedAt time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO commercial_intents
			(reference, quote_request_id, offer_id, restaurant_id, supplier_id,
			 goods_amount_ore, vat_amount_ore, service_fee_ore, total_payable_ore)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		intent.Reference, intent.QuoteRequestID, intent.OfferID, intent.RestaurantID,
		intent.SupplierID, intent.GoodsAmountOre, intent.VatAmountOre,
		intent.ServiceFeeOre, intent.TotalPayableOre).
		Scan(&intent.ID, &intent.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("commercial intent for request %d: %w", intent.QuoteRequestID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create commercial intent: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE offers SET status = $1, accepted_at = $2 WHERE id = $3",
		models.OfferStatusAccepted, acceptedAt, intent.OfferID)
	if err != nil {
		return fmt.Errorf("failed to mark offer accepted: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE quote_requests SET status = $1, accepted_offer_id = $2, updated_at = $3 WHERE id = $4",
		models.RequestStatusAccepted, intent.OfferID, acceptedAt, intent.QuoteRequestID)
	if err != nil {
		return fmt.Errorf("failed to mark request accepted: %w", err)
	}

	return tx.Commit()
}
