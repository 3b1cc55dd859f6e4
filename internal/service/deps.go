package service

import (
	"context"
	"time"

	"winefeed/internal/models"
)

// Store is the data-access port the services depend on. *store.Store is the
// Postgres implementation; tests use an in-memory fake, which keeps tenant
// isolation and acceptance races testable without a database.
type Store interface {
	CreateQuoteRequest(ctx context.Context, req *models.QuoteRequest) error
	GetQuoteRequestByID(ctx context.Context, id int64) (*models.QuoteRequest, error)
	GetQuoteRequestsByIDs(ctx context.Context, ids []int64) ([]models.QuoteRequest, error)

	GetActiveSuppliers(ctx context.Context) ([]models.Supplier, error)
	GetActiveWinesBySupplier(ctx context.Context, supplierID int64) ([]models.Wine, error)
	GetWineByID(ctx context.Context, id int64) (*models.Wine, error)

	CountAssignmentsForRequest(ctx context.Context, requestID int64) (int, error)
	CreateAssignments(ctx context.Context, assignments []*models.Assignment) error
	GetAssignment(ctx context.Context, requestID, supplierID int64) (*models.Assignment, error)
	ListAssignmentsByRequest(ctx context.Context, requestID int64) ([]models.Assignment, error)
	ListAssignmentsBySupplier(ctx context.Context, supplierID int64) ([]models.Assignment, error)
	MarkSupplierAssignmentsViewed(ctx context.Context, supplierID int64, now time.Time) error

	CreateOfferTx(ctx context.Context, offer *models.Offer, respondedAt time.Time) error
	GetOfferByID(ctx context.Context, id int64) (*models.Offer, error)
	ListOffersByRequest(ctx context.Context, requestID int64) ([]models.Offer, error)

	GetCommercialIntentByRequest(ctx context.Context, requestID int64) (*models.CommercialIntent, error)
	AcceptOfferTx(ctx context.Context, intent *models.CommercialIntent, acceptedAt time.Time) error
}

// EventPublisher publishes domain events to the broker.
type EventPublisher interface {
	PublishRequestDispatched(ctx context.Context, event *models.RequestDispatchedEvent) error
	PublishOfferSubmitted(ctx context.Context, event *models.OfferSubmittedEvent) error
	PublishOfferAccepted(ctx context.Context, event *models.OfferAcceptedEvent) error
}
