package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"winefeed/internal/models"
	"winefeed/internal/store"
)

// fakeStore is an in-memory Store used to exercise routing, gating and
// acceptance semantics without a database. It mirrors the real store's
// contract, including ErrNotFound/ErrDuplicate sentinels and the unique
// constraints on assignments and commercial intents.
type fakeStore struct {
	mu          sync.Mutex
	nextID      int64
	requests    map[int64]*models.QuoteRequest
	suppliers   []models.Supplier
	winesByID   map[int64]*models.Wine
	assignments []*models.Assignment
	offers      []*models.Offer
	intents     map[int64]*models.CommercialIntent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:  make(map[int64]*models.QuoteRequest),
		winesByID: make(map[int64]*models.Wine),
		intents:   make(map[int64]*models.CommercialIntent),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addSupplier(name string, leadTimeDays int, wines ...models.Wine) models.Supplier {
	f.mu.Lock()
	defer f.mu.Unlock()

	supplier := models.Supplier{
		ID:                 f.id(),
		Name:               name,
		Active:             true,
		NormalLeadTimeDays: leadTimeDays,
		CreatedAt:          time.Now(),
	}
	f.suppliers = append(f.suppliers, supplier)

	for i := range wines {
		w := wines[i]
		w.ID = f.id()
		w.SupplierID = supplier.ID
		w.Active = true
		f.winesByID[w.ID] = &w
	}
	return supplier
}

func (f *fakeStore) CreateQuoteRequest(_ context.Context, req *models.QuoteRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	req.ID = f.id()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeStore) GetQuoteRequestByID(_ context.Context, id int64) (*models.QuoteRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, ok := f.requests[id]
	if !ok {
		return nil, fmt.Errorf("quote request %d: %w", id, store.ErrNotFound)
	}
	clone := *req
	return &clone, nil
}

func (f *fakeStore) GetQuoteRequestsByIDs(_ context.Context, ids []int64) ([]models.QuoteRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.QuoteRequest
	for _, id := range ids {
		if req, ok := f.requests[id]; ok {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeStore) GetActiveSuppliers(_ context.Context) ([]models.Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Supplier
	for _, s := range f.suppliers {
		if s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetActiveWinesBySupplier(_ context.Context, supplierID int64) ([]models.Wine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Wine
	for _, w := range f.winesByID {
		if w.SupplierID == supplierID && w.Active {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeStore) GetWineByID(_ context.Context, id int64) (*models.Wine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w, ok := f.winesByID[id]
	if !ok {
		return nil, fmt.Errorf("wine %d: %w", id, store.ErrNotFound)
	}
	clone := *w
	return &clone, nil
}

func (f *fakeStore) CountAssignmentsForRequest(_ context.Context, requestID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, a := range f.assignments {
		if a.QuoteRequestID == requestID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateAssignments(_ context.Context, assignments []*models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range assignments {
		for _, existing := range f.assignments {
			if existing.QuoteRequestID == a.QuoteRequestID && existing.SupplierID == a.SupplierID {
				return fmt.Errorf("assignment for request %d supplier %d: %w",
					a.QuoteRequestID, a.SupplierID, store.ErrDuplicate)
			}
		}
	}
	for _, a := range assignments {
		a.ID = f.id()
		clone := *a
		f.assignments = append(f.assignments, &clone)
	}
	return nil
}

func (f *fakeStore) GetAssignment(_ context.Context, requestID, supplierID int64) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.assignments {
		if a.QuoteRequestID == requestID && a.SupplierID == supplierID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("assignment for request %d supplier %d: %w", requestID, supplierID, store.ErrNotFound)
}

func (f *fakeStore) ListAssignmentsByRequest(_ context.Context, requestID int64) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Assignment
	for _, a := range f.assignments {
		if a.QuoteRequestID == requestID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAssignmentsBySupplier(_ context.Context, supplierID int64) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Assignment
	for _, a := range f.assignments {
		if a.SupplierID == supplierID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkSupplierAssignmentsViewed(_ context.Context, supplierID int64, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.assignments {
		if a.SupplierID == supplierID && a.Status == models.AssignmentStatusSent && a.ExpiresAt.After(now) {
			a.Status = models.AssignmentStatusViewed
			viewed := now
			a.ViewedAt = &viewed
		}
	}
	return nil
}

func (f *fakeStore) CreateOfferTx(_ context.Context, offer *models.Offer, respondedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	offer.ID = f.id()
	offer.CreatedAt = respondedAt
	clone := *offer
	f.offers = append(f.offers, &clone)

	for _, a := range f.assignments {
		if a.QuoteRequestID == offer.QuoteRequestID && a.SupplierID == offer.SupplierID {
			a.Status = models.AssignmentStatusResponded
			responded := respondedAt
			a.RespondedAt = &responded
			if a.ViewedAt == nil {
				a.ViewedAt = &responded
			}
		}
	}
	return nil
}

func (f *fakeStore) GetOfferByID(_ context.Context, id int64) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, o := range f.offers {
		if o.ID == id {
			clone := *o
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("offer %d: %w", id, store.ErrNotFound)
}

func (f *fakeStore) ListOffersByRequest(_ context.Context, requestID int64) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Offer
	for _, o := range f.offers {
		if o.QuoteRequestID == requestID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCommercialIntentByRequest(_ context.Context, requestID int64) (*models.CommercialIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	intent, ok := f.intents[requestID]
	if !ok {
		return nil, nil
	}
	clone := *intent
	return &clone, nil
}

func (f *fakeStore) AcceptOfferTx(_ context.Context, intent *models.CommercialIntent, acceptedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.intents[intent.QuoteRequestID]; exists {
		return fmt.Errorf("commercial intent for request %d: %w", intent.QuoteRequestID, store.ErrDuplicate)
	}

	intent.ID = f.id()
	intent.CreatedAt = acceptedAt
	clone := *intent
	f.intents[intent.QuoteRequestID] = &clone

	for _, o := range f.offers {
		if o.ID == intent.OfferID {
			o.Status = models.OfferStatusAccepted
			accepted := acceptedAt
			o.AcceptedAt = &accepted
		}
	}
	if req, ok := f.requests[intent.QuoteRequestID]; ok {
		req.Status = models.RequestStatusAccepted
		offerID := intent.OfferID
		req.AcceptedOfferID = &offerID
	}
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu         sync.Mutex
	dispatched []*models.RequestDispatchedEvent
	submitted  []*models.OfferSubmittedEvent
	accepted   []*models.OfferAcceptedEvent
}

func (f *fakePublisher) PublishRequestDispatched(_ context.Context, event *models.RequestDispatchedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, event)
	return nil
}

func (f *fakePublisher) PublishOfferSubmitted(_ context.Context, event *models.OfferSubmittedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, event)
	return nil
}

func (f *fakePublisher) PublishOfferAccepted(_ context.Context, event *models.OfferAcceptedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted = append(f.accepted, event)
	return nil
}
