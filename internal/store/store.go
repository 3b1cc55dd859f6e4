package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"winefeed/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert hits a unique constraint. The
// unique indexes on assignments and commercial_intents are the storage-level
// backstop for one-shot dispatch and at-most-one acceptance.
var ErrDuplicate = errors.New("duplicate row")

type Store struct {
	db *sqlx.DB
}

// NewStore connects to Postgres and configures the pool.
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Migrate runs the embedded goose migrations.
func (s *Store) Migrate() error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(s.db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetSupplierByID retrieves a supplier by ID
func (s *Store) GetSupplierByID(ctx context.Context, id int64) (*models.Supplier, error) {
	var supplier models.Supplier
	err := s.db.GetContext(ctx, &supplier, "SELECT * FROM suppliers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("supplier %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// GetActiveSuppliers retrieves all active suppliers in deterministic order.
// The router relies on this order for stable tie-breaking.
func (s *Store) GetActiveSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := s.db.SelectContext(ctx, &suppliers,
		"SELECT * FROM suppliers WHERE active = TRUE ORDER BY created_at, id")
	return suppliers, err
}

// GetActiveWinesBySupplier retrieves a supplier's active catalog
func (s *Store) GetActiveWinesBySupplier(ctx context.Context, supplierID int64) ([]models.Wine, error) {
	var wines []models.Wine
	err := s.db.SelectContext(ctx, &wines,
		"SELECT * FROM wines WHERE supplier_id = $1 AND active = TRUE ORDER BY id", supplierID)
	return wines, err
}

// GetWineByID retrieves a wine by ID
func (s *Store) GetWineByID(ctx context.Context, id int64) (*models.Wine, error) {
	var wine models.Wine
	err := s.db.GetContext(ctx, &wine, "SELECT * FROM wines WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("wine %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &wine, nil
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
