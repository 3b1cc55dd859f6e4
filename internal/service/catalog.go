package service

import (
	"context"
	"time"

	"winefeed/internal/models"
	"winefeed/internal/redisclient"
	"winefeed/internal/util"

	"go.uber.org/zap"
)

// catalogCacheTTL is short: the router tolerates slightly stale catalogs,
// and a stale entry only skews scoring until the next refresh.
const catalogCacheTTL = 5 * time.Minute

// CatalogClient reads supplier catalogs, redis-first with DB fallback.
type CatalogClient struct {
	store  Store
	cache  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogClient creates a new catalog client. cache may be nil, in which
// case every read goes to the database.
func NewCatalogClient(store Store, cache *redisclient.Client) *CatalogClient {
	return &CatalogClient{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// GetSupplierCatalog returns a supplier's active catalog.
func (cc *CatalogClient) GetSupplierCatalog(ctx context.Context, supplierID int64) ([]models.Wine, error) {
	if cc.cache != nil {
		wines, hit, err := cc.cache.GetCatalog(ctx, supplierID)
		if err != nil {
			cc.logger.Warn("Catalog cache read failed, falling back to DB",
				zap.Int64("supplier_id", supplierID),
				zap.Error(err))
		} else if hit {
			return wines, nil
		}
	}

	wines, err := cc.store.GetActiveWinesBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	if cc.cache != nil {
		if err := cc.cache.SetCatalog(ctx, supplierID, wines, catalogCacheTTL); err != nil {
			cc.logger.Warn("Failed to cache catalog",
				zap.Int64("supplier_id", supplierID),
				zap.Error(err))
		}
	}

	return wines, nil
}
