package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"winefeed/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCatalog retrieves a cached supplier catalog. The second return value
// is false on a cache miss.
func (c *Client) GetCatalog(ctx context.Context, supplierID int64) ([]models.Wine, bool, error) {
	key := fmt.Sprintf("catalog:%d", supplierID)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var wines []models.Wine
	if err := json.Unmarshal(raw, &wines); err != nil {
		return nil, false, fmt.Errorf("corrupt catalog cache for supplier %d: %w", supplierID, err)
	}
	return wines, true, nil
}

// SetCatalog caches a supplier catalog with a TTL
func (c *Client) SetCatalog(ctx context.Context, supplierID int64, wines []models.Wine, ttl time.Duration) error {
	raw, err := json.Marshal(wines)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf("catalog:%d", supplierID), raw, ttl).Err()
}

// InvalidateCatalog drops a cached supplier catalog
func (c *Client) InvalidateCatalog(ctx context.Context, supplierID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("catalog:%d", supplierID)).Err()
}

// AcquireDispatchLock takes a short-lived guard lock around dispatching a
// request. The lock only serializes concurrent dispatch attempts cheaply;
// the unique index on assignments remains the correctness backstop.
func (c *Client) AcquireDispatchLock(ctx context.Context, requestID int64, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:dispatch:%d", requestID), "1", ttl).Result()
}

// ReleaseDispatchLock releases the dispatch guard lock
func (c *Client) ReleaseDispatchLock(ctx context.Context, requestID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:dispatch:%d", requestID)).Err()
}
