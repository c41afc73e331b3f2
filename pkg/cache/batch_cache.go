package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// BatchCacheTTL is the time-to-live for cached batches. Quantities change
	// with every sale, so entries are also invalidated explicitly on mutation.
	BatchCacheTTL = time.Hour

	batchCacheKeyPrefix = "batch"
)

// CachedBatch is the denormalized batch read model stored in Redis.
// BuyingPrice is kept as its decimal string representation.
type CachedBatch struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Trays       int       `json:"trays"`
	Quantity    int       `json:"quantity"`
	BuyingPrice string    `json:"buying_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// BatchCache provides structured read/write operations for batch cache
// entries. Key format: "batch:{batchID}".
type BatchCache struct {
	client *RedisClient
}

// NewBatchCache creates a new BatchCache backed by the given RedisClient.
func NewBatchCache(r *RedisClient) *BatchCache {
	return &BatchCache{client: r}
}

// Get retrieves a cached batch by ID.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *BatchCache) Get(ctx context.Context, batchID uuid.UUID) (*CachedBatch, error) {
	key := c.key(batchID)
	vals, err := c.client.Client().HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil // key not found
	}

	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	trays, err := strconv.Atoi(vals["trays"])
	if err != nil {
		return nil, fmt.Errorf("cache parse trays: %w", err)
	}
	quantity, err := strconv.Atoi(vals["quantity"])
	if err != nil {
		return nil, fmt.Errorf("cache parse quantity: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}

	return &CachedBatch{
		ID:          id,
		Name:        vals["name"],
		Trays:       trays,
		Quantity:    quantity,
		BuyingPrice: vals["buying_price"],
		CreatedAt:   createdAt,
	}, nil
}

// Set stores a batch read model with the standard TTL.
func (c *BatchCache) Set(ctx context.Context, batch *CachedBatch) error {
	key := c.key(batch.ID)
	pipe := c.client.Client().TxPipeline()
	pipe.HSet(ctx, key,
		"id", batch.ID.String(),
		"name", batch.Name,
		"trays", strconv.Itoa(batch.Trays),
		"quantity", strconv.Itoa(batch.Quantity),
		"buying_price", batch.BuyingPrice,
		"created_at", batch.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, BatchCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached batch. Called after every quantity mutation so the
// next read re-fetches the authoritative row.
func (c *BatchCache) Delete(ctx context.Context, batchID uuid.UUID) error {
	if err := c.client.Client().Del(ctx, c.key(batchID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "batch:{batchID}"
func (c *BatchCache) key(batchID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", batchCacheKeyPrefix, batchID)
}
