package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	pkgcache "github.com/ghuser/eggledger/pkg/cache"
	"github.com/ghuser/eggledger/pkg/logger"
	ledgerdomain "github.com/ghuser/eggledger/services/ledger/domain"
	"github.com/ghuser/eggledger/services/ledger/domain/models"
	"github.com/ghuser/eggledger/services/ledger/domain/repositories"
	domainsvcs "github.com/ghuser/eggledger/services/ledger/domain/services"
)

// BatchCache is the batch read model the service keeps coherent: read-through
// on GetBatch, deleted on every quantity mutation. Implemented by
// pkg/cache.BatchCache over Redis.
type BatchCache interface {
	Get(ctx context.Context, batchID uuid.UUID) (*pkgcache.CachedBatch, error)
	Set(ctx context.Context, batch *pkgcache.CachedBatch) error
	Delete(ctx context.Context, batchID uuid.UUID) error
}

// LedgerService orchestrates batch intake, sale recording/reversal, and bulk
// synchronization. The atomic read-check-mutate sequences live in the
// repository; this layer validates input, keeps the Redis read model honest,
// and enforces that Sync never shares a code path with RecordSale/ReverseSale.
type LedgerService struct {
	repo  repositories.LedgerRepository
	cache BatchCache
	log   logger.Logger
}

// NewLedgerService returns a LedgerService wired with the given repository and cache.
func NewLedgerService(repo repositories.LedgerRepository, batchCache BatchCache, log logger.Logger) *LedgerService {
	return &LedgerService{repo: repo, cache: batchCache, log: log}
}

// CreateBatch validates intake input and persists a new batch with
// quantity = trays × eggs-per-tray.
func (s *LedgerService) CreateBatch(ctx context.Context, name string, trays int, buyingPrice decimal.Decimal) (*models.Batch, error) {
	batchName, err := models.NewBatchName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledgerdomain.ErrInvalidBatch, err)
	}
	if err := domainsvcs.ValidateIntake(trays, buyingPrice); err != nil {
		return nil, err
	}

	batch := models.NewBatch(batchName, trays, buyingPrice)
	if err := s.repo.SaveBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("save batch: %w", err)
	}
	return batch, nil
}

// GetBatch retrieves a batch using a read-through cache:
//  1. Check Redis first.
//  2. On miss (or cache error), query Postgres.
//  3. Asynchronously warm the cache with the Postgres result.
func (s *LedgerService) GetBatch(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id); err == nil {
			if batch, err := batchFromCache(cached); err == nil {
				return batch, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "batch cache read failed", "batch_id", id, "error", err)
		}
	}

	batch, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}

	if s.cache != nil {
		// The warm can race a concurrent mutation's invalidation and
		// re-insert the pre-mutation quantity; the TTL bounds that window.
		go func() {
			_ = s.cache.Set(context.Background(), cacheModel(batch))
		}()
	}
	return batch, nil
}

// ListBatches returns a snapshot of all batches.
func (s *LedgerService) ListBatches(ctx context.Context) ([]*models.Batch, error) {
	batches, err := s.repo.ListBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// DeleteBatch removes a batch. Batches with live sales are protected
// (ErrBatchInUse): deleting them would leave sales pointing at nothing.
func (s *LedgerService) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteBatch(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

// RecordSale records a depletion against a batch. The stock check and
// decrement run as one atomic unit in the repository; this layer only
// validates the quantity and invalidates the read model afterwards.
func (s *LedgerService) RecordSale(ctx context.Context, batchID uuid.UUID, quantitySold int, salePrice decimal.Decimal) (*models.Sale, error) {
	if err := domainsvcs.ValidateSaleQuantity(quantitySold); err != nil {
		return nil, err
	}

	sale, err := s.repo.RecordSale(ctx, batchID, quantitySold, salePrice)
	if err != nil {
		return nil, err
	}
	s.invalidate(batchID)
	return sale, nil
}

// ReverseSale deletes a sale and credits its quantity back to the batch.
// A second reversal of the same ID returns ErrSaleNotFound and credits nothing.
func (s *LedgerService) ReverseSale(ctx context.Context, saleID uuid.UUID) error {
	sale, err := s.repo.ReverseSale(ctx, saleID)
	if err != nil {
		return err
	}
	s.invalidate(sale.BatchID)
	return nil
}

// ListSales returns all sales with their sale-time batch-name snapshots.
func (s *LedgerService) ListSales(ctx context.Context) ([]*models.Sale, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func (s *LedgerService) invalidate(batchID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.Background(), batchID); err != nil {
		s.log.Warn("batch cache invalidation failed", "batch_id", batchID, "error", err)
	}
}

func cacheModel(batch *models.Batch) *pkgcache.CachedBatch {
	return &pkgcache.CachedBatch{
		ID:          batch.ID,
		Name:        batch.Name.String(),
		Trays:       batch.Trays,
		Quantity:    batch.Quantity,
		BuyingPrice: batch.BuyingPrice.String(),
		CreatedAt:   batch.CreatedAt,
	}
}

func batchFromCache(cached *pkgcache.CachedBatch) (*models.Batch, error) {
	price, err := decimal.NewFromString(cached.BuyingPrice)
	if err != nil {
		return nil, fmt.Errorf("parse cached price: %w", err)
	}
	return &models.Batch{
		ID:          cached.ID,
		Name:        models.BatchName(cached.Name),
		Trays:       cached.Trays,
		Quantity:    cached.Quantity,
		BuyingPrice: price,
		CreatedAt:   cached.CreatedAt,
	}, nil
}
