package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerdomain "github.com/ghuser/eggledger/services/ledger/domain"
	"github.com/ghuser/eggledger/services/ledger/domain/models"
)

// BatchUpsert is one batch state pushed by an offline client. The name is the
// upsert key; quantity arrives precomputed and is written as-is.
type BatchUpsert struct {
	Name        string
	Trays       int
	Quantity    int
	BuyingPrice decimal.Decimal
}

// SaleUpsert is one sale state pushed by an offline client, keyed by ID.
type SaleUpsert struct {
	ID           uuid.UUID
	BatchID      uuid.UUID
	BatchName    string
	QuantitySold int
	SalePrice    decimal.Decimal
}

// SyncItemResult reports the outcome of one upsert within a sync request.
type SyncItemResult struct {
	Key   string `json:"key"` // batch name or sale ID
	Error string `json:"error,omitempty"`
}

// SyncReport aggregates per-item outcomes of a sync request.
type SyncReport struct {
	BatchesApplied int              `json:"batches_applied"`
	SalesApplied   int              `json:"sales_applied"`
	Failed         []SyncItemResult `json:"failed,omitempty"`
}

// Sync reconciles state pushed by an offline client: last-write-wins upserts
// of batches (by name) and sales (by ID).
//
// Sync deliberately bypasses the stock-check and decrement logic of
// RecordSale/ReverseSale — the client already computed a consistent local
// state, and this endpoint overwrites server state to match it. It must never
// be routed through those code paths. The conservation audit workflow exists
// to surface the drift this can introduce.
//
// Items are independent: a failed upsert is reported in the result and the
// remaining items still apply.
func (s *LedgerService) Sync(ctx context.Context, batches []BatchUpsert, sales []SaleUpsert) *SyncReport {
	report := &SyncReport{}

	for _, b := range batches {
		if err := s.syncBatch(ctx, b); err != nil {
			s.log.WarnContext(ctx, "sync: batch upsert failed", "name", b.Name, "error", err)
			report.Failed = append(report.Failed, SyncItemResult{Key: b.Name, Error: err.Error()})
			continue
		}
		report.BatchesApplied++
	}

	for _, sl := range sales {
		if err := s.syncSale(ctx, sl); err != nil {
			s.log.WarnContext(ctx, "sync: sale upsert failed", "sale_id", sl.ID, "error", err)
			report.Failed = append(report.Failed, SyncItemResult{Key: sl.ID.String(), Error: err.Error()})
			continue
		}
		report.SalesApplied++
		s.invalidate(sl.BatchID)
	}

	return report
}

func (s *LedgerService) syncBatch(ctx context.Context, b BatchUpsert) error {
	name, err := models.NewBatchName(b.Name)
	if err != nil {
		return fmt.Errorf("%w: %w", ledgerdomain.ErrInvalidBatch, err)
	}
	if b.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative, got %d", ledgerdomain.ErrInvalidBatch, b.Quantity)
	}

	batch := &models.Batch{
		ID:          uuid.New(), // used only on insert; updates keep the existing ID
		Name:        name,
		Trays:       b.Trays,
		Quantity:    b.Quantity,
		BuyingPrice: b.BuyingPrice,
		CreatedAt:   time.Now().UTC(),
	}
	id, err := s.repo.UpsertBatch(ctx, batch)
	if err != nil {
		return err
	}
	// The upsert mutates quantity outside RecordSale/ReverseSale, so the
	// cached entry under the canonical row ID must go the same way.
	s.invalidate(id)
	return nil
}

func (s *LedgerService) syncSale(ctx context.Context, sl SaleUpsert) error {
	if sl.ID == uuid.Nil {
		return fmt.Errorf("%w: sale id is required", ledgerdomain.ErrInvalidSale)
	}
	if sl.QuantitySold <= 0 {
		return fmt.Errorf("%w: quantity sold must be positive, got %d", ledgerdomain.ErrInvalidSale, sl.QuantitySold)
	}

	sale := &models.Sale{
		ID:           sl.ID,
		BatchID:      sl.BatchID,
		BatchName:    sl.BatchName,
		QuantitySold: sl.QuantitySold,
		SalePrice:    sl.SalePrice,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.UpsertSale(ctx, sale); err != nil {
		return err
	}
	return nil
}
