package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/eggledger/services/ledger/domain/models"
)

// ConservationDrift describes a batch whose quantity no longer matches
// "initial quantity minus live sales". Drift is expected after bulk sync
// (an invariant-bypass surface); the audit reports it, it does not correct it.
type ConservationDrift struct {
	BatchID   uuid.UUID `json:"batch_id"`
	Name      string    `json:"name"`
	Expected  int       `json:"expected"` // trays × eggs-per-tray
	Quantity  int       `json:"quantity"`
	SoldTotal int       `json:"sold_total"` // Σ quantity_sold over live sales
}

// LedgerRepository is the persistence interface for the ledger bounded context.
// The domain layer owns this interface; infrastructure implements it.
//
// RecordSale and ReverseSale are single atomic units: the read-check-mutate
// sequence they perform is serialized per batch by the implementation (row
// locks inside a transaction), so concurrent calls can never observe a stock
// level computed before another call's mutation committed.
type LedgerRepository interface {
	// SaveBatch persists a new batch from intake.
	SaveBatch(ctx context.Context, batch *models.Batch) error

	// GetBatch retrieves a batch by ID. Returns ErrBatchNotFound if absent.
	GetBatch(ctx context.Context, id uuid.UUID) (*models.Batch, error)

	// ListBatches returns all batches, newest first.
	ListBatches(ctx context.Context) ([]*models.Batch, error)

	// DeleteBatch removes a batch. Returns ErrBatchInUse while live sales
	// still reference it and ErrBatchNotFound if it does not exist.
	DeleteBatch(ctx context.Context, id uuid.UUID) error

	// RecordSale atomically checks stock, inserts the sale (snapshotting the
	// batch name), and decrements the batch quantity. Returns
	// ErrBatchNotFound, ErrInsufficientStock, or ErrBatchBusy on contention.
	RecordSale(ctx context.Context, batchID uuid.UUID, quantitySold int, salePrice decimal.Decimal) (*models.Sale, error)

	// ReverseSale atomically deletes the sale and credits its quantity back
	// to the batch. Returns the reversed sale, or ErrSaleNotFound if the sale
	// does not exist (including a second reversal of the same ID — the batch
	// is never double-credited). A missing batch is tolerated: the credit is
	// dropped and the returned sale reports it.
	ReverseSale(ctx context.Context, saleID uuid.UUID) (*models.Sale, error)

	// ListSales returns all sales, newest first, with batch names taken from
	// the sale-time snapshot.
	ListSales(ctx context.Context) ([]*models.Sale, error)

	// UpsertBatch inserts or overwrites a batch by its name (the natural key
	// used by offline clients), last write wins. Bypasses all stock logic.
	// Returns the canonical row ID, which on a name conflict is the existing
	// row's ID rather than batch.ID, so callers can invalidate read models.
	UpsertBatch(ctx context.Context, batch *models.Batch) (uuid.UUID, error)

	// UpsertSale inserts or overwrites a sale by ID, last write wins.
	// Bypasses all stock logic.
	UpsertSale(ctx context.Context, sale *models.Sale) error

	// AuditConservation reports batches where trays × eggs-per-tray differs
	// from current quantity plus live sales.
	AuditConservation(ctx context.Context) ([]ConservationDrift, error)
}
