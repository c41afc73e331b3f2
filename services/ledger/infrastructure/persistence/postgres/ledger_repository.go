package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ghuser/eggledger/pkg/database"
	"github.com/ghuser/eggledger/pkg/events"
	"github.com/ghuser/eggledger/pkg/logger"
	ledgerdomain "github.com/ghuser/eggledger/services/ledger/domain"
	domainevents "github.com/ghuser/eggledger/services/ledger/domain/events"
	"github.com/ghuser/eggledger/services/ledger/domain/models"
	"github.com/ghuser/eggledger/services/ledger/domain/repositories"
	domainsvcs "github.com/ghuser/eggledger/services/ledger/domain/services"
)

// Postgres error codes mapped to domain errors.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgLockNotAvailable     = "55P03"
)

// lockTimeout bounds how long a read-check-mutate transaction waits for a
// contended batch row before surfacing ErrBatchBusy to the caller.
const lockTimeout = "3s"

// LedgerRepository implements repositories.LedgerRepository against PostgreSQL.
//
// RecordSale and ReverseSale serialize per batch with SELECT ... FOR UPDATE
// inside a transaction, so the stock check always sees the quantity as of the
// moment the lock is granted. Domain events are published through the
// Watermill outbox within the same transaction.
type LedgerRepository struct {
	db  *database.Database
	bus *events.EventBus
	log logger.Logger
}

// NewLedgerRepository returns a LedgerRepository backed by the given pool and
// event bus. The bus may be nil (tests); events are then skipped.
func NewLedgerRepository(db *database.Database, bus *events.EventBus, log logger.Logger) *LedgerRepository {
	return &LedgerRepository{db: db, bus: bus, log: log}
}

// SaveBatch persists a new batch and publishes BatchCreatedEvent in the same
// transaction. Returns ErrBatchExists on a name collision.
func (r *LedgerRepository) SaveBatch(ctx context.Context, batch *models.Batch) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO batches (id, name, trays, quantity, buying_price, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			batch.ID, batch.Name.String(), batch.Trays, batch.Quantity, batch.BuyingPrice, batch.CreatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return ledgerdomain.ErrBatchExists
			}
			return fmt.Errorf("insert batch: %w", err)
		}

		return r.publish(tx, domainevents.TopicBatchCreated, domainevents.BatchCreatedEvent{
			EventID:     uuid.New(),
			Version:     1,
			BatchID:     batch.ID,
			Name:        batch.Name.String(),
			Trays:       batch.Trays,
			Quantity:    batch.Quantity,
			BuyingPrice: batch.BuyingPrice.String(),
			OccurredAt:  batch.CreatedAt,
		})
	})
}

// GetBatch retrieves a batch by ID. Returns ErrBatchNotFound if absent.
func (r *LedgerRepository) GetBatch(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT id, name, trays, quantity, buying_price, created_at FROM batches WHERE id = $1`, id)
	batch, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledgerdomain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("query batch: %w", err)
	}
	return batch, nil
}

// ListBatches returns all batches, newest first.
func (r *LedgerRepository) ListBatches(ctx context.Context) ([]*models.Batch, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT id, name, trays, quantity, buying_price, created_at FROM batches ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var batches []*models.Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// DeleteBatch removes a batch unless live sales still reference it.
func (r *LedgerRepository) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var inUse bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM sales WHERE batch_id = $1)`, id).Scan(&inUse); err != nil {
			return fmt.Errorf("check batch sales: %w", err)
		}
		if inUse {
			return ledgerdomain.ErrBatchInUse
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete batch: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ledgerdomain.ErrBatchNotFound
		}
		return nil
	})
}

// RecordSale atomically performs the read-check-decrement sequence:
//
//  1. Lock the batch row (FOR UPDATE) and read its current quantity.
//  2. Check stock; fail with ErrInsufficientStock without mutating.
//  3. Insert the sale with a snapshot of the batch name, decrement the
//     batch quantity, and publish SaleRecordedEvent — all in one transaction.
//
// A lock wait exceeding the timeout surfaces as ErrBatchBusy; the caller may
// retry. Concurrent sales against the same batch therefore serialize, and the
// quantity can never go negative.
func (r *LedgerRepository) RecordSale(ctx context.Context, batchID uuid.UUID, quantitySold int, salePrice decimal.Decimal) (*models.Sale, error) {
	var sale *models.Sale
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := setLockTimeout(ctx, tx); err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx,
			`SELECT id, name, trays, quantity, buying_price, created_at
			 FROM batches WHERE id = $1 FOR UPDATE`, batchID)
		batch, err := scanBatch(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ledgerdomain.ErrBatchNotFound
			}
			return asBusy(fmt.Errorf("lock batch: %w", err))
		}

		if err := domainsvcs.CanDeduct(batch, quantitySold); err != nil {
			return err
		}

		sale = models.NewSale(batch, quantitySold, salePrice)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sales (id, batch_id, batch_name, quantity_sold, sale_price, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			sale.ID, sale.BatchID, sale.BatchName, sale.QuantitySold, sale.SalePrice, sale.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE batches SET quantity = quantity - $1 WHERE id = $2`,
			quantitySold, batchID,
		); err != nil {
			return fmt.Errorf("decrement batch: %w", err)
		}

		return r.publish(tx, domainevents.TopicSaleRecorded, domainevents.SaleRecordedEvent{
			EventID:           uuid.New(),
			Version:           1,
			SaleID:            sale.ID,
			BatchID:           batchID,
			QuantitySold:      quantitySold,
			RemainingQuantity: batch.Quantity - quantitySold,
			OccurredAt:        sale.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ReverseSale atomically deletes the sale and credits its quantity back to
// the batch. Deleting first and keying the credit off the deleted row means a
// concurrent double-reversal loses the DELETE race, gets ErrSaleNotFound, and
// never credits twice. A missing batch (dangling reference introduced via
// sync) drops the credit with a warning instead of failing the reversal.
func (r *LedgerRepository) ReverseSale(ctx context.Context, saleID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := setLockTimeout(ctx, tx); err != nil {
			return err
		}

		err := tx.QueryRowContext(ctx,
			`DELETE FROM sales WHERE id = $1
			 RETURNING id, batch_id, batch_name, quantity_sold, sale_price, created_at`, saleID).
			Scan(&sale.ID, &sale.BatchID, &sale.BatchName, &sale.QuantitySold, &sale.SalePrice, &sale.CreatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ledgerdomain.ErrSaleNotFound
			}
			return asBusy(fmt.Errorf("delete sale: %w", err))
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE batches SET quantity = quantity + $1 WHERE id = $2`,
			sale.QuantitySold, sale.BatchID,
		)
		if err != nil {
			return asBusy(fmt.Errorf("credit batch: %w", err))
		}

		batchMissing := false
		if n, _ := res.RowsAffected(); n == 0 {
			batchMissing = true
			r.log.WarnContext(ctx, "reversed sale references missing batch, credit dropped",
				"sale_id", saleID, "batch_id", sale.BatchID)
		}

		return r.publish(tx, domainevents.TopicSaleReversed, domainevents.SaleReversedEvent{
			EventID:          uuid.New(),
			Version:          1,
			SaleID:           sale.ID,
			BatchID:          sale.BatchID,
			QuantityCredited: sale.QuantitySold,
			BatchMissing:     batchMissing,
			OccurredAt:       time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListSales returns all sales, newest first. Batch names come from the
// sale-time snapshot column, never a live join.
func (r *LedgerRepository) ListSales(ctx context.Context) ([]*models.Sale, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT id, batch_id, batch_name, quantity_sold, sale_price, created_at
		 FROM sales ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var sales []*models.Sale
	for rows.Next() {
		var s models.Sale
		if err := rows.Scan(&s.ID, &s.BatchID, &s.BatchName, &s.QuantitySold, &s.SalePrice, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return sales, nil
}

// UpsertBatch inserts or overwrites a batch by name, last write wins.
// This is the sync bypass surface: no stock check, no quantity derivation.
// The returned ID is the canonical row ID — on a name conflict the existing
// row keeps its ID, and that is the key any cached read model lives under.
func (r *LedgerRepository) UpsertBatch(ctx context.Context, batch *models.Batch) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.DB().QueryRowContext(ctx,
		`INSERT INTO batches (id, name, trays, quantity, buying_price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (name) DO UPDATE
		 SET quantity = EXCLUDED.quantity,
		     trays = EXCLUDED.trays,
		     buying_price = EXCLUDED.buying_price
		 RETURNING id`,
		batch.ID, batch.Name.String(), batch.Trays, batch.Quantity, batch.BuyingPrice, batch.CreatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert batch %q: %w", batch.Name.String(), err)
	}
	return id, nil
}

// UpsertSale inserts or overwrites a sale by ID, last write wins.
// Like UpsertBatch, this never touches batch quantities.
func (r *LedgerRepository) UpsertSale(ctx context.Context, sale *models.Sale) error {
	_, err := r.db.DB().ExecContext(ctx,
		`INSERT INTO sales (id, batch_id, batch_name, quantity_sold, sale_price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET batch_id = EXCLUDED.batch_id,
		     batch_name = EXCLUDED.batch_name,
		     quantity_sold = EXCLUDED.quantity_sold,
		     sale_price = EXCLUDED.sale_price`,
		sale.ID, sale.BatchID, sale.BatchName, sale.QuantitySold, sale.SalePrice, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert sale %s: %w", sale.ID, err)
	}
	return nil
}

// AuditConservation reports batches where trays × eggs-per-tray no longer
// equals current quantity plus live sales.
func (r *LedgerRepository) AuditConservation(ctx context.Context) ([]repositories.ConservationDrift, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT b.id, b.name, b.trays * $1 AS expected, b.quantity,
		        COALESCE(SUM(s.quantity_sold), 0) AS sold_total
		 FROM batches b
		 LEFT JOIN sales s ON s.batch_id = b.id
		 GROUP BY b.id, b.name, b.trays, b.quantity
		 HAVING b.trays * $1 <> b.quantity + COALESCE(SUM(s.quantity_sold), 0)`,
		models.EggsPerTray,
	)
	if err != nil {
		return nil, fmt.Errorf("query conservation drift: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var drifts []repositories.ConservationDrift
	for rows.Next() {
		var d repositories.ConservationDrift
		if err := rows.Scan(&d.BatchID, &d.Name, &d.Expected, &d.Quantity, &d.SoldTotal); err != nil {
			return nil, fmt.Errorf("scan drift: %w", err)
		}
		drifts = append(drifts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drift: %w", err)
	}
	return drifts, nil
}

// publish sends a domain event through the Watermill outbox bound to tx.
func (r *LedgerRepository) publish(tx *sql.Tx, topic string, event any) error {
	if r.bus == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	if err := p.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// setLockTimeout bounds row-lock waits for this transaction so contended
// batches surface ErrBatchBusy instead of hanging.
func setLockTimeout(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`SET LOCAL lock_timeout = '%s'`, lockTimeout)); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}
	return nil
}

// asBusy converts Postgres lock-wait and serialization failures to
// ErrBatchBusy; other errors pass through unchanged.
func asBusy(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgLockNotAvailable || pgErr.Code == pgSerializationFailure {
			return fmt.Errorf("%w: %s", ledgerdomain.ErrBatchBusy, pgErr.Message)
		}
	}
	return err
}

// rowScanner lets scanBatch work with both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*models.Batch, error) {
	var (
		b    models.Batch
		name string
	)
	if err := row.Scan(&b.ID, &name, &b.Trays, &b.Quantity, &b.BuyingPrice, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Name = models.BatchName(name)
	return &b, nil
}
