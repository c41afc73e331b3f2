package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a recorded depletion event against a batch. A sale exists exactly
// as long as its quantity has been deducted from the batch; reversing the
// sale deletes it and credits the batch back.
//
// BatchName is a snapshot captured at sale time. It is the source of truth
// for listings: it reflects historical reality even if the batch is later
// renamed, and it keeps listings working for sales whose batch reference no
// longer resolves (possible after bulk sync).
type Sale struct {
	ID           uuid.UUID
	BatchID      uuid.UUID
	BatchName    string
	QuantitySold int
	SalePrice    decimal.Decimal
	CreatedAt    time.Time
}

// NewSale constructs a Sale against the given batch, snapshotting its name.
func NewSale(batch *Batch, quantitySold int, salePrice decimal.Decimal) *Sale {
	return &Sale{
		ID:           uuid.New(),
		BatchID:      batch.ID,
		BatchName:    batch.Name.String(),
		QuantitySold: quantitySold,
		SalePrice:    salePrice,
		CreatedAt:    time.Now().UTC(),
	}
}
