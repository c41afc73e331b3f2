package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EggsPerTray is the fixed number of eggs in one tray. A batch's initial
// quantity is derived from it exactly once, at intake; later mutations go
// through sales and never re-derive from trays.
const EggsPerTray = 30

// Batch is a purchased lot of eggs tracked as a depleting quantity.
// Quantity is decremented by recorded sales and credited back by reversals;
// it must never go negative.
type Batch struct {
	ID          uuid.UUID
	Name        BatchName
	Trays       int
	Quantity    int
	BuyingPrice decimal.Decimal
	CreatedAt   time.Time
}

// NewBatch constructs a Batch at intake with quantity derived from trays.
func NewBatch(name BatchName, trays int, buyingPrice decimal.Decimal) *Batch {
	return &Batch{
		ID:          uuid.New(),
		Name:        name,
		Trays:       trays,
		Quantity:    trays * EggsPerTray,
		BuyingPrice: buyingPrice,
		CreatedAt:   time.Now().UTC(),
	}
}
