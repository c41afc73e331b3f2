package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the ledger repository.
const (
	TopicBatchCreated = "batch.created"
	TopicSaleRecorded = "sale.recorded"
	TopicSaleReversed = "sale.reversed"
)

// BatchCreatedEvent is published after a new batch is persisted.
type BatchCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	BatchID    uuid.UUID `json:"batch_id"`
	Name       string    `json:"name"`
	Trays      int       `json:"trays"`
	Quantity   int       `json:"quantity"`
	// BuyingPrice is the decimal string representation, so consumers can
	// build read models without a database round trip.
	BuyingPrice string    `json:"buying_price"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// SaleRecordedEvent is published in the same transaction that inserts the
// sale and decrements the batch, so consumers never observe a sale whose
// deduction was lost.
type SaleRecordedEvent struct {
	EventID      uuid.UUID `json:"event_id"`
	Version      int       `json:"version"`
	SaleID       uuid.UUID `json:"sale_id"`
	BatchID      uuid.UUID `json:"batch_id"`
	QuantitySold int       `json:"quantity_sold"`
	// RemainingQuantity is the batch quantity after the deduction.
	RemainingQuantity int       `json:"remaining_quantity"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// SaleReversedEvent is published in the same transaction that deletes the
// sale and credits the batch back.
type SaleReversedEvent struct {
	EventID          uuid.UUID `json:"event_id"`
	Version          int       `json:"version"`
	SaleID           uuid.UUID `json:"sale_id"`
	BatchID          uuid.UUID `json:"batch_id"`
	QuantityCredited int       `json:"quantity_credited"`
	// BatchMissing is true when the credited batch no longer existed
	// (a dangling reference introduced via bulk sync).
	BatchMissing bool      `json:"batch_missing"`
	OccurredAt   time.Time `json:"occurred_at"`
}
