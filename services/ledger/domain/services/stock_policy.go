// Package services contains stateless domain services for the ledger bounded
// context. They enforce the business rules that keep batch quantities
// consistent with recorded sales and depend on nothing beyond stdlib and the
// domain layer.
package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	ledgerdomain "github.com/ghuser/eggledger/services/ledger/domain"
	"github.com/ghuser/eggledger/services/ledger/domain/models"
)

// ValidateIntake enforces business rules for batch intake. Non-positive tray
// counts are rejected so a batch can never start with zero or negative stock.
func ValidateIntake(trays int, buyingPrice decimal.Decimal) error {
	if trays <= 0 {
		return fmt.Errorf("%w: trays must be positive, got %d", ledgerdomain.ErrInvalidBatch, trays)
	}
	if buyingPrice.IsNegative() {
		return fmt.Errorf("%w: buying price must not be negative", ledgerdomain.ErrInvalidBatch)
	}
	return nil
}

// ValidateSaleQuantity rejects non-positive sale quantities. A zero or
// negative quantity would turn a sale into a silent credit.
func ValidateSaleQuantity(quantitySold int) error {
	if quantitySold <= 0 {
		return fmt.Errorf("%w: quantity sold must be positive, got %d", ledgerdomain.ErrInvalidSale, quantitySold)
	}
	return nil
}

// CanDeduct is the stock check at the heart of sale recording: the batch must
// hold at least quantitySold eggs at the moment of the check. Callers must
// run it against a row-locked read of the batch so no concurrent sale or
// reversal acts on a stale quantity.
func CanDeduct(batch *models.Batch, quantitySold int) error {
	if batch.Quantity < quantitySold {
		return fmt.Errorf("%w: batch %s holds %d, requested %d",
			ledgerdomain.ErrInsufficientStock, batch.ID, batch.Quantity, quantitySold)
	}
	return nil
}
