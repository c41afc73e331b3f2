package domain

import "errors"

// Sentinel errors for the ledger domain. Use errors.Is() to check these.
var (
	// ErrBatchNotFound indicates the requested egg batch does not exist.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrSaleNotFound indicates the requested sale does not exist
	// (or was already reversed).
	ErrSaleNotFound = errors.New("sale not found")

	// ErrInsufficientStock indicates a sale would drive a batch quantity negative.
	ErrInsufficientStock = errors.New("not enough eggs in stock")

	// ErrBatchBusy indicates lock contention on a batch row. The operation did
	// not run; callers may retry.
	ErrBatchBusy = errors.New("batch is busy, retry")

	// ErrBatchInUse indicates a batch cannot be deleted because live sales
	// still reference it.
	ErrBatchInUse = errors.New("batch has recorded sales")

	// ErrBatchExists indicates a batch with the same name already exists.
	// Names are the natural key offline clients upsert by, so they are unique.
	ErrBatchExists = errors.New("batch already exists")

	// ErrInvalidBatch indicates a batch payload violates domain constraints.
	ErrInvalidBatch = errors.New("invalid batch")

	// ErrInvalidSale indicates a sale payload violates domain constraints.
	ErrInvalidSale = errors.New("invalid sale")
)
