package models

import "fmt"

// BatchName is a value object representing a valid batch label.
// Names are non-unique labels in single-record operations, but serve as the
// natural upsert key during bulk sync.
type BatchName string

const (
	minBatchNameLength = 1
	maxBatchNameLength = 255
)

// NewBatchName constructs a valid BatchName or returns an error if constraints are violated.
func NewBatchName(s string) (BatchName, error) {
	if len(s) < minBatchNameLength {
		return "", fmt.Errorf("batch name must be at least %d character", minBatchNameLength)
	}
	if len(s) > maxBatchNameLength {
		return "", fmt.Errorf("batch name must not exceed %d characters", maxBatchNameLength)
	}
	return BatchName(s), nil
}

// String returns the underlying string value.
func (n BatchName) String() string {
	return string(n)
}
