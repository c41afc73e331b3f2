package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestNewBatch_DerivesQuantityFromTrays(t *testing.T) {
	tests := []struct {
		trays        int
		wantQuantity int
	}{
		{1, 30},
		{10, 300},
		{17, 510},
	}

	for _, tt := range tests {
		name, _ := NewBatchName("May layers")
		b := NewBatch(name, tt.trays, decimal.NewFromInt(320))
		if b.Quantity != tt.wantQuantity {
			t.Errorf("trays=%d: expected quantity %d, got %d", tt.trays, tt.wantQuantity, b.Quantity)
		}
		if b.Trays != tt.trays {
			t.Errorf("expected trays %d, got %d", tt.trays, b.Trays)
		}
	}
}

func TestNewBatch_AssignsIDAndTimestamp(t *testing.T) {
	name, _ := NewBatchName("May layers")
	b := NewBatch(name, 10, decimal.NewFromFloat(320.50))

	if b.ID == uuid.Nil {
		t.Error("expected non-nil batch ID")
	}
	if b.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if !b.BuyingPrice.Equal(decimal.NewFromFloat(320.50)) {
		t.Errorf("unexpected buying price: %s", b.BuyingPrice)
	}
}

func TestNewBatchName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "May layers", false},
		{"single char", "a", false},
		{"max length", strings.Repeat("a", 255), false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 256), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewBatchName(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for input of length %d", len(tt.input))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.input {
				t.Errorf("expected %q, got %q", tt.input, got.String())
			}
		})
	}
}

func TestNewSale_SnapshotsBatchName(t *testing.T) {
	name, _ := NewBatchName("May layers")
	b := NewBatch(name, 10, decimal.NewFromInt(320))

	s := NewSale(b, 50, decimal.NewFromFloat(15.00))

	if s.BatchID != b.ID {
		t.Errorf("expected batch ID %v, got %v", b.ID, s.BatchID)
	}
	if s.BatchName != "May layers" {
		t.Errorf("expected snapshot name %q, got %q", "May layers", s.BatchName)
	}
	if s.QuantitySold != 50 {
		t.Errorf("expected quantity 50, got %d", s.QuantitySold)
	}
	if s.ID == uuid.Nil {
		t.Error("expected non-nil sale ID")
	}
}
