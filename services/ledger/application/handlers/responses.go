package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/eggledger/services/ledger/domain/models"
)

// BatchResponse is the JSON projection of a batch.
// Prices are decimal strings (e.g. "320.50").
type BatchResponse struct {
	ID          uuid.UUID       `json:"id"           example:"123e4567-e89b-12d3-a456-426614174000"`
	Name        string          `json:"name"         example:"May layers"`
	Trays       int             `json:"trays"        example:"10"`
	Quantity    int             `json:"quantity"     example:"300"`
	BuyingPrice decimal.Decimal `json:"buying_price" example:"320.50"`
	CreatedAt   time.Time       `json:"created_at"   example:"2024-01-15T10:30:00Z"`
} // @name BatchResponse

// SaleResponse is the JSON projection of a sale. The batch name is the
// snapshot captured when the sale was recorded.
type SaleResponse struct {
	ID           uuid.UUID       `json:"id"            example:"123e4567-e89b-12d3-a456-426614174000"`
	BatchID      uuid.UUID       `json:"batch_id"      example:"550e8400-e29b-41d4-a716-446655440000"`
	BatchName    string          `json:"batch_name"    example:"May layers"`
	QuantitySold int             `json:"quantity_sold" example:"50"`
	SalePrice    decimal.Decimal `json:"sale_price"    example:"15.00"`
	CreatedAt    time.Time       `json:"created_at"    example:"2024-01-15T10:30:00Z"`
} // @name SaleResponse

// SuccessResponse is returned by mutations that have no richer payload.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
} // @name SuccessResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"batch not found"`
} // @name ErrorResponse

func toBatchResponse(b *models.Batch) BatchResponse {
	return BatchResponse{
		ID:          b.ID,
		Name:        b.Name.String(),
		Trays:       b.Trays,
		Quantity:    b.Quantity,
		BuyingPrice: b.BuyingPrice,
		CreatedAt:   b.CreatedAt,
	}
}

func toSaleResponse(s *models.Sale) SaleResponse {
	return SaleResponse{
		ID:           s.ID,
		BatchID:      s.BatchID,
		BatchName:    s.BatchName,
		QuantitySold: s.QuantitySold,
		SalePrice:    s.SalePrice,
		CreatedAt:    s.CreatedAt,
	}
}
