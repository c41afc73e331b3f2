package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/eggledger/pkg/errhttp"
	"github.com/ghuser/eggledger/pkg/httpx"
	pkgvalidator "github.com/ghuser/eggledger/pkg/validator"
	appsvcs "github.com/ghuser/eggledger/services/ledger/application/services"
)

// RecordSaleRequest is the request body for POST /sales.
type RecordSaleRequest struct {
	BatchID      uuid.UUID       `json:"batch_id"      validate:"required"      example:"550e8400-e29b-41d4-a716-446655440000"`
	QuantitySold int             `json:"quantity_sold" validate:"required,gt=0" example:"50"`
	SalePrice    decimal.Decimal `json:"sale_price"    swaggertype:"string"     example:"15.00"`
} // @name RecordSaleRequest

// RecordSaleResponse is returned when a sale is recorded and the batch deducted.
type RecordSaleResponse struct {
	Success bool      `json:"success" example:"true"`
	ID      uuid.UUID `json:"id"      example:"123e4567-e89b-12d3-a456-426614174000"`
} // @name RecordSaleResponse

// PostSaleHandler handles POST /sales requests.
type PostSaleHandler struct {
	svc *appsvcs.Services
}

// NewPostSaleHandler returns a PostSaleHandler backed by the given services.
func NewPostSaleHandler(svc *appsvcs.Services) *PostSaleHandler {
	return &PostSaleHandler{svc: svc}
}

// Execute records a sale and deducts the batch quantity atomically.
//
//	@Summary		Record sale
//	@Description	Checks stock, inserts the sale, and decrements the batch in one transaction
//	@Tags			sales
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RecordSaleRequest	true	"Sale request"
//	@Success		201		{object}	RecordSaleResponse
//	@Failure		400		{object}	ErrorResponse	"insufficient stock"
//	@Failure		404		{object}	ErrorResponse	"batch not found"
//	@Failure		409		{object}	ErrorResponse	"batch busy, retry"
//	@Router			/sales [post]
func (h *PostSaleHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[RecordSaleRequest](w, r)
	if !ok {
		return
	}

	sale, err := h.svc.Ledger.RecordSale(r.Context(), req.BatchID, req.QuantitySold, req.SalePrice)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, RecordSaleResponse{Success: true, ID: sale.ID})
}
