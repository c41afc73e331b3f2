package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/eggledger/pkg/httpx"
	pkgvalidator "github.com/ghuser/eggledger/pkg/validator"
	appsvcs "github.com/ghuser/eggledger/services/ledger/application/services"
)

// SyncBatchItem is one batch state in a sync request, upserted by name.
type SyncBatchItem struct {
	Name        string          `json:"name"         validate:"required,min=1,max=255" example:"May layers"`
	Trays       int             `json:"trays"        example:"10"`
	Quantity    int             `json:"quantity"     example:"250"`
	BuyingPrice decimal.Decimal `json:"buying_price" swaggertype:"string" example:"320.50"`
} // @name SyncBatchItem

// SyncSaleItem is one sale state in a sync request, upserted by ID.
type SyncSaleItem struct {
	ID           uuid.UUID       `json:"id"            validate:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	BatchID      uuid.UUID       `json:"batch_id"      example:"550e8400-e29b-41d4-a716-446655440000"`
	BatchName    string          `json:"batch_name"    example:"May layers"`
	QuantitySold int             `json:"quantity_sold" example:"50"`
	SalePrice    decimal.Decimal `json:"sale_price"    swaggertype:"string" example:"15.00"`
} // @name SyncSaleItem

// SyncRequest is the request body for POST /sync.
type SyncRequest struct {
	Batches []SyncBatchItem `json:"batches" validate:"dive"`
	Sales   []SyncSaleItem  `json:"sales"   validate:"dive"`
} // @name SyncRequest

// SyncResponse reports aggregate success plus per-item outcomes.
type SyncResponse struct {
	Success bool                `json:"success" example:"true"`
	Report  *appsvcs.SyncReport `json:"report"`
} // @name SyncResponse

// PostSyncHandler handles POST /sync requests.
type PostSyncHandler struct {
	svc *appsvcs.Services
}

// NewPostSyncHandler returns a PostSyncHandler backed by the given services.
func NewPostSyncHandler(svc *appsvcs.Services) *PostSyncHandler {
	return &PostSyncHandler{svc: svc}
}

// Execute reconciles offline-client state. This endpoint is a deliberate
// invariant bypass: upserts are last-write-wins and never run the stock
// check. Items are independent — one failure does not abort the rest, and
// failures are reported per item in the response.
//
//	@Summary		Bulk sync
//	@Description	Last-write-wins upserts of batches (by name) and sales (by ID) from an offline client
//	@Tags			sync
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SyncRequest	true	"Offline client state"
//	@Success		200		{object}	SyncResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/sync [post]
func (h *PostSyncHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[SyncRequest](w, r)
	if !ok {
		return
	}

	batches := make([]appsvcs.BatchUpsert, 0, len(req.Batches))
	for _, b := range req.Batches {
		batches = append(batches, appsvcs.BatchUpsert{
			Name:        b.Name,
			Trays:       b.Trays,
			Quantity:    b.Quantity,
			BuyingPrice: b.BuyingPrice,
		})
	}
	sales := make([]appsvcs.SaleUpsert, 0, len(req.Sales))
	for _, s := range req.Sales {
		sales = append(sales, appsvcs.SaleUpsert{
			ID:           s.ID,
			BatchID:      s.BatchID,
			BatchName:    s.BatchName,
			QuantitySold: s.QuantitySold,
			SalePrice:    s.SalePrice,
		})
	}

	report := h.svc.Ledger.Sync(r.Context(), batches, sales)
	httpx.JSON(w, http.StatusOK, SyncResponse{Success: true, Report: report})
}
