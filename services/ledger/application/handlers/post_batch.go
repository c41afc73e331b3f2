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

// CreateBatchRequest is the request body for POST /batches.
type CreateBatchRequest struct {
	Name        string          `json:"name"         validate:"required,min=1,max=255" example:"May layers"`
	Trays       int             `json:"trays"        validate:"required,gt=0"          example:"10"`
	BuyingPrice decimal.Decimal `json:"buying_price" swaggertype:"string"              example:"320.50"`
} // @name CreateBatchRequest

// CreateBatchResponse is returned on successful batch intake.
type CreateBatchResponse struct {
	ID uuid.UUID `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
} // @name CreateBatchResponse

// PostBatchHandler handles POST /batches requests.
type PostBatchHandler struct {
	svc *appsvcs.Services
}

// NewPostBatchHandler returns a PostBatchHandler backed by the given services.
func NewPostBatchHandler(svc *appsvcs.Services) *PostBatchHandler {
	return &PostBatchHandler{svc: svc}
}

// Execute records a batch intake.
//
//	@Summary		Create batch
//	@Description	Registers a purchased egg batch; quantity is derived as trays × 30
//	@Tags			batches
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateBatchRequest	true	"Batch intake request"
//	@Success		201		{object}	CreateBatchResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/batches [post]
func (h *PostBatchHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateBatchRequest](w, r)
	if !ok {
		return
	}

	batch, err := h.svc.Ledger.CreateBatch(r.Context(), req.Name, req.Trays, req.BuyingPrice)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, CreateBatchResponse{ID: batch.ID})
}
