package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/eggledger/pkg/errhttp"
	"github.com/ghuser/eggledger/pkg/httpx"
	appsvcs "github.com/ghuser/eggledger/services/ledger/application/services"
)

// GetBatchHandler handles GET /batches/{id} requests.
type GetBatchHandler struct {
	svc *appsvcs.Services
}

// NewGetBatchHandler returns a GetBatchHandler backed by the given services.
func NewGetBatchHandler(svc *appsvcs.Services) *GetBatchHandler {
	return &GetBatchHandler{svc: svc}
}

// Execute fetches a single batch (served from the Redis read model when warm).
//
//	@Summary	Get batch
//	@Tags		batches
//	@Produce	json
//	@Param		id	path		string	true	"Batch ID"
//	@Success	200	{object}	BatchResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/batches/{id} [get]
func (h *GetBatchHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	batch, err := h.svc.Ledger.GetBatch(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toBatchResponse(batch))
}
