package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/eggledger/pkg/errhttp"
	"github.com/ghuser/eggledger/pkg/httpx"
	appsvcs "github.com/ghuser/eggledger/services/ledger/application/services"
)

// DeleteBatchHandler handles DELETE /batches/{id} requests.
type DeleteBatchHandler struct {
	svc *appsvcs.Services
}

// NewDeleteBatchHandler returns a DeleteBatchHandler backed by the given services.
func NewDeleteBatchHandler(svc *appsvcs.Services) *DeleteBatchHandler {
	return &DeleteBatchHandler{svc: svc}
}

// Execute deletes a batch. Batches with recorded sales cannot be deleted.
//
//	@Summary	Delete batch
//	@Tags		batches
//	@Produce	json
//	@Param		id	path		string	true	"Batch ID"
//	@Success	200	{object}	SuccessResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/batches/{id} [delete]
func (h *DeleteBatchHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	if err := h.svc.Ledger.DeleteBatch(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}
