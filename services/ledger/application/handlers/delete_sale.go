package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/eggledger/pkg/errhttp"
	"github.com/ghuser/eggledger/pkg/httpx"
	appsvcs "github.com/ghuser/eggledger/services/ledger/application/services"
)

// DeleteSaleHandler handles DELETE /sales/{id} requests.
type DeleteSaleHandler struct {
	svc *appsvcs.Services
}

// NewDeleteSaleHandler returns a DeleteSaleHandler backed by the given services.
func NewDeleteSaleHandler(svc *appsvcs.Services) *DeleteSaleHandler {
	return &DeleteSaleHandler{svc: svc}
}

// Execute reverses a sale: deletes it and credits the quantity back to its
// batch atomically. Reversing the same sale twice yields 404 the second time.
//
//	@Summary	Reverse sale
//	@Tags		sales
//	@Produce	json
//	@Param		id	path		string	true	"Sale ID"
//	@Success	200	{object}	SuccessResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse	"batch busy, retry"
//	@Router		/sales/{id} [delete]
func (h *DeleteSaleHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	if err := h.svc.Ledger.ReverseSale(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}
