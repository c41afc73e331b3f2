package handlers

import (
	"net/http"

	"github.com/ghuser/eggledger/pkg/errhttp"
	"github.com/ghuser/eggledger/pkg/httpx"
	appsvcs "github.com/ghuser/eggledger/services/ledger/application/services"
)

// GetBatchesHandler handles GET /batches requests.
type GetBatchesHandler struct {
	svc *appsvcs.Services
}

// NewGetBatchesHandler returns a GetBatchesHandler backed by the given services.
func NewGetBatchesHandler(svc *appsvcs.Services) *GetBatchesHandler {
	return &GetBatchesHandler{svc: svc}
}

// Execute lists all batches.
//
//	@Summary	List batches
//	@Tags		batches
//	@Produce	json
//	@Success	200	{array}		BatchResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/batches [get]
func (h *GetBatchesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	batches, err := h.svc.Ledger.ListBatches(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := make([]BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, toBatchResponse(b))
	}
	httpx.JSON(w, http.StatusOK, out)
}
