package handlers

import (
	"net/http"

	"github.com/ghuser/eggledger/pkg/errhttp"
	"github.com/ghuser/eggledger/pkg/httpx"
	appsvcs "github.com/ghuser/eggledger/services/ledger/application/services"
)

// GetSalesHandler handles GET /sales requests.
type GetSalesHandler struct {
	svc *appsvcs.Services
}

// NewGetSalesHandler returns a GetSalesHandler backed by the given services.
func NewGetSalesHandler(svc *appsvcs.Services) *GetSalesHandler {
	return &GetSalesHandler{svc: svc}
}

// Execute lists all sales. Batch names are the snapshots captured at sale
// time, so renames and deleted batches do not rewrite history.
//
//	@Summary	List sales
//	@Tags		sales
//	@Produce	json
//	@Success	200	{array}		SaleResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/sales [get]
func (h *GetSalesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.Ledger.ListSales(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleResponse(s))
	}
	httpx.JSON(w, http.StatusOK, out)
}
