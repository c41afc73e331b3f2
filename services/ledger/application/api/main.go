package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/eggledger/pkg/app"
	"github.com/ghuser/eggledger/services/ledger/application/handlers"
	appsvcs "github.com/ghuser/eggledger/services/ledger/application/services"
)

// LedgerRoutes registers batch, sale, and sync endpoints on the provided chi router.
func LedgerRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Route("/batches", func(r chi.Router) {
			r.Get("/", handlers.NewGetBatchesHandler(svcs).Execute)
			r.Post("/", handlers.NewPostBatchHandler(svcs).Execute)
			r.Get("/{id}", handlers.NewGetBatchHandler(svcs).Execute)
			r.Delete("/{id}", handlers.NewDeleteBatchHandler(svcs).Execute)
		})
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", handlers.NewGetSalesHandler(svcs).Execute)
			r.Post("/", handlers.NewPostSaleHandler(svcs).Execute)
			r.Delete("/{id}", handlers.NewDeleteSaleHandler(svcs).Execute)
		})
		r.Post("/sync", handlers.NewPostSyncHandler(svcs).Execute)
	})
}
