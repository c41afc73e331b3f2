package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/eggledger/pkg/app"
	"github.com/ghuser/eggledger/services/account/application/handlers"
	appsvcs "github.com/ghuser/eggledger/services/account/application/services"
)

// AccountRoutes registers registration/login endpoints on the provided chi
// router. These are mounted outside RequireAuth: they are how a session is
// obtained in the first place.
func AccountRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Post("/register", handlers.NewPostRegisterHandler(svcs).Execute)
		r.Post("/login", handlers.NewPostLoginHandler(svcs, a.SessionStore, a.Logger).Execute)
		r.Post("/logout", handlers.NewPostLogoutHandler(a.SessionStore, a.Logger).Execute)
	})
}
