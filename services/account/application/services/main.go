package services

import (
	"github.com/ghuser/eggledger/pkg/app"
	"github.com/ghuser/eggledger/services/account/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Account *AccountService
}

// New wires the account application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewUserRepository(a.Db)
	return &Services{
		Account: NewAccountService(repo),
	}
}
