package services

import (
	"github.com/ghuser/eggledger/pkg/app"
	"github.com/ghuser/eggledger/pkg/cache"
	"github.com/ghuser/eggledger/services/ledger/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Ledger *LedgerService
}

// New wires all ledger application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewLedgerRepository(a.Db, a.EventBus, a.Logger)
	batchCache := cache.NewBatchCache(a.Redis)
	return &Services{
		Ledger: NewLedgerService(repo, batchCache, a.Logger),
	}
}
