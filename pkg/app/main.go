package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/eggledger/pkg/cache"
	"github.com/ghuser/eggledger/pkg/database"
	"github.com/ghuser/eggledger/pkg/events"
	"github.com/ghuser/eggledger/pkg/logger"
	"github.com/ghuser/eggledger/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Pass it to each service's *Routes call during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler — use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "recording sale", "batch_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient // nil in the API process
	SessionStore   sessions.Store            // Redis-backed session store; nil in worker process
}
