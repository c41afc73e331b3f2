package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.temporal.io/sdk/client"

	"github.com/ghuser/eggledger/pkg/app"
	"github.com/ghuser/eggledger/pkg/cache"
	"github.com/ghuser/eggledger/pkg/config"
	"github.com/ghuser/eggledger/pkg/database"
	"github.com/ghuser/eggledger/pkg/events"
	"github.com/ghuser/eggledger/pkg/logger"
	"github.com/ghuser/eggledger/pkg/telemetry"
	"github.com/ghuser/eggledger/pkg/workflows"
	ledgerWorkflows "github.com/ghuser/eggledger/services/ledger/application/workflows"
	ledgerEvents "github.com/ghuser/eggledger/services/ledger/domain/events"
	"github.com/ghuser/eggledger/services/ledger/infrastructure/persistence/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	temporalClient, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
	if err != nil {
		log.Error("failed to initialize temporal client", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer temporalClient.Close()

	appConfig := &app.Application{
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	auditDone, err := startAuditWorker(ctx, appConfig, cfg.AuditCron)
	if err != nil {
		log.Error("failed to start audit worker", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	close(auditDone)

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	batchCache := cache.NewBatchCache(a.Redis)

	subscriptions := map[string]func(context.Context, *message.Message) error{
		ledgerEvents.TopicBatchCreated: handleBatchCreated(a, batchCache),
		ledgerEvents.TopicSaleRecorded: handleSaleRecorded(a, batchCache),
		ledgerEvents.TopicSaleReversed: handleSaleReversed(a, batchCache),
	}

	topics := make([]string, 0, len(subscriptions))
	for topic, handler := range subscriptions {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}
		topics = append(topics, topic)

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// handleBatchCreated warms the Redis read-model cache so the first GetBatch
// after intake is served from cache.
// Handlers must be idempotent — EventBus retries up to 3× on failure.
func handleBatchCreated(a *app.Application, batchCache *cache.BatchCache) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt ledgerEvents.BatchCreatedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		if err := batchCache.Set(ctx, &cache.CachedBatch{
			ID:          evt.BatchID,
			Name:        evt.Name,
			Trays:       evt.Trays,
			Quantity:    evt.Quantity,
			BuyingPrice: evt.BuyingPrice,
			CreatedAt:   evt.OccurredAt,
		}); err != nil {
			// Cache warming is best-effort; log but do not fail the handler.
			a.Logger.WarnContext(ctx, "cache warm failed for batch.created",
				"batch_id", evt.BatchID, "error", err)
		} else {
			a.Logger.InfoContext(ctx, "cache warmed", "batch_id", evt.BatchID)
		}

		return nil
	}
}

// handleSaleRecorded drops the stale batch entry so the next read re-fetches
// the post-sale quantity.
func handleSaleRecorded(a *app.Application, batchCache *cache.BatchCache) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt ledgerEvents.SaleRecordedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		if err := batchCache.Delete(ctx, evt.BatchID); err != nil {
			a.Logger.WarnContext(ctx, "cache invalidation failed for sale.recorded",
				"batch_id", evt.BatchID, "sale_id", evt.SaleID, "error", err)
		}
		return nil
	}
}

// handleSaleReversed drops the stale batch entry after a credit. When the
// batch no longer exists the cache key cannot exist either, so the delete is
// a harmless no-op.
func handleSaleReversed(a *app.Application, batchCache *cache.BatchCache) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt ledgerEvents.SaleReversedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		if err := batchCache.Delete(ctx, evt.BatchID); err != nil {
			a.Logger.WarnContext(ctx, "cache invalidation failed for sale.reversed",
				"batch_id", evt.BatchID, "sale_id", evt.SaleID, "error", err)
		}
		return nil
	}
}

// startAuditWorker registers the conservation audit workflow on the Temporal
// task queue and schedules it as a cron workflow. The fixed workflow ID makes
// the schedule idempotent across worker restarts.
func startAuditWorker(ctx context.Context, a *app.Application, cron string) (chan struct{}, error) {
	repo := postgres.NewLedgerRepository(a.Db, a.EventBus, a.Logger)

	w := a.TemporalClient.NewWorker(ledgerWorkflows.TaskQueue)
	w.RegisterWorkflow(ledgerWorkflows.ConservationAuditWorkflow)
	w.RegisterActivity(ledgerWorkflows.NewAuditActivities(repo, a.Logger).AuditConservation)

	done := make(chan struct{})
	if err := w.Start(); err != nil {
		return nil, err
	}
	go func() {
		<-done
		w.Stop()
	}()

	_, err := a.TemporalClient.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           ledgerWorkflows.AuditWorkflowID,
		TaskQueue:    ledgerWorkflows.TaskQueue,
		CronSchedule: cron,
	}, ledgerWorkflows.ConservationAuditWorkflow)
	if err != nil {
		close(done)
		return nil, err
	}

	a.Logger.Info("conservation audit scheduled", "cron", cron, "task_queue", ledgerWorkflows.TaskQueue)
	return done, nil
}
