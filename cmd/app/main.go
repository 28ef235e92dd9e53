package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/fairtask-ledger/pkg/admin"
	"github.com/chris/fairtask-ledger/pkg/config"
	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/handlers"
	"github.com/chris/fairtask-ledger/pkg/scheduler"
	"github.com/chris/fairtask-ledger/pkg/storage"
	dydbstore "github.com/chris/fairtask-ledger/pkg/storage/dynamodb"
	"github.com/chris/fairtask-ledger/pkg/storage/memory"
	"github.com/chris/fairtask-ledger/pkg/websockets"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		store storage.Storage
		sched scheduler.Scheduler
		local *scheduler.LocalScheduler
	)
	switch cfg.Store {
	case config.StoreDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Error("unable to load SDK config", "error", err)
			os.Exit(1)
		}
		store = dydbstore.New(dynamodb.NewFromConfig(awsCfg), dydbstore.Tables(cfg.Tables))
		sched, local = newScheduler(cfg, awsCfg, logger)
	default:
		store = memory.New()
		// Memory mode always releases holds on local timers.
		local = scheduler.NewLocalScheduler(logger)
		sched = local
	}

	hub := websockets.NewHub(logger)
	eng := engine.New(store, logger,
		engine.WithScheduler(sched),
		engine.WithPublisher(hub),
		engine.WithHoldDuration(cfg.HoldDuration),
	)
	if local != nil {
		local.SetReleaser(eng.ProcessRelease)
		defer local.Stop()
	}

	ops := admin.New(store, eng, logger)
	if _, err := ops.Bootstrap(ctx, cfg.BootstrapAdminID, cfg.BootstrapAdminName); err != nil {
		logger.Error("failed to bootstrap admin", "admin_id", cfg.BootstrapAdminID, "error", err)
		os.Exit(1)
	}

	if cfg.SeedDemo {
		if err := seedDemo(ctx, eng, logger); err != nil {
			logger.Warn("failed to seed demo data", "error", err)
		}
	}

	// Holds that came due while the process was down.
	if n, err := eng.ReconcileHolds(ctx); err != nil {
		logger.Error("failed to reconcile holds on startup", "error", err)
	} else if n > 0 {
		logger.Info("reconciled due holds", "count", n)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Engine:      eng,
		Admin:       ops,
		Hub:         hub,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	logger.Info("Starting server", "port", cfg.Port, "store", cfg.Store)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

// newScheduler uses SQS when a queue is configured and local timers otherwise.
func newScheduler(cfg config.Config, awsCfg aws.Config, logger *slog.Logger) (scheduler.Scheduler, *scheduler.LocalScheduler) {
	if cfg.SQSQueueURL != "" {
		return scheduler.NewSQSScheduler(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL), nil
	}
	local := scheduler.NewLocalScheduler(logger)
	return local, local
}
