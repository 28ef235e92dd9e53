package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/fairtask-ledger/pkg/config"
	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/scheduler"
	dydbstore "github.com/chris/fairtask-ledger/pkg/storage/dynamodb"
)

// Reconciler is the engine operation the handler drives.
type Reconciler interface {
	ReconcileHolds(ctx context.Context) (int, error)
}

var reconciler Reconciler

func init() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.SQSQueueURL == "" {
		slog.Error("SQS_QUEUE_URL environment variable not set")
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		slog.Error("unable to load SDK config", "error", err)
		os.Exit(1)
	}

	store := dydbstore.New(dynamodb.NewFromConfig(awsCfg), dydbstore.Tables(cfg.Tables))
	sched := scheduler.NewSQSScheduler(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL)
	reconciler = engine.New(store, slog.Default(), engine.WithScheduler(sched))
}

// HandleRequest is triggered by an EventBridge Schedule. It re-enqueues every
// verification hold that is past due.
func HandleRequest(ctx context.Context) error {
	slog.Info("Starting reconciliation of due holds")

	n, err := reconciler.ReconcileHolds(ctx)
	if err != nil {
		slog.Error("reconciliation finished with errors", "enqueued", n, "error", err)
		return err
	}

	slog.Info("Reconciliation finished", "enqueued", n)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
