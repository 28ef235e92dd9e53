package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/fairtask-ledger/pkg/config"
	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/scheduler"
	dydbstore "github.com/chris/fairtask-ledger/pkg/storage/dynamodb"
)

// Releaser is the engine operation the handler drives.
type Releaser interface {
	ProcessRelease(ctx context.Context, msg scheduler.ReleaseMessage) error
}

var releaser Releaser

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

	// Initialize dependencies once.
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		slog.Error("unable to load SDK config", "error", err)
		os.Exit(1)
	}

	store := dydbstore.New(dynamodb.NewFromConfig(awsCfg), dydbstore.Tables(cfg.Tables))
	// Releases delivered ahead of their due time go back on the queue.
	sched := scheduler.NewSQSScheduler(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL)
	releaser = engine.New(store, slog.Default(),
		engine.WithScheduler(sched),
		engine.WithHoldDuration(cfg.HoldDuration),
	)
}

// HandleRequest releases the holds named by the SQS messages. Failed messages
// are reported individually so SQS only redelivers those.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, message := range sqsEvent.Records {
		var msg scheduler.ReleaseMessage
		if err := json.Unmarshal([]byte(message.Body), &msg); err != nil {
			// Malformed bodies are dropped.
			slog.Error("failed to unmarshal release message", "message_id", message.MessageId, "error", err)
			continue
		}

		if err := releaser.ProcessRelease(ctx, msg); err != nil {
			slog.Error("failed to release hold", "message_id", message.MessageId, "user_id", msg.UserID, "entry_id", msg.EntryID, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
			continue
		}
		slog.Info("processed release", "message_id", message.MessageId, "user_id", msg.UserID, "entry_id", msg.EntryID)
	}
	return resp, nil
}

func main() {
	lambda.Start(HandleRequest)
}
