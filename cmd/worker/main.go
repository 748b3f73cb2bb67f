package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"github.com/klynn-app/orders-api/internal/awsx"
	"github.com/klynn-app/orders-api/internal/config"
	"github.com/klynn-app/orders-api/internal/orders"
	"github.com/klynn-app/orders-api/internal/validation"
	"github.com/klynn-app/orders-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = appLog.Sync() }()

	ctx := context.Background()
	clients, err := awsx.NewClients(ctx, cfg.Region)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	v := validation.New()
	store := orders.NewStore(clients.DynamoDB, cfg.Store.TableName, validation.NewOrderValidator(v), cfg.Store.Timeout)
	metrics := awsx.NewMetricsEmitter(clients.CloudWatch, cfg.Events.MetricsNamespace)

	processor := NewProcessor(store, metrics, appLog)

	// With RUN_LOCAL=true a single simulated SQS event is processed, which is
	// enough to exercise the pipeline against a local DynamoDB endpoint.
	if cfg.Server.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"order_id":"00000000-0000-0000-0000-000000000001","status":"pending"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{{Body: body}},
		}
		if err := processor.Handle(ctx, event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(processor.Handle)
}
